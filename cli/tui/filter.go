package tui

import (
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/issues"
)

// levelOrder defines the cycle order for the level filter toggle.
var levelOrder = []issues.Level{
	issues.LevelError,
	issues.LevelWarning,
}

// filterState tracks the active filter configuration.
type filterState struct {
	levelIdx  int    // -1 = all
	search    string // free-text search query
	searching bool   // true when search input is active
}

func newFilterState() filterState {
	return filterState{levelIdx: -1}
}

// cycleLevel advances the level filter to the next level.
func (f *filterState) cycleLevel() {
	f.levelIdx++
	if f.levelIdx >= len(levelOrder) {
		f.levelIdx = -1
	}
}

// activeLevel returns the current level filter, or "all".
func (f *filterState) activeLevel() string {
	if f.levelIdx < 0 {
		return "all"
	}
	return string(levelOrder[f.levelIdx])
}

// matchesIssue returns true if the issue passes all active filters.
func (f *filterState) matchesIssue(issue issues.Issue) bool {
	if f.levelIdx >= 0 && issue.Level != levelOrder[f.levelIdx] {
		return false
	}

	if f.search != "" {
		q := strings.ToLower(f.search)
		if !strings.Contains(strings.ToLower(issue.Code), q) &&
			!strings.Contains(strings.ToLower(issue.RequirementID), q) &&
			!strings.Contains(strings.ToLower(issue.Message), q) {
			return false
		}
	}

	return true
}

// filterIssues returns issues that pass the active filters.
func (f *filterState) filterIssues(all []issues.Issue) []issues.Issue {
	var result []issues.Issue
	for _, issue := range all {
		if f.matchesIssue(issue) {
			result = append(result, issue)
		}
	}
	return result
}
