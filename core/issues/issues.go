// Package issues defines the validation issue model shared by every
// ctrlmatrix validator and reporter. Validators emit Issue values into a
// Set; the pipeline concatenates the sets and reporters render them as
// error and warning messages, SARIF results or TUI rows.
package issues

import (
	"sort"
)

// Level separates issues that fail validation from advisory ones.
type Level string

// Level constants. Only errors affect the validation verdict.
const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Issue is a single validation observation. Row is the control matrix row
// the issue refers to, or zero for document-level issues.
type Issue struct {
	Code          string            `json:"code"`
	Level         Level             `json:"level"`
	Row           int               `json:"row,omitempty"`
	RequirementID string            `json:"requirement_id,omitempty"`
	Message       string            `json:"message"`
	Fingerprint   string            `json:"fingerprint"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Set is an ordered collection of issues. Insertion order is preserved so
// that messages appear in the order validators produced them.
type Set struct {
	items []Issue
}

// NewSet returns an empty Set ready for use.
func NewSet() *Set {
	return &Set{}
}

// Add appends an issue, computing its fingerprint when empty.
func (s *Set) Add(i Issue) {
	if i.Fingerprint == "" {
		i.Fingerprint = ComputeFingerprint(i.Code, i.RequirementID, i.Row, i.Message)
	}
	s.items = append(s.items, i)
}

// Merge appends all issues of other in order. A nil other is ignored.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, i := range other.items {
		s.Add(i)
	}
}

// Deduplicate removes issues that share a fingerprint, keeping the first.
func (s *Set) Deduplicate() {
	seen := make(map[string]struct{}, len(s.items))
	unique := make([]Issue, 0, len(s.items))
	for _, i := range s.items {
		if _, exists := seen[i.Fingerprint]; exists {
			continue
		}
		seen[i.Fingerprint] = struct{}{}
		unique = append(unique, i)
	}
	s.items = unique
}

// SortDeterministic orders issues by level (errors first), code, row and
// message.
func (s *Set) SortDeterministic() {
	sort.SliceStable(s.items, func(i, j int) bool {
		a, b := s.items[i], s.items[j]
		if a.Level != b.Level {
			return a.Level == LevelError
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Message < b.Message
	})
}

// Issues returns the current slice of issues. The caller must not modify
// the returned slice.
func (s *Set) Issues() []Issue {
	return s.items
}

// Len returns the number of issues.
func (s *Set) Len() int {
	return len(s.items)
}

// Count returns the number of issues at level.
func (s *Set) Count(level Level) int {
	n := 0
	for _, i := range s.items {
		if i.Level == level {
			n++
		}
	}
	return n
}

// Errors returns the messages of error-level issues in insertion order.
// The result is never nil.
func (s *Set) Errors() []string {
	return s.messages(LevelError)
}

// Warnings returns the messages of warning-level issues in insertion order.
// The result is never nil.
func (s *Set) Warnings() []string {
	return s.messages(LevelWarning)
}

func (s *Set) messages(level Level) []string {
	out := make([]string, 0, len(s.items))
	for _, i := range s.items {
		if i.Level == level {
			out = append(out, i.Message)
		}
	}
	return out
}
