// Package evidence checks the format of control matrix evidence artifacts:
// URLs must name a host, AWS ARNs must be well formed, and dashboard and
// file references should be specific enough to locate.
package evidence

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

var (
	arnRe       = regexp.MustCompile(`^arn:aws:[a-z0-9-]+:[a-z0-9-]*:\d*:.+$`)
	dashboardRe = regexp.MustCompile(`(?i).+dashboard.+`)
)

// Check inspects the evidence artifact of every entry. Entries without an
// artifact are skipped; the schema validator reports those.
func Check(entries []matrix.Entry) *issues.Set {
	set := issues.NewSet()
	for i, e := range entries {
		artifact := strings.TrimSpace(e.EvidenceArtifact)
		if artifact == "" {
			continue
		}
		row := matrix.RowNumber(i, e)
		code, level, msg := classify(artifact)
		if code == "" {
			continue
		}
		set.Add(issues.Issue{
			Code:          code,
			Level:         level,
			Row:           row,
			RequirementID: e.RequirementID,
			Message:       fmt.Sprintf("Row %d: %s: %s", row, msg, artifact),
			Metadata:      map[string]string{"artifact": artifact},
		})
	}
	return set
}

// classify returns the issue an artifact raises, or an empty code when it is
// acceptable. Rules are exclusive and applied in order.
func classify(artifact string) (code string, level issues.Level, msg string) {
	lower := strings.ToLower(artifact)
	switch {
	case strings.HasPrefix(artifact, "http"):
		if u, err := url.Parse(artifact); err != nil || u.Host == "" {
			return catalog.InvalidEvidenceURL, issues.LevelError, "Invalid URL format in evidence artifact"
		}
	case strings.HasPrefix(artifact, "arn:aws:"):
		if !arnRe.MatchString(artifact) {
			return catalog.InvalidEvidenceARN, issues.LevelError, "Invalid ARN format in evidence artifact"
		}
	case strings.Contains(lower, "cloudwatch") && strings.Contains(lower, "dashboard"):
		if !dashboardRe.MatchString(artifact) {
			return catalog.UnclearDashboardRef, issues.LevelWarning, "Evidence artifact may not be a valid dashboard reference"
		}
	case strings.Contains(artifact, "/"):
		if !strings.HasPrefix(artifact, "/") && !strings.HasPrefix(artifact, "./") {
			return catalog.UnclearEvidencePath, issues.LevelWarning, "Evidence artifact path format unclear"
		}
	}
	return "", "", ""
}
