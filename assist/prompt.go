package assist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

// systemPrompt instructs the LLM how to explain control matrix issues.
func systemPrompt() string {
	return `You are a cloud security compliance reviewer analyzing issues found in a
production readiness control matrix. The matrix maps security requirements to
the AWS services that enforce them, automated checks, evidence artifacts and
compliance framework controls (ISO 27001, SOC 2, NIST CSF).
For each issue, provide a JSON array with objects containing these fields:
- "fingerprint": the issue fingerprint (string)
- "code": the issue code (string)
- "title": a concise title for the problem (string)
- "explanation": what this issue means in plain language (string)
- "impact": what it risks for an audit or for the production readiness review (string)
- "remediation": the concrete change to make in the matrix (string)
- "references": relevant URLs for further reading (array of strings, optional)

Respond ONLY with a valid JSON array. Do not include markdown fences or other text.
Be concise and actionable.`
}

// formatIssues converts a batch of issues into structured text for the LLM.
// When the issue refers to a matrix row, the row's cells are included.
func formatIssues(batch []issues.Issue, rows map[int]matrix.Entry, cat map[string]catalog.CodeMeta) string {
	var b strings.Builder
	for i, is := range batch {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "Fingerprint: %s\n", is.Fingerprint)
		fmt.Fprintf(&b, "Code: %s\n", is.Code)
		fmt.Fprintf(&b, "Level: %s\n", is.Level)
		if is.Row > 0 {
			fmt.Fprintf(&b, "Row: %d\n", is.Row)
		}
		if is.RequirementID != "" {
			fmt.Fprintf(&b, "Requirement: %s\n", is.RequirementID)
		}
		fmt.Fprintf(&b, "Message: %s\n", is.Message)
		if meta, ok := cat[is.Code]; ok {
			fmt.Fprintf(&b, "Check: %s\n", meta.Title)
			fmt.Fprintf(&b, "Known fix: %s\n", meta.Remediation)
		}
		if e, ok := rows[is.Row]; ok && is.Row > 0 {
			fmt.Fprintf(&b, "Row content: %s\n", strings.Join(e.Fields(), " | "))
		}
		if len(is.Metadata) > 0 {
			names := make([]string, 0, len(is.Metadata))
			for k := range is.Metadata {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				fmt.Fprintf(&b, "Metadata %s: %s\n", k, is.Metadata[k])
			}
		}
	}
	return b.String()
}

// formatContext summarises the validation run so explanations can refer to
// overall coverage.
func formatContext(r *core.Result) string {
	var b strings.Builder
	b.WriteString("Validation context:\n")
	s := r.CoverageStats
	fmt.Fprintf(&b, "Requirements: %.0f (mapped %.0f, unmapped %.0f)\n",
		s[core.StatTotalRequirements], s[core.StatMapped], s[core.StatUnmapped])
	fmt.Fprintf(&b, "Control entries: %.0f\n", s[core.StatTotalEntries])
	fmt.Fprintf(&b, "Coverage: %.2f%%\n", s[core.StatCoveragePercentage])
	fmt.Fprintf(&b, "Errors: %d, warnings: %d\n", len(r.Errors), len(r.Warnings))
	if r.Compliance != nil {
		for _, c := range r.Compliance.Frameworks {
			fmt.Fprintf(&b, "%s critical controls: %d of %d\n", c.Name, len(c.CriticalMatched), c.CriticalTotal)
		}
		if len(r.Compliance.DomainGaps) > 0 {
			fmt.Fprintf(&b, "Security domains without controls: %s\n", strings.Join(r.Compliance.DomainGaps, ", "))
		}
	}
	return b.String()
}

// summaryPrompt asks for an executive summary of all explained issues.
func summaryPrompt(explanations []IssueExplanation) string {
	var b strings.Builder
	b.WriteString("Based on these control matrix issues, provide a 2-3 sentence executive summary ")
	b.WriteString("of the matrix's readiness for review. Highlight the most serious gaps.\n\n")
	for _, e := range explanations {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", e.Code, e.Title, e.Explanation)
	}
	b.WriteString("\nRespond with ONLY the summary text, no JSON.")
	return b.String()
}
