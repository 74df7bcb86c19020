// Package assist provides optional LLM-based explanations of control matrix
// validation issues. It consumes a core.Result and produces plain-language
// explanations of what each issue means, what it risks for an audit, and how
// to fix the matrix.
//
// The package never changes validation results and is opt-in only.
package assist

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ExplanationReport is the top-level output of the explain pipeline.
type ExplanationReport struct {
	SchemaVersion string             `json:"schema_version"`
	MatrixFile    string             `json:"matrix_file,omitempty"`
	Explanations  []IssueExplanation `json:"explanations"`
	Summary       string             `json:"summary"`
	Usage         UsageStats         `json:"usage"`
}

// IssueExplanation holds the LLM-generated explanation for a single issue.
type IssueExplanation struct {
	Fingerprint string   `json:"fingerprint"`
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Impact      string   `json:"impact"`
	Remediation string   `json:"remediation"`
	References  []string `json:"references,omitempty"`
}

// UsageStats tracks LLM token consumption across all provider calls.
type UsageStats struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	RequestCount     int `json:"request_count"`
}

func (u *UsageStats) add(resp *Response) {
	u.PromptTokens += resp.PromptTokens
	u.CompletionTokens += resp.CompletionTokens
	u.TotalTokens += resp.Tokens()
	u.RequestCount++
}

// JSON returns the report as pretty-printed JSON bytes.
func (r *ExplanationReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteFile writes the report to the given file path.
func (r *ExplanationReport) WriteFile(path string) error {
	data, err := r.JSON()
	if err != nil {
		return fmt.Errorf("marshalling explanation report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Markdown renders the report as a markdown document for terminal display.
func (r *ExplanationReport) Markdown() string {
	var b strings.Builder
	b.WriteString("# Control matrix review\n\n")
	if r.MatrixFile != "" {
		fmt.Fprintf(&b, "`%s`\n\n", r.MatrixFile)
	}
	if r.Summary != "" {
		b.WriteString(r.Summary)
		b.WriteString("\n\n")
	}
	for _, e := range r.Explanations {
		fmt.Fprintf(&b, "## %s: %s\n\n", e.Code, e.Title)
		if e.Explanation != "" {
			b.WriteString(e.Explanation + "\n\n")
		}
		if e.Impact != "" {
			fmt.Fprintf(&b, "**Impact:** %s\n\n", e.Impact)
		}
		if e.Remediation != "" {
			fmt.Fprintf(&b, "**Remediation:** %s\n\n", e.Remediation)
		}
		for _, ref := range e.References {
			fmt.Fprintf(&b, "- %s\n", ref)
		}
		if len(e.References) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
