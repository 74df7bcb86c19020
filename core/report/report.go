// Package report serializes validation results to output formats. The
// primary implementation is JSONReporter which produces a deterministic JSON
// report suitable for CI pipelines, dashboards, and downstream tooling.
package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/compliance"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/policy"
)

// ToolName is embedded in report metadata.
const ToolName = "ctrlmatrix"

// Validation status values.
const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// Reporter defines the contract for serializing validation results into a
// byte representation. Each output format implements this interface.
type Reporter interface {
	Generate(results ...*core.Result) ([]byte, error)
}

// Meta contains metadata about the report itself, including schema
// version, generation timestamp, and tool identification.
type Meta struct {
	SchemaVersion string `json:"schema_version"`
	GeneratedAt   string `json:"generated_at"`
	ToolName      string `json:"tool_name"`
	ToolVersion   string `json:"tool_version"`
}

// MatrixReport is the report section for one validated control matrix.
type MatrixReport struct {
	PRRFile          string               `json:"prr_file,omitempty"`
	MatrixFile       string               `json:"matrix_file"`
	ValidationStatus string               `json:"validation_status"`
	CoverageStats    map[string]float64   `json:"coverage_stats"`
	Errors           []string             `json:"errors"`
	Warnings         []string             `json:"warnings"`
	Issues           []issues.Issue       `json:"issues"`
	Compliance       *compliance.Analysis `json:"compliance,omitempty"`
	Policy           *policy.Result       `json:"policy,omitempty"`
}

// JSONReport is the top-level structure serialized to JSON. It pairs report
// metadata with one section per validated matrix. ValidationStatus is
// FAILED when any matrix failed.
type JSONReport struct {
	Meta             Meta           `json:"meta"`
	ValidationStatus string         `json:"validation_status"`
	Matrices         []MatrixReport `json:"matrices"`
}

// JSONReporter produces deterministic JSON output from validation results.
type JSONReporter struct {
	ToolVersion string
}

// NewJSONReporter returns a JSONReporter configured with the given tool
// version string. The version is embedded in the report metadata.
func NewJSONReporter(version string) *JSONReporter {
	return &JSONReporter{ToolVersion: version}
}

// Status returns the validation status string for a result.
func Status(r *core.Result) string {
	if r.ExitCode() == 0 {
		return StatusPassed
	}
	return StatusFailed
}

// Build assembles the report structure without serializing it.
func (r *JSONReporter) Build(results ...*core.Result) JSONReport {
	report := JSONReport{
		Meta: Meta{
			SchemaVersion: "1.0.0",
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			ToolName:      ToolName,
			ToolVersion:   r.ToolVersion,
		},
		ValidationStatus: StatusPassed,
		Matrices:         make([]MatrixReport, 0, len(results)),
	}
	for _, res := range results {
		mr := MatrixReport{
			PRRFile:          res.PRRPath,
			ValidationStatus: Status(res),
			CoverageStats:    res.CoverageStats,
			Errors:           res.Errors,
			Warnings:         res.Warnings,
			Issues:           []issues.Issue{},
			Compliance:       res.Compliance,
			Policy:           res.Policy,
		}
		if res.Matrix != nil {
			mr.MatrixFile = res.Matrix.Path
		}
		if res.Issues != nil && res.Issues.Len() > 0 {
			mr.Issues = res.Issues.Issues()
		}
		if mr.ValidationStatus == StatusFailed {
			report.ValidationStatus = StatusFailed
		}
		report.Matrices = append(report.Matrices, mr)
	}
	return report
}

// Generate serializes the results to pretty-printed JSON with 2-space
// indentation. The output is stable across runs given the same input
// (aside from the GeneratedAt timestamp).
func (r *JSONReporter) Generate(results ...*core.Result) ([]byte, error) {
	return json.MarshalIndent(r.Build(results...), "", "  ")
}

// WriteToFile generates the JSON report and writes it to the specified path
// with 0644 permissions. Parent directories must already exist.
func (r *JSONReporter) WriteToFile(path string, results ...*core.Result) error {
	data, err := r.Generate(results...)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
