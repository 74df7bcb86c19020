// Package sarif generates SARIF 2.1.0 reports from validation issues.
//
// The Static Analysis Results Interchange Format (SARIF) is an OASIS standard
// for the output of static analysis tools. This package produces SARIF v2.1.0
// documents that are compatible with GitHub Code Scanning, Azure DevOps, and
// other SARIF consumers.
package sarif

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
)

const (
	// sarifVersion is the SARIF specification version produced by this reporter.
	sarifVersion = "2.1.0"

	// sarifSchema is the JSON schema URI for SARIF 2.1.0.
	sarifSchema = "https://docs.oasis-open.org/sarif/sarif/v2.1.0/errata01/os/schemas/sarif-schema-2.1.0.json"

	// toolName is the name of the tool embedded in the SARIF driver.
	toolName = "ctrlmatrix"

	// informationURI is the project URL embedded in the SARIF driver.
	informationURI = "https://github.com/nox-hq/ctrlmatrix"
)

// ---------------------------------------------------------------------------
// SARIF 2.1.0 envelope types
// ---------------------------------------------------------------------------

// Report is the top-level SARIF document containing the schema version
// and one or more analysis runs.
type Report struct {
	Version string `json:"version"`
	Schema  string `json:"$schema"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of an analysis tool.
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool that produced the run.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains identifying information about the tool and the catalog of
// rules it can report on.
type Driver struct {
	Name           string                `json:"name"`
	Version        string                `json:"version"`
	InformationURI string                `json:"informationUri"`
	Rules          []ReportingDescriptor `json:"rules"`
}

// ReportingDescriptor defines a single rule in the SARIF rule catalog.
type ReportingDescriptor struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	ShortDescription     Message             `json:"shortDescription"`
	FullDescription      *Message            `json:"fullDescription,omitempty"`
	Help                 *MultiformatMessage `json:"help,omitempty"`
	HelpURI              string              `json:"helpUri,omitempty"`
	DefaultConfiguration Configuration       `json:"defaultConfiguration"`
	Properties           map[string]string   `json:"properties,omitempty"`
}

// MultiformatMessage is a SARIF message that can carry both plain text and
// markdown representations.
type MultiformatMessage struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown,omitempty"`
}

// Configuration holds the default severity level for a rule.
type Configuration struct {
	Level string `json:"level"`
}

// Message is a SARIF message object containing human-readable text.
type Message struct {
	Text string `json:"text"`
}

// Result is a single issue expressed in SARIF format.
type Result struct {
	RuleID       string            `json:"ruleId"`
	RuleIndex    int               `json:"ruleIndex"`
	Level        string            `json:"level"`
	Message      Message           `json:"message"`
	Locations    []Location        `json:"locations"`
	Fingerprints map[string]string `json:"fingerprints"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// Location wraps a physical location within a source artifact.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation identifies a file and region within that file.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           *Region          `json:"region,omitempty"`
}

// ArtifactLocation is a URI reference to a source file.
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region identifies a contiguous area within an artifact. For a control
// matrix the line is the CSV record number.
type Region struct {
	StartLine int `json:"startLine,omitempty"`
	EndLine   int `json:"endLine,omitempty"`
}

// ---------------------------------------------------------------------------
// Reporter implementation
// ---------------------------------------------------------------------------

// Reporter produces SARIF 2.1.0 documents from validation results. It
// implements the report.Reporter interface.
type Reporter struct {
	// ToolVersion is the version string embedded in the SARIF tool driver.
	ToolVersion string
}

// NewReporter returns a Reporter configured with the given tool version.
func NewReporter(version string) *Reporter {
	return &Reporter{ToolVersion: version}
}

// Generate builds a complete SARIF 2.1.0 JSON document with one run per
// result. The rule catalog lists every issue code. Issues keep their
// validation order so the output is reproducible. The returned bytes are
// pretty-printed JSON.
func (r *Reporter) Generate(results ...*core.Result) ([]byte, error) {
	ruleCatalog, ruleIndex := buildRuleCatalog()

	runs := make([]Run, 0, len(results))
	for _, res := range results {
		runs = append(runs, Run{
			Tool: Tool{
				Driver: Driver{
					Name:           toolName,
					Version:        r.ToolVersion,
					InformationURI: informationURI,
					Rules:          ruleCatalog,
				},
			},
			Results: convert(res, ruleIndex),
		})
	}

	report := Report{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs:    runs,
	}
	return json.MarshalIndent(report, "", "  ")
}

// WriteToFile generates the SARIF report and writes it to the specified path
// with 0644 permissions. Parent directories must already exist.
func (r *Reporter) WriteToFile(path string, results ...*core.Result) error {
	data, err := r.Generate(results...)
	if err != nil {
		return fmt.Errorf("sarif: generate report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func convert(res *core.Result, ruleIndex map[string]int) []Result {
	out := []Result{}
	if res.Issues == nil {
		return out
	}
	matrixPath := ""
	if res.Matrix != nil {
		matrixPath = res.Matrix.Path
	}
	for _, is := range res.Issues.Issues() {
		uri := matrixPath
		if is.Code == catalog.UnmappedRequirement && res.PRRPath != "" {
			uri = res.PRRPath
		}
		loc := PhysicalLocation{ArtifactLocation: ArtifactLocation{URI: uri}}
		if is.Row > 0 {
			loc.Region = &Region{StartLine: is.Row, EndLine: is.Row}
		}
		result := Result{
			RuleID:    is.Code,
			RuleIndex: ruleIndex[is.Code],
			Level:     levelToSARIF(is.Level),
			Message:   Message{Text: is.Message},
			Locations: []Location{{PhysicalLocation: loc}},
			Fingerprints: map[string]string{
				"ctrlmatrix/v1": is.Fingerprint,
			},
		}
		if is.RequirementID != "" {
			result.Properties = map[string]string{"requirement_id": is.RequirementID}
		}
		out = append(out, result)
	}
	return out
}

// levelToSARIF maps an issue level to the corresponding SARIF level string.
func levelToSARIF(l issues.Level) string {
	switch l {
	case issues.LevelError:
		return "error"
	case issues.LevelWarning:
		return "warning"
	default:
		return "note"
	}
}

// buildRuleCatalog constructs the SARIF rules array from the issue catalog,
// sorted by code, and a map from code to its index within that array.
func buildRuleCatalog() ([]ReportingDescriptor, map[string]int) {
	codes := catalog.Codes()
	rules := make([]ReportingDescriptor, 0, len(codes))
	index := make(map[string]int, len(codes))

	for _, code := range codes {
		meta, _ := catalog.Lookup(code)
		index[code] = len(rules)

		desc := ReportingDescriptor{
			ID:               code,
			Name:             meta.Title,
			ShortDescription: Message{Text: meta.Title},
			DefaultConfiguration: Configuration{
				Level: levelToSARIF(issues.Level(meta.Level)),
			},
			Properties: map[string]string{"component": meta.Component},
		}
		if meta.Remediation != "" {
			desc.FullDescription = &Message{Text: meta.Title}
			desc.Help = &MultiformatMessage{
				Text:     "Remediation: " + meta.Remediation,
				Markdown: "**Remediation:** " + meta.Remediation,
			}
		}
		rules = append(rules, desc)
	}
	return rules, index
}
