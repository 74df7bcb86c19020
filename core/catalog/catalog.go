// Package catalog is the central registry of ctrlmatrix issue codes. Every
// validator references its codes from here so reporters, the issue browser
// and the remediation assistant share one description of each problem.
package catalog

import "sort"

// Issue codes grouped by the validator that emits them.
const (
	// Loader.
	UndecodableRow = "LD-001"
	MissingColumn  = "LD-002"

	// Schema validator.
	MissingRequirementID = "CM-001"
	InvalidRequirementID = "CM-002"
	MissingField         = "CM-003"
	UnknownService       = "CM-004"
	UnknownFramework     = "CM-005"
	MissingService       = "CM-006"

	// Cross-reference resolver.
	UnmappedRequirement = "XR-001"
	InvalidReference    = "XR-002"
	DuplicateMapping    = "XR-003"

	// Evidence artifact checks.
	InvalidEvidenceURL  = "EV-001"
	InvalidEvidenceARN  = "EV-002"
	UnclearDashboardRef = "EV-003"
	UnclearEvidencePath = "EV-004"
)

// CodeMeta describes an issue code.
type CodeMeta struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Level       string `json:"level"`
	Component   string `json:"component"`
	Remediation string `json:"remediation"`
}

var codes = map[string]CodeMeta{
	UndecodableRow: {
		Title:       "Control matrix row could not be decoded",
		Level:       "warning",
		Component:   "loader",
		Remediation: "Re-save the matrix as UTF-8 CSV and check quoting on the reported row.",
	},
	MissingColumn: {
		Title:       "Control matrix header is missing a required column",
		Level:       "warning",
		Component:   "loader",
		Remediation: "Add the column to the header row; values in that column are treated as empty until it exists.",
	},
	MissingRequirementID: {
		Title:       "Control matrix row has no requirement ID",
		Level:       "error",
		Component:   "schema",
		Remediation: "Fill in the Requirement ID column with the identifier from the requirements document.",
	},
	InvalidRequirementID: {
		Title:       "Requirement ID does not match PREFIX-NNN.N",
		Level:       "error",
		Component:   "schema",
		Remediation: "Use a 2-4 letter uppercase prefix, a dash, three digits, a dot and a sub-number, for example SEC-001.1.",
	},
	MissingField: {
		Title:       "Required control matrix field is empty",
		Level:       "error",
		Component:   "schema",
		Remediation: "Describe the requirement, how it is enforced, the automated check and where evidence is kept.",
	},
	UnknownService: {
		Title:       "Enforcing service is not a recognised AWS service",
		Level:       "warning",
		Component:   "schema",
		Remediation: "Use the canonical service name or add it to validate.known_services in .ctrlmatrix.yaml.",
	},
	UnknownFramework: {
		Title:       "Compliance mapping names an unknown framework",
		Level:       "warning",
		Component:   "schema",
		Remediation: "Reference ISO 27001, SOC 2, NIST CSF, PCI DSS or GDPR, or add the framework to validate.known_frameworks.",
	},
	MissingService: {
		Title:       "Control matrix row has no enforcing service",
		Level:       "warning",
		Component:   "schema",
		Remediation: "Name the AWS service or feature that enforces the control.",
	},
	UnmappedRequirement: {
		Title:       "Requirement is not mapped in the control matrix",
		Level:       "error",
		Component:   "xref",
		Remediation: "Add a control matrix row for the requirement, or run ctrlmatrix generate to scaffold one.",
	},
	InvalidReference: {
		Title:       "Control matrix references a requirement that does not exist",
		Level:       "error",
		Component:   "xref",
		Remediation: "Correct the requirement ID or remove the row if the requirement was retired.",
	},
	DuplicateMapping: {
		Title:       "Requirement is mapped more than once",
		Level:       "warning",
		Component:   "xref",
		Remediation: "Merge the rows or confirm that several controls intentionally enforce the same requirement.",
	},
	InvalidEvidenceURL: {
		Title:       "Evidence artifact URL has no host",
		Level:       "error",
		Component:   "evidence",
		Remediation: "Use an absolute URL such as https://console.aws.amazon.com/...",
	},
	InvalidEvidenceARN: {
		Title:       "Evidence artifact ARN is malformed",
		Level:       "error",
		Component:   "evidence",
		Remediation: "Use the form arn:aws:<service>:<region>:<account>:<resource>.",
	},
	UnclearDashboardRef: {
		Title:       "Evidence artifact may not reference a specific dashboard",
		Level:       "warning",
		Component:   "evidence",
		Remediation: "Include the dashboard name, for example \"CloudWatch dashboard: sec-001-monitoring\".",
	},
	UnclearEvidencePath: {
		Title:       "Evidence artifact path is neither absolute nor relative",
		Level:       "warning",
		Component:   "evidence",
		Remediation: "Prefix repository paths with ./ or use an absolute path.",
	},
}

// Catalog returns the metadata of every issue code keyed by code. The map is
// a fresh copy.
func Catalog() map[string]CodeMeta {
	out := make(map[string]CodeMeta, len(codes))
	for id, meta := range codes {
		meta.ID = id
		out[id] = meta
	}
	return out
}

// Lookup returns the metadata for code.
func Lookup(code string) (CodeMeta, bool) {
	meta, ok := codes[code]
	if ok {
		meta.ID = code
	}
	return meta, ok
}

// Codes returns every registered code in sorted order.
func Codes() []string {
	ids := make([]string, 0, len(codes))
	for id := range codes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
