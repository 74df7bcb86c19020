package compliance

import (
	"regexp"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

// Reference density bounds for a consistent matrix: mapped controls should
// cite at least one and at most ten framework controls on average.
const (
	MinAverageReferences = 1.0
	MaxAverageReferences = 10.0
)

// Domain is a security domain every matrix is expected to address, detected
// by keyword.
type Domain struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

var domains = []Domain{
	{"access_control", []string{"access", "authentication", "authorization", "identity"}},
	{"data_protection", []string{"encryption", "data", "protection", "confidentiality"}},
	{"logging_monitoring", []string{"logging", "monitoring", "audit", "detection"}},
	{"incident_response", []string{"incident", "response", "recovery", "continuity"}},
	{"change_management", []string{"change", "deployment", "configuration", "version"}},
	{"vulnerability_management", []string{"vulnerability", "patch", "security", "scanning"}},
}

// Domains returns a copy of the security domains checked by Analyze.
func Domains() []Domain {
	out := make([]Domain, len(domains))
	for i, d := range domains {
		out[i] = Domain{Name: d.Name, Keywords: append([]string(nil), d.Keywords...)}
	}
	return out
}

// documentationKeywords mark evidence artifacts that point at written
// policies or procedures.
var documentationKeywords = []string{"policy", "procedure", "document", "guide", "manual", "standard"}

var (
	socReferenceRe = regexp.MustCompile(`CC\d+\.\d+`)
	requirementRe  = regexp.MustCompile(`\d+\.\d+`)
)

// DomainCoverage counts entries addressing a security domain.
type DomainCoverage struct {
	Domain   string `json:"domain"`
	Controls int    `json:"controls"`
}

// Analysis summarises the compliance posture of a control matrix.
type Analysis struct {
	Frameworks            []Coverage `json:"frameworks"`
	FrameworksRepresented int        `json:"frameworks_represented"`

	// MappedControls counts entries citing at least one framework control;
	// AverageReferences is the mean number of citations among them.
	MappedControls    int     `json:"mapped_controls"`
	AverageReferences float64 `json:"average_references"`
	Consistent        bool    `json:"consistent"`

	// Traceability is the share of entries that cite a framework control or
	// a requirement number.
	Traceability float64 `json:"traceability"`

	Domains    []DomainCoverage `json:"domains"`
	DomainGaps []string         `json:"domain_gaps"`

	// Documentation is the share of entries whose evidence artifact points
	// at a policy, procedure or similar document.
	Documentation float64 `json:"documentation"`
}

// Analyze computes framework coverage and the matrix-wide compliance
// indicators for entries. fws defaults to every built-in framework.
func Analyze(entries []matrix.Entry, fws ...Framework) *Analysis {
	a := &Analysis{
		Frameworks: ScoreAll(entries, fws...),
		Domains:    make([]DomainCoverage, 0, len(domains)),
		DomainGaps: []string{},
		Consistent: true,
	}
	for _, c := range a.Frameworks {
		if c.Represented {
			a.FrameworksRepresented++
		}
	}

	var refs, traced, documented int
	for _, e := range entries {
		n := referenceCount(e)
		if n > 0 {
			a.MappedControls++
			refs += n
		}
		if traceable(e) {
			traced++
		}
		if containsAny(strings.ToLower(e.EvidenceArtifact), documentationKeywords) {
			documented++
		}
	}
	if a.MappedControls > 0 {
		a.AverageReferences = float64(refs) / float64(a.MappedControls)
		a.Consistent = a.AverageReferences >= MinAverageReferences && a.AverageReferences <= MaxAverageReferences
	}
	if len(entries) > 0 {
		a.Traceability = float64(traced) / float64(len(entries))
		a.Documentation = float64(documented) / float64(len(entries))
	}

	for _, d := range domains {
		dc := DomainCoverage{Domain: d.Name}
		for _, e := range entries {
			if containsAny(strings.ToLower(e.Text()), d.Keywords) {
				dc.Controls++
			}
		}
		if dc.Controls == 0 {
			a.DomainGaps = append(a.DomainGaps, d.Name)
		}
		a.Domains = append(a.Domains, dc)
	}
	return a
}

// referenceCount counts every framework control citation in the entry,
// including repeats.
func referenceCount(e matrix.Entry) int {
	n := 0
	for _, field := range e.Fields() {
		for _, fw := range builtin {
			n += len(fw.pattern.FindAllStringIndex(field, -1))
		}
	}
	return n
}

func traceable(e matrix.Entry) bool {
	iso, _ := Lookup(string(ISO27001))
	nist, _ := Lookup(string(NISTCSF))
	for _, field := range e.Fields() {
		if iso.pattern.MatchString(field) ||
			socReferenceRe.MatchString(field) ||
			nist.pattern.MatchString(field) ||
			requirementRe.MatchString(field) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
