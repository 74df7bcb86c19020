// Package compliance scores how well a control matrix covers the critical
// controls of compliance frameworks (ISO 27001, SOC 2, NIST CSF). Control
// references are recognised by token pattern anywhere in an entry's text, so
// matrices may cite controls in a dedicated column or inline in prose.
package compliance

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

// FrameworkID identifies a compliance framework.
type FrameworkID string

// Built-in frameworks.
const (
	ISO27001 FrameworkID = "ISO27001"
	SOC2     FrameworkID = "SOC2"
	NISTCSF  FrameworkID = "NISTCSF"
)

// Framework is an immutable framework definition. Values are obtained from
// Frameworks or Lookup; accessors return copies of the underlying data.
type Framework struct {
	ID FrameworkID
	// Name is the conventional name used in compliance mapping columns.
	Name string

	literal     string
	pattern     *regexp.Regexp
	represented *regexp.Regexp
	critical    []string
	controls    map[string]string
}

// Pattern returns the regular expression matching the framework's control
// tokens.
func (f Framework) Pattern() string { return f.pattern.String() }

// Critical returns the critical control IDs in their canonical order.
func (f Framework) Critical() []string {
	return append([]string(nil), f.critical...)
}

// Title returns the title of a control in the framework catalog.
func (f Framework) Title(controlID string) (string, bool) {
	t, ok := f.controls[controlID]
	return t, ok
}

// Controls returns the framework catalog sorted by control ID.
func (f Framework) Controls() []Control {
	out := make([]Control, 0, len(f.controls))
	for id, title := range f.controls {
		out = append(out, Control{Framework: f.ID, ID: id, Title: title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Control is a single control within a framework.
type Control struct {
	Framework FrameworkID `json:"framework"`
	ID        string      `json:"control_id"`
	Title     string      `json:"title"`
}

func newFramework(id FrameworkID, name, literal, pattern string, critical []string, controls map[string]string) Framework {
	return Framework{
		ID:          id,
		Name:        name,
		literal:     literal,
		pattern:     regexp.MustCompile(pattern),
		represented: regexp.MustCompile(`(?i)` + pattern),
		critical:    critical,
		controls:    controls,
	}
}

var builtin = []Framework{
	newFramework(ISO27001, "ISO 27001", "iso", `A\.\d+\.\d+\.\d+`,
		[]string{"A.9.1.1", "A.9.2.4", "A.10.1.1", "A.12.1.2", "A.12.4.1", "A.12.6.1", "A.13.1.1", "A.14.2.1", "A.16.1.1"},
		iso27001Controls),
	newFramework(SOC2, "SOC 2", "soc", `CC\d+\.\d+|A\d+\.\d+|PI\d+\.\d+`,
		[]string{"CC6.1", "CC6.2", "CC6.3", "CC6.7", "CC7.1", "CC7.4", "CC8.1"},
		soc2Controls),
	newFramework(NISTCSF, "NIST CSF", "nist", `[A-Z]{2}\.[A-Z]{2}-\d+`,
		[]string{"PR.AC-1", "PR.AC-4", "PR.DS-1", "PR.DS-2", "PR.IP-2", "PR.IP-3", "PR.PT-1", "DE.CM-1", "RS.RP-1"},
		nistCSFControls),
}

// Frameworks returns the built-in frameworks.
func Frameworks() []Framework {
	return append([]Framework(nil), builtin...)
}

// Lookup finds a framework by ID or name, ignoring case, spaces, dashes and
// underscores ("iso-27001", "SOC 2" and "nistcsf" all resolve).
func Lookup(name string) (Framework, bool) {
	key := normalize(name)
	for _, f := range builtin {
		if normalize(string(f.ID)) == key || normalize(f.Name) == key {
			return f, true
		}
	}
	return Framework{}, false
}

func normalize(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToUpper(s))
}

// MatchTokens returns the unique control tokens of fw found in text, sorted.
func MatchTokens(fw Framework, text string) []string {
	seen := make(map[string]struct{})
	for _, m := range fw.pattern.FindAllString(text, -1) {
		seen[m] = struct{}{}
	}
	return sortedKeys(seen)
}

// Coverage is the critical-control coverage of one framework.
type Coverage struct {
	Framework       FrameworkID `json:"framework"`
	Name            string      `json:"name"`
	Matched         []string    `json:"matched"`
	CriticalMatched []string    `json:"critical_matched"`
	CriticalMissing []string    `json:"critical_missing"`
	CriticalTotal   int         `json:"critical_total"`
	// Ratio is |matched ∩ critical| / |critical|, or 1 when the framework
	// defines no critical controls.
	Ratio       float64 `json:"ratio"`
	Represented bool    `json:"represented"`
}

// Score computes the coverage of fw across every field of every entry.
func Score(fw Framework, entries []matrix.Entry) Coverage {
	seen := make(map[string]struct{})
	for _, e := range entries {
		for _, field := range e.Fields() {
			for _, m := range fw.pattern.FindAllString(field, -1) {
				seen[m] = struct{}{}
			}
		}
	}

	c := Coverage{
		Framework:       fw.ID,
		Name:            fw.Name,
		Matched:         sortedKeys(seen),
		CriticalMatched: []string{},
		CriticalMissing: []string{},
		CriticalTotal:   len(fw.critical),
		Represented:     Represented(fw, entries),
	}
	for _, id := range fw.critical {
		if _, ok := seen[id]; ok {
			c.CriticalMatched = append(c.CriticalMatched, id)
		} else {
			c.CriticalMissing = append(c.CriticalMissing, id)
		}
	}
	c.Ratio = 1
	if c.CriticalTotal > 0 {
		c.Ratio = float64(len(c.CriticalMatched)) / float64(c.CriticalTotal)
	}
	return c
}

// ScoreAll scores each framework in fws, or every built-in framework when
// fws is empty.
func ScoreAll(entries []matrix.Entry, fws ...Framework) []Coverage {
	if len(fws) == 0 {
		fws = builtin
	}
	out := make([]Coverage, 0, len(fws))
	for _, fw := range fws {
		out = append(out, Score(fw, entries))
	}
	return out
}

// Represented reports whether any field of entries references fw, either by
// a control token in any letter case or by the framework's name literal
// ("iso", "soc", "nist").
func Represented(fw Framework, entries []matrix.Entry) bool {
	for _, e := range entries {
		for _, field := range e.Fields() {
			if field == "" {
				continue
			}
			if fw.represented.MatchString(field) || strings.Contains(strings.ToLower(field), fw.literal) {
				return true
			}
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
