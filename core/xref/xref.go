// Package xref cross-references the requirement IDs extracted from a
// requirements document with the IDs a control matrix maps. It reports
// requirements without a control, controls citing unknown requirements,
// requirements mapped more than once, and the resulting coverage ratio.
package xref

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nox-hq/ctrlmatrix/core/catalog"
	"github.com/nox-hq/ctrlmatrix/core/issues"
	"github.com/nox-hq/ctrlmatrix/core/matrix"
	"github.com/nox-hq/ctrlmatrix/core/requirements"
)

// Duplicate is a requirement ID appearing on more than one matrix row.
type Duplicate struct {
	RequirementID string `json:"requirement_id"`
	Count         int    `json:"count"`
	Rows          []int  `json:"rows"`
}

// Result is the outcome of a cross-reference pass. Slices are sorted by
// requirement ID and never nil.
type Result struct {
	// Unmapped holds document requirements with no matrix entry.
	Unmapped []string `json:"unmapped"`
	// Invalid holds matrix requirement IDs absent from the document.
	Invalid    []string    `json:"invalid_references"`
	Duplicates []Duplicate `json:"duplicates"`

	TotalRequirements int `json:"total_requirements"`
	Mapped            int `json:"mapped"`
	// Coverage is |mapped ∩ document| / |document|, or 1 when the document
	// declares no requirements.
	Coverage float64 `json:"coverage"`

	rows map[string][]int
}

// Resolve compares reqs with the requirement IDs of entries. Entries with an
// empty requirement ID are ignored.
func Resolve(reqs requirements.Set, entries []matrix.Entry) *Result {
	rows := make(map[string][]int)
	for i, e := range entries {
		if e.RequirementID == "" {
			continue
		}
		rows[e.RequirementID] = append(rows[e.RequirementID], matrix.RowNumber(i, e))
	}

	r := &Result{
		Unmapped:          []string{},
		Invalid:           []string{},
		Duplicates:        []Duplicate{},
		TotalRequirements: reqs.Len(),
		rows:              rows,
	}

	for id := range reqs {
		if _, ok := rows[id]; ok {
			r.Mapped++
		} else {
			r.Unmapped = append(r.Unmapped, id)
		}
	}
	for id, rr := range rows {
		if !reqs.Has(id) {
			r.Invalid = append(r.Invalid, id)
		}
		if len(rr) > 1 {
			r.Duplicates = append(r.Duplicates, Duplicate{RequirementID: id, Count: len(rr), Rows: rr})
		}
	}
	sort.Strings(r.Unmapped)
	sort.Strings(r.Invalid)
	sort.Slice(r.Duplicates, func(i, j int) bool {
		return r.Duplicates[i].RequirementID < r.Duplicates[j].RequirementID
	})

	r.Coverage = 1
	if r.TotalRequirements > 0 {
		r.Coverage = float64(r.Mapped) / float64(r.TotalRequirements)
	}
	return r
}

// Issues renders the result as issues: unmapped requirement errors, then
// invalid reference errors, then duplicate warnings.
func (r *Result) Issues() *issues.Set {
	set := issues.NewSet()
	for _, id := range r.Unmapped {
		set.Add(issues.Issue{
			Code:          catalog.UnmappedRequirement,
			Level:         issues.LevelError,
			RequirementID: id,
			Message:       fmt.Sprintf("PRR requirement not mapped in control matrix: %s", id),
		})
	}
	for _, id := range r.Invalid {
		set.Add(issues.Issue{
			Code:          catalog.InvalidReference,
			Level:         issues.LevelError,
			Row:           firstRow(r.rows[id]),
			RequirementID: id,
			Message:       fmt.Sprintf("Control matrix references non-existent requirement: %s", id),
		})
	}
	for _, d := range r.Duplicates {
		set.Add(issues.Issue{
			Code:          catalog.DuplicateMapping,
			Level:         issues.LevelWarning,
			Row:           firstRow(d.Rows),
			RequirementID: d.RequirementID,
			Message:       fmt.Sprintf("Requirement %s mapped %d times", d.RequirementID, d.Count),
			Metadata:      map[string]string{"count": strconv.Itoa(d.Count)},
		})
	}
	return set
}

// Errors returns the error messages of the result.
func (r *Result) Errors() []string { return r.Issues().Errors() }

// Warnings returns the warning messages of the result.
func (r *Result) Warnings() []string { return r.Issues().Warnings() }

func firstRow(rows []int) int {
	if len(rows) == 0 {
		return 0
	}
	return rows[0]
}
