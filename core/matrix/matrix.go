// Package matrix loads and writes control matrices: CSV tables mapping each
// production-readiness requirement to the service, enforcement mechanism,
// automated check and evidence that satisfy it.
package matrix

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Column headers of a control matrix CSV file.
const (
	ColumnRequirementID     = "Requirement ID"
	ColumnDescription       = "Requirement Description"
	ColumnService           = "AWS Service/Feature"
	ColumnEnforcementMethod = "How Enforced/Configured"
	ColumnAutomatedCheck    = "Automated Check/Test"
	ColumnEvidenceArtifact  = "Evidence Artifact"
	ColumnComplianceMapping = "Compliance Mapping"

	// columnRequirementAlias is accepted in place of ColumnRequirementID.
	columnRequirementAlias = "Requirement"
)

// Columns lists the headers in the order Write emits them.
var Columns = []string{
	ColumnRequirementID,
	ColumnDescription,
	ColumnService,
	ColumnEnforcementMethod,
	ColumnAutomatedCheck,
	ColumnEvidenceArtifact,
	ColumnComplianceMapping,
}

// Entry is one control matrix row. Values are trimmed; absent cells are
// empty strings. Row is the 1-based CSV record number with the header as
// row 1, so the first entry is row 2.
type Entry struct {
	Row               int    `json:"row"`
	RequirementID     string `json:"requirement_id"`
	Description       string `json:"description"`
	Service           string `json:"enforcing_service"`
	EnforcementMethod string `json:"enforcement_method"`
	AutomatedCheck    string `json:"automated_check"`
	EvidenceArtifact  string `json:"evidence_artifact"`
	ComplianceMapping string `json:"compliance_mapping,omitempty"`
}

// Fields returns every text value of the entry in column order.
func (e Entry) Fields() []string {
	return []string{
		e.RequirementID,
		e.Description,
		e.Service,
		e.EnforcementMethod,
		e.AutomatedCheck,
		e.EvidenceArtifact,
		e.ComplianceMapping,
	}
}

// RowNumber returns the source row of the entry at index i: its recorded
// Row, or i+2 for entries built without one.
func RowNumber(i int, e Entry) int {
	if e.Row > 0 {
		return e.Row
	}
	return i + 2
}

// Text returns all field values joined by single spaces.
func (e Entry) Text() string {
	return strings.Join(e.Fields(), " ")
}

// Matrix is a loaded control matrix.
type Matrix struct {
	Path    string
	Entries []Entry
	// Skipped lists rows that could not be decoded. They are not present
	// in Entries.
	Skipped []SkippedRow
	// MissingColumns lists required headers absent from the file.
	MissingColumns []string
}

// SkippedRow records a row dropped during loading.
type SkippedRow struct {
	Row    int
	Reason string
}

// Warnings formats the loader problems as messages, header problems first.
func (m *Matrix) Warnings() []string {
	out := make([]string, 0, len(m.MissingColumns)+len(m.Skipped))
	for _, c := range m.MissingColumns {
		out = append(out, MissingColumnMessage(c))
	}
	for _, s := range m.Skipped {
		out = append(out, s.Message())
	}
	return out
}

// Message returns the warning text for the skipped row.
func (s SkippedRow) Message() string {
	return fmt.Sprintf("Row %d: skipped undecodable row: %s", s.Row, s.Reason)
}

// MissingColumnMessage returns the warning text for an absent header.
func MissingColumnMessage(column string) string {
	return fmt.Sprintf("Control matrix header missing column: %s", column)
}

// MatrixNotFoundError is returned by Load when the matrix file is missing.
type MatrixNotFoundError struct {
	Path string
}

func (e *MatrixNotFoundError) Error() string {
	return fmt.Sprintf("control matrix not found: %s", e.Path)
}

// Load reads the control matrix at path.
func Load(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MatrixNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("opening control matrix %s: %w", path, err)
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading control matrix %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Read parses a control matrix from r. Rows that are not valid CSV or not
// valid UTF-8 are skipped with a warning; only failures of r itself are
// returned as errors. An input without a header yields an empty matrix.
func Read(r io.Reader) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	m := &Matrix{}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	cols := indexHeader(header)
	m.MissingColumns = cols.missing()

	row := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, err
			}
			m.skip(row, pe.Err.Error())
			continue
		}
		if !validUTF8(record) {
			m.skip(row, "invalid UTF-8")
			continue
		}
		m.Entries = append(m.Entries, cols.entry(row, record))
	}
	return m, nil
}

func (m *Matrix) skip(row int, reason string) {
	m.Skipped = append(m.Skipped, SkippedRow{Row: row, Reason: reason})
}

func validUTF8(record []string) bool {
	for _, v := range record {
		if !utf8.ValidString(v) {
			return false
		}
	}
	return true
}

// columns maps each known header to its record index, or -1 if absent.
type columns struct {
	id, desc, service, method, check, evidence, mapping int
}

func indexHeader(header []string) columns {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	lookup := func(names ...string) int {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i
			}
		}
		return -1
	}
	return columns{
		id:       lookup(ColumnRequirementID, columnRequirementAlias),
		desc:     lookup(ColumnDescription),
		service:  lookup(ColumnService),
		method:   lookup(ColumnEnforcementMethod),
		check:    lookup(ColumnAutomatedCheck),
		evidence: lookup(ColumnEvidenceArtifact),
		mapping:  lookup(ColumnComplianceMapping),
	}
}

// missing returns required headers absent from the file. Compliance Mapping
// is optional.
func (c columns) missing() []string {
	var out []string
	for _, col := range []struct {
		name string
		idx  int
	}{
		{ColumnRequirementID, c.id},
		{ColumnDescription, c.desc},
		{ColumnService, c.service},
		{ColumnEnforcementMethod, c.method},
		{ColumnAutomatedCheck, c.check},
		{ColumnEvidenceArtifact, c.evidence},
	} {
		if col.idx < 0 {
			out = append(out, col.name)
		}
	}
	return out
}

func (c columns) entry(row int, record []string) Entry {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return Entry{
		Row:               row,
		RequirementID:     get(c.id),
		Description:       get(c.desc),
		Service:           get(c.service),
		EnforcementMethod: get(c.method),
		AutomatedCheck:    get(c.check),
		EvidenceArtifact:  get(c.evidence),
		ComplianceMapping: get(c.mapping),
	}
}

// Write emits entries as CSV with the standard header. Loading the output
// yields the same entries.
func Write(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(e.Fields()); err != nil {
			return fmt.Errorf("writing %s: %w", e.RequirementID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes entries to path using atomic temp-file + rename.
func Save(path string, entries []Entry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating matrix directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ctrlmatrix-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Write(tmp, entries); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming matrix file: %w", err)
	}
	return nil
}

// RequirementIDs returns the non-empty requirement IDs of entries, in row
// order, including duplicates.
func RequirementIDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.RequirementID != "" {
			ids = append(ids, e.RequirementID)
		}
	}
	return ids
}
