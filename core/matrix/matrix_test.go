package matrix

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const header = "Requirement ID,Requirement Description,AWS Service/Feature,How Enforced/Configured,Automated Check/Test,Evidence Artifact,Compliance Mapping\n"

func TestRead(t *testing.T) {
	t.Parallel()

	input := header +
		"SEC-001.1, Least privilege ,IAM,IAM policy,IAM Access Analyzer,/evidence/iam.json,\"ISO 27001, SOC 2\"\n" +
		"SEC-001.2,Secrets rotation,Secrets Manager,Rotation,Config rule,,\n"

	m, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Entries))
	}
	if len(m.Warnings()) != 0 {
		t.Fatalf("expected no warnings, got %v", m.Warnings())
	}

	want := Entry{
		Row:               2,
		RequirementID:     "SEC-001.1",
		Description:       "Least privilege",
		Service:           "IAM",
		EnforcementMethod: "IAM policy",
		AutomatedCheck:    "IAM Access Analyzer",
		EvidenceArtifact:  "/evidence/iam.json",
		ComplianceMapping: "ISO 27001, SOC 2",
	}
	if m.Entries[0] != want {
		t.Errorf("entry 0 = %+v, want %+v", m.Entries[0], want)
	}
	if m.Entries[1].Row != 3 {
		t.Errorf("entry 1 row = %d, want 3", m.Entries[1].Row)
	}
	if m.Entries[1].EvidenceArtifact != "" {
		t.Errorf("expected empty evidence, got %q", m.Entries[1].EvidenceArtifact)
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	t.Parallel()

	m, err := Read(strings.NewReader(header))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Entries) != 0 || len(m.Warnings()) != 0 {
		t.Fatalf("expected empty matrix, got %+v", m)
	}
}

func TestRead_EmptyInput(t *testing.T) {
	t.Parallel()

	m, err := Read(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Entries) != 0 || len(m.Warnings()) != 0 {
		t.Fatalf("expected empty matrix, got %+v", m)
	}
}

func TestRead_RequirementAliasAndShortRows(t *testing.T) {
	t.Parallel()

	input := "\ufeffRequirement,Requirement Description,AWS Service/Feature,How Enforced/Configured,Automated Check/Test,Evidence Artifact\n" +
		"NFR-001.1,Availability\n"

	m, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.Entries))
	}
	e := m.Entries[0]
	if e.RequirementID != "NFR-001.1" || e.Description != "Availability" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Service != "" || e.ComplianceMapping != "" {
		t.Errorf("expected missing cells to be empty, got %+v", e)
	}
}

func TestRead_MissingColumnsWarn(t *testing.T) {
	t.Parallel()

	m, err := Read(strings.NewReader("Requirement ID,Requirement Description\nSEC-001.1,x\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Warnings()) != 4 {
		t.Fatalf("expected 4 missing column warnings, got %v", m.Warnings())
	}
	if m.Warnings()[0] != "Control matrix header missing column: AWS Service/Feature" {
		t.Errorf("unexpected first warning %q", m.Warnings()[0])
	}
}

func TestRead_SkipsUndecodableRow(t *testing.T) {
	t.Parallel()

	input := header +
		"SEC-001.1,ok,IAM,m,c,e,\n" +
		"SEC-001.2,bad \xff\xfe bytes,IAM,m,c,e,\n" +
		"SEC-001.3,ok,IAM,m,c,e,\n"

	m, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Entries))
	}
	if len(m.Skipped) != 1 || m.Skipped[0].Row != 3 {
		t.Errorf("Skipped = %+v, want row 3", m.Skipped)
	}
	if len(m.Warnings()) != 1 || !strings.HasPrefix(m.Warnings()[0], "Row 3: skipped undecodable row") {
		t.Errorf("unexpected warnings %v", m.Warnings())
	}
	if m.Entries[1].Row != 4 {
		t.Errorf("row numbers must follow the source, got %d", m.Entries[1].Row)
	}
}

func TestLoad_NotFound(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	var nf *MatrixNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected MatrixNotFoundError, got %v", err)
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{
			Row:               2,
			RequirementID:     "SEC-001.1",
			Description:       "Contains, a comma and \"quotes\"",
			Service:           "IAM",
			EnforcementMethod: "IAM policy configuration",
			AutomatedCheck:    "IAM Access Analyzer",
			EvidenceArtifact:  "CloudTrail logs: arn:aws:logs:*:*:log-group:/aws/cloudtrail/*",
			ComplianceMapping: "ISO 27001 A.9.2.3",
		},
		{
			Row:               3,
			RequirementID:     "OBS-001.1",
			Description:       "Logging",
			Service:           "CloudWatch",
			EnforcementMethod: "CloudWatch configuration",
			AutomatedCheck:    "CloudWatch metrics and alarms",
			EvidenceArtifact:  "CloudWatch dashboard: obs-001.1-monitoring",
		},
	}

	path := filepath.Join(t.TempDir(), "out", "matrix.csv")
	if err := Save(path, entries); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(m.Entries, entries) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", m.Entries, entries)
	}
	if m.Path != path {
		t.Errorf("Path = %q, want %q", m.Path, path)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".ctrlmatrix-*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestWrite_Header(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != header {
		t.Fatalf("header = %q, want %q", buf.String(), header)
	}
}

func TestRequirementIDs(t *testing.T) {
	t.Parallel()

	got := RequirementIDs([]Entry{{RequirementID: "A"}, {}, {RequirementID: "A"}})
	if !reflect.DeepEqual(got, []string{"A", "A"}) {
		t.Fatalf("RequirementIDs = %v", got)
	}
}

func TestLoad_Permissions(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("root can read unreadable files")
	}
	path := filepath.Join(t.TempDir(), "locked.csv")
	if err := os.WriteFile(path, []byte(header), 0o000); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var nf *MatrixNotFoundError
	if err == nil || errors.As(err, &nf) {
		t.Fatalf("expected a non-NotFound error, got %v", err)
	}
}
