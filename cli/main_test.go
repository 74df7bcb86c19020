package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nox-hq/ctrlmatrix/core/matrix"
	"github.com/nox-hq/ctrlmatrix/core/report"
)

const testDoc = `# Requirements

#### SEC-001.1 Least Privilege
- **Requirement**: Roles grant only required permissions.

#### SEC-002.1 Secrets Rotation
- **Requirement**: Secrets rotate automatically.
`

const (
	testHeader = "Requirement ID,Requirement Description,AWS Service/Feature,How Enforced/Configured,Automated Check/Test,Evidence Artifact,Compliance Mapping\n"
	rowSEC0011 = "SEC-001.1,Least privilege roles,IAM,IAM policy,IAM Access Analyzer,/evidence/iam.json,ISO 27001 A.9.2.3\n"
	rowSEC0021 = "SEC-002.1,Secrets rotation,Secrets Manager,Rotation function,AWS Config Rule: secretsmanager-rotation-enabled-check,https://console.aws.amazon.com/secretsmanager,SOC 2 CC6.1\n"
	rowStray   = "SEC-009.1,Stray control,Mainframe,Policy,Check,/evidence/x.json,\n"
)

// writeInputs writes a PRR document and a control matrix into a temp dir.
func writeInputs(t *testing.T, doc, csv string) (dir, prr, mat string) {
	t.Helper()
	dir = t.TempDir()
	prr = filepath.Join(dir, "prr.md")
	mat = filepath.Join(dir, "matrix.csv")
	if err := os.WriteFile(prr, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing PRR: %v", err)
	}
	if err := os.WriteFile(mat, []byte(csv), 0o644); err != nil {
		t.Fatalf("writing matrix: %v", err)
	}
	return dir, prr, mat
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".ctrlmatrix.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func readJSONReport(t *testing.T, path string) report.JSONReport {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var rep report.JSONReport
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	return rep
}

func TestRun_VersionFlag(t *testing.T) {
	code := run([]string{"--version"})
	if code != 0 {
		t.Fatalf("expected exit code 0 for --version, got %d", code)
	}
}

func TestRun_VersionCommand(t *testing.T) {
	code := run([]string{"version"})
	if code != 0 {
		t.Fatalf("expected exit code 0 for version command, got %d", code)
	}
}

func TestRun_NoArgs(t *testing.T) {
	code := run([]string{})
	if code != 2 {
		t.Fatalf("expected exit code 2 for no args, got %d", code)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code := run([]string{"invalid"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for unknown command, got %d", code)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "validate: [unclosed\n")
	code := run([]string{"--config", cfg, "validate", "--prr", "x", "--matrix", "y"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for invalid config, got %d", code)
	}
}

func TestRun_ValidateMissingFlags(t *testing.T) {
	tests := [][]string{
		{"validate"},
		{"validate", "--prr", "prr.md"},
		{"validate", "--matrix", "matrix.csv"},
		{"validate", "--bogus"},
	}
	for _, args := range tests {
		if code := run(args); code != 2 {
			t.Errorf("run(%v) = %d, want 2", args, code)
		}
	}
}

func TestRun_ValidatePasses(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
	out := filepath.Join(dir, "out", "report.json")

	code := run([]string{"--quiet", "validate", "--prr", prr, "--matrix", mat, "--output", out})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	rep := readJSONReport(t, out)
	if rep.ValidationStatus != report.StatusPassed {
		t.Errorf("status = %s, want PASSED", rep.ValidationStatus)
	}
	if len(rep.Matrices) != 1 || rep.Matrices[0].PRRFile != prr {
		t.Errorf("unexpected matrices %+v", rep.Matrices)
	}
}

func TestRun_ValidateFails(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowStray)
	out := filepath.Join(dir, "report.json")

	code := run([]string{"--quiet", "validate", "--prr", prr, "--matrix", mat, "--output", out})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	mr := readJSONReport(t, out).Matrices[0]
	want := []string{
		"PRR requirement not mapped in control matrix: SEC-002.1",
		"Control matrix references non-existent requirement: SEC-009.1",
	}
	if !reflect.DeepEqual(mr.Errors, want) {
		t.Errorf("errors = %v, want %v", mr.Errors, want)
	}
	if mr.CoverageStats["coverage_percentage"] != 50 {
		t.Errorf("coverage = %v, want 50", mr.CoverageStats["coverage_percentage"])
	}
}

func TestRun_ValidateMissingInputs(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011)

	tests := []struct {
		name string
		prr  string
		mat  string
	}{
		{"missing PRR", filepath.Join(dir, "nope.md"), mat},
		{"missing matrix", prr, filepath.Join(dir, "nope.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := run([]string{"--quiet", "validate", "--prr", tt.prr, "--matrix", tt.mat})
			if code != 2 {
				t.Fatalf("expected exit code 2, got %d", code)
			}
		})
	}
}

func TestRun_ValidateMultipleMatrices(t *testing.T) {
	dir, prr, good := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte(testHeader+rowSEC0011), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "report.json")

	code := run([]string{"--quiet", "validate", "--prr", prr, "--matrix", good + "," + bad, "--output", out})
	if code != 1 {
		t.Fatalf("expected exit code 1 when any matrix fails, got %d", code)
	}
	rep := readJSONReport(t, out)
	if len(rep.Matrices) != 2 {
		t.Fatalf("expected 2 matrix sections, got %d", len(rep.Matrices))
	}
	if rep.Matrices[0].ValidationStatus != report.StatusPassed || rep.Matrices[1].ValidationStatus != report.StatusFailed {
		t.Errorf("unexpected statuses %s / %s", rep.Matrices[0].ValidationStatus, rep.Matrices[1].ValidationStatus)
	}
}

func TestRun_ValidateSarifOutput(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011)
	out := filepath.Join(dir, "results.sarif")

	code := run([]string{"--quiet", "validate", "--prr", prr, "--matrix", mat, "--sarif-output", out})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected SARIF file: %v", err)
	}
	if !strings.Contains(string(data), `"version": "2.1.0"`) {
		t.Error("expected SARIF 2.1.0 document")
	}
}

func TestRun_ValidateOutputDirectoryFromConfig(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
	outDir := filepath.Join(dir, "reports")
	cfg := writeConfig(t, dir, "output:\n  directory: "+outDir+"\n")

	code := run([]string{"--quiet", "--config", cfg, "validate", "--prr", prr, "--matrix", mat})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	for _, name := range []string{"report.json", "results.sarif"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRun_ValidatePolicyFailOnWarnings(t *testing.T) {
	csv := testHeader + rowSEC0011 +
		"SEC-002.1,Secrets rotation,Mainframe,Rotation function,Rotation check,/evidence/rotation.json,\n"
	dir, prr, mat := writeInputs(t, testDoc, csv)

	if code := run([]string{"--quiet", "validate", "--prr", prr, "--matrix", mat}); code != 0 {
		t.Fatalf("warnings alone should pass, got %d", code)
	}

	cfg := writeConfig(t, dir, "policy:\n  fail_on_warnings: true\n")
	if code := run([]string{"--quiet", "--config", cfg, "validate", "--prr", prr, "--matrix", mat}); code != 1 {
		t.Fatalf("expected exit code 1 with fail_on_warnings, got %d", code)
	}
}

func TestRun_ValidateUnknownFramework(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
	cfg := writeConfig(t, dir, "compliance:\n  frameworks: [hipaa]\n")

	code := run([]string{"--quiet", "--config", cfg, "validate", "--prr", prr, "--matrix", mat})
	if code != 2 {
		t.Fatalf("expected exit code 2 for unknown framework, got %d", code)
	}
}

func TestRun_ValidateUnknownFormat(t *testing.T) {
	tests := []struct {
		name   string
		config string
		args   []string
	}{
		{"flag", "", []string{"--format", "xml"}},
		{"quiet", "", []string{"--format", "json,xml"}},
		{"config", "output:\n  format: xml\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
			global := []string{"--quiet"}
			if tt.config != "" {
				global = append(global, "--config", writeConfig(t, dir, tt.config))
			}
			out := filepath.Join(dir, "report.json")
			args := append(global, "validate", "--prr", prr, "--matrix", mat, "--output", out)
			if code := run(append(args, tt.args...)); code != 2 {
				t.Fatalf("expected exit code 2 for unknown format, got %d", code)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("no report should be written for a rejected format, stat err = %v", err)
			}
		})
	}
}

func TestRun_GenerateWritesMatrix(t *testing.T) {
	dir, prr, _ := writeInputs(t, testDoc, "")
	out := filepath.Join(dir, "generated", "matrix.csv")

	code := run([]string{"--quiet", "generate", "--prr", prr, "--output", out})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	m, err := matrix.Load(out)
	if err != nil {
		t.Fatalf("loading generated matrix: %v", err)
	}
	ids := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		ids = append(ids, e.RequirementID)
	}
	if !reflect.DeepEqual(ids, []string{"SEC-001.1", "SEC-002.1"}) {
		t.Errorf("generated IDs = %v", ids)
	}
}

func TestRun_GenerateRefusesOverwrite(t *testing.T) {
	_, prr, mat := writeInputs(t, testDoc, "keep me\n")

	if code := run([]string{"--quiet", "generate", "--prr", prr, "--output", mat}); code != 2 {
		t.Fatalf("expected exit code 2 for existing output, got %d", code)
	}
	data, err := os.ReadFile(mat)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "keep me\n" {
		t.Error("existing file must not be modified")
	}

	if code := run([]string{"--quiet", "generate", "--prr", prr, "--output", mat, "--overwrite"}); code != 0 {
		t.Fatalf("expected exit code 0 with --overwrite, got %d", code)
	}
}

func TestRun_GenerateNoRequirements(t *testing.T) {
	dir, prr, _ := writeInputs(t, "# Nothing here\n", "")
	code := run([]string{"--quiet", "generate", "--prr", prr, "--output", filepath.Join(dir, "out.csv")})
	if code != 1 {
		t.Fatalf("expected exit code 1 for a document without requirements, got %d", code)
	}
}

func TestRun_GenerateMissingPRR(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{"generate", "--prr", filepath.Join(dir, "nope.md"), "--output", filepath.Join(dir, "out.csv")})
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRun_Extract(t *testing.T) {
	_, prr, _ := writeInputs(t, testDoc, "")
	if code := run([]string{"extract", "--prr", prr}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if code := run([]string{"extract", "--prr", prr, "--json"}); code != 0 {
		t.Fatalf("expected exit code 0 for --json, got %d", code)
	}
	if code := run([]string{"extract"}); code != 2 {
		t.Fatalf("expected exit code 2 without --prr, got %d", code)
	}
}

func TestRun_Coverage(t *testing.T) {
	_, _, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"all frameworks", []string{"coverage", "--matrix", mat}, 0},
		{"single framework", []string{"coverage", "--matrix", mat, "--framework", "iso-27001"}, 0},
		{"json", []string{"coverage", "--matrix", mat, "--json"}, 0},
		{"unknown framework", []string{"coverage", "--matrix", mat, "--framework", "pci"}, 2},
		{"missing matrix flag", []string{"coverage"}, 2},
		{"missing matrix file", []string{"coverage", "--matrix", mat + ".missing"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := run(tt.args); code != tt.want {
				t.Fatalf("exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"text"}},
		{"json", []string{"json"}},
		{"text, sarif", []string{"text", "sarif"}},
		{"all", []string{"text", "json", "sarif"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a.csv, ,b.csv,")
	if !reflect.DeepEqual(got, []string{"a.csv", "b.csv"}) {
		t.Errorf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Error("expected nil for empty input")
	}
}

func TestRun_ValidateDiscoversMatrices(t *testing.T) {
	dir, prr, _ := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
	nested := filepath.Join(dir, "teams", "payments.csv")
	if err := os.MkdirAll(filepath.Dir(nested), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(nested, []byte(testHeader+rowSEC0011), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "report.json")

	code := run([]string{"--quiet", "validate", "--prr", prr, "--dir", dir, "--output", out})
	if code != 1 {
		t.Fatalf("expected exit code 1 from the incomplete matrix, got %d", code)
	}
	if n := len(readJSONReport(t, out).Matrices); n != 2 {
		t.Errorf("expected 2 discovered matrices, got %d", n)
	}

	empty := t.TempDir()
	if code := run([]string{"--quiet", "validate", "--prr", prr, "--dir", empty}); code != 2 {
		t.Errorf("expected exit code 2 when nothing is discovered, got %d", code)
	}
}
