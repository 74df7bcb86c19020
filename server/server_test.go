package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/compliance"
	"github.com/nox-hq/ctrlmatrix/core/discovery"
)

const testDoc = `# Requirements

#### SEC-001.1 Least Privilege
- **Requirement**: Roles grant only required permissions.

#### SEC-002.1 Secrets Rotation
- **Requirement**: Secrets rotate automatically.
`

const testMatrix = "Requirement ID,Requirement Description,AWS Service/Feature,How Enforced/Configured,Automated Check/Test,Evidence Artifact,Compliance Mapping\n" +
	"SEC-001.1,Least privilege roles,IAM,IAM policy,IAM Access Analyzer,/evidence/iam.json,ISO 27001 A.9.2.4\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing file %s: %v", name, err)
	}
	return path
}

func newTestServer(allowed ...string) *Server {
	return New("0.1.0", allowed, WithValidateOptions(core.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
}

func makeToolRequest(t *testing.T, name string, args map[string]any) mcp.CallToolRequest {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshaling args: %v", err)
	}
	var raw any
	if err := json.Unmarshal(argsJSON, &raw); err != nil {
		t.Fatalf("unmarshaling args: %v", err)
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: raw,
		},
	}
}

func toolResultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// validated runs validate_matrix over fixtures with one unmapped
// requirement and returns the server with the cached result.
func validated(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	prr := writeFile(t, dir, "prr.md", testDoc)
	mat := writeFile(t, dir, "controls.csv", testMatrix)

	s := newTestServer()
	result, err := s.handleValidate(context.Background(), makeToolRequest(t, "validate_matrix", map[string]any{
		"prr": prr, "matrix": mat,
	}))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("validate returned error: %s", toolResultText(result))
	}
	return s
}

func TestIsPathAllowed(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		allowed []string
		path    string
		wantErr bool
	}{
		{"no restrictions", nil, "/any/path", false},
		{"under root", []string{dir}, filepath.Join(dir, "sub", "prr.md"), false},
		{"exact root", []string{dir}, dir, false},
		{"outside", []string{"/allowed/workspace"}, "/other/path", true},
		{"dotdot prefix sibling", []string{dir}, dir + "-other", true},
		{"name starting with dots", []string{dir}, filepath.Join(dir, "..hidden"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New("0.1.0", tt.allowed).isPathAllowed(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("isPathAllowed(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestHandleValidate(t *testing.T) {
	dir := t.TempDir()
	prr := writeFile(t, dir, "prr.md", testDoc)
	mat := writeFile(t, dir, "controls.csv", testMatrix)

	s := newTestServer()
	result, err := s.handleValidate(context.Background(), makeToolRequest(t, "validate_matrix", map[string]any{
		"prr": prr, "matrix": mat,
	}))
	if err != nil {
		t.Fatal(err)
	}
	text := toolResultText(result)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	for _, want := range []string{
		"Validation FAILED: 1 errors, 0 warnings, coverage 50.00%",
		"error: PRR requirement not mapped in control matrix: SEC-002.1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
	if s.cached() == nil {
		t.Error("expected result to be cached")
	}
}

func TestHandleValidate_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	prr := writeFile(t, dir, "prr.md", testDoc)
	s := newTestServer()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing argument", map[string]any{"prr": prr}, "missing required argument: matrix"},
		{"missing document", map[string]any{"prr": filepath.Join(dir, "nope.md"), "matrix": "x.csv"}, "PRR file not found:"},
		{"missing matrix", map[string]any{"prr": prr, "matrix": filepath.Join(dir, "nope.csv")}, "control matrix file not found:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleValidate(context.Background(), makeToolRequest(t, "validate_matrix", tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !result.IsError {
				t.Fatal("expected tool error")
			}
			if text := toolResultText(result); !strings.Contains(text, tt.want) {
				t.Errorf("error %q does not contain %q", text, tt.want)
			}
		})
	}
}

func TestHandleValidate_DisallowedPath(t *testing.T) {
	s := New("0.1.0", []string{t.TempDir()})
	result, err := s.handleValidate(context.Background(), makeToolRequest(t, "validate_matrix", map[string]any{
		"prr": "/etc/prr.md", "matrix": "/etc/controls.csv",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError || !strings.Contains(toolResultText(result), "outside allowed workspaces") {
		t.Fatalf("expected workspace error, got %q", toolResultText(result))
	}
}

func TestHandleExtract(t *testing.T) {
	prr := writeFile(t, t.TempDir(), "prr.md", testDoc)

	result, err := newTestServer().handleExtract(context.Background(), makeToolRequest(t, "extract_requirements", map[string]any{"prr": prr}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolResultText(result))
	}
	var got extraction
	if err := json.Unmarshal([]byte(toolResultText(result)), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Count != 2 || strings.Join(got.RequirementIDs, ",") != "SEC-001.1,SEC-002.1" {
		t.Errorf("unexpected extraction %+v", got)
	}
}

func TestHandleDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prr.md", testDoc)
	writeFile(t, dir, "controls.csv", testMatrix)
	writeFile(t, dir, "metrics.csv", "name,value\n")

	result, err := newTestServer(dir).handleDiscover(context.Background(), makeToolRequest(t, "discover_inputs", map[string]any{"dir": dir}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolResultText(result))
	}
	var got []discovery.Input
	if err := json.Unmarshal([]byte(toolResultText(result)), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 inputs, got %+v", got)
	}
	if got[0].Path != "controls.csv" || got[0].Kind != discovery.Matrix {
		t.Errorf("unexpected first input %+v", got[0])
	}
	if got[1].Path != "prr.md" || got[1].Kind != discovery.Document {
		t.Errorf("unexpected second input %+v", got[1])
	}

	outside, err := newTestServer(dir).handleDiscover(context.Background(), makeToolRequest(t, "discover_inputs", map[string]any{"dir": t.TempDir()}))
	if err != nil {
		t.Fatal(err)
	}
	if !outside.IsError {
		t.Error("expected error for a directory outside the allowed paths")
	}
}

func TestHandleCoverage(t *testing.T) {
	mat := writeFile(t, t.TempDir(), "controls.csv", testMatrix)
	s := newTestServer()

	result, err := s.handleCoverage(context.Background(), makeToolRequest(t, "compliance_coverage", map[string]any{
		"matrix": mat, "framework": "iso-27001",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolResultText(result))
	}
	var got []compliance.Coverage
	if err := json.Unmarshal([]byte(toolResultText(result)), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 1 || got[0].Framework != compliance.ISO27001 {
		t.Fatalf("unexpected coverage %+v", got)
	}
	if len(got[0].CriticalMatched) != 1 || got[0].CriticalMatched[0] != "A.9.2.4" {
		t.Errorf("critical matched = %v", got[0].CriticalMatched)
	}

	all, err := s.handleCoverage(context.Background(), makeToolRequest(t, "compliance_coverage", map[string]any{"matrix": mat}))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(toolResultText(all)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("expected every built-in framework, got %d", len(got))
	}

	unknown, err := s.handleCoverage(context.Background(), makeToolRequest(t, "compliance_coverage", map[string]any{
		"matrix": mat, "framework": "PCI",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !unknown.IsError {
		t.Error("expected unknown framework to be a tool error")
	}
}

func TestHandleGetReport(t *testing.T) {
	before, err := newTestServer().handleGetReport(context.Background(), makeToolRequest(t, "get_report", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !before.IsError {
		t.Error("expected error before validation")
	}

	s := validated(t)
	for _, format := range []string{"json", "sarif"} {
		result, err := s.handleGetReport(context.Background(), makeToolRequest(t, "get_report", map[string]any{"format": format}))
		if err != nil {
			t.Fatal(err)
		}
		if result.IsError {
			t.Fatalf("%s: unexpected tool error %s", format, toolResultText(result))
		}
		if !json.Valid([]byte(toolResultText(result))) {
			t.Errorf("%s: output is not valid JSON", format)
		}
	}
}

func TestResources(t *testing.T) {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ctrlmatrix://report"
	if _, err := newTestServer().handleResourceReport(context.Background(), req); err == nil {
		t.Fatal("expected error for resource before validation")
	}

	s := validated(t)
	tests := []struct {
		uri     string
		handler func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)
		want    string
	}{
		{"ctrlmatrix://report", s.handleResourceReport, `"validation_status": "FAILED"`},
		{"ctrlmatrix://sarif", s.handleResourceSARIF, `"version": "2.1.0"`},
	}
	for _, tt := range tests {
		req := mcp.ReadResourceRequest{}
		req.Params.URI = tt.uri
		contents, err := tt.handler(context.Background(), req)
		if err != nil {
			t.Fatalf("%s: %v", tt.uri, err)
		}
		tc, ok := contents[0].(mcp.TextResourceContents)
		if !ok {
			t.Fatalf("%s: expected TextResourceContents", tt.uri)
		}
		if tc.URI != tt.uri || tc.MIMEType != "application/json" {
			t.Errorf("unexpected contents header %s %s", tc.URI, tc.MIMEType)
		}
		if !strings.Contains(tc.Text, tt.want) {
			t.Errorf("%s: expected %s in resource", tt.uri, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	short := "hello"
	if truncate(short) != short {
		t.Error("short strings must be returned unchanged")
	}
	long := strings.Repeat("x", maxOutputBytes+10)
	got := truncate(long)
	if !strings.HasSuffix(got, "[truncated: output exceeded 1MB limit]") {
		t.Error("expected truncation notice")
	}
	if len(got) > maxOutputBytes+100 {
		t.Errorf("truncated output too long: %d", len(got))
	}
}
