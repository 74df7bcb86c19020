package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBadge_FullCoverage(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
	out := filepath.Join(dir, "badges", "coverage.svg")

	code := run([]string{"--quiet", "badge", "--prr", prr, "--matrix", mat, "--output", out})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading badge: %v", err)
	}
	svg := string(data)
	if !strings.HasPrefix(svg, "<svg") {
		t.Error("expected SVG output")
	}
	if !strings.Contains(svg, "100%") || !strings.Contains(svg, "#4c1") {
		t.Error("expected a green 100% badge")
	}
}

func TestBadge_PartialCoverage(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011)
	out := filepath.Join(dir, "coverage.svg")

	if code := run([]string{"--quiet", "badge", "--prr", prr, "--matrix", mat, "--output", out}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "50%") {
		t.Error("expected 50% coverage value")
	}
}

func TestBadge_CustomLabel(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
	out := filepath.Join(dir, "coverage.svg")

	if code := run([]string{"--quiet", "badge", "--prr", prr, "--matrix", mat, "--output", out, "--label", "controls"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "controls") {
		t.Error("expected custom label in SVG")
	}
}

func TestBadge_FrameworkBadges(t *testing.T) {
	dir, prr, mat := writeInputs(t, testDoc, testHeader+rowSEC0011+rowSEC0021)
	out := filepath.Join(dir, "coverage.svg")

	if code := run([]string{"--quiet", "badge", "--prr", prr, "--matrix", mat, "--output", out, "--frameworks"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	for _, name := range []string{"coverage-iso27001.svg", "coverage-soc2.svg", "coverage-nistcsf.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestBadge_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	tests := [][]string{
		{"badge"},
		{"badge", "--prr", filepath.Join(dir, "prr.md")},
		{"badge", "--prr", filepath.Join(dir, "prr.md"), "--matrix", filepath.Join(dir, "m.csv")},
	}
	for _, args := range tests {
		if code := run(args); code != 2 {
			t.Errorf("run(%v) = %d, want 2", args, code)
		}
	}
}

func TestFrameworkBadgePath(t *testing.T) {
	tests := []struct {
		output, id, want string
	}{
		{"badge.svg", "SOC2", "badge-soc2.svg"},
		{"out/ctrl.svg", "ISO27001", "out/ctrl-iso27001.svg"},
		{"badge", "NISTCSF", "badge-nistcsf.svg"},
	}
	for _, tt := range tests {
		if got := frameworkBadgePath(tt.output, tt.id); got != tt.want {
			t.Errorf("frameworkBadgePath(%q, %q) = %q, want %q", tt.output, tt.id, got, tt.want)
		}
	}
}
