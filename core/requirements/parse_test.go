package requirements

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const detailedDoc = `# Production Readiness Requirements

## Security

#### SEC-001.1 Least Privilege Execution Roles
- **Requirement**: Lambda execution roles must grant only the permissions
  required by the function. Wildcards are prohibited.
- **Implementation**: IAM permission boundaries.

#### SEC-002.1 Secrets Rotation
- **Requirement**: Secrets must be rotated automatically
- **Implementation**: Secrets Manager rotation.

## Observability

#### OBS-001.1 Structured Logging
Some prose without a requirement bullet.
`

func TestParse_Detailed(t *testing.T) {
	t.Parallel()

	reqs := Parse(detailedDoc)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 detailed requirements, got %d: %+v", len(reqs), reqs)
	}

	first := reqs[0]
	if first.ID != "SEC-001.1" || first.Title != "Least Privilege Execution Roles" {
		t.Errorf("unexpected first requirement: %+v", first)
	}
	want := "Lambda execution roles must grant only the permissions required by the function."
	if first.Description != want {
		t.Errorf("description = %q, want %q", first.Description, want)
	}
	if first.Category != "SEC" {
		t.Errorf("category = %q, want SEC", first.Category)
	}

	if reqs[1].Description != "Secrets must be rotated automatically" {
		t.Errorf("second description = %q", reqs[1].Description)
	}
}

func TestParse_LongStatementTruncated(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 250)
	doc := "#### NFR-001.1 Availability\n- **Requirement**: " + long + "\n"
	reqs := Parse(doc)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}
	if got := reqs[0].Description; got != strings.Repeat("x", 200)+"..." {
		t.Errorf("expected truncated description, got %d chars", len(got))
	}
}

func TestParse_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// "é" occupies bytes 199 and 200 of the statement.
	stmt := strings.Repeat("x", 199) + "é" + strings.Repeat("y", 30)
	reqs := Parse("#### NFR-001.1 Availability\n- **Requirement**: " + stmt + "\n")
	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}
	got := reqs[0].Description
	if !utf8.ValidString(got) {
		t.Fatalf("description is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("x", 199) + "..."; got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"abcdef", 3, "abc..."},
		{"aé", 2, "a..."},
		{"日本語", 4, "日..."},
		{"é", 1, "..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestParse_SimpleFallback(t *testing.T) {
	t.Parallel()

	doc := `## Lambda Runtime
#### LRR-001.1 Version Pinning
Runtime versions are pinned.

#### LRR-002.1 Concurrency Limits
Details first.
**Requirement**: Reserved concurrency
must be configured
- **Owner**: platform
`
	reqs := Parse(doc)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d: %+v", len(reqs), reqs)
	}
	if reqs[0].Description != "Version Pinning" {
		t.Errorf("expected title fallback, got %q", reqs[0].Description)
	}
	if reqs[1].Description != "Reserved concurrency must be configured" {
		t.Errorf("unexpected statement %q", reqs[1].Description)
	}
	if reqs[1].Category != "LRR" {
		t.Errorf("category = %q", reqs[1].Category)
	}
}

func TestParse_SectionHeadingEndsBlock(t *testing.T) {
	t.Parallel()

	doc := "#### ESA-001.1 Event Routing\n## Appendix\n**Requirement**: not part of the block\n"
	reqs := Parse(doc)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 requirement, got %d", len(reqs))
	}
	if reqs[0].Description != "Event Routing" {
		t.Errorf("expected block to end at section heading, got %q", reqs[0].Description)
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	if reqs := Parse(""); len(reqs) != 0 {
		t.Fatalf("expected no requirements, got %+v", reqs)
	}
}
