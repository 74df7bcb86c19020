package requirements

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Requirement is a requirement heading parsed from a markdown requirements
// document together with its requirement statement.
type Requirement struct {
	ID          string
	Title       string
	Description string
	Category    string
}

const (
	requirementMarker    = "**Requirement**:"
	implementationMarker = "- **Implementation**:"
	maxDescriptionLen    = 200
)

var (
	headingRe = regexp.MustCompile(`^#### (` + idPattern + `)\s+(.+)$`)
	sectionRe = regexp.MustCompile(`^#{2,}\s+[A-Z]`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

type block struct {
	id    string
	title string
	body  []string
}

// Parse extracts requirements declared as "#### ID Title" headings. When at
// least one heading is directly followed by a "- **Requirement**:" bullet,
// only such headings are returned and their description is reduced to the
// first sentence. Otherwise every heading is returned and the description
// falls back to the title when no requirement statement is present.
func Parse(text string) []Requirement {
	blocks := splitBlocks(text)

	var detailed []Requirement
	for _, b := range blocks {
		if len(b.body) == 0 || !strings.HasPrefix(b.body[0], "- "+requirementMarker) {
			continue
		}
		desc := statement(b.body, strings.TrimPrefix(b.body[0], "- "+requirementMarker))
		desc = strings.TrimSpace(strings.ReplaceAll(desc, implementationMarker, ""))
		if i := strings.Index(desc, "."); i >= 0 {
			desc = desc[:i] + "."
		} else {
			desc = Truncate(desc, maxDescriptionLen)
		}
		detailed = append(detailed, newRequirement(b, desc))
	}
	if len(detailed) > 0 {
		return detailed
	}

	reqs := make([]Requirement, 0, len(blocks))
	for _, b := range blocks {
		desc := b.title
		for i, line := range b.body {
			if j := strings.Index(line, requirementMarker); j >= 0 {
				desc = statement(b.body[i:], line[j+len(requirementMarker):])
				break
			}
		}
		reqs = append(reqs, newRequirement(b, desc))
	}
	return reqs
}

// Truncate shortens s to at most n bytes, backing off to a rune boundary,
// and appends "..." when anything was cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func newRequirement(b block, desc string) Requirement {
	return Requirement{
		ID:          b.id,
		Title:       b.title,
		Description: desc,
		Category:    strings.SplitN(b.id, "-", 2)[0],
	}
}

// statement joins first with the continuation lines of body (body[0] is the
// line holding first) up to the next "- **" bullet, collapsing whitespace.
func statement(body []string, first string) string {
	parts := []string{first}
	for _, line := range body[1:] {
		if strings.HasPrefix(line, "- **") {
			break
		}
		parts = append(parts, line)
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.Join(parts, " "), " "))
}

func splitBlocks(text string) []block {
	var (
		blocks []block
		cur    *block
	)
	flush := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &block{id: m[1], title: strings.TrimSpace(m[2])}
			continue
		}
		if sectionRe.MatchString(line) {
			flush()
			continue
		}
		if cur != nil {
			cur.body = append(cur.body, line)
		}
	}
	flush()
	return blocks
}
