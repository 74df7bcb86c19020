// Package requirements extracts production-readiness requirement identifiers
// (for example SEC-001.1) from free-form requirements documents. Extraction
// is purely pattern based; the document format is otherwise ignored.
package requirements

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"unicode/utf8"
)

// idPattern is the single definition of a requirement identifier: a 2-4
// letter uppercase prefix, a dash, three digits, a dot and a sub-number.
const idPattern = `[A-Z]{2,4}-\d{3}\.\d+`

var (
	scanRe  = regexp.MustCompile(idPattern)
	exactRe = regexp.MustCompile(`^` + idPattern + `$`)
)

// ValidID reports whether s is exactly one well-formed requirement ID.
func ValidID(s string) bool {
	return exactRe.MatchString(s)
}

// Set is an unordered collection of unique requirement IDs.
type Set map[string]struct{}

// NewSet returns a set containing ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the IDs in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Extract returns every unique requirement ID occurring anywhere in text.
// Empty input yields an empty set.
func Extract(text string) Set {
	set := make(Set)
	for _, m := range scanRe.FindAllString(text, -1) {
		set[m] = struct{}{}
	}
	return set
}

// DocumentNotFoundError is returned when the requirements document does not
// exist.
type DocumentNotFoundError struct {
	Path string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("requirements document not found: %s", e.Path)
}

// DocumentReadError is returned when the requirements document exists but
// cannot be read or is not valid UTF-8 text.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("reading requirements document %s: %v", e.Path, e.Err)
}

func (e *DocumentReadError) Unwrap() error { return e.Err }

// errInvalidUTF8 marks documents that are not UTF-8 encoded.
var errInvalidUTF8 = errors.New("document is not valid UTF-8")

// ReadFile loads the document at path as text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &DocumentNotFoundError{Path: path}
		}
		return "", &DocumentReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &DocumentReadError{Path: path, Err: errInvalidUTF8}
	}
	return string(data), nil
}

// ExtractFile reads the document at path and extracts its requirement IDs.
// The returned error is a *DocumentNotFoundError or *DocumentReadError; the
// caller decides whether either is fatal.
func ExtractFile(path string) (Set, error) {
	text, err := ReadFile(path)
	if err != nil {
		return Set{}, err
	}
	return Extract(text), nil
}
