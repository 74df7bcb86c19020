// Package discovery finds control matrices and requirement documents in a
// workspace.
//
// The walker descends from a root directory, classifies each regular file
// and returns a sorted inventory. Patterns from .gitignore and
// .ctrlmatrixignore are honored and the .git directory is always skipped.
package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nox-hq/ctrlmatrix/core/matrix"
)

// Kind identifies the role of a discovered file.
type Kind string

const (
	// Matrix is a CSV file whose header names the requirement ID column.
	Matrix Kind = "matrix"
	// Document is a markdown file that may hold requirement definitions.
	Document Kind = "document"
	// Unknown is any other file.
	Unknown Kind = "unknown"
)

// Input is a single discovered file.
type Input struct {
	// Path is relative to the walker root, with forward slashes.
	Path    string `json:"path"`
	AbsPath string `json:"abs_path"`
	Kind    Kind   `json:"kind"`
}

// Classifier determines the Kind of a file. Implementations return Unknown
// when they cannot decide so that later classifiers may try.
type Classifier interface {
	Classify(absPath string) Kind
}

// ClassifierChain tries each classifier in order and returns the first
// result other than Unknown.
type ClassifierChain []Classifier

// Classify implements Classifier.
func (c ClassifierChain) Classify(absPath string) Kind {
	for _, cl := range c {
		if k := cl.Classify(absPath); k != Unknown {
			return k
		}
	}
	return Unknown
}

// DefaultClassifier recognizes markdown documents by extension and control
// matrices by extension plus a header sniff.
type DefaultClassifier struct{}

var documentExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Classify implements Classifier.
func (DefaultClassifier) Classify(absPath string) Kind {
	ext := strings.ToLower(filepath.Ext(absPath))
	switch {
	case documentExtensions[ext]:
		return Document
	case ext == ".csv" && hasMatrixHeader(absPath):
		return Matrix
	}
	return Unknown
}

// hasMatrixHeader reports whether the first line of the file names the
// requirement ID column.
func hasMatrixHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	r := bufio.NewReader(f)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	line = strings.TrimPrefix(line, "\ufeff")
	return strings.Contains(strings.ToLower(line), strings.ToLower(matrix.ColumnRequirementID))
}

// Walker recursively discovers inputs under Root.
type Walker struct {
	Root       string
	Classifier Classifier
	Ignore     *IgnoreList
}

// NewWalker creates a Walker rooted at root using the DefaultClassifier and
// the ignore files found in root.
func NewWalker(root string) (*Walker, error) {
	ignore, err := LoadIgnore(root)
	if err != nil {
		return nil, err
	}
	return &Walker{
		Root:       root,
		Classifier: DefaultClassifier{},
		Ignore:     ignore,
	}, nil
}

// Walk returns every regular file under Root that is not ignored, sorted by
// relative path.
func (w *Walker) Walk() ([]Input, error) {
	absRoot, err := filepath.Abs(w.Root)
	if err != nil {
		return nil, err
	}

	var inputs []Input
	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if w.Ignore.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		inputs = append(inputs, Input{
			Path:    rel,
			AbsPath: path,
			Kind:    w.Classifier.Classify(path),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Path < inputs[j].Path })
	return inputs, nil
}

// Find walks root and returns the absolute paths of inputs of the given kind.
func Find(root string, kind Kind) ([]string, error) {
	w, err := NewWalker(root)
	if err != nil {
		return nil, err
	}
	inputs, err := w.Walk()
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, in := range inputs {
		if in.Kind == kind {
			paths = append(paths, in.AbsPath)
		}
	}
	return paths, nil
}
