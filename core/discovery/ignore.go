package discovery

import (
	"bufio"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ignoreFiles are read from the walk root, in order.
var ignoreFiles = []string{".gitignore", ".ctrlmatrixignore"}

// rule is one parsed gitignore line.
type rule struct {
	pattern  string
	negate   bool
	dirOnly  bool
	anchored bool
}

// IgnoreList holds gitignore-style rules. Later rules override earlier ones
// and a "!" prefix re-includes a path. A nil list ignores only .git.
type IgnoreList struct {
	rules []rule
}

// ParseIgnore builds an IgnoreList from gitignore lines. Blank lines and
// comments are skipped.
func ParseIgnore(lines []string) *IgnoreList {
	l := &IgnoreList{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var r rule
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			r.negate = true
			line = rest
		}
		if rest, ok := strings.CutSuffix(line, "/"); ok {
			r.dirOnly = true
			line = rest
		}
		if rest, ok := strings.CutPrefix(line, "/"); ok {
			r.anchored = true
			line = rest
		}
		if strings.Contains(line, "/") {
			r.anchored = true
		}
		r.pattern = line
		l.rules = append(l.rules, r)
	}
	return l
}

// LoadIgnore reads the ignore files in root. Missing files are skipped.
func LoadIgnore(root string) (*IgnoreList, error) {
	var lines []string
	for _, name := range ignoreFiles {
		data, err := readLines(filepath.Join(root, name))
		if err != nil {
			return nil, err
		}
		lines = append(lines, data...)
	}
	return ParseIgnore(lines), nil
}

func readLines(p string) ([]string, error) {
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// Match reports whether the slash-separated relative path is ignored.
func (l *IgnoreList) Match(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	for _, p := range parts {
		if p == ".git" {
			return true
		}
	}
	if l == nil {
		return false
	}

	ignored := false
	for _, r := range l.rules {
		if r.matches(rel, parts, isDir) {
			ignored = !r.negate
		}
	}
	return ignored
}

func (r rule) matches(rel string, parts []string, isDir bool) bool {
	if r.anchored {
		if ok, _ := path.Match(r.pattern, rel); ok {
			return !r.dirOnly || isDir
		}
		// A matching directory prefix covers everything below it.
		return strings.HasPrefix(rel, r.pattern+"/")
	}
	for i, part := range parts {
		ok, _ := path.Match(r.pattern, part)
		if !ok {
			continue
		}
		last := i == len(parts)-1
		if r.dirOnly && last && !isDir {
			continue
		}
		return true
	}
	return false
}
