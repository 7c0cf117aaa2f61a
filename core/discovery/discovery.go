// Package discovery walks a project directory and collects the Go source
// files to analyze. Well-known generated and dependency directories are
// always skipped; callers may add their own ignore patterns. Output is
// sorted so downstream scan order is deterministic.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are directory names that are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"testdata":     true,
	"node_modules": true,
}

// Walker recursively discovers Go source files under Root.
type Walker struct {
	Root string
	// IgnorePatterns are filepath.Match patterns applied to both the path
	// relative to Root and the base name; matches are skipped.
	IgnorePatterns []string
}

// NewWalker creates a Walker rooted at the given directory.
func NewWalker(root string) *Walker {
	return &Walker{Root: root}
}

// Walk returns the sorted list of discovered Go file paths. If Root is
// itself a regular file it is returned as the only result.
func (w *Walker) Walk() ([]string, error) {
	info, err := os.Stat(w.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{w.Root}, nil
	}

	var files []string
	err = filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(w.Root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if path != w.Root && (skipDirs[d.Name()] || w.ignored(rel, d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") {
			return nil
		}
		if w.ignored(rel, d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ignored reports whether the relative path or base name matches one of the
// walker's ignore patterns.
func (w *Walker) ignored(rel, base string) bool {
	for _, pattern := range w.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, filepath.ToSlash(rel)); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
