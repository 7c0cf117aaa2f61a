// Package suppress provides inline suppression detection for sift findings.
// Developers can disable rule evaluation for a source line by marking it:
//
//	data, _ := os.ReadFile(path) // #nosec
//	h := md5.New()               //nolint:gosec
//
// Directives are line-scoped: they suppress nodes whose source span touches
// the directive line and nothing else.
package suppress

import (
	"go/ast"
	"go/token"
	"regexp"
)

// directiveRE matches #nosec and nolint markers inside comment text.
var directiveRE = regexp.MustCompile(`#\s?nosec\b|\bnolint\b`)

// Lines is the set of suppressed line numbers for one file, precomputed
// before the walk so per-node checks are map lookups.
type Lines map[int]struct{}

// Contains reports whether line carries a suppression directive.
func (l Lines) Contains(line int) bool {
	_, ok := l[line]
	return ok
}

// Scan collects the suppressed lines of a parsed file from its comments and
// the number of directives found, one per matching comment. A directive
// inside a multi-line comment suppresses every line the comment touches but
// still counts once.
func Scan(fset *token.FileSet, file *ast.File) (Lines, int) {
	lines := make(Lines)
	directives := 0
	for _, group := range file.Comments {
		for _, comment := range group.List {
			if !directiveRE.MatchString(comment.Text) {
				continue
			}
			directives++
			start := fset.Position(comment.Pos()).Line
			end := fset.Position(comment.End()).Line
			for l := start; l <= end; l++ {
				lines[l] = struct{}{}
			}
		}
	}
	return lines, directives
}
