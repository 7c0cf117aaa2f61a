// Package engine implements the syntax-tree visitor at the heart of sift.
// For each file it parses the source, precomputes suppression state, walks
// the tree in pre-order dispatching every node to the rules registered for
// its kind, and collects the resulting issues together with per-file
// metrics. Files are independent units; the multi-file Run folds their
// results with bounded parallelism.
package engine

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/metrics"
	"github.com/siftsec/sift/core/registry"
	"github.com/siftsec/sift/core/rule"
	"github.com/siftsec/sift/core/suppress"
)

// SnippetWindow is the number of context lines rendered around an issue's
// line range in its source snippet.
const SnippetWindow = 1

// RuleError describes one recovered rule-evaluation failure. These are
// diagnostics, not fatal errors: the walk continues and the invocation is
// treated as having produced no issue.
type RuleError struct {
	RuleID   string
	FilePath string
	Line     int
	Err      error
}

func (e RuleError) Error() string {
	return fmt.Sprintf("rule %s failed at %s:%d: %v", e.RuleID, e.FilePath, e.Line, e.Err)
}

// FileResult is the outcome of scanning a single file.
type FileResult struct {
	Path string
	// Skipped is true when the file could not be parsed. Skipped files
	// contribute loc to metrics but produce no issues.
	Skipped    bool
	SkipReason string
	Issues     []issue.Issue
	Errors     []RuleError
	Metrics    metrics.FileRecord
}

// Scanner runs the registry's rules over source files. A Scanner is
// read-only after construction and safe for concurrent use.
type Scanner struct {
	registry *registry.Registry
	settings rule.Settings
	logger   hclog.Logger
}

// NewScanner creates a Scanner over a built registry. settings is handed
// opaquely to rules through the Context; logger receives rule-failure
// diagnostics. Both may be nil.
func NewScanner(reg *registry.Registry, settings rule.Settings, logger hclog.Logger) *Scanner {
	if settings == nil {
		settings = rule.SettingsMap(nil)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scanner{registry: reg, settings: settings, logger: logger}
}

// ScanSource analyzes one file's source text. Parse failures are recorded
// as a skip, not returned as an error: the run continues with other files.
func (s *Scanner) ScanSource(path string, src []byte) FileResult {
	res := FileResult{Path: path}
	res.Metrics.LOC = countLOC(src)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		res.Skipped = true
		res.SkipReason = err.Error()
		s.logger.Warn("skipping unparseable file", "file", path, "error", err)
		return res
	}

	suppressed, directives := suppress.Scan(fset, file)
	res.Metrics.Nosec = directives

	v := &visitor{
		scanner:    s,
		ctx:        rule.NewContext(path, fset, file, s.settings),
		fset:       fset,
		suppressed: suppressed,
		result:     &res,
	}
	ast.Walk(v, file)

	sourceLines := strings.Split(string(src), "\n")
	for i := range res.Issues {
		res.Issues[i].Code = res.Issues[i].Snippet(sourceLines, SnippetWindow)
	}
	for _, iss := range res.Issues {
		res.Metrics.CountIssue(iss)
	}
	return res
}

// visitor is the ast.Visitor maintaining the parent chain through the
// Context. Issue order is discovery order: tree pre-order, then rule
// registration order within a node.
type visitor struct {
	scanner    *Scanner
	ctx        *rule.Context
	fset       *token.FileSet
	suppressed suppress.Lines
	result     *FileResult
}

// Visit dispatches the node to its registered rules on entry and returns a
// popper that restores the parent chain when the subtree is done.
func (v *visitor) Visit(n ast.Node) ast.Visitor {
	if n == nil {
		v.ctx.Exit()
		return nil
	}
	v.ctx.Enter(n)
	if kind := rule.KindOf(n); kind != "" {
		v.dispatch(kind, n)
	}
	return v
}

// dispatch runs every rule registered for kind against the current node,
// honoring suppression. Suppressed nodes skip rule evaluation but descent
// into children continues; each child is checked independently since
// directives are line-scoped.
func (v *visitor) dispatch(kind string, n ast.Node) {
	if v.isSuppressed(n) {
		return
	}
	lineRange := rule.NodeLineRange(v.fset, n)
	for _, r := range v.scanner.registry.RulesFor(kind) {
		issues, err := v.evaluate(r)
		if err != nil {
			v.recordRuleError(r, lineRange[0], err)
			continue
		}
		for _, iss := range issues {
			if iss.FilePath == "" {
				iss.FilePath = v.ctx.FilePath
			}
			// Rules may pin their own range; otherwise it comes from the
			// node's span.
			if iss.Line == 0 {
				iss.Line = lineRange[0]
			}
			if len(iss.LineRange) == 0 {
				iss.LineRange = lineRange
			}
			v.result.Issues = append(v.result.Issues, iss)
		}
	}
}

// evaluate invokes one rule, converting panics into errors so a misbehaving
// rule cannot abort the walk.
func (v *visitor) evaluate(r rule.Rule) (issues []issue.Issue, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.Evaluate(v.ctx)
}

// isSuppressed reports whether any line of the node's span carries a
// suppression directive.
func (v *visitor) isSuppressed(n ast.Node) bool {
	if len(v.suppressed) == 0 {
		return false
	}
	start := v.fset.Position(n.Pos()).Line
	end := v.fset.Position(n.End()).Line
	for l := start; l <= end; l++ {
		if v.suppressed.Contains(l) {
			return true
		}
	}
	return false
}

func (v *visitor) recordRuleError(r rule.Rule, line int, err error) {
	re := RuleError{RuleID: r.ID(), FilePath: v.ctx.FilePath, Line: line, Err: err}
	v.result.Errors = append(v.result.Errors, re)
	v.result.Metrics.SkippedTests++
	v.scanner.logger.Warn("rule evaluation failed",
		"rule", r.ID(), "file", v.ctx.FilePath, "line", line, "error", err)
}

// countLOC counts non-blank source lines.
func countLOC(src []byte) int {
	loc := 0
	for _, line := range strings.Split(string(src), "\n") {
		if strings.TrimSpace(line) != "" {
			loc++
		}
	}
	return loc
}
