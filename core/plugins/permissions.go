// Package plugins holds the built-in ordinary rules shipped with sift. Each
// rule implements the rule.Rule contract and is registered through
// Builtin(); hosts may hand the registry additional rules alongside them.
package plugins

import (
	"fmt"
	"strings"

	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/rule"
)

// World-writable and group-executable permission bits.
const (
	modeWorldWritable = 0o002
	modeGroupExec     = 0o010
)

// FilePermissions flags chmod-style calls that set permissive file modes. A
// world-writable mode is HIGH severity, a group-executable mode is MEDIUM;
// both are reported with HIGH confidence. Modes that are not integer
// literals produce nothing, since they cannot be reasoned about statically.
type FilePermissions struct{}

// ID returns the stable rule identifier.
func (FilePermissions) ID() string { return "B103" }

// Kinds returns the node kinds the rule triggers on.
func (FilePermissions) Kinds() []string { return []string{"CallExpr"} }

// Evaluate inspects a call expression for a permissive literal mode in the
// second positional argument.
func (FilePermissions) Evaluate(ctx *rule.Context) ([]issue.Issue, error) {
	name, ok := ctx.QualifiedName()
	if !ok || !strings.Contains(strings.ToLower(name), "chmod") {
		return nil, nil
	}
	if ctx.CallArgCount() != 2 {
		return nil, nil
	}
	mode, ok := ctx.CallArgInt(1)
	if !ok {
		return nil, nil
	}
	if mode&modeWorldWritable == 0 && mode&modeGroupExec == 0 {
		return nil, nil
	}

	severity := issue.Medium
	if mode&modeWorldWritable != 0 {
		severity = issue.High
	}
	filename, ok := ctx.CallArgString(0)
	if !ok {
		filename = "NOT PARSED"
	}
	i := issue.Issue{
		RuleID:     "B103",
		Severity:   severity,
		Confidence: issue.High,
		Cwe:        issue.CweIncorrectPermissions,
		CweLink:    issue.CweIncorrectPermissions.Link(),
		Message:    fmt.Sprintf("Chmod setting a permissive mask %#o on file (%s).", mode, filename),
	}
	return []issue.Issue{i}, nil
}
