package plugins

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/rule"
)

// BindAllInterfaces flags hardcoded "0.0.0.0" bind addresses in string
// literals, which expose a listener on every network interface.
type BindAllInterfaces struct{}

// ID returns the stable rule identifier.
func (BindAllInterfaces) ID() string { return "B104" }

// Kinds returns the node kinds the rule triggers on.
func (BindAllInterfaces) Kinds() []string { return []string{"BasicLit"} }

// Evaluate reports a string literal that binds to all interfaces.
func (BindAllInterfaces) Evaluate(ctx *rule.Context) ([]issue.Issue, error) {
	s, ok := stringLit(ctx.Node)
	if !ok {
		return nil, nil
	}
	if s != "0.0.0.0" && !strings.HasPrefix(s, "0.0.0.0:") {
		return nil, nil
	}
	i := issue.Issue{
		RuleID:     "B104",
		Severity:   issue.Medium,
		Confidence: issue.Medium,
		Cwe:        issue.CweMultipleBinds,
		CweLink:    issue.CweMultipleBinds.Link(),
		Message:    "Possible binding to all interfaces.",
	}
	return []issue.Issue{i}, nil
}

// HardcodedTmpDir flags string literals pointing into shared temp
// directories, a common source of insecure temp-file handling.
type HardcodedTmpDir struct{}

// ID returns the stable rule identifier.
func (HardcodedTmpDir) ID() string { return "B108" }

// Kinds returns the node kinds the rule triggers on.
func (HardcodedTmpDir) Kinds() []string { return []string{"BasicLit"} }

// tmpPrefixes are the shared temp directory prefixes checked by default.
var tmpPrefixes = []string{"/tmp/", "/var/tmp/", "/dev/shm/"}

// Evaluate reports a string literal under a shared temp directory. The
// prefix list can be overridden through the "B108.dirs" setting.
func (HardcodedTmpDir) Evaluate(ctx *rule.Context) ([]issue.Issue, error) {
	s, ok := stringLit(ctx.Node)
	if !ok {
		return nil, nil
	}
	prefixes := tmpPrefixes
	if v, ok := ctx.Settings.GetSetting("B108.dirs").([]string); ok {
		prefixes = v
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			i := issue.Issue{
				RuleID:     "B108",
				Severity:   issue.Medium,
				Confidence: issue.Medium,
				Cwe:        issue.CweInsecureTempFile,
				CweLink:    issue.CweInsecureTempFile.Link(),
				Message:    "Probable insecure usage of temp file/directory.",
			}
			return []issue.Issue{i}, nil
		}
	}
	return nil, nil
}

// stringLit extracts the value of a string literal node.
func stringLit(n ast.Node) (string, bool) {
	lit, ok := n.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}

// Builtin returns the built-in ordinary rules in registration order.
func Builtin() []rule.Rule {
	return []rule.Rule{
		FilePermissions{},
		BindAllInterfaces{},
		HardcodedTmpDir{},
	}
}
