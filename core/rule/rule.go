// Package rule defines the contract between the sift engine and individual
// security rules: the Rule interface every check implements and the Context
// handed to a rule for each node it is dispatched on.
package rule

import (
	"go/ast"

	"github.com/siftsec/sift/core/issue"
)

// Rule is a single unit of analysis logic. Implementations declare a stable
// identifier, the node kinds they trigger on, and evaluate one node at a
// time. Evaluate returns zero or more issues; ordinary rules emit at most
// one, the blocklist rule may emit one per matching entry.
type Rule interface {
	ID() string
	Kinds() []string
	Evaluate(ctx *Context) ([]issue.Issue, error)
}

// Settings is the resolved configuration object rules may consult for their
// own sub-options. Lookups for unset keys return nil.
type Settings interface {
	GetSetting(key string) any
}

// SettingsMap is a map-backed Settings implementation.
type SettingsMap map[string]any

// GetSetting returns the value stored under key, or nil when unset.
func (m SettingsMap) GetSetting(key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// KindOf classifies an AST node into the kind string used by the dispatch
// table. Nodes outside the dispatchable set return the empty string and are
// never handed to rules.
func KindOf(n ast.Node) string {
	switch n.(type) {
	case *ast.ImportSpec:
		return "ImportSpec"
	case *ast.CallExpr:
		return "CallExpr"
	case *ast.BasicLit:
		return "BasicLit"
	case *ast.AssignStmt:
		return "AssignStmt"
	case *ast.BinaryExpr:
		return "BinaryExpr"
	case *ast.FuncDecl:
		return "FuncDecl"
	case *ast.GoStmt:
		return "GoStmt"
	case *ast.ReturnStmt:
		return "ReturnStmt"
	}
	return ""
}
