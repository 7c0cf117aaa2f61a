package rule

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

// Context carries the per-node state the visitor maintains while walking a
// file. A single Context value is reused across the walk with Node and the
// ancestor stack updated at each step, so rules must not retain it.
type Context struct {
	FilePath string
	FileSet  *token.FileSet
	File     *ast.File
	Node     ast.Node
	Settings Settings

	// ancestors holds the parent chain of Node, outermost first.
	ancestors []ast.Node
	// imports maps local package names (aliases or base names) to their
	// import paths, resolved once per file.
	imports map[string]string
}

// NewContext builds a Context for one file. The import alias table is
// resolved eagerly so qualified-name lookups during the walk are map hits.
func NewContext(path string, fset *token.FileSet, file *ast.File, settings Settings) *Context {
	c := &Context{
		FilePath: path,
		FileSet:  fset,
		File:     file,
		Settings: settings,
		imports:  make(map[string]string),
	}
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := importPath
		if idx := strings.LastIndex(importPath, "/"); idx >= 0 {
			name = importPath[idx+1:]
		}
		if spec.Name != nil {
			name = spec.Name.Name
		}
		c.imports[name] = importPath
	}
	return c
}

// Enter pushes the current node onto the ancestor chain and makes n the
// current node. Exit must be called when the visitor leaves n.
func (c *Context) Enter(n ast.Node) {
	if c.Node != nil {
		c.ancestors = append(c.ancestors, c.Node)
	}
	c.Node = n
}

// Exit pops the ancestor chain, restoring the parent as the current node.
func (c *Context) Exit() {
	if len(c.ancestors) == 0 {
		c.Node = nil
		return
	}
	c.Node = c.ancestors[len(c.ancestors)-1]
	c.ancestors = c.ancestors[:len(c.ancestors)-1]
}

// Parent returns the immediate parent of the current node, or nil at the
// root.
func (c *Context) Parent() ast.Node {
	if len(c.ancestors) == 0 {
		return nil
	}
	return c.ancestors[len(c.ancestors)-1]
}

// Ancestors returns the full parent chain of the current node, outermost
// first. The caller must not modify the returned slice.
func (c *Context) Ancestors() []ast.Node {
	return c.ancestors
}

// QualifiedName resolves the fully-qualified referent of the current node.
// For an import spec it is the import path; for a call expression it is the
// callee resolved through the file's import table (e.g. "os.Chmod" becomes
// "os.Chmod", aliased imports resolve to their real path). The boolean is
// false when the node has no resolvable name.
func (c *Context) QualifiedName() (string, bool) {
	switch n := c.Node.(type) {
	case *ast.ImportSpec:
		path, err := strconv.Unquote(n.Path.Value)
		if err != nil {
			return "", false
		}
		return path, true
	case *ast.CallExpr:
		return c.calleeName(n.Fun)
	}
	return "", false
}

// calleeName resolves a call's function expression to a qualified name.
func (c *Context) calleeName(fun ast.Expr) (string, bool) {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name, true
	case *ast.SelectorExpr:
		ident, ok := f.X.(*ast.Ident)
		if !ok {
			return "", false
		}
		if path, ok := c.imports[ident.Name]; ok {
			return path + "." + f.Sel.Name, true
		}
		return ident.Name + "." + f.Sel.Name, true
	}
	return "", false
}

// CallArgCount returns the number of positional arguments when the current
// node is a call expression, and -1 otherwise.
func (c *Context) CallArgCount() int {
	call, ok := c.Node.(*ast.CallExpr)
	if !ok {
		return -1
	}
	return len(call.Args)
}

// CallArgInt returns the integer literal value of the i-th positional
// argument of the current call. The boolean is false when the node is not a
// call, the position is out of range, or the argument is not an integer
// literal (rules cannot reason statically about computed values).
func (c *Context) CallArgInt(i int) (int64, bool) {
	lit, ok := c.callArgLit(i, token.INT)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(lit.Value, 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CallArgString returns the string literal value of the i-th positional
// argument of the current call.
func (c *Context) CallArgString(i int) (string, bool) {
	lit, ok := c.callArgLit(i, token.STRING)
	if !ok {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}

func (c *Context) callArgLit(i int, kind token.Token) (*ast.BasicLit, bool) {
	call, ok := c.Node.(*ast.CallExpr)
	if !ok || i < 0 || i >= len(call.Args) {
		return nil, false
	}
	lit, ok := call.Args[i].(*ast.BasicLit)
	if !ok || lit.Kind != kind {
		return nil, false
	}
	return lit, true
}

// LineRange returns the contiguous ascending line numbers spanned by the
// current node.
func (c *Context) LineRange() []int {
	return NodeLineRange(c.FileSet, c.Node)
}

// NodeLineRange computes the line span of a node as contiguous ascending
// line numbers.
func NodeLineRange(fset *token.FileSet, n ast.Node) []int {
	start := fset.Position(n.Pos()).Line
	end := fset.Position(n.End()).Line
	lines := make([]int, 0, end-start+1)
	for l := start; l <= end; l++ {
		lines = append(lines, l)
	}
	return lines
}
