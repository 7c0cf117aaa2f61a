package plugins

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/rule"
)

// evalFirst evaluates r against the first node of the given kind in src.
func evalFirst(t *testing.T, r rule.Rule, src, kind string, settings rule.Settings) []issue.Issue {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	if settings == nil {
		settings = rule.SettingsMap(nil)
	}
	ctx := rule.NewContext("test.go", fset, file, settings)

	var issues []issue.Issue
	done := false
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil || done || rule.KindOf(n) != kind {
			return true
		}
		done = true
		ctx.Node = n
		var evalErr error
		issues, evalErr = r.Evaluate(ctx)
		if evalErr != nil {
			t.Fatalf("evaluate: %v", evalErr)
		}
		return false
	})
	return issues
}

// ---------------------------------------------------------------------------
// B103 file permissions
// ---------------------------------------------------------------------------

func chmodSrc(mode string) string {
	return "package main\n\nimport \"os\"\n\nfunc f() { os.Chmod(\"key.pem\", " + mode + ") }\n"
}

func TestFilePermissions_WorldWritable(t *testing.T) {
	issues := evalFirst(t, FilePermissions{}, chmodSrc("0o777"), "CallExpr", nil)

	if len(issues) != 1 {
		t.Fatalf("expected exactly 1 issue, got %d", len(issues))
	}
	if issues[0].Severity != issue.High {
		t.Fatalf("world-writable mode is HIGH, got %s", issues[0].Severity)
	}
	if issues[0].Confidence != issue.High {
		t.Fatalf("expected HIGH confidence, got %s", issues[0].Confidence)
	}
}

func TestFilePermissions_GroupExecutable(t *testing.T) {
	issues := evalFirst(t, FilePermissions{}, chmodSrc("0o610"), "CallExpr", nil)

	if len(issues) != 1 {
		t.Fatalf("expected exactly 1 issue, got %d", len(issues))
	}
	if issues[0].Severity != issue.Medium {
		t.Fatalf("group-executable mode is MEDIUM, got %s", issues[0].Severity)
	}
}

func TestFilePermissions_SafeMode(t *testing.T) {
	if issues := evalFirst(t, FilePermissions{}, chmodSrc("0o600"), "CallExpr", nil); len(issues) != 0 {
		t.Fatalf("safe mode must not fire, got %d issues", len(issues))
	}
}

func TestFilePermissions_NonLiteralMode(t *testing.T) {
	src := "package main\n\nimport \"os\"\n\nfunc f(mode os.FileMode) { os.Chmod(\"key.pem\", mode) }\n"
	if issues := evalFirst(t, FilePermissions{}, src, "CallExpr", nil); len(issues) != 0 {
		t.Fatalf("non-literal mode cannot be reasoned about, got %d issues", len(issues))
	}
}

func TestFilePermissions_MessageNamesFile(t *testing.T) {
	issues := evalFirst(t, FilePermissions{}, chmodSrc("0o777"), "CallExpr", nil)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	want := "Chmod setting a permissive mask 0777 on file (key.pem)."
	if issues[0].Message != want {
		t.Fatalf("expected %q, got %q", want, issues[0].Message)
	}
}

func TestFilePermissions_IgnoresOtherCalls(t *testing.T) {
	src := "package main\n\nimport \"os\"\n\nfunc f() { os.Remove(\"key.pem\") }\n"
	if issues := evalFirst(t, FilePermissions{}, src, "CallExpr", nil); len(issues) != 0 {
		t.Fatalf("non-chmod call must not fire, got %d issues", len(issues))
	}
}

// ---------------------------------------------------------------------------
// B104 bind all interfaces
// ---------------------------------------------------------------------------

func TestBindAllInterfaces(t *testing.T) {
	src := "package main\n\nvar addr = \"0.0.0.0:8080\"\n"
	issues := evalFirst(t, BindAllInterfaces{}, src, "BasicLit", nil)

	if len(issues) != 1 || issues[0].RuleID != "B104" {
		t.Fatalf("expected B104, got %v", issues)
	}
}

func TestBindAllInterfaces_Localhost(t *testing.T) {
	src := "package main\n\nvar addr = \"127.0.0.1:8080\"\n"
	if issues := evalFirst(t, BindAllInterfaces{}, src, "BasicLit", nil); len(issues) != 0 {
		t.Fatalf("localhost must not fire, got %d issues", len(issues))
	}
}

// ---------------------------------------------------------------------------
// B108 hardcoded tmp directory
// ---------------------------------------------------------------------------

func TestHardcodedTmpDir(t *testing.T) {
	src := "package main\n\nvar path = \"/tmp/scratch\"\n"
	issues := evalFirst(t, HardcodedTmpDir{}, src, "BasicLit", nil)

	if len(issues) != 1 || issues[0].RuleID != "B108" {
		t.Fatalf("expected B108, got %v", issues)
	}
}

func TestHardcodedTmpDir_SettingsOverride(t *testing.T) {
	settings := rule.SettingsMap{"B108.dirs": []string{"/scratch/"}}

	src := "package main\n\nvar path = \"/tmp/scratch\"\n"
	if issues := evalFirst(t, HardcodedTmpDir{}, src, "BasicLit", settings); len(issues) != 0 {
		t.Fatalf("overridden prefix list must not match /tmp, got %d issues", len(issues))
	}

	src = "package main\n\nvar path = \"/scratch/x\"\n"
	if issues := evalFirst(t, HardcodedTmpDir{}, src, "BasicLit", settings); len(issues) != 1 {
		t.Fatalf("expected override prefix to fire, got %d issues", len(issues))
	}
}

func TestBuiltin_Registration(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range Builtin() {
		if r.ID() == "" || len(r.Kinds()) == 0 {
			t.Fatalf("rule %T must declare an id and kinds", r)
		}
		if seen[r.ID()] {
			t.Fatalf("duplicate builtin rule id %s", r.ID())
		}
		seen[r.ID()] = true
	}
}
