package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/siftsec/sift/core/blocklist"
	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/rule"
)

// stubRule is a minimal ordinary rule for registry tests.
type stubRule struct {
	id    string
	kinds []string
}

func (s stubRule) ID() string      { return s.id }
func (s stubRule) Kinds() []string { return s.kinds }
func (s stubRule) Evaluate(*rule.Context) ([]issue.Issue, error) {
	return nil, nil
}

func testRules() []rule.Rule {
	return []rule.Rule{stubRule{id: "B000", kinds: []string{"BasicLit"}}}
}

// blocklistFor extracts the blocklist rule instance registered for a kind.
func blocklistFor(t *testing.T, r *Registry, kind string) *blocklist.Rule {
	t.Helper()
	for _, impl := range r.RulesFor(kind) {
		if bl, ok := impl.(*blocklist.Rule); ok {
			return bl
		}
	}
	t.Fatalf("no blocklist rule registered for %s", kind)
	return nil
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

func TestBuild_HasDefaults(t *testing.T) {
	r, err := Build(nil, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(r.RulesFor("BasicLit")); got != 1 {
		t.Fatalf("expected 1 rule for BasicLit, got %d", got)
	}
}

func TestBuild_HasBuiltinBlocklist(t *testing.T) {
	r, err := Build(nil, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, kind := range []string{"ImportSpec", "CallExpr"} {
		if got := len(r.RulesFor(kind)); got != 1 {
			t.Fatalf("expected 1 blocklist rule for %s, got %d", kind, got)
		}
	}
}

func TestRulesFor_UnknownKind(t *testing.T) {
	r, err := Build(nil, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := r.RulesFor("NoSuchKind"); len(got) != 0 {
		t.Fatalf("unknown kind must yield an empty list, got %d rules", len(got))
	}
}

// ---------------------------------------------------------------------------
// Profile filtering
// ---------------------------------------------------------------------------

func TestBuild_ProfileIncludeID(t *testing.T) {
	r, err := Build(&Profile{Include: []string{"B000"}}, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(r.RulesFor("BasicLit")); got != 1 {
		t.Fatalf("expected included rule to survive, got %d", got)
	}
	if got := len(r.RulesFor("ImportSpec")); got != 0 {
		t.Fatalf("blocklist not in include list must be dropped, got %d", got)
	}
}

func TestBuild_ProfileExcludeID(t *testing.T) {
	r, err := Build(&Profile{Exclude: []string{"B000"}}, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(r.RulesFor("BasicLit")); got != 0 {
		t.Fatalf("excluded rule must be dropped, got %d", got)
	}
}

func TestBuild_EmptyIncludeKeepsEverything(t *testing.T) {
	r, err := Build(&Profile{Include: []string{}}, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(r.RulesFor("BasicLit")); got != 1 {
		t.Fatalf("empty include means no restriction, got %d rules", got)
	}
}

func TestBuild_EmptyExcludeKeepsEverything(t *testing.T) {
	r, err := Build(&Profile{Exclude: []string{}}, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(r.RulesFor("BasicLit")); got != 1 {
		t.Fatalf("empty exclude means no restriction, got %d rules", got)
	}
}

func TestBuild_IncludeWinsOverExclude(t *testing.T) {
	p := &Profile{Include: []string{"B000"}, Exclude: []string{"B000"}}
	r, err := Build(p, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(r.RulesFor("BasicLit")); got != 1 {
		t.Fatalf("include must take precedence over exclude, got %d rules", got)
	}
}

// ---------------------------------------------------------------------------
// Blocklist filtering
// ---------------------------------------------------------------------------

func TestBuild_ExcludeBlocklistUmbrella(t *testing.T) {
	r, err := Build(&Profile{Exclude: []string{blocklist.RuleID}}, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, kind := range []string{"ImportSpec", "CallExpr"} {
		if got := len(r.RulesFor(kind)); got != 0 {
			t.Fatalf("excluding %s must drop the whole blocklist, %s still has %d", blocklist.RuleID, kind, got)
		}
	}
}

func TestBuild_ExcludeBlocklistEntry(t *testing.T) {
	r, err := Build(&Profile{Exclude: []string{"B401"}}, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	bl := blocklistFor(t, r, "ImportSpec")
	for _, e := range bl.Entries() {
		if e.ID == "B401" {
			t.Fatal("excluded entry must not survive")
		}
	}
	if len(bl.Entries()) == 0 {
		t.Fatal("other entries must survive")
	}
}

func TestBuild_ExcludeAllEntriesOfKind(t *testing.T) {
	// Excluding every ImportSpec entry unregisters the kind entirely; there
	// is no point dispatching a blocklist with nothing to match.
	p := &Profile{Exclude: []string{"B401", "B303", "B304", "B412"}}
	r, err := Build(p, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(r.RulesFor("ImportSpec")); got != 0 {
		t.Fatalf("kind with all entries excluded must be unregistered, got %d", got)
	}
	if got := len(r.RulesFor("CallExpr")); got != 1 {
		t.Fatalf("CallExpr entries were not excluded, expected 1 rule, got %d", got)
	}
}

func TestBuild_IncludeBlocklistEntry(t *testing.T) {
	p := &Profile{Include: []string{blocklist.RuleID, "B401"}}
	r, err := Build(p, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	bl := blocklistFor(t, r, "ImportSpec")
	if len(bl.Entries()) != 1 || bl.Entries()[0].ID != "B401" {
		t.Fatalf("expected only B401 to survive, got %v", bl.Entries())
	}
	if got := len(r.RulesFor("CallExpr")); got != 0 {
		t.Fatalf("CallExpr has no included entries, expected unregistered, got %d", got)
	}
}

func TestBuild_ProfileBlocklistOverride(t *testing.T) {
	override := blocklist.Table{
		"CallExpr": {{
			ID:             "B302",
			QualifiedNames: []string{"encoding/gob.NewDecoder"},
			Message:        "{name}",
		}},
	}
	p := &Profile{Include: []string{blocklist.RuleID, "B302"}, Blocklist: override}
	r, err := Build(p, testRules())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// Substitution is whole-table: the builtin import entries are gone.
	if got := len(r.RulesFor("ImportSpec")); got != 0 {
		t.Fatalf("override table has no ImportSpec entries, got %d rules", got)
	}
	bl := blocklistFor(t, r, "CallExpr")
	if len(bl.Entries()) != 1 || bl.Entries()[0].ID != "B302" {
		t.Fatalf("expected override entry B302, got %v", bl.Entries())
	}
}

// ---------------------------------------------------------------------------
// Configuration errors
// ---------------------------------------------------------------------------

func TestBuild_DuplicateRuleID(t *testing.T) {
	rules := []rule.Rule{
		stubRule{id: "B000", kinds: []string{"BasicLit"}},
		stubRule{id: "B000", kinds: []string{"CallExpr"}},
	}
	if _, err := Build(nil, rules); err == nil {
		t.Fatal("expected configuration error for duplicate rule id")
	}
}

func TestBuild_RuleIDCollidesWithBlocklistEntry(t *testing.T) {
	rules := []rule.Rule{stubRule{id: "B401", kinds: []string{"BasicLit"}}}
	if _, err := Build(nil, rules); err == nil {
		t.Fatal("expected configuration error for rule id colliding with blocklist entry")
	}
}

// ---------------------------------------------------------------------------
// Profile loading
// ---------------------------------------------------------------------------

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `include: [B001, B401]
exclude: []
blocklist:
  CallExpr:
    - name: marshal
      id: B302
      qualified_names: [encoding/gob.NewDecoder]
      message: "Deserialization with {name} of untrusted data."
      severity: MEDIUM
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.Include) != 2 || p.Include[1] != "B401" {
		t.Fatalf("unexpected include %v", p.Include)
	}
	entries := p.Blocklist["CallExpr"]
	if len(entries) != 1 || entries[0].Severity != issue.Medium {
		t.Fatalf("unexpected blocklist %v", p.Blocklist)
	}
}

func TestLoadProfile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(path, []byte("include: [unclosed"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected error for malformed profile")
	}
}
