// Package blocklist implements the declarative banned-name rule engine. A
// blocklist is a table of entries keyed by node kind; each entry bans a set
// of fully-qualified names and carries its own identifier, severity, and
// message template. One generic rule implementation, parameterized by the
// table slice for its kind, serves every entry.
package blocklist

import (
	"strings"

	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/rule"
)

// RuleID is the umbrella identifier of the blocklist rule itself. Profile
// include lists must name it for any blocklist entry to run; excluding it
// removes the whole table.
const RuleID = "B001"

// LegacyID is assigned to entries that do not declare their own identifier.
const LegacyID = "LEGACY"

// Entry is one declarative blocklist rule: a human label, a stable
// identifier, the set of qualified names that trigger it, and a message
// template with a single {name} slot for the matched name.
type Entry struct {
	Name           string      `yaml:"name" json:"name"`
	ID             string      `yaml:"id" json:"id"`
	QualifiedNames []string    `yaml:"qualified_names" json:"qualified_names"`
	Message        string      `yaml:"message" json:"message"`
	Severity       issue.Level `yaml:"severity" json:"severity"`
	Cwe            issue.Cwe   `yaml:"cwe,omitempty" json:"cwe,omitempty"`
}

// EffectiveID returns the entry's identifier, falling back to LegacyID for
// entries that declare none.
func (e Entry) EffectiveID() string {
	if e.ID == "" {
		return LegacyID
	}
	return e.ID
}

// effectiveSeverity applies the MEDIUM default for entries without an
// explicit severity.
func (e Entry) effectiveSeverity() issue.Level {
	if e.Severity == issue.Undefined {
		return issue.Medium
	}
	return e.Severity
}

// Matches reports whether name is exactly one of the entry's qualified
// names. Prefix or substring matches never trigger.
func (e Entry) Matches(name string) bool {
	for _, qn := range e.QualifiedNames {
		if qn == name {
			return true
		}
	}
	return false
}

// Issue materializes the finding for a matched name. Confidence is always
// HIGH: a declarative entry only fires on an exact resolved name.
func (e Entry) Issue(matched string) issue.Issue {
	msg := strings.ReplaceAll(e.Message, "{name}", matched)
	return issue.Issue{
		RuleID:     e.EffectiveID(),
		Severity:   e.effectiveSeverity(),
		Confidence: issue.High,
		Cwe:        e.Cwe,
		CweLink:    e.Cwe.Link(),
		Message:    msg,
	}
}

// Table maps a node kind to the ordered entries registered for it.
type Table map[string][]Entry

// Filter returns a copy of the table restricted by the rule-identifier
// filters: when include is non-empty only listed entries survive, otherwise
// entries listed in exclude are dropped. Kinds left without entries are
// removed from the table entirely.
func (t Table) Filter(include, exclude map[string]bool) Table {
	out := make(Table, len(t))
	for kind, entries := range t {
		var kept []Entry
		for _, e := range entries {
			id := e.EffectiveID()
			if len(include) > 0 {
				if include[id] {
					kept = append(kept, e)
				}
				continue
			}
			if !exclude[id] {
				kept = append(kept, e)
			}
		}
		if len(kept) > 0 {
			out[kind] = kept
		}
	}
	return out
}

// Rule is the generic blocklist rule scoped to a single node kind. The
// registry materializes one instance per kind that has surviving entries.
type Rule struct {
	kind    string
	entries []Entry
}

// NewRule returns a blocklist rule serving the given entries for one kind.
func NewRule(kind string, entries []Entry) *Rule {
	return &Rule{kind: kind, entries: entries}
}

// ID returns the umbrella blocklist identifier.
func (r *Rule) ID() string { return RuleID }

// Kinds returns the single node kind this instance is scoped to.
func (r *Rule) Kinds() []string { return []string{r.kind} }

// Entries returns the entries this instance serves, in table order.
func (r *Rule) Entries() []Entry { return r.entries }

// Evaluate resolves the node's qualified name and emits one issue per entry
// whose name set contains it. Nodes without a resolvable name produce
// nothing. Overlapping entries each produce their own issue.
func (r *Rule) Evaluate(ctx *rule.Context) ([]issue.Issue, error) {
	name, ok := ctx.QualifiedName()
	if !ok {
		return nil, nil
	}
	var out []issue.Issue
	for _, e := range r.entries {
		if e.Matches(name) {
			out = append(out, e.Issue(name))
		}
	}
	return out, nil
}
