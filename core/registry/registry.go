// Package registry builds the per-node-kind rule dispatch table. It collects
// rule implementations, applies profile include/exclude filters by
// identifier, and materializes blocklist rule instances for every node kind
// with surviving entries. A Registry is built once per run and is read-only
// afterwards, so it is safe to share across concurrent file scans.
package registry

import (
	"fmt"

	"github.com/siftsec/sift/core/blocklist"
	"github.com/siftsec/sift/core/rule"
)

// ConfigurationError reports an invalid registry build input, such as
// duplicate rule identifiers. It is fatal and surfaced before any file is
// processed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "registry configuration: " + e.Reason
}

// Profile filters the rule set at build time. An empty include set means no
// restriction. When both include and exclude are non-empty, include wins and
// exclude is ignored; the two are never applied together.
type Profile struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// Blocklist, when non-nil, replaces the builtin blocklist table
	// wholesale. There is no merging.
	Blocklist blocklist.Table `yaml:"blocklist"`
}

// Registry is the immutable dispatch table mapping node kinds to their
// ordered rule lists.
type Registry struct {
	byKind map[string][]rule.Rule
}

// Build constructs a Registry from the supplied rule implementations and an
// optional profile. rules is the full enumerated set handed over by the
// host's extension loader; ordering is preserved into the dispatch lists.
// Duplicate identifiers across ordinary rules and blocklist entries are a
// ConfigurationError.
func Build(profile *Profile, rules []rule.Rule) (*Registry, error) {
	table := blocklist.Builtin()
	var include, exclude map[string]bool
	if profile != nil {
		if profile.Blocklist != nil {
			table = profile.Blocklist
		}
		include = toSet(profile.Include)
		exclude = toSet(profile.Exclude)
	}
	if len(include) > 0 {
		// Include takes precedence; a simultaneous exclude list is ignored.
		exclude = nil
	}

	if err := checkUniqueIDs(rules, table); err != nil {
		return nil, err
	}

	r := &Registry{byKind: make(map[string][]rule.Rule)}

	for _, impl := range rules {
		if !keep(impl.ID(), include, exclude) {
			continue
		}
		for _, kind := range impl.Kinds() {
			r.byKind[kind] = append(r.byKind[kind], impl)
		}
	}

	// The blocklist rule itself answers to RuleID for filtering; its entries
	// are filtered individually by their own identifiers.
	if keep(blocklist.RuleID, include, exclude) {
		for kind, entries := range table.Filter(include, exclude) {
			r.byKind[kind] = append(r.byKind[kind], blocklist.NewRule(kind, entries))
		}
	}

	return r, nil
}

// RulesFor returns the ordered rule list registered for a node kind. Unknown
// kinds return an empty list, not an error.
func (r *Registry) RulesFor(kind string) []rule.Rule {
	return r.byKind[kind]
}

// Kinds returns every node kind with at least one registered rule.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.byKind))
	for k := range r.byKind {
		out = append(out, k)
	}
	return out
}

// keep applies the include-precedence filter to a single identifier.
func keep(id string, include, exclude map[string]bool) bool {
	if len(include) > 0 {
		return include[id]
	}
	return !exclude[id]
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// checkUniqueIDs verifies global identifier uniqueness across ordinary rules
// and blocklist entries, including the blocklist umbrella id.
func checkUniqueIDs(rules []rule.Rule, table blocklist.Table) error {
	seen := map[string]bool{blocklist.RuleID: true}
	for _, impl := range rules {
		id := impl.ID()
		if seen[id] {
			return &ConfigurationError{Reason: fmt.Sprintf("duplicate rule identifier %q", id)}
		}
		seen[id] = true
	}
	entrySeen := map[string]bool{}
	for _, entries := range table {
		for _, e := range entries {
			id := e.EffectiveID()
			if seen[id] {
				return &ConfigurationError{Reason: fmt.Sprintf("blocklist entry identifier %q collides with a rule", id)}
			}
			// The same entry may legitimately be registered under several
			// node kinds, but two distinct entries must not share an id.
			if entrySeen[id] && !sameEntryAcrossKinds(table, id) {
				return &ConfigurationError{Reason: fmt.Sprintf("duplicate blocklist entry identifier %q", id)}
			}
			entrySeen[id] = true
		}
	}
	return nil
}

// sameEntryAcrossKinds reports whether every occurrence of id in the table
// refers to an identical entry definition.
func sameEntryAcrossKinds(table blocklist.Table, id string) bool {
	var first *blocklist.Entry
	for _, entries := range table {
		for i := range entries {
			if entries[i].EffectiveID() != id {
				continue
			}
			if first == nil {
				first = &entries[i]
				continue
			}
			if entries[i].Name != first.Name || entries[i].Message != first.Message {
				return false
			}
		}
	}
	return true
}
