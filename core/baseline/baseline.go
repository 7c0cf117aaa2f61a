// Package baseline filters the current run's issues against a previously
// recorded report so that only new findings surface. Baselines are the JSON
// reports sift itself writes; membership is decided by issue identity (rule
// id, message, suffix-insensitive file path), never by line number, since
// baselines are taken before code drift.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/siftsec/sift/core/issue"
)

// LoadError reports a missing or malformed baseline document. It is fatal
// for the baseline-diff step only; callers may still use the unfiltered
// issue list. It is distinct from "no baseline supplied", which is simply
// not calling Load.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading baseline %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// document is the subset of the report format the baseline reads.
type document struct {
	GeneratedAt string        `json:"generated_at"`
	Results     []issue.Issue `json:"results"`
}

// Baseline is a loaded prior report used as a membership filter.
type Baseline struct {
	entries []issue.Issue
	// index buckets entries by rule id + message; path equivalence is
	// checked per bucket since it is not an exact-match key.
	index map[string][]issue.Issue
}

// Load reads a baseline report from path. Any read or decode failure is a
// LoadError.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return FromIssues(doc.Results), nil
}

// FromIssues builds a baseline directly from a prior issue set.
func FromIssues(entries []issue.Issue) *Baseline {
	b := &Baseline{entries: entries, index: make(map[string][]issue.Issue)}
	for _, e := range entries {
		k := key(e)
		b.index[k] = append(b.index[k], e)
	}
	return b
}

// Len returns the number of baselined issues.
func (b *Baseline) Len() int { return len(b.entries) }

// Contains reports whether the baseline holds an issue matching i.
func (b *Baseline) Contains(i issue.Issue) bool {
	for _, e := range b.index[key(i)] {
		if e.Matches(i) {
			return true
		}
	}
	return false
}

// Filter splits the current issues into those not present in the baseline
// (fresh) and those matched by it (suppressed). Relative order is preserved
// in both slices. A nil baseline passes everything through as fresh.
func (b *Baseline) Filter(current []issue.Issue) (fresh, suppressed []issue.Issue) {
	if b == nil {
		return current, nil
	}
	for _, i := range current {
		if b.Contains(i) {
			suppressed = append(suppressed, i)
		} else {
			fresh = append(fresh, i)
		}
	}
	return fresh, suppressed
}

// Save writes the baseline as a report document using atomic temp-file +
// rename, so a concurrent reader never observes a partial baseline.
func Save(path string, entries []issue.Issue) error {
	doc := document{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Results:     entries,
	}
	if doc.Results == nil {
		doc.Results = []issue.Issue{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling baseline: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating baseline directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".baseline-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming baseline file: %w", err)
	}
	return nil
}

// DefaultPath returns the conventional baseline location within a project.
func DefaultPath(root string) string {
	return filepath.Join(root, ".sift", "baseline.json")
}

func key(i issue.Issue) string {
	return i.RuleID + "\x00" + i.Message
}
