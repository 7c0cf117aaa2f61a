// Package metrics aggregates per-file scan statistics: lines of code,
// suppression directives, rule-evaluation failures, and weighted issue
// counts broken down by severity and confidence. Per-file records are
// retained individually and folded into a running totals record as files
// complete, so intermediate totals are always consistent with the files
// processed so far.
package metrics

import (
	"sync"

	"github.com/siftsec/sift/core/issue"
)

// TotalsKey is the reserved record name under which the running totals are
// reported alongside per-file records.
const TotalsKey = "_totals"

// Counts holds issue tallies indexed by level, one vector per ranking
// criterion.
type Counts struct {
	BySeverity   [issue.NumLevels]int `json:"by_severity"`
	ByConfidence [issue.NumLevels]int `json:"by_confidence"`
}

// Score holds the weighted score vectors: each surfaced issue adds its
// severity weight and confidence weight to the corresponding slot.
type Score struct {
	Severity   [issue.NumLevels]int `json:"severity"`
	Confidence [issue.NumLevels]int `json:"confidence"`
}

// FileRecord is the metrics record for a single file.
type FileRecord struct {
	LOC          int    `json:"loc"`
	Nosec        int    `json:"nosec"`
	SkippedTests int    `json:"skipped_tests"`
	Issues       Counts `json:"issues"`
	Score        Score  `json:"score"`
}

// CountIssue folds one surfaced issue into the record.
func (r *FileRecord) CountIssue(i issue.Issue) {
	r.Issues.BySeverity[i.Severity]++
	r.Issues.ByConfidence[i.Confidence]++
	r.Score.Severity[i.Severity] += i.Severity.Weight()
	r.Score.Confidence[i.Confidence] += i.Confidence.Weight()
}

// Merge adds other into r element-wise. Merge is associative and
// commutative, which is what permits folding per-file records in any order,
// including from a parallel scan.
func (r *FileRecord) Merge(other FileRecord) {
	r.LOC += other.LOC
	r.Nosec += other.Nosec
	r.SkippedTests += other.SkippedTests
	for l := 0; l < issue.NumLevels; l++ {
		r.Issues.BySeverity[l] += other.Issues.BySeverity[l]
		r.Issues.ByConfidence[l] += other.Issues.ByConfidence[l]
		r.Score.Severity[l] += other.Score.Severity[l]
		r.Score.Confidence[l] += other.Score.Confidence[l]
	}
}

// Collector accumulates per-file records and the running totals. It is safe
// for concurrent use; the totals are accumulated incrementally under the
// lock, never recomputed from scratch.
type Collector struct {
	mu     sync.Mutex
	files  map[string]FileRecord
	totals FileRecord
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{files: make(map[string]FileRecord)}
}

// Record stores the finished record for a file and folds it into the totals.
func (c *Collector) Record(path string, rec FileRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = rec
	c.totals.Merge(rec)
}

// File returns the record for one file. The boolean is false when the file
// was never recorded.
func (c *Collector) File(path string) (FileRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.files[path]
	return rec, ok
}

// Totals returns a copy of the running totals record.
func (c *Collector) Totals() FileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

// Files returns a copy of all per-file records keyed by path.
func (c *Collector) Files() map[string]FileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]FileRecord, len(c.files))
	for k, v := range c.files {
		out[k] = v
	}
	return out
}
