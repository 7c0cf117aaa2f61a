// Package report serializes scan results to output formats. The JSON
// reporter produces the canonical report document, which is also the format
// baseline diffs are loaded from; SARIF and plain-text writers cover CI
// upload and terminal use.
package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/siftsec/sift/core/engine"
	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/metrics"
)

// Reporter is the contract for serializing a scan result. Each output
// format implements it.
type Reporter interface {
	Generate(res *engine.RunResult) ([]byte, error)
}

// Meta contains metadata about the report itself.
type Meta struct {
	SchemaVersion string `json:"schema_version"`
	GeneratedAt   string `json:"generated_at"`
	ToolName      string `json:"tool_name"`
	ToolVersion   string `json:"tool_version"`
}

// SkippedFile records one file that could not be analyzed and why.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// JSONReport is the top-level structure serialized to JSON. Results carry
// the surfaced issues in discovery order; Metrics holds one record per file
// plus the running totals under metrics.TotalsKey.
type JSONReport struct {
	Meta      Meta                          `json:"meta"`
	Results   []issue.Issue                 `json:"results"`
	Skipped   []SkippedFile                 `json:"skipped,omitempty"`
	Metrics   map[string]metrics.FileRecord `json:"metrics"`
	Baselined []issue.Issue                 `json:"baselined,omitempty"`
}

// JSONReporter produces the canonical JSON report.
type JSONReporter struct {
	ToolVersion string
	// Baselined, when set, is included so reports can state how many issues
	// a baseline suppressed.
	Baselined []issue.Issue
}

// NewJSONReporter returns a JSONReporter embedding the given tool version.
func NewJSONReporter(version string) *JSONReporter {
	return &JSONReporter{ToolVersion: version}
}

// Generate serializes the run result to pretty-printed JSON.
func (r *JSONReporter) Generate(res *engine.RunResult) ([]byte, error) {
	results := res.Issues
	// Guarantee "results": [] rather than null for a clean run.
	if results == nil {
		results = []issue.Issue{}
	}

	mrec := res.Metrics.Files()
	mrec[metrics.TotalsKey] = res.Metrics.Totals()

	var skipped []SkippedFile
	for _, f := range res.Skipped() {
		skipped = append(skipped, SkippedFile{Path: f.Path, Reason: f.SkipReason})
	}

	doc := JSONReport{
		Meta: Meta{
			SchemaVersion: "1.0.0",
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			ToolName:      "sift",
			ToolVersion:   r.ToolVersion,
		},
		Results:   results,
		Skipped:   skipped,
		Metrics:   mrec,
		Baselined: r.Baselined,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// WriteToFile generates the JSON report and writes it to path with 0644
// permissions. Parent directories must already exist.
func (r *JSONReporter) WriteToFile(res *engine.RunResult, path string) error {
	data, err := r.Generate(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
