package report

import (
	"fmt"
	"strings"

	"github.com/siftsec/sift/core/engine"
	"github.com/siftsec/sift/core/metrics"
)

// TextReporter renders results for terminal consumption: one block per
// issue with its snippet, followed by skip notes and a metrics summary.
type TextReporter struct {
	// Verbose includes per-file metrics in the summary.
	Verbose bool
}

// Generate renders the plain-text report.
func (r *TextReporter) Generate(res *engine.RunResult) ([]byte, error) {
	var b strings.Builder

	for _, iss := range res.Issues {
		fmt.Fprintf(&b, ">> Issue: [%s] %s\n", iss.RuleID, iss.Message)
		fmt.Fprintf(&b, "   Severity: %s   Confidence: %s\n", iss.Severity, iss.Confidence)
		if iss.CweLink != "" {
			fmt.Fprintf(&b, "   CWE: CWE-%d (%s)\n", iss.Cwe.ID, iss.CweLink)
		}
		fmt.Fprintf(&b, "   Location: %s:%d\n", iss.FilePath, iss.Line)
		if iss.Code != "" {
			for _, line := range strings.Split(strings.TrimRight(iss.Code, "\n"), "\n") {
				fmt.Fprintf(&b, "   %s\n", line)
			}
		}
		b.WriteString("\n")
	}

	for _, f := range res.Skipped() {
		fmt.Fprintf(&b, "skipped %s: %s\n", f.Path, f.SkipReason)
	}

	totals := res.Metrics.Totals()
	fmt.Fprintf(&b, "scanned %d file(s), %d loc: %d issue(s), %d nosec, %d skipped test(s)\n",
		len(res.Files), totals.LOC, len(res.Issues), totals.Nosec, totals.SkippedTests)

	if r.Verbose {
		for path, rec := range res.Metrics.Files() {
			if path == metrics.TotalsKey {
				continue
			}
			fmt.Fprintf(&b, "  %s: loc=%d nosec=%d skipped_tests=%d\n",
				path, rec.LOC, rec.Nosec, rec.SkippedTests)
		}
	}

	return []byte(b.String()), nil
}
