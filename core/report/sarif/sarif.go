// Package sarif converts scan results to SARIF 2.1.0 for code-scanning
// upload endpoints.
package sarif

import (
	"bytes"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/siftsec/sift/core/engine"
	"github.com/siftsec/sift/core/issue"
)

const informationURI = "https://github.com/siftsec/sift"

// Reporter serializes a run result as a SARIF document with a single run.
type Reporter struct {
	ToolVersion string
}

// NewReporter returns a SARIF reporter embedding the given tool version.
func NewReporter(version string) *Reporter {
	return &Reporter{ToolVersion: version}
}

// Generate produces the SARIF document bytes.
func (r *Reporter) Generate(res *engine.RunResult) ([]byte, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}

	run := sarif.NewRunWithInformationURI("sift", informationURI)
	run.Tool.Driver.WithVersion(r.ToolVersion)

	for _, iss := range res.Issues {
		rule := run.AddRule(iss.RuleID).
			WithDescription(iss.Message).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: toSarifLevel(iss.Severity),
			})
		if link := iss.Cwe.Link(); link != "" {
			rule.WithHelpURI(link)
		}

		region := sarif.NewRegion().WithStartLine(iss.Line)
		if n := len(iss.LineRange); n > 0 {
			region.WithEndLine(iss.LineRange[n-1])
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(iss.FilePath)).
				WithRegion(region),
		)

		result := sarif.NewRuleResult(iss.RuleID).
			WithMessage(sarif.NewTextMessage(iss.Message)).
			WithLevel(toSarifLevel(iss.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	doc.AddRun(run)

	var buf bytes.Buffer
	if err := doc.PrettyWrite(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// toSarifLevel maps sift severity levels onto SARIF result levels.
func toSarifLevel(l issue.Level) string {
	switch l {
	case issue.High:
		return "error"
	case issue.Medium:
		return "warning"
	case issue.Low:
		return "note"
	default:
		return "none"
	}
}
