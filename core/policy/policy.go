// Package policy turns a filtered scan result into a pass/fail outcome for
// CI pipelines. Severity and confidence floors drop low-ranking issues from
// consideration; the fail-on threshold decides the exit code from what
// remains.
package policy

import (
	"fmt"

	"github.com/siftsec/sift/core/issue"
)

// Config defines the policy evaluation parameters. Zero values mean no
// floor: every surfaced issue counts.
type Config struct {
	// SeverityFloor drops issues below this severity before deciding.
	SeverityFloor issue.Level `yaml:"severity_floor"`
	// ConfidenceFloor drops issues below this confidence before deciding.
	ConfidenceFloor issue.Level `yaml:"confidence_floor"`
	// FailOn fails the run when any remaining issue is at or above this
	// severity. Undefined means any remaining issue fails.
	FailOn issue.Level `yaml:"fail_on"`
}

// Result holds the outcome of a policy evaluation.
type Result struct {
	Pass     bool
	ExitCode int
	// Considered are the issues that survived the floors, in input order.
	Considered []issue.Issue
	Summary    string
}

// Apply filters issues through the configured floors, preserving order.
func (c Config) Apply(issues []issue.Issue) []issue.Issue {
	var out []issue.Issue
	for _, i := range issues {
		if i.Severity < c.SeverityFloor || i.Confidence < c.ConfidenceFloor {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Evaluate applies the floors and the fail-on threshold. Exit code 0 means
// pass, 1 means findings at or above the threshold remain.
func Evaluate(cfg Config, issues []issue.Issue) *Result {
	r := &Result{Pass: true, Considered: cfg.Apply(issues)}

	for _, i := range r.Considered {
		if i.Severity >= cfg.FailOn {
			r.Pass = false
			r.ExitCode = 1
			break
		}
	}

	if r.Pass {
		r.Summary = fmt.Sprintf("policy: pass (%d issue(s) considered)", len(r.Considered))
	} else {
		r.Summary = fmt.Sprintf("policy: fail (%d issue(s) considered)", len(r.Considered))
	}
	return r
}
