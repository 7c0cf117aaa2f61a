// Package core provides the shared scan pipeline for sift: discovery,
// registry construction, the engine run, baseline filtering, and policy
// evaluation, tied together for the CLI and for embedding hosts.
package core

import (
	"context"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/siftsec/sift/core/baseline"
	"github.com/siftsec/sift/core/discovery"
	"github.com/siftsec/sift/core/engine"
	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/plugins"
	"github.com/siftsec/sift/core/policy"
	"github.com/siftsec/sift/core/registry"
	"github.com/siftsec/sift/core/rule"
)

// ScanOptions holds optional parameters for RunScanWithOptions. The zero
// value applies project config defaults only. CLI flags take precedence
// over .sift.yaml values.
type ScanOptions struct {
	// ProfilePath points to a profile YAML file overriding the project
	// config's profile.
	ProfilePath string
	// Include/Exclude are rule identifier filters layered on top of any
	// loaded profile.
	Include []string
	Exclude []string
	// BaselinePath points to a prior report; matching issues are dropped.
	BaselinePath string
	// SeverityFloor/ConfidenceFloor override the project policy's floors
	// when set. Undefined leaves the config value in place.
	SeverityFloor   issue.Level
	ConfidenceFloor issue.Level
	// ExtraRules are host-supplied rule implementations registered
	// alongside the built-ins.
	ExtraRules []rule.Rule
	// Workers bounds file-level parallelism; <= 0 means one per CPU.
	Workers int
	// Logger receives diagnostics. Nil means silent.
	Logger hclog.Logger
}

// ScanResult holds the complete output of a scan pipeline run.
type ScanResult struct {
	// Run is the raw engine output; Run.Issues has baseline matches and
	// below-floor findings removed.
	Run *engine.RunResult
	// Baselined are the issues dropped by baseline filtering.
	Baselined []issue.Issue
	// Policy is the pass/fail outcome over the surviving issues.
	Policy *policy.Result
	// Config is the project configuration that applied.
	Config *ScanConfig
}

// RunScan executes the full pipeline against the target path with default
// options.
func RunScan(ctx context.Context, target string) (*ScanResult, error) {
	return RunScanWithOptions(ctx, target, ScanOptions{})
}

// RunScanWithOptions executes the full pipeline: load project config,
// discover Go files, build the registry, run the engine, apply baseline
// filtering, and evaluate policy.
func RunScanWithOptions(ctx context.Context, target string, opts ScanOptions) (*ScanResult, error) {
	cfg, err := LoadScanConfig(target)
	if err != nil {
		return nil, err
	}

	profile, err := resolveProfile(target, cfg, opts)
	if err != nil {
		return nil, err
	}

	reg, err := registry.Build(profile, append(plugins.Builtin(), opts.ExtraRules...))
	if err != nil {
		return nil, err
	}

	walker := discovery.NewWalker(target)
	walker.IgnorePatterns = append(walker.IgnorePatterns, cfg.Scan.Exclude...)
	paths, err := walker.Walk()
	if err != nil {
		return nil, err
	}

	scanner := engine.NewScanner(reg, rule.SettingsMap(cfg.Scan.Settings), opts.Logger)
	run, err := scanner.Run(ctx, paths, opts.Workers)
	if err != nil {
		return nil, err
	}

	res := &ScanResult{Run: run, Config: cfg}

	if path := baselinePath(target, cfg, opts); path != "" {
		base, err := baseline.Load(path)
		if err != nil {
			// The engine output is still valid; the caller decides whether
			// to degrade to the unfiltered list.
			return res, err
		}
		run.Issues, res.Baselined = base.Filter(run.Issues)
	}

	pol := cfg.Policy
	if opts.SeverityFloor != issue.Undefined {
		pol.SeverityFloor = opts.SeverityFloor
	}
	if opts.ConfidenceFloor != issue.Undefined {
		pol.ConfidenceFloor = opts.ConfidenceFloor
	}
	// Floors shape the reported list too, not just the exit decision.
	run.Issues = pol.Apply(run.Issues)
	res.Policy = policy.Evaluate(pol, run.Issues)
	return res, nil
}

// resolveProfile merges the profile file (flag over config) with any ad-hoc
// include/exclude filters from the options.
func resolveProfile(target string, cfg *ScanConfig, opts ScanOptions) (*registry.Profile, error) {
	path := opts.ProfilePath
	if path == "" && cfg.Scan.Profile != "" {
		path = filepath.Join(target, cfg.Scan.Profile)
	}

	var profile *registry.Profile
	if path != "" {
		p, err := registry.LoadProfile(path)
		if err != nil {
			return nil, err
		}
		profile = p
	}

	if len(opts.Include) > 0 || len(opts.Exclude) > 0 {
		if profile == nil {
			profile = &registry.Profile{}
		}
		profile.Include = append(profile.Include, opts.Include...)
		profile.Exclude = append(profile.Exclude, opts.Exclude...)
	}
	return profile, nil
}

// baselinePath picks the baseline location: flag over config; empty means
// no baseline filtering.
func baselinePath(target string, cfg *ScanConfig, opts ScanOptions) string {
	if opts.BaselinePath != "" {
		return opts.BaselinePath
	}
	if cfg.Scan.Baseline != "" {
		return filepath.Join(target, cfg.Scan.Baseline)
	}
	return ""
}
