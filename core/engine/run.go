package engine

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/metrics"
)

// RunResult aggregates a multi-file scan. Issues are ordered by input path
// order, then discovery order within each file, so output is deterministic
// regardless of worker scheduling.
type RunResult struct {
	Files   []FileResult
	Issues  []issue.Issue
	Metrics *metrics.Collector
}

// Skipped returns the files that could not be parsed.
func (r *RunResult) Skipped() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Skipped {
			out = append(out, f)
		}
	}
	return out
}

// RuleErrors returns every recovered rule-evaluation failure across files.
func (r *RunResult) RuleErrors() []RuleError {
	var out []RuleError
	for _, f := range r.Files {
		out = append(out, f.Errors...)
	}
	return out
}

// Run scans the given files with up to workers concurrent file scans. Each
// file has its own tree, context, and metrics record; the registry is shared
// read-only and results are folded in input order once all workers finish.
// workers <= 0 selects one worker per CPU. Run aborts early only if ctx is
// cancelled; unreadable files are recorded as skipped, not fatal.
func (s *Scanner) Run(ctx context.Context, paths []string, workers int) (*RunResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				results[i] = FileResult{Path: path, Skipped: true, SkipReason: err.Error()}
				s.logger.Warn("skipping unreadable file", "file", path, "error", err)
				return nil
			}
			results[i] = s.ScanSource(path, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &RunResult{Files: results, Metrics: metrics.NewCollector()}
	for _, res := range results {
		run.Issues = append(run.Issues, res.Issues...)
		run.Metrics.Record(res.Path, res.Metrics)
	}
	return run, nil
}
