package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	core "github.com/siftsec/sift/core"
	"github.com/siftsec/sift/core/baseline"
	"github.com/siftsec/sift/core/issue"
	"github.com/siftsec/sift/core/report"
	"github.com/siftsec/sift/core/report/sarif"
)

// scanFlags are the options shared by scan, baseline, and watch.
type scanFlags struct {
	profile    string
	include    string
	exclude    string
	baseline   string
	format     string
	output     string
	workers    int
	severity   string
	confidence string
}

func (f *scanFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.profile, "profile", "", "profile YAML with include/exclude filters and blocklist override")
	fs.StringVar(&f.include, "include", "", "comma-separated rule identifiers to run exclusively")
	fs.StringVar(&f.exclude, "exclude", "", "comma-separated rule identifiers to skip")
	fs.StringVar(&f.baseline, "baseline", "", "baseline report; matching findings are suppressed")
	fs.StringVar(&f.format, "format", "text", "output format: text, json, sarif")
	fs.StringVar(&f.output, "output", "", "write the report to a file instead of stdout")
	fs.IntVar(&f.workers, "workers", 0, "concurrent file scans (0 = one per CPU)")
	fs.StringVar(&f.severity, "severity", "", "minimum severity to report: LOW, MEDIUM, HIGH")
	fs.StringVar(&f.confidence, "confidence", "", "minimum confidence to report: LOW, MEDIUM, HIGH")
}

func (f *scanFlags) options(logger hclog.Logger) (core.ScanOptions, error) {
	opts := core.ScanOptions{
		ProfilePath:  f.profile,
		BaselinePath: f.baseline,
		Include:      splitIDs(f.include),
		Exclude:      splitIDs(f.exclude),
		Workers:      f.workers,
		Logger:       logger,
	}
	var err error
	if opts.SeverityFloor, err = issue.ParseLevel(f.severity); err != nil {
		return opts, err
	}
	if opts.ConfidenceFloor, err = issue.ParseLevel(f.confidence); err != nil {
		return opts, err
	}
	return opts, nil
}

func runScanCmd(args []string, logger hclog.Logger) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	var flags scanFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	target := "."
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}

	opts, err := flags.options(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	res, err := core.RunScanWithOptions(context.Background(), target, opts)
	if err != nil {
		var loadErr *baseline.LoadError
		if errors.As(err, &loadErr) {
			// The scan itself succeeded; refuse to publish unfiltered
			// results as if they were baseline-diffed.
			fmt.Fprintf(os.Stderr, "error: %v (re-run without -baseline for unfiltered results)\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if err := writeReport(res, flags.format, flags.output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	// The policy decision already folds in the project config's fail_on
	// threshold and the floor flags.
	return res.Policy.ExitCode
}

// writeReport serializes the result in the requested format to the output
// file or stdout.
func writeReport(res *core.ScanResult, format, output string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		r := report.NewJSONReporter(version)
		r.Baselined = res.Baselined
		data, err = r.Generate(res.Run)
	case "sarif":
		data, err = sarif.NewReporter(version).Generate(res.Run)
	case "text":
		data, err = (&report.TextReporter{}).Generate(res.Run)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if output == "" || output == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

// splitIDs parses a comma-separated identifier list, dropping empty parts.
func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
