package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	core "github.com/siftsec/sift/core"
	"github.com/siftsec/sift/core/baseline"
)

// runBaselineCmd scans the target and records every current finding as the
// baseline, so subsequent scans only surface new issues.
func runBaselineCmd(args []string, logger hclog.Logger) int {
	fs := flag.NewFlagSet("baseline", flag.ContinueOnError)
	var (
		flags scanFlags
		out   string
	)
	flags.register(fs)
	fs.StringVar(&out, "out", "", "baseline file to write (default .sift/baseline.json under the target)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	target := "."
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}
	if out == "" {
		out = baseline.DefaultPath(target)
	}

	opts, err := flags.options(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	// A baseline snapshot always records the full current state.
	opts.BaselinePath = ""

	res, err := core.RunScanWithOptions(context.Background(), target, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if err := baseline.Save(out, res.Run.Issues); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	fmt.Printf("baseline: recorded %d finding(s) to %s\n", len(res.Run.Issues), out)
	return 0
}
