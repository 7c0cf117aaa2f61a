// Package main is the entry point for the sift CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code.
// 0 = clean (no findings), 1 = findings detected, 2 = error.
func run(args []string) int {
	fs := flag.NewFlagSet("sift", flag.ContinueOnError)

	var (
		verboseFlag bool
		versionFlag bool
	)
	fs.BoolVar(&verboseFlag, "verbose", false, "enable verbose diagnostics")
	fs.BoolVar(&verboseFlag, "v", false, "enable verbose diagnostics (shorthand)")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sift <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  scan <path>      Scan Go sources for security issues\n")
		fmt.Fprintf(os.Stderr, "  baseline <path>  Record the current findings as a baseline\n")
		fmt.Fprintf(os.Stderr, "  watch <path>     Re-scan on file changes\n")
		fmt.Fprintf(os.Stderr, "  version          Print version and exit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if versionFlag {
		fmt.Printf("sift %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	logger := newLogger(verboseFlag)

	remaining := fs.Args()
	if len(remaining) == 0 {
		fs.Usage()
		return 2
	}

	command := remaining[0]
	switch command {
	case "scan":
		return runScanCmd(remaining[1:], logger)
	case "baseline":
		return runBaselineCmd(remaining[1:], logger)
	case "watch":
		return runWatchCmd(remaining[1:], logger)
	case "version":
		fmt.Printf("sift %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fs.Usage()
		return 2
	}
}

// newLogger builds the diagnostics logger. Warnings (skipped files, failed
// rule evaluations) always surface; verbose raises the level to debug.
func newLogger(verbose bool) hclog.Logger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "sift",
		Output: os.Stderr,
		Level:  level,
	})
}
