package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	core "github.com/siftsec/sift/core"
	"github.com/siftsec/sift/core/report"
)

// runWatchCmd re-scans the target whenever its Go sources change, debouncing
// bursts of filesystem events.
func runWatchCmd(args []string, logger hclog.Logger) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var (
		flags    scanFlags
		debounce time.Duration
	)
	flags.register(fs)
	fs.DurationVar(&debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	target := "."
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating watcher: %v\n", err)
		return 2
	}
	defer watcher.Close()

	if err := addDirsRecursive(watcher, target); err != nil {
		fmt.Fprintf(os.Stderr, "error: watching directories: %v\n", err)
		return 2
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("watch: scanning %s (debounce: %s)\n", target, debounce)
	printScanResults(target, flags, logger)

	var mu sync.Mutex
	var timer *time.Timer

	resetTimer := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			fmt.Printf("watch: re-scanning %s\n", target)
			printScanResults(target, flags, logger)
		})
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if !strings.HasSuffix(event.Name, ".go") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				resetTimer()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			logger.Warn("watch error", "error", err)
		case <-sigCh:
			fmt.Println("watch: stopping")
			return 0
		}
	}
}

// printScanResults runs one scan and prints the text report; watch keeps
// going regardless of scan outcome.
func printScanResults(target string, flags scanFlags, logger hclog.Logger) {
	opts, err := flags.options(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	res, err := core.RunScanWithOptions(context.Background(), target, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	data, err := (&report.TextReporter{}).Generate(res.Run)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	os.Stdout.Write(data)
}

// addDirsRecursive watches target and every directory below it, skipping
// VCS and dependency directories.
func addDirsRecursive(watcher *fsnotify.Watcher, target string) error {
	return filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		switch d.Name() {
		case ".git", "vendor", "node_modules":
			if path != target {
				return filepath.SkipDir
			}
		}
		return watcher.Add(path)
	})
}
