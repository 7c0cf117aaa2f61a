package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRun_VersionFlag(t *testing.T) {
	code := run([]string{"-version"})
	if code != 0 {
		t.Fatalf("expected exit code 0 for -version, got %d", code)
	}
}

func TestRun_VersionCommand(t *testing.T) {
	code := run([]string{"version"})
	if code != 0 {
		t.Fatalf("expected exit code 0 for version command, got %d", code)
	}
}

func TestRun_NoArgs(t *testing.T) {
	code := run([]string{})
	if code != 2 {
		t.Fatalf("expected exit code 2 for no args, got %d", code)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code := run([]string{"invalid"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for unknown command, got %d", code)
	}
}

func TestRun_ScanCleanDir(t *testing.T) {
	dir := t.TempDir()

	content := "package main\n\nfunc main() {}\n"
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	out := filepath.Join(dir, "report.json")
	code := run([]string{"scan", "-format", "json", "-output", out, dir})
	if code != 0 {
		t.Fatalf("expected exit code 0 for clean directory, got %d", code)
	}
	if _, err := os.Stat(out); os.IsNotExist(err) {
		t.Fatal("expected report.json to be created")
	}
}

func TestRun_ScanDirWithFindings(t *testing.T) {
	dir := t.TempDir()

	content := `package main

import _ "crypto/md5"
`
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	out := filepath.Join(dir, "report.json")
	code := run([]string{"scan", "-format", "json", "-output", out, dir})
	if code != 1 {
		t.Fatalf("expected exit code 1 for findings, got %d", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var doc struct {
		Results []struct {
			RuleID string `json:"rule_id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report must be valid JSON: %v", err)
	}
	if len(doc.Results) != 1 || doc.Results[0].RuleID != "B303" {
		t.Fatalf("expected a single B303 finding, got %+v", doc.Results)
	}
}

func TestRun_ScanSeverityFloor(t *testing.T) {
	dir := t.TempDir()

	// Weak-hash import is MEDIUM severity; a HIGH floor drops it.
	content := "package main\n\nimport _ \"crypto/md5\"\n"
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	code := run([]string{"scan", "-severity", "HIGH", "-format", "json", "-output", filepath.Join(dir, "r.json"), dir})
	if code != 0 {
		t.Fatalf("expected exit code 0 with severity floor, got %d", code)
	}
}

func TestRun_ScanExcludeRule(t *testing.T) {
	dir := t.TempDir()

	content := "package main\n\nimport _ \"crypto/md5\"\n"
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	code := run([]string{"scan", "-exclude", "B303", "-format", "json", "-output", filepath.Join(dir, "r.json"), dir})
	if code != 0 {
		t.Fatalf("expected exit code 0 with B303 excluded, got %d", code)
	}
}

func TestRun_ScanPolicyFailOn(t *testing.T) {
	dir := t.TempDir()

	// Weak-hash import is a MEDIUM finding.
	content := "package main\n\nimport _ \"crypto/md5\"\n"
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	config := "policy:\n  fail_on: HIGH\n"
	if err := os.WriteFile(filepath.Join(dir, ".sift.yaml"), []byte(config), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	out := filepath.Join(dir, "report.json")
	code := run([]string{"scan", "-format", "json", "-output", out, dir})
	if code != 0 {
		t.Fatalf("expected exit code 0 below the fail_on threshold, got %d", code)
	}

	// The finding is still reported even though the policy passes.
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var doc struct {
		Results []struct {
			RuleID string `json:"rule_id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report must be valid JSON: %v", err)
	}
	if len(doc.Results) != 1 || doc.Results[0].RuleID != "B303" {
		t.Fatalf("expected B303 in the report, got %+v", doc.Results)
	}

	// Lowering the threshold to the finding's severity fails the run.
	config = "policy:\n  fail_on: MEDIUM\n"
	if err := os.WriteFile(filepath.Join(dir, ".sift.yaml"), []byte(config), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if code := run([]string{"scan", "-format", "json", "-output", out, dir}); code != 1 {
		t.Fatalf("expected exit code 1 at the fail_on threshold, got %d", code)
	}
}

func TestRun_ScanInvalidSeverity(t *testing.T) {
	code := run([]string{"scan", "-severity", "EXTREME", t.TempDir()})
	if code != 2 {
		t.Fatalf("expected exit code 2 for invalid severity, got %d", code)
	}
}

func TestRun_ScanNonexistentDir(t *testing.T) {
	code := run([]string{"scan", "/nonexistent/path/abc123"})
	if code != 2 {
		t.Fatalf("expected exit code 2 for nonexistent path, got %d", code)
	}
}

func TestRun_ScanMissingBaseline(t *testing.T) {
	dir := t.TempDir()

	content := "package main\n\nimport _ \"crypto/md5\"\n"
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	code := run([]string{"scan", "-baseline", filepath.Join(dir, "nope.json"), dir})
	if code != 2 {
		t.Fatalf("expected exit code 2 for unreadable baseline, got %d", code)
	}
}

func TestRun_ScanUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{"scan", "-format", "xml", dir})
	if code != 2 {
		t.Fatalf("expected exit code 2 for unknown format, got %d", code)
	}
}

func TestRun_BaselineThenScan(t *testing.T) {
	dir := t.TempDir()

	content := "package main\n\nimport _ \"crypto/md5\"\n"
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	base := filepath.Join(dir, "baseline.json")
	if code := run([]string{"baseline", "-out", base, dir}); code != 0 {
		t.Fatalf("expected exit code 0 recording baseline, got %d", code)
	}
	if _, err := os.Stat(base); os.IsNotExist(err) {
		t.Fatal("expected baseline file to be created")
	}

	// The recorded finding is now suppressed.
	code := run([]string{"scan", "-baseline", base, "-format", "json", "-output", filepath.Join(dir, "r.json"), dir})
	if code != 0 {
		t.Fatalf("expected exit code 0 against a fresh baseline, got %d", code)
	}
}

func TestSplitIDs(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"B101", []string{"B101"}},
		{"B101,B102", []string{"B101", "B102"}},
		{" B101 , B102 ", []string{"B101", "B102"}},
		{"B101,,B102", []string{"B101", "B102"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := splitIDs(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d ids, got %d: %v", len(tt.expected), len(result), result)
			}
			for i, id := range result {
				if id != tt.expected[i] {
					t.Fatalf("id[%d]: expected %q, got %q", i, tt.expected[i], id)
				}
			}
		})
	}
}
