package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/siftsec/sift/core/policy"
)

// ConfigFileName is the project-level configuration file looked up in the
// scan target directory.
const ConfigFileName = ".sift.yaml"

// ScanConfig holds project-level configuration loaded from .sift.yaml.
type ScanConfig struct {
	Scan   ScanSettings  `yaml:"scan"`
	Policy policy.Config `yaml:"policy"`
}

// ScanSettings controls which files are scanned and how rules are filtered.
type ScanSettings struct {
	// Exclude lists filepath.Match patterns to skip during discovery.
	Exclude []string `yaml:"exclude"`
	// Profile is a path to a profile YAML file, relative to the target.
	Profile string `yaml:"profile"`
	// Baseline is a path to a baseline report, relative to the target.
	Baseline string `yaml:"baseline"`
	// Settings is passed opaquely to rules for their own sub-options.
	Settings map[string]any `yaml:"settings"`
}

// LoadScanConfig reads .sift.yaml from the target directory. A missing file
// yields a zero config with no error; a malformed file is an error.
func LoadScanConfig(target string) (*ScanConfig, error) {
	path := filepath.Join(target, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ScanConfig{}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg ScanConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}
