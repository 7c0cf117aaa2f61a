package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadProfile reads a profile definition from a YAML file. The file may
// carry include/exclude identifier lists and an optional blocklist table
// override:
//
//	include: [B103, B001, B401]
//	exclude: []
//	blocklist:
//	  CallExpr:
//	    - name: marshal
//	      id: B302
//	      qualified_names: [encoding/gob.NewDecoder]
//	      message: "Deserialization with {name} of untrusted data is dangerous."
//	      severity: MEDIUM
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("malformed profile %s: %v", path, err)}
	}
	return &p, nil
}
