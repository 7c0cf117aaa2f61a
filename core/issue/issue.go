// Package issue defines the canonical finding model used across the sift
// engine and reporters. Every rule produces Issue values which are collected
// by the tree visitor, filtered through suppression and baseline matching,
// and consumed by report formatters (JSON, SARIF, text).
package issue

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Level is the shared ordered scale for both severity and confidence.
// Ordering comparisons use the Level values directly; score aggregation uses
// the weight table, never the other way around.
type Level int

// Level constants ordered from least to most severe.
const (
	Undefined Level = iota
	Low
	Medium
	High
)

// NumLevels is the number of defined levels, used to size score vectors.
const NumLevels = 4

// levelWeights maps each level to its positive score weight.
var levelWeights = [NumLevels]int{1, 3, 5, 10}

// levelNames maps each level to its canonical string form.
var levelNames = [NumLevels]string{"UNDEFINED", "LOW", "MEDIUM", "HIGH"}

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	if l < 0 || int(l) >= NumLevels {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Weight returns the score weight for the level. Passing a value outside the
// defined range is a programmer error and panics.
func (l Level) Weight() int {
	if l < 0 || int(l) >= NumLevels {
		panic(fmt.Sprintf("issue: weight lookup for invalid level %d", int(l)))
	}
	return levelWeights[l]
}

// ParseLevel converts a case-insensitive level name into a Level. The empty
// string parses as Undefined so that optional fields can be left blank.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "UNDEFINED":
		return Undefined, nil
	case "LOW":
		return Low, nil
	case "MEDIUM":
		return Medium, nil
	case "HIGH":
		return High, nil
	}
	return Undefined, fmt.Errorf("issue: unknown level %q", s)
}

// MarshalJSON encodes the level as its canonical string.
func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON decodes a level from its string form.
func (l *Level) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML encodes the level as its canonical string.
func (l Level) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// UnmarshalYAML decodes a level from its string form.
func (l *Level) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Cwe references a Common Weakness Enumeration entry.
type Cwe struct {
	ID int `json:"id"`
}

// Common weakness references used by the built-in rules.
var (
	CweIncorrectPermissions = Cwe{ID: 732}
	CweCleartextTransport   = Cwe{ID: 319}
	CweBrokenCrypto         = Cwe{ID: 327}
	CweWeakRandom           = Cwe{ID: 330}
	CweInsecureTempFile     = Cwe{ID: 377}
	CweMultipleBinds        = Cwe{ID: 605}
)

// Link returns the mitre.org reference URL for the weakness.
func (c Cwe) Link() string {
	if c.ID == 0 {
		return ""
	}
	return fmt.Sprintf("https://cwe.mitre.org/data/definitions/%d.html", c.ID)
}

// Issue is a single security finding. Issues are immutable once created;
// suppression and baseline filtering drop them rather than mutate them.
type Issue struct {
	RuleID     string `json:"rule_id"`
	Severity   Level  `json:"severity"`
	Confidence Level  `json:"confidence"`
	Cwe        Cwe    `json:"cwe"`
	CweLink    string `json:"cwe_link,omitempty"`
	Message    string `json:"message"`
	FilePath   string `json:"file"`
	Line       int    `json:"line"`
	LineRange  []int  `json:"line_range"`
	Code       string `json:"code,omitempty"`
}

// New creates an Issue for the given rule and location. An empty lineRange is
// normalized to the single primary line so the range invariant (contiguous,
// ascending, containing the primary line) always holds.
func New(ruleID string, severity, confidence Level, message string, file string, line int, lineRange []int, cwe Cwe) Issue {
	if len(lineRange) == 0 {
		lineRange = []int{line}
	}
	return Issue{
		RuleID:     ruleID,
		Severity:   severity,
		Confidence: confidence,
		Cwe:        cwe,
		CweLink:    cwe.Link(),
		Message:    message,
		FilePath:   file,
		Line:       line,
		LineRange:  lineRange,
	}
}

// Matches reports whether two issues identify the same finding for baseline
// purposes: same rule, same message, and equivalent file path. Line numbers
// are deliberately excluded because baselines are recorded before code drift.
func (i Issue) Matches(other Issue) bool {
	return i.RuleID == other.RuleID &&
		i.Message == other.Message &&
		pathsEquivalent(i.FilePath, other.FilePath)
}

// pathsEquivalent compares file paths tolerating absolute/relative
// differences: the shorter path must match a trailing path-segment suffix of
// the longer one.
func pathsEquivalent(a, b string) bool {
	a = filepath.ToSlash(filepath.Clean(a))
	b = filepath.ToSlash(filepath.Clean(b))
	if a == b {
		return true
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return strings.HasSuffix(b, "/"+a)
}

// Snippet renders the numbered source excerpt for the issue from the full
// slice of source lines (index 0 = line 1). The excerpt covers the issue's
// line range expanded by window lines on each side; referenced lines outside
// the source are omitted rather than reported as errors.
func (i Issue) Snippet(sourceLines []string, window int) string {
	if len(i.LineRange) == 0 {
		return ""
	}
	start := i.LineRange[0] - window
	end := i.LineRange[len(i.LineRange)-1] + window

	var b strings.Builder
	for n := start; n <= end; n++ {
		if n < 1 || n > len(sourceLines) {
			continue
		}
		fmt.Fprintf(&b, "%d %s\n", n, sourceLines[n-1])
	}
	return b.String()
}
