// Package findings defines the shared vocabulary of analysis results: the
// Severity scale, source Locations, individual Findings, and the ordered
// Collection every pass emits into.
package findings

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Severity ranks findings by urgency. Error is the most severe and sorts
// first; the numeric values define the total order.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// severityValues maps severities to their wire names (lowercase, used in
// JSON and CLI flags).
var severityValues = map[Severity]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
	SeverityHint:    "hint",
}

// String returns the lowercase wire name, e.g. "warning".
func (s Severity) String() string {
	if v, ok := severityValues[s]; ok {
		return v
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Label returns the uppercase display name used in text output, e.g. "WARNING".
var severityLabels = map[Severity]string{
	SeverityError:   "ERROR",
	SeverityWarning: "WARNING",
	SeverityInfo:    "INFO",
	SeverityHint:    "HINT",
}

func (s Severity) Label() string {
	if l, ok := severityLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// AtLeast reports whether s is at least as severe as min under the
// Error < Warning < Info < Hint ordering.
func (s Severity) AtLeast(min Severity) bool {
	return s <= min
}

// MarshalJSON encodes the severity as its lowercase wire name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a lowercase wire name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseSeverity(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a wire name ("error", "warning", "info", "hint")
// to a Severity.
func ParseSeverity(v string) (Severity, error) {
	for sev, name := range severityValues {
		if name == v {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("findings: unknown severity %q", v)
}

// Severities lists all severities from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityError, SeverityWarning, SeverityInfo, SeverityHint}
}

// Location identifies a position in a source file. Line is 1-based, Column
// 0-based. EndLine and EndColumn are optional.
type Location struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   *int   `json:"end_line"`
	EndColumn *int   `json:"end_column"`
}

// String formats the location as "file:line:column".
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Finding is a single reported issue. RuleID is the stable contract surface;
// tests and downstream tooling key off it, never off message text.
type Finding struct {
	Message    string            `json:"message"`
	Severity   Severity          `json:"severity"`
	Location   Location          `json:"location"`
	RuleID     string            `json:"rule_id"`
	Category   string            `json:"category"`
	Suggestion string            `json:"suggestion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// New constructs a Finding with the given fields. Category defaults to
// "general" when empty.
func New(message string, severity Severity, location Location, ruleID string) Finding {
	return Finding{
		Message:  message,
		Severity: severity,
		Location: location,
		RuleID:   ruleID,
		Category: "general",
	}
}

// String formats the finding for display: "[ERROR] file:1:0: message (SEC001)".
func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", f.Severity.Label(), f.Location, f.Message, f.RuleID)
}

// Collection is an ordered, appendable sequence of findings. Filtering and
// sorting never mutate the receiver; insertion order is preserved except
// where an explicit sort is requested.
type Collection struct {
	findings []Finding
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a finding.
func (c *Collection) Add(f Finding) {
	c.findings = append(c.findings, f)
}

// Extend appends all findings from other, in order.
func (c *Collection) Extend(other *Collection) {
	if other == nil {
		return
	}
	c.findings = append(c.findings, other.findings...)
}

// All returns the findings in insertion order. The returned slice is a copy.
func (c *Collection) All() []Finding {
	out := make([]Finding, len(c.findings))
	copy(out, c.findings)
	return out
}

// Len returns the number of findings.
func (c *Collection) Len() int {
	return len(c.findings)
}

// Empty reports whether the collection has no findings.
func (c *Collection) Empty() bool {
	return len(c.findings) == 0
}

// FilterBySeverity returns a new collection of findings with exactly the
// given severity.
func (c *Collection) FilterBySeverity(sev Severity) *Collection {
	out := NewCollection()
	for _, f := range c.findings {
		if f.Severity == sev {
			out.Add(f)
		}
	}
	return out
}

// FilterMinSeverity returns a new collection of findings at least as severe
// as min (inclusive).
func (c *Collection) FilterMinSeverity(min Severity) *Collection {
	out := NewCollection()
	for _, f := range c.findings {
		if f.Severity.AtLeast(min) {
			out.Add(f)
		}
	}
	return out
}

// FilterByFile returns a new collection of findings for the given file path.
func (c *Collection) FilterByFile(file string) *Collection {
	out := NewCollection()
	for _, f := range c.findings {
		if f.Location.File == file {
			out.Add(f)
		}
	}
	return out
}

// FilterByCategory returns a new collection of findings with the given category.
func (c *Collection) FilterByCategory(category string) *Collection {
	out := NewCollection()
	for _, f := range c.findings {
		if f.Category == category {
			out.Add(f)
		}
	}
	return out
}

// SortedBySeverity returns the findings sorted by severity, Error first.
// The sort is stable: findings of equal severity keep insertion order.
func (c *Collection) SortedBySeverity() []Finding {
	out := c.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity < out[j].Severity
	})
	return out
}

// SortedByLocation returns the findings sorted by (file path, line),
// stable within equal keys.
func (c *Collection) SortedByLocation() []Finding {
	out := c.All()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Location.File != out[j].Location.File {
			return out[i].Location.File < out[j].Location.File
		}
		return out[i].Location.Line < out[j].Location.Line
	})
	return out
}

// ErrorCount returns the number of Error-severity findings.
func (c *Collection) ErrorCount() int {
	return c.FilterBySeverity(SeverityError).Len()
}

// WarningCount returns the number of Warning-severity findings.
func (c *Collection) WarningCount() int {
	return c.FilterBySeverity(SeverityWarning).Len()
}

// MarshalJSON encodes the collection as a JSON array of findings.
func (c *Collection) MarshalJSON() ([]byte, error) {
	if c.findings == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.findings)
}
