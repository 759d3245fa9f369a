package pyreview

import "github.com/jward/pyreview/internal/findings"

// Public type aliases for the internal findings types used in the Engine
// API. These are Go type aliases (=), identical to the internal types at
// compile time, so callers never need conversions.

type Finding = findings.Finding
type Location = findings.Location
type Severity = findings.Severity
type Collection = findings.Collection

const (
	SeverityError   = findings.SeverityError
	SeverityWarning = findings.SeverityWarning
	SeverityInfo    = findings.SeverityInfo
	SeverityHint    = findings.SeverityHint
)

// NewCollection returns an empty findings collection.
func NewCollection() *Collection { return findings.NewCollection() }

// ParseSeverity parses a severity name like "warning".
func ParseSeverity(s string) (Severity, error) { return findings.ParseSeverity(s) }
