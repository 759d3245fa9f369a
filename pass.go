package pyreview

import (
	"context"
	"fmt"
	"sort"

	"github.com/jward/pyreview/internal/findings"
)

// Pass is one rule family implemented as an independent tree traversal.
// Analyze never returns a Go error: unreadable or unparsable input becomes a
// single ERROR finding in the returned collection.
type Pass interface {
	Name() string
	Description() string
	Analyze(ctx context.Context, path string) *findings.Collection
}

// passConstructors is the closed registry of passes. The rule set is fixed;
// there is no open-ended registration.
var passConstructors = map[string]func() Pass{
	"correctness": func() Pass { return NewCorrectnessPass() },
	"security":    func() Pass { return NewSecurityPass() },
	"performance": func() Pass { return NewPerformancePass() },
	"style":       func() Pass { return NewStylePass() },
}

// NewPass constructs the named pass. Unknown names are an error.
func NewPass(name string) (Pass, error) {
	ctor, ok := passConstructors[name]
	if !ok {
		return nil, fmt.Errorf("pyreview: unknown pass %q", name)
	}
	return ctor(), nil
}

// PassNames returns the registry names in sorted order.
func PassNames() []string {
	names := make([]string, 0, len(passConstructors))
	for name := range passConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AnalyzeMultiple runs a pass over several files and concatenates the
// results in input order.
func AnalyzeMultiple(ctx context.Context, p Pass, paths []string) *findings.Collection {
	out := findings.NewCollection()
	for _, path := range paths {
		out.Extend(p.Analyze(ctx, path))
	}
	return out
}

// collector accumulates findings for one (pass, file) analysis. It fixes the
// file and category once so the rule checks only supply what varies.
type collector struct {
	file     string
	category string
	out      *findings.Collection
}

func newCollector(file, category string) *collector {
	return &collector{file: file, category: category, out: findings.NewCollection()}
}

// add appends a finding at the given position. suggestion may be empty.
func (c *collector) add(message string, severity findings.Severity, line, column int, ruleID, suggestion string) {
	c.out.Add(findings.Finding{
		Message:    message,
		Severity:   severity,
		Location:   findings.Location{File: c.file, Line: line, Column: column},
		RuleID:     ruleID,
		Category:   c.category,
		Suggestion: suggestion,
	})
}
