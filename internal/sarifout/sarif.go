// Package sarifout renders finding collections as SARIF 2.1.0 for code
// scanning integrations.
package sarifout

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/jward/pyreview/internal/findings"
)

const informationURI = "https://github.com/jward/pyreview"

// Write renders the findings as a single-run SARIF report, in the order
// given.
func Write(w io.Writer, list []findings.Finding) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("pyreview", informationURI)
	for _, f := range list {
		rule := run.AddRule(f.RuleID).
			WithDescription(f.Message).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: toSarifLevel(f.Severity),
			})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Location.File)).
				WithRegion(sarif.NewRegion().
					WithStartLine(f.Location.Line).
					WithStartColumn(f.Location.Column + 1)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(toSarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)

	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("write SARIF report: %w", err)
	}
	return nil
}

// toSarifLevel maps severities onto the three SARIF levels. INFO and HINT
// both become "note"; SARIF has nothing finer.
func toSarifLevel(s findings.Severity) string {
	switch s {
	case findings.SeverityError:
		return "error"
	case findings.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
