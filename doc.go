// Package pyreview provides static analysis for Python source code built on
// tree-sitter. It parses files into concrete syntax trees and runs a fixed
// set of analysis passes over them, producing structured findings with
// stable rule IDs.
//
// # Passes
//
// Four passes make up the rule set:
//
//   - correctness (COR...): mutable default arguments, comparisons with
//     None, unreachable code, bare except clauses, constant assertions.
//   - security (SEC...): eval/exec, hardcoded secrets, shell injection,
//     unsafe deserialization, weak hashing, SQL built from interpolation.
//   - performance (PERF...): range(len(...)) loops, string concatenation in
//     loops, loops that could be comprehensions, membership tests on list
//     literals, sorted(...)[0] extremum selection.
//   - style (STY...): naming conventions, line length, import grouping,
//     whitespace.
//
// Each pass implements [Pass] and never returns a Go error: unreadable or
// unparsable input becomes a single ERROR finding in the result.
//
// # Usage
//
// Create an [Engine], point it at files or a directory, and inspect the
// returned collection:
//
//	e, err := pyreview.New(
//		pyreview.WithPasses("correctness", "security"),
//		pyreview.WithMinSeverity(pyreview.SeverityWarning),
//	)
//	if err != nil { ... }
//
//	results, err := e.AnalyzeDirectory(context.Background(), "path/to/project")
//	for _, f := range results.SortedByLocation() {
//		fmt.Println(f)
//	}
//
// # Findings
//
// A [Finding] carries a message, a [Severity] (ERROR, WARNING, INFO, HINT),
// a file/line/column [Location], a stable rule ID, its pass name as a
// category, and an optional fix suggestion. [Collection] offers
// non-destructive filters and sorts; severity ranks ERROR highest, so
// filtering at WARNING keeps errors and warnings.
//
// Lines are 1-based and columns 0-based, matching Python tracebacks.
package pyreview
