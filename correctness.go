package pyreview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jward/pyreview/internal/findings"
	"github.com/jward/pyreview/internal/pyast"
)

// CorrectnessPass detects bugs and logic errors: None comparisons with ==,
// mutable default arguments, unreachable code, bare except clauses, and
// constant assert conditions.
type CorrectnessPass struct{}

// NewCorrectnessPass returns a CorrectnessPass.
func NewCorrectnessPass() *CorrectnessPass { return &CorrectnessPass{} }

func (*CorrectnessPass) Name() string { return "correctness" }

func (*CorrectnessPass) Description() string {
	return "Detects bugs, logic errors, and potential runtime failures"
}

// Analyze runs the correctness rules over one file.
func (p *CorrectnessPass) Analyze(ctx context.Context, path string) *findings.Collection {
	c := newCollector(path, "correctness")

	src, err := os.ReadFile(path)
	if err != nil {
		c.add(fmt.Sprintf("File not found: %s", path), findings.SeverityError, 1, 0, "COR000", "")
		return c.out
	}

	tree, err := pyast.Parse(ctx, src, path)
	if err != nil {
		var perr *pyast.ParseError
		if !errors.As(err, &perr) {
			perr = &pyast.ParseError{Line: 1, Column: 0, Message: err.Error()}
		}
		c.add(fmt.Sprintf("Syntax error: %s", perr.Message), findings.SeverityError, perr.Line, perr.Column, "COR001", "")
		return c.out
	}
	defer tree.Close()

	v := &correctnessVisitor{c: c, importedNames: make(map[string]bool)}
	tree.Root().Walk(v.visit)
	return c.out
}

// correctnessVisitor holds per-traversal state. importedNames is tracked in
// document order; no current rule consumes it cross-node.
type correctnessVisitor struct {
	c             *collector
	importedNames map[string]bool
}

func (v *correctnessVisitor) visit(n pyast.Node) {
	switch n.Kind() {
	case "import_statement":
		v.trackImport(n)
	case "import_from_statement":
		v.trackImportFrom(n)
	case "comparison_operator":
		v.checkNoneComparison(n)
	case "function_definition":
		v.checkMutableDefaults(n)
		v.checkUnreachableCode(n)
	case "except_clause":
		v.checkBareExcept(n)
	case "assert_statement":
		v.checkConstantAssert(n)
	}
}

func (v *correctnessVisitor) trackImport(n pyast.Node) {
	for _, b := range pyast.ImportStatementBindings(n) {
		name := b.Local
		if !b.Aliased {
			// `import a.b` binds the top-level name.
			name, _, _ = strings.Cut(name, ".")
		}
		v.importedNames[name] = true
	}
}

func (v *correctnessVisitor) trackImportFrom(n pyast.Node) {
	_, bindings := pyast.ImportFromParts(n)
	for _, b := range bindings {
		v.importedNames[b.Local] = true
	}
}

// checkNoneComparison reports == or != against the None literal, on either
// side, once per operator position that touches None.
func (v *correctnessVisitor) checkNoneComparison(n pyast.Node) {
	operands, ops := pyast.ComparisonParts(n)
	for i, op := range ops {
		if op != "==" && op != "!=" {
			continue
		}
		if i+1 >= len(operands) {
			break
		}
		left, right := operands[i], operands[i+1]

		isText := "is"
		if op == "!=" {
			isText = "is not"
		}
		msg := fmt.Sprintf("Comparison to None should use '%s' instead of '%s'", isText, op)

		if right.Kind() == "none" {
			v.c.add(msg, findings.SeverityWarning, n.Line(), n.Col(), "COR002",
				fmt.Sprintf("Use '%s None' instead of '%s None'", isText, op))
		} else if left.Kind() == "none" {
			v.c.add(msg, findings.SeverityWarning, n.Line(), n.Col(), "COR002",
				fmt.Sprintf("Use 'None %s' instead of 'None %s'", isText, op))
		}
	}
}

// mutableDefaultKinds maps literal node kinds to the type name shown in the
// finding message.
var mutableDefaultKinds = map[string]string{
	"list":       "list",
	"dictionary": "dict",
	"set":        "set",
}

// checkMutableDefaults reports list/dict/set literals used as parameter
// defaults, one finding per offending default, at the default expression.
func (v *correctnessVisitor) checkMutableDefaults(fn pyast.Node) {
	params, ok := fn.ChildByField("parameters")
	if !ok {
		return
	}
	for _, param := range params.NamedChildren() {
		switch param.Kind() {
		case "default_parameter", "typed_default_parameter":
			value, ok := param.ChildByField("value")
			if !ok {
				continue
			}
			typeName, mutable := mutableDefaultKinds[value.Kind()]
			if !mutable {
				continue
			}
			v.c.add(
				fmt.Sprintf("Mutable default argument: %s", typeName),
				findings.SeverityWarning, value.Line(), value.Col(), "COR003",
				"Use None as default and create the mutable object inside the function",
			)
		}
	}
}

// terminalStatements are statements after which code in the same block is
// unreachable.
var terminalStatements = map[string]bool{
	"return_statement":   true,
	"raise_statement":    true,
	"break_statement":    true,
	"continue_statement": true,
}

// checkUnreachableCode reports the first statement following a terminal
// statement in the function's direct body. Scanning stops at the first
// terminal statement found; later dead code in the same block is not
// separately reported.
func (v *correctnessVisitor) checkUnreachableCode(fn pyast.Node) {
	body, ok := fn.ChildByField("body")
	if !ok {
		return
	}
	stmts := body.NamedChildren()
	for i, stmt := range stmts {
		if !terminalStatements[stmt.Kind()] {
			continue
		}
		if i < len(stmts)-1 {
			next := stmts[i+1]
			v.c.add("Unreachable code detected", findings.SeverityWarning,
				next.Line(), next.Col(), "COR004",
				"Remove or move the unreachable code")
		}
		break
	}
}

// checkBareExcept reports exception handlers with no exception type.
func (v *correctnessVisitor) checkBareExcept(n pyast.Node) {
	children := n.NamedChildren()
	if len(children) > 0 && children[0].Kind() == "block" {
		v.c.add(
			"Bare 'except:' clause catches all exceptions including KeyboardInterrupt",
			findings.SeverityWarning, n.Line(), n.Col(), "COR005",
			"Use 'except Exception:' to catch most exceptions, or be more specific",
		)
	}
}

// checkConstantAssert reports asserts whose condition is a literal constant:
// always-true conditions are INFO, always-false WARNING since they abort
// unconditionally.
func (v *correctnessVisitor) checkConstantAssert(n pyast.Node) {
	children := n.NamedChildren()
	if len(children) == 0 {
		return
	}
	cond := children[0]
	if !pyast.IsConstant(cond) {
		return
	}
	truth, ok := pyast.ConstantTruth(cond)
	if !ok {
		return
	}
	if truth {
		v.c.add("Assertion is always true", findings.SeverityInfo,
			n.Line(), n.Col(), "COR006",
			"Remove the assertion or fix the condition")
	} else {
		v.c.add("Assertion is always false", findings.SeverityWarning,
			n.Line(), n.Col(), "COR007",
			"This will always raise AssertionError - is this intentional?")
	}
}
