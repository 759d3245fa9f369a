package pyreview

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jward/pyreview/internal/findings"
	"github.com/jward/pyreview/internal/pyast"
)

// PerformancePass detects algorithmic anti-patterns: range(len(...)) loops,
// quadratic string building, loops that could be comprehensions, membership
// tests on list literals, constructor calls where literals serve, and
// sorted(...)[0]/[-1] extremum selection.
type PerformancePass struct{}

// NewPerformancePass returns a PerformancePass.
func NewPerformancePass() *PerformancePass { return &PerformancePass{} }

func (*PerformancePass) Name() string { return "performance" }

func (*PerformancePass) Description() string {
	return "Detects inefficient code patterns and performance anti-patterns"
}

// Analyze runs the performance rules over one file.
func (p *PerformancePass) Analyze(ctx context.Context, path string) *findings.Collection {
	c := newCollector(path, "performance")

	src, err := os.ReadFile(path)
	if err != nil {
		c.add(fmt.Sprintf("File not found: %s", path), findings.SeverityError, 1, 0, "PERF000", "")
		return c.out
	}

	tree, err := pyast.Parse(ctx, src, path)
	if err != nil {
		var perr *pyast.ParseError
		if !errors.As(err, &perr) {
			perr = &pyast.ParseError{Line: 1, Column: 0, Message: err.Error()}
		}
		c.add(fmt.Sprintf("Syntax error: %s", perr.Message), findings.SeverityError, perr.Line, perr.Column, "PERF000", "")
		return c.out
	}
	defer tree.Close()

	v := &performanceVisitor{c: c}
	tree.Root().Walk(v.visit)
	return c.out
}

type performanceVisitor struct {
	c *collector
}

func (v *performanceVisitor) visit(n pyast.Node) {
	switch n.Kind() {
	case "for_statement":
		v.checkRangeLen(n)
		v.checkAppendInLoop(n)
		v.checkStringConcatInLoop(n)
	case "comparison_operator":
		v.checkListMembership(n)
	case "call":
		v.checkConstructorVsLiteral(n)
	case "subscript":
		v.checkSortedSubscript(n)
	}
}

// isCallTo reports whether n is a call whose target is the given bare name.
func isCallTo(n pyast.Node, name string) bool {
	if n.Kind() != "call" {
		return false
	}
	fn, ok := n.ChildByField("function")
	return ok && fn.Kind() == "identifier" && fn.Text() == name
}

// checkRangeLen reports `for i in range(len(x))` loops.
func (v *performanceVisitor) checkRangeLen(n pyast.Node) {
	iter, ok := n.ChildByField("right")
	if !ok || !isCallTo(iter, "range") {
		return
	}
	positional, _ := pyast.CallArguments(iter)
	if len(positional) != 1 {
		return
	}
	if !isCallTo(positional[0], "len") {
		return
	}
	v.c.add("Use of range(len(...)) - prefer enumerate() or direct iteration",
		findings.SeverityInfo, n.Line(), n.Col(), "PERF001",
		"Use 'for item in collection:' or 'for i, item in enumerate(collection):'")
}

// isSimpleAppend reports whether n is a bare `<expr>.append(arg)` call with
// exactly one positional argument and no keywords.
func isSimpleAppend(n pyast.Node) bool {
	if n.Kind() != "call" {
		return false
	}
	fn, ok := n.ChildByField("function")
	if !ok || fn.Kind() != "attribute" {
		return false
	}
	attr, ok := fn.ChildByField("attribute")
	if !ok || attr.Text() != "append" {
		return false
	}
	positional, keywords := pyast.CallArguments(n)
	return len(positional) == 1 && len(keywords) == 0
}

// expressionCall unwraps an expression_statement into its call node.
func expressionCall(stmt pyast.Node) (pyast.Node, bool) {
	if stmt.Kind() != "expression_statement" {
		return pyast.Node{}, false
	}
	children := stmt.NamedChildren()
	if len(children) != 1 || children[0].Kind() != "call" {
		return pyast.Node{}, false
	}
	return children[0], true
}

// checkAppendInLoop reports for-loops whose body is exactly one statement:
// either a simple append, or an if without else whose single statement is a
// simple append.
func (v *performanceVisitor) checkAppendInLoop(n pyast.Node) {
	body, ok := n.ChildByField("body")
	if !ok {
		return
	}
	stmts := body.NamedChildren()
	if len(stmts) != 1 {
		return
	}
	stmt := stmts[0]

	if call, ok := expressionCall(stmt); ok && isSimpleAppend(call) {
		v.c.add("Simple .append() in for-loop could be a list comprehension",
			findings.SeverityHint, n.Line(), n.Col(), "PERF003",
			"Consider: [expr for item in iterable] instead of a loop with .append()")
	}

	if stmt.Kind() == "if_statement" {
		if _, hasElse := stmt.ChildByField("alternative"); hasElse {
			return
		}
		consequence, ok := stmt.ChildByField("consequence")
		if !ok {
			return
		}
		inner := consequence.NamedChildren()
		if len(inner) != 1 {
			return
		}
		if call, ok := expressionCall(inner[0]); ok && isSimpleAppend(call) {
			v.c.add("Filtered .append() in for-loop could be a list comprehension",
				findings.SeverityHint, n.Line(), n.Col(), "PERF003",
				"Consider: [expr for item in iterable if condition]")
		}
	}
}

// checkStringConcatInLoop reports `name += <string>` anywhere in a
// for-loop's subtree. Quadratic: += copies the whole string each iteration.
func (v *performanceVisitor) checkStringConcatInLoop(n pyast.Node) {
	n.Walk(func(m pyast.Node) {
		if m.Kind() != "augmented_assignment" {
			return
		}
		op, ok := m.ChildByField("operator")
		if !ok || op.Text() != "+=" {
			return
		}
		target, ok := m.ChildByField("left")
		if !ok || target.Kind() != "identifier" {
			return
		}
		value, ok := m.ChildByField("right")
		if !ok {
			return
		}
		if !pyast.IsStrConstant(value) && !pyast.IsFString(value) {
			return
		}
		v.c.add(
			fmt.Sprintf("String concatenation with += in loop (variable '%s')", target.Text()),
			findings.SeverityWarning, m.Line(), m.Col(), "PERF002",
			"Use ''.join() or a list to build strings - += creates a new string each iteration",
		)
	})
}

// checkListMembership reports `x in [a, b, c]` where the list literal has at
// least three elements, all literal constants.
func (v *performanceVisitor) checkListMembership(n pyast.Node) {
	operands, ops := pyast.ComparisonParts(n)
	for i, op := range ops {
		if op != "in" && op != "not in" {
			continue
		}
		if i+1 >= len(operands) {
			break
		}
		comparator := operands[i+1]
		if comparator.Kind() != "list" {
			continue
		}
		elements := comparator.NamedChildren()
		if len(elements) < 3 {
			continue
		}
		allConstant := true
		for _, el := range elements {
			if !pyast.IsConstant(el) {
				allConstant = false
				break
			}
		}
		if !allConstant {
			continue
		}
		v.c.add("Membership test on list literal - use a set literal for O(1) lookup",
			findings.SeverityInfo, comparator.Line(), comparator.Col(), "PERF004",
			"Replace [...] with {...} for constant-time membership testing")
	}
}

// emptyConstructors maps constructor names to their literal spellings.
var emptyConstructors = map[string]string{
	"dict":  "{}",
	"list":  "[]",
	"tuple": "()",
}

// checkConstructorVsLiteral reports no-argument dict()/list()/tuple() calls.
func (v *performanceVisitor) checkConstructorVsLiteral(n pyast.Node) {
	fn, ok := n.ChildByField("function")
	if !ok || fn.Kind() != "identifier" {
		return
	}
	literal, known := emptyConstructors[fn.Text()]
	if !known {
		return
	}
	positional, keywords := pyast.CallArguments(n)
	if len(positional) > 0 || len(keywords) > 0 {
		return
	}
	constructor := fn.Text() + "()"
	v.c.add(
		fmt.Sprintf("%s is slower than %s literal", constructor, literal),
		findings.SeverityHint, n.Line(), n.Col(), "PERF005",
		fmt.Sprintf("Use %s instead of %s - literals avoid function call overhead", literal, constructor),
	)
}

// checkSortedSubscript reports sorted(...)[0] and sorted(...)[-1], including
// the unary-negation spelling of -1.
func (v *performanceVisitor) checkSortedSubscript(n pyast.Node) {
	value, ok := n.ChildByField("value")
	if !ok || !isCallTo(value, "sorted") {
		return
	}
	index, ok := n.ChildByField("subscript")
	if !ok {
		return
	}
	idx, ok := pyast.IntValue(index)
	if !ok {
		return
	}
	switch idx {
	case 0:
		v.c.add("sorted(...)[0] is O(n log n) - use min() for O(n)",
			findings.SeverityWarning, n.Line(), n.Col(), "PERF006",
			"Replace sorted(x)[0] with min(x)")
	case -1:
		v.c.add("sorted(...)[-1] is O(n log n) - use max() for O(n)",
			findings.SeverityWarning, n.Line(), n.Col(), "PERF006",
			"Replace sorted(x)[-1] with max(x)")
	}
}
