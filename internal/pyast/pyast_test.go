package pyast

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse parses source and registers cleanup.
func parse(t *testing.T, source string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), []byte(source), "test.py")
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

// firstOfKind returns the first node of the given kind in pre-order.
func firstOfKind(t *testing.T, tree *Tree, kind string) Node {
	t.Helper()
	var found Node
	tree.Root().Walk(func(n Node) {
		if !found.Valid() && n.Kind() == kind {
			found = n
		}
	})
	require.True(t, found.Valid(), "no %s node found", kind)
	return found
}

func TestParse_ValidSource(t *testing.T) {
	t.Parallel()
	tree := parse(t, "x = 1\n")
	root := tree.Root()
	assert.Equal(t, "module", root.Kind())
	assert.Equal(t, "test.py", tree.Name())
}

func TestParse_SyntaxErrorPosition(t *testing.T) {
	t.Parallel()
	_, err := Parse(context.Background(), []byte("x = 1\ndef f(:\n"), "bad.py")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "invalid syntax", perr.Message)
	assert.Equal(t, 2, perr.Line)
}

func TestNode_Positions(t *testing.T) {
	t.Parallel()
	tree := parse(t, "x = 1\ny = 2\n")
	assign := firstOfKind(t, tree, "assignment")
	assert.Equal(t, 1, assign.Line())
	assert.Equal(t, 0, assign.Col())
	assert.Equal(t, "x = 1", assign.Text())
}

func TestNode_ChildByField(t *testing.T) {
	t.Parallel()
	tree := parse(t, "result = compute(a, b)\n")
	call := firstOfKind(t, tree, "call")

	fn, ok := call.ChildByField("function")
	require.True(t, ok)
	assert.Equal(t, "compute", fn.Text())

	_, ok = call.ChildByField("nonexistent")
	assert.False(t, ok)
}

func TestNode_NamedChildrenSkipComments(t *testing.T) {
	t.Parallel()
	source := "def f():\n    x = 1\n    # a comment\n    return x\n"
	tree := parse(t, source)
	fn := firstOfKind(t, tree, "function_definition")
	body, ok := fn.ChildByField("body")
	require.True(t, ok)

	var kinds []string
	for _, child := range body.NamedChildren() {
		kinds = append(kinds, child.Kind())
	}
	assert.Equal(t, []string{"expression_statement", "return_statement"}, kinds)
}

func TestNode_WalkVisitsNestedNodes(t *testing.T) {
	t.Parallel()
	tree := parse(t, "if a:\n    if b:\n        c()\n")
	count := 0
	tree.Root().Walk(func(n Node) {
		if n.Kind() == "if_statement" {
			count++
		}
	})
	assert.Equal(t, 2, count)
}

func TestStringClassification(t *testing.T) {
	t.Parallel()
	tree := parse(t, "a = \"plain\"\nb = f\"x {y}\"\nc = b\"bytes\"\nd = r\"raw\"\n")

	var strs []Node
	tree.Root().Walk(func(n Node) {
		if n.Kind() == "string" {
			strs = append(strs, n)
		}
	})
	require.Len(t, strs, 4)

	assert.True(t, IsStrConstant(strs[0]))
	assert.Equal(t, "plain", StringContent(strs[0]))

	assert.True(t, IsFString(strs[1]))
	assert.False(t, IsStrConstant(strs[1]))

	assert.True(t, IsBytes(strs[2]))
	assert.False(t, IsStrConstant(strs[2]))

	assert.True(t, IsStrConstant(strs[3]))
	assert.Equal(t, "raw", StringContent(strs[3]))
}

func TestFStringSegments(t *testing.T) {
	t.Parallel()
	tree := parse(t, "q = f\"SELECT * FROM t WHERE id = {uid} LIMIT 1\"\n")
	str := firstOfKind(t, tree, "string")

	segments, hasInterpolation := FStringSegments(str)
	assert.True(t, hasInterpolation)
	require.NotEmpty(t, segments)
	assert.Contains(t, segments[0], "SELECT * FROM t WHERE id = ")
}

func TestFStringSegments_NoInterpolation(t *testing.T) {
	t.Parallel()
	tree := parse(t, "q = f\"just text\"\n")
	str := firstOfKind(t, tree, "string")

	_, hasInterpolation := FStringSegments(str)
	assert.False(t, hasInterpolation)
}

func TestConstants(t *testing.T) {
	t.Parallel()
	tree := parse(t, "a = True\nb = 0\nc = None\nd = x\n")

	var values []Node
	tree.Root().Walk(func(n Node) {
		if n.Kind() == "assignment" {
			if v, ok := n.ChildByField("right"); ok {
				values = append(values, v)
			}
		}
	})
	require.Len(t, values, 4)

	require.True(t, IsConstant(values[0]))
	truth, ok := ConstantTruth(values[0])
	require.True(t, ok)
	assert.True(t, truth)

	truth, ok = ConstantTruth(values[1])
	require.True(t, ok)
	assert.False(t, truth)

	truth, ok = ConstantTruth(values[2])
	require.True(t, ok)
	assert.False(t, truth)

	assert.False(t, IsConstant(values[3]))
}

func TestIntValue(t *testing.T) {
	t.Parallel()
	tree := parse(t, "a = sorted(x)[0]\nb = sorted(x)[-1]\nc = sorted(x)[n]\n")

	var indexes []Node
	tree.Root().Walk(func(n Node) {
		if n.Kind() == "subscript" {
			if v, ok := n.ChildByField("subscript"); ok {
				indexes = append(indexes, v)
			}
		}
	})
	require.Len(t, indexes, 3)

	v, ok := IntValue(indexes[0])
	require.True(t, ok)
	assert.Equal(t, 0, v)

	v, ok = IntValue(indexes[1])
	require.True(t, ok)
	assert.Equal(t, -1, v)

	_, ok = IntValue(indexes[2])
	assert.False(t, ok)
}

func TestImportStatementBindings(t *testing.T) {
	t.Parallel()
	tree := parse(t, "import os.path\nimport numpy as np\n")

	var bindings []ImportBinding
	tree.Root().Walk(func(n Node) {
		if n.Kind() == "import_statement" {
			bindings = append(bindings, ImportStatementBindings(n)...)
		}
	})
	require.Len(t, bindings, 2)

	assert.Equal(t, ImportBinding{Local: "os.path", Module: "os.path"}, bindings[0])
	assert.Equal(t, ImportBinding{Local: "np", Module: "numpy", Aliased: true}, bindings[1])
}

func TestImportFromParts(t *testing.T) {
	t.Parallel()
	tree := parse(t, "from os import path as p, sep\n")
	stmt := firstOfKind(t, tree, "import_from_statement")

	module, bindings := ImportFromParts(stmt)
	assert.Equal(t, "os", module)
	require.Len(t, bindings, 2)
	assert.Equal(t, ImportBinding{Local: "p", Module: "os.path", Aliased: true}, bindings[0])
	assert.Equal(t, ImportBinding{Local: "sep", Module: "os.sep"}, bindings[1])
}

func TestComparisonParts_MergesTwoTokenOperators(t *testing.T) {
	t.Parallel()
	tree := parse(t, "ok = a not in b\n")
	cmp := firstOfKind(t, tree, "comparison_operator")

	operands, ops := ComparisonParts(cmp)
	require.Len(t, operands, 2)
	assert.Equal(t, []string{"not in"}, ops)
}

func TestComparisonParts_Chained(t *testing.T) {
	t.Parallel()
	tree := parse(t, "ok = a < b == None\n")
	cmp := firstOfKind(t, tree, "comparison_operator")

	operands, ops := ComparisonParts(cmp)
	require.Len(t, operands, 3)
	assert.Equal(t, []string{"<", "=="}, ops)
	assert.Equal(t, "none", operands[2].Kind())
}

func TestCallArguments(t *testing.T) {
	t.Parallel()
	tree := parse(t, "run(cmd, timeout, shell=True, check=False)\n")
	call := firstOfKind(t, tree, "call")

	positional, keywords := CallArguments(call)
	require.Len(t, positional, 2)
	assert.Equal(t, "cmd", positional[0].Text())

	require.Len(t, keywords, 2)
	assert.Equal(t, "shell", keywords[0].Name)
	assert.Equal(t, "true", keywords[0].Value.Kind())
	assert.Equal(t, "check", keywords[1].Name)
}
