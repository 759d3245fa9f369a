package pyreview

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pyreview/internal/findings"
)

func TestCorrectnessPass_MutableDefaultList(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewCorrectnessPass(), "def foo(x=[]):\n    return x\n")

	require.Len(t, got, 1)
	f := got[0]
	assert.Equal(t, "COR003", f.RuleID)
	assert.Equal(t, findings.SeverityWarning, f.Severity)
	assert.Equal(t, "Mutable default argument: list", f.Message)
	assert.Equal(t, 1, f.Location.Line)
	assert.Equal(t, 10, f.Location.Column)
}

func TestCorrectnessPass_MutableDefaultDictAndSet(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewCorrectnessPass(), "def f(a={}, b={1}, c=0):\n    pass\n")

	mutable := byRule(got, "COR003")
	require.Len(t, mutable, 2)
	assert.Equal(t, "Mutable default argument: dict", mutable[0].Message)
	assert.Equal(t, "Mutable default argument: set", mutable[1].Message)
}

func TestCorrectnessPass_NoneComparison(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewCorrectnessPass(), "if x == None:\n    pass\n")

	require.Len(t, got, 1)
	f := got[0]
	assert.Equal(t, "COR002", f.RuleID)
	assert.Equal(t, findings.SeverityWarning, f.Severity)
	assert.Equal(t, "Comparison to None should use 'is' instead of '=='", f.Message)
	assert.Equal(t, "Use 'is None' instead of '== None'", f.Suggestion)
}

func TestCorrectnessPass_NoneComparisonLeftAndNegated(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewCorrectnessPass(), "if None != x:\n    pass\n")

	require.Len(t, got, 1)
	assert.Equal(t, "COR002", got[0].RuleID)
	assert.Equal(t, "Use 'None is not' instead of 'None !='", got[0].Suggestion)
}

func TestCorrectnessPass_IsNoneAccepted(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewCorrectnessPass(), "if x is None:\n    pass\nif x is not None:\n    pass\n")
	assert.Empty(t, got)
}

func TestCorrectnessPass_UnreachableCode(t *testing.T) {
	t.Parallel()
	source := "def f():\n    return 1\n    print(2)\n"
	got := runPass(t, NewCorrectnessPass(), source)

	require.Len(t, got, 1)
	f := got[0]
	assert.Equal(t, "COR004", f.RuleID)
	assert.Equal(t, "Unreachable code detected", f.Message)
	assert.Equal(t, 3, f.Location.Line)
}

func TestCorrectnessPass_UnreachableReportedOncePerFunction(t *testing.T) {
	t.Parallel()
	source := "def f():\n    return 1\n    print(2)\n    print(3)\n"
	got := runPass(t, NewCorrectnessPass(), source)
	assert.Len(t, byRule(got, "COR004"), 1)
}

func TestCorrectnessPass_BareExcept(t *testing.T) {
	t.Parallel()
	source := "try:\n    risky()\nexcept:\n    pass\n"
	got := runPass(t, NewCorrectnessPass(), source)

	require.Len(t, got, 1)
	assert.Equal(t, "COR005", got[0].RuleID)
	assert.Equal(t, findings.SeverityWarning, got[0].Severity)
}

func TestCorrectnessPass_TypedExceptAccepted(t *testing.T) {
	t.Parallel()
	source := "try:\n    risky()\nexcept ValueError:\n    pass\n"
	got := runPass(t, NewCorrectnessPass(), source)
	assert.Empty(t, got)
}

func TestCorrectnessPass_ConstantAssert(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewCorrectnessPass(), "assert True\nassert 0\n")

	alwaysTrue := byRule(got, "COR006")
	require.Len(t, alwaysTrue, 1)
	assert.Equal(t, findings.SeverityInfo, alwaysTrue[0].Severity)
	assert.Equal(t, "Assertion is always true", alwaysTrue[0].Message)

	alwaysFalse := byRule(got, "COR007")
	require.Len(t, alwaysFalse, 1)
	assert.Equal(t, findings.SeverityWarning, alwaysFalse[0].Severity)
	assert.Equal(t, "Assertion is always false", alwaysFalse[0].Message)
}

func TestCorrectnessPass_NonConstantAssertAccepted(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewCorrectnessPass(), "assert x > 0\n")
	assert.Empty(t, got)
}

func TestCorrectnessPass_MissingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "absent.py")
	got := NewCorrectnessPass().Analyze(context.Background(), path).All()

	require.Len(t, got, 1)
	f := got[0]
	assert.Equal(t, "COR000", f.RuleID)
	assert.Equal(t, findings.SeverityError, f.Severity)
	assert.Contains(t, f.Message, "File not found")
	assert.Equal(t, 1, f.Location.Line)
	assert.Equal(t, 0, f.Location.Column)
}

func TestCorrectnessPass_SyntaxError(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewCorrectnessPass(), "def f(:\n")

	require.Len(t, got, 1)
	assert.Equal(t, "COR001", got[0].RuleID)
	assert.Equal(t, findings.SeverityError, got[0].Severity)
	assert.Contains(t, got[0].Message, "Syntax error")
}

func TestCorrectnessPass_CleanFile(t *testing.T) {
	t.Parallel()
	source := "def add(a, b):\n    return a + b\n"
	got := runPass(t, NewCorrectnessPass(), source)
	assert.Empty(t, got)
}
