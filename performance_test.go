package pyreview

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pyreview/internal/findings"
)

func TestPerformancePass_RangeLen(t *testing.T) {
	t.Parallel()
	source := "for i in range(len(items)):\n    print(items[i])\n"
	got := runPass(t, NewPerformancePass(), source)

	rangeLen := byRule(got, "PERF001")
	require.Len(t, rangeLen, 1)
	assert.Equal(t, findings.SeverityInfo, rangeLen[0].Severity)
	assert.Contains(t, rangeLen[0].Suggestion, "enumerate")
}

func TestPerformancePass_RangeWithBoundsAccepted(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewPerformancePass(), "for i in range(10):\n    print(i)\n")
	assert.Empty(t, byRule(got, "PERF001"))
}

func TestPerformancePass_StringConcatInLoop(t *testing.T) {
	t.Parallel()
	source := "for item in items:\n    out += f\"{item},\"\n"
	got := runPass(t, NewPerformancePass(), source)

	concat := byRule(got, "PERF002")
	require.Len(t, concat, 1)
	assert.Equal(t, findings.SeverityWarning, concat[0].Severity)
	assert.Equal(t, "String concatenation with += in loop (variable 'out')", concat[0].Message)
	assert.Equal(t, 2, concat[0].Location.Line)
}

func TestPerformancePass_NumericAugmentedAssignAccepted(t *testing.T) {
	t.Parallel()
	got := runPass(t, NewPerformancePass(), "for n in nums:\n    total += n\n")
	assert.Empty(t, got)
}

func TestPerformancePass_SimpleAppendLoop(t *testing.T) {
	t.Parallel()
	source := "for item in items:\n    results.append(item * 2)\n"
	got := runPass(t, NewPerformancePass(), source)

	appends := byRule(got, "PERF003")
	require.Len(t, appends, 1)
	assert.Equal(t, findings.SeverityHint, appends[0].Severity)
	assert.Equal(t, "Simple .append() in for-loop could be a list comprehension", appends[0].Message)
}

func TestPerformancePass_FilteredAppendLoop(t *testing.T) {
	t.Parallel()
	source := "for item in items:\n    if item > 0:\n        results.append(item)\n"
	got := runPass(t, NewPerformancePass(), source)

	appends := byRule(got, "PERF003")
	require.Len(t, appends, 1)
	assert.Equal(t, "Filtered .append() in for-loop could be a list comprehension", appends[0].Message)
	assert.Contains(t, appends[0].Suggestion, "if condition")
}

func TestPerformancePass_MultiStatementLoopAccepted(t *testing.T) {
	t.Parallel()
	source := "for item in items:\n    log(item)\n    results.append(item)\n"
	got := runPass(t, NewPerformancePass(), source)
	assert.Empty(t, byRule(got, "PERF003"))
}

func TestPerformancePass_ListMembership(t *testing.T) {
	t.Parallel()
	source := "if status in [\"new\", \"open\", \"held\"]:\n    pass\n"
	got := runPass(t, NewPerformancePass(), source)

	member := byRule(got, "PERF004")
	require.Len(t, member, 1)
	assert.Equal(t, findings.SeverityInfo, member[0].Severity)
	assert.Contains(t, member[0].Suggestion, "{...}")
}

func TestPerformancePass_ShortOrDynamicListAccepted(t *testing.T) {
	t.Parallel()
	source := "if x in [1, 2]:\n    pass\nif y in [a, b, c]:\n    pass\n"
	got := runPass(t, NewPerformancePass(), source)
	assert.Empty(t, byRule(got, "PERF004"))
}

func TestPerformancePass_EmptyConstructors(t *testing.T) {
	t.Parallel()
	source := "a = dict()\nb = list()\nc = tuple()\nd = dict(x=1)\n"
	got := runPass(t, NewPerformancePass(), source)

	ctors := byRule(got, "PERF005")
	require.Len(t, ctors, 3)
	assert.Equal(t, "dict() is slower than {} literal", ctors[0].Message)
	assert.Equal(t, "list() is slower than [] literal", ctors[1].Message)
	assert.Equal(t, "tuple() is slower than () literal", ctors[2].Message)
	for _, f := range ctors {
		assert.Equal(t, findings.SeverityHint, f.Severity)
	}
}

func TestPerformancePass_SortedSubscript(t *testing.T) {
	t.Parallel()
	source := "lowest = sorted(data)[0]\nhighest = sorted(data)[-1]\nmiddle = sorted(data)[1]\n"
	got := runPass(t, NewPerformancePass(), source)

	extremes := byRule(got, "PERF006")
	require.Len(t, extremes, 2)
	assert.Equal(t, findings.SeverityWarning, extremes[0].Severity)
	assert.Contains(t, extremes[0].Suggestion, "min(x)")
	assert.Contains(t, extremes[1].Suggestion, "max(x)")
}

func TestPerformancePass_MissingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "absent.py")
	got := NewPerformancePass().Analyze(context.Background(), path).All()

	require.Len(t, got, 1)
	assert.Equal(t, "PERF000", got[0].RuleID)
	assert.Equal(t, findings.SeverityError, got[0].Severity)
}
