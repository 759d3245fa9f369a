package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pyreview"
)

func sampleFindings() []pyreview.Finding {
	return []pyreview.Finding{
		{
			Message:    "Use of eval() is a security risk",
			Severity:   pyreview.SeverityError,
			Location:   pyreview.Location{File: "app.py", Line: 3, Column: 0},
			RuleID:     "SEC001",
			Category:   "security",
			Suggestion: "Avoid eval()",
		},
		{
			Message:  "Trailing whitespace",
			Severity: pyreview.SeverityHint,
			Location: pyreview.Location{File: "app.py", Line: 7, Column: 12},
			RuleID:   "STY002",
			Category: "style",
		},
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, sampleFindings(), false))

	want := "[ERROR] app.py:3:0: Use of eval() is a security risk (SEC001)\n" +
		"[HINT] app.py:7:12: Trailing whitespace (STY002)\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteText_WithSuggestions(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, sampleFindings(), true))

	assert.Contains(t, buf.String(), "    Suggestion: Avoid eval()\n")
	// The second finding has no suggestion and gets no extra line.
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleFindings()))

	var decoded []pyreview.Finding
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "SEC001", decoded[0].RuleID)
	assert.Equal(t, pyreview.SeverityError, decoded[0].Severity)
}

func TestWriteJSON_EmptyIsArray(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteReport_UnknownFormatFallsBackToText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleFindings(), "text", false))
	assert.Contains(t, buf.String(), "SEC001")
}
