package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pyreview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	assert.Equal(t, "hint", cfg.MinSeverity)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "location", cfg.Sort)
	assert.Empty(t, cfg.Passes)
	assert.False(t, cfg.Recursive)
	assert.Equal(t, 100, cfg.Style.MaxLineLength)
	assert.Equal(t, 40, cfg.Style.MaxFunctionNameLength)
	assert.Equal(t, 30, cfg.Style.MaxVariableNameLength)
	assert.Equal(t, "pyreview", cfg.Style.LocalPackage)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "style:\n  max_line_length: 88\n  local_package: myapp\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 88, cfg.Style.MaxLineLength)
	assert.Equal(t, "myapp", cfg.Style.LocalPackage)
	// Unset fields keep their defaults.
	assert.Equal(t, 40, cfg.Style.MaxFunctionNameLength)
	assert.Equal(t, "hint", cfg.MinSeverity)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoad_RunSettings(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `passes:
  - security
  - performance
min_severity: warning
format: json
sort: severity
suggestions: true
recursive: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"security", "performance"}, cfg.Passes)
	assert.Equal(t, "warning", cfg.MinSeverity)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "severity", cfg.Sort)
	assert.True(t, cfg.Suggestions)
	assert.True(t, cfg.Recursive)
}

func TestLoad_RejectsUnknownEnums(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name    string
		content string
		want    string
	}{
		{"severity", "min_severity: loud\n", "min_severity"},
		{"format", "format: xml\n", "format"},
		{"sort", "sort: random\n", "sort"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "style: [not a map\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveLimits(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "style:\n  max_line_length: 0\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_line_length")
}
