// Package config loads analyzer settings from YAML files.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/jward/pyreview/internal/findings"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = ".pyreview.yaml"

// StyleConfig holds the tunable limits for the style pass.
type StyleConfig struct {
	MaxLineLength         int    `yaml:"max_line_length"`
	MaxFunctionNameLength int    `yaml:"max_function_name_length"`
	MaxVariableNameLength int    `yaml:"max_variable_name_length"`
	LocalPackage          string `yaml:"local_package"`
}

// Config is the top level analyzer configuration. Command line flags
// override any value set here.
type Config struct {
	Passes      []string    `yaml:"passes"`
	MinSeverity string      `yaml:"min_severity"`
	Format      string      `yaml:"format"`
	Sort        string      `yaml:"sort"`
	Suggestions bool        `yaml:"suggestions"`
	Recursive   bool        `yaml:"recursive"`
	Style       StyleConfig `yaml:"style"`
}

// knownFormats and knownSorts are the accepted enum values. Pass names are
// validated by the engine, which owns the registry.
var (
	knownFormats = map[string]bool{"text": true, "json": true, "sarif": true}
	knownSorts   = map[string]bool{"location": true, "severity": true, "none": true}
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		MinSeverity: "hint",
		Format:      "text",
		Sort:        "location",
		Style: StyleConfig{
			MaxLineLength:         100,
			MaxFunctionNameLength: 40,
			MaxVariableNameLength: 30,
			LocalPackage:          "pyreview",
		},
	}
}

// Load reads a YAML config file and overlays it on the defaults. Fields the
// file leaves unset keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects unknown enum values and limits that would disable whole
// checks.
func (c Config) Validate() error {
	if _, err := findings.ParseSeverity(c.MinSeverity); err != nil {
		return fmt.Errorf("min_severity: %w", err)
	}
	if !knownFormats[c.Format] {
		return fmt.Errorf("unknown format %q (want text, json, or sarif)", c.Format)
	}
	if !knownSorts[c.Sort] {
		return fmt.Errorf("unknown sort %q (want location, severity, or none)", c.Sort)
	}
	if c.Style.MaxLineLength <= 0 {
		return fmt.Errorf("max_line_length must be positive, got %d", c.Style.MaxLineLength)
	}
	if c.Style.MaxFunctionNameLength <= 0 {
		return fmt.Errorf("max_function_name_length must be positive, got %d", c.Style.MaxFunctionNameLength)
	}
	if c.Style.MaxVariableNameLength <= 0 {
		return fmt.Errorf("max_variable_name_length must be positive, got %d", c.Style.MaxVariableNameLength)
	}
	return nil
}
