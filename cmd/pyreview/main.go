package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jward/pyreview"
	"github.com/jward/pyreview/internal/config"
)

// errIssuesFound signals a clean run that found at least one ERROR finding.
// main exits 1 without printing it.
var errIssuesFound = errors.New("errors found")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errIssuesFound) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pyreview",
	Short:         "Static analysis for Python code",
	Long:          "Pyreview parses Python source with tree-sitter and runs correctness, security, performance, and style passes over it.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run field, so bare invocation prints help.
}

var (
	flagPasses      []string
	flagSeverity    string
	flagRecursive   bool
	flagFormat      string
	flagSuggestions bool
	flagQuiet       bool
	flagOutput      string
	flagConfig      string
	flagSort        string
	flagVerbose     bool
	flagParallel    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>...",
	Short: "Analyze Python files or directories",
	Long:  "Runs the configured passes over the given .py files and directories and reports findings. Exits 1 when any ERROR finding remains after filtering.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List the available analysis passes",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range pyreview.PassNames() {
			p, err := pyreview.NewPass(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-13s%s\n", p.Name(), p.Description())
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringSliceVarP(&flagPasses, "passes", "p", nil, "passes to run (default: all)")
	analyzeCmd.Flags().StringVarP(&flagSeverity, "severity", "s", "hint", "minimum severity to report: error|warning|info|hint")
	analyzeCmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", false, "recursively search directories")
	analyzeCmd.Flags().StringVar(&flagFormat, "format", "text", "output format: text|json|sarif")
	analyzeCmd.Flags().BoolVar(&flagSuggestions, "suggestions", false, "show fix suggestions in text output")
	analyzeCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "only output findings, no summary")
	analyzeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write report to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	analyzeCmd.Flags().StringVar(&flagSort, "sort", "location", "finding order: location|severity|none")
	analyzeCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	analyzeCmd.Flags().BoolVar(&flagParallel, "parallel", false, "analyze files on a worker pool")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(passesCmd)
}

// loadConfig reads the config file named by --config, or the default file in
// the working directory when one exists. Returns the defaults otherwise.
func loadConfig() (config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	if _, err := os.Stat(config.DefaultFile); err == nil {
		return config.Load(config.DefaultFile)
	}
	return config.Default(), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags the user set win over the config file.
	flags := cmd.Flags()
	if !flags.Changed("passes") && len(cfg.Passes) > 0 {
		flagPasses = cfg.Passes
	}
	if !flags.Changed("severity") {
		flagSeverity = cfg.MinSeverity
	}
	if !flags.Changed("format") {
		flagFormat = cfg.Format
	}
	if !flags.Changed("sort") {
		flagSort = cfg.Sort
	}
	if !flags.Changed("suggestions") {
		flagSuggestions = cfg.Suggestions
	}
	if !flags.Changed("recursive") {
		flagRecursive = cfg.Recursive
	}

	minSeverity, err := pyreview.ParseSeverity(flagSeverity)
	if err != nil {
		return err
	}
	if flagFormat != "text" && flagFormat != "json" && flagFormat != "sarif" {
		return fmt.Errorf("unknown format %q (want text, json, or sarif)", flagFormat)
	}
	if flagSort != "location" && flagSort != "severity" && flagSort != "none" {
		return fmt.Errorf("unknown sort %q (want location, severity, or none)", flagSort)
	}

	logLevel := hclog.Warn
	if flagVerbose {
		logLevel = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "pyreview",
		Level:  logLevel,
		Output: os.Stderr,
	})

	opts := []pyreview.Option{
		pyreview.WithMinSeverity(minSeverity),
		pyreview.WithLogger(logger),
		pyreview.WithParallel(flagParallel),
	}
	if len(flagPasses) > 0 {
		opts = append(opts, pyreview.WithPasses(flagPasses...))
	}
	opts = append(opts, pyreview.WithStyleConfig(cfg.Style))

	engine, err := pyreview.New(opts...)
	if err != nil {
		return err
	}

	files, err := collectTargets(args, flagRecursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !flagQuiet {
			fmt.Fprintln(os.Stderr, "No Python files found")
		}
		return nil
	}

	results := engine.AnalyzeFiles(context.Background(), files)
	var ordered []pyreview.Finding
	switch flagSort {
	case "severity":
		ordered = results.SortedBySeverity()
	case "none":
		ordered = results.All()
	default:
		ordered = results.SortedByLocation()
	}

	out := cmd.OutOrStdout()
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := writeReport(out, ordered, flagFormat, flagSuggestions); err != nil {
		return err
	}

	if !flagQuiet && flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "\n%d finding(s) in %d file(s)\n", results.Len(), len(files))
		if n := results.ErrorCount(); n > 0 {
			fmt.Fprintf(os.Stderr, "  Errors: %d\n", n)
		}
		if n := results.WarningCount(); n > 0 {
			fmt.Fprintf(os.Stderr, "  Warnings: %d\n", n)
		}
	}

	if results.ErrorCount() > 0 {
		return errIssuesFound
	}
	return nil
}

// collectTargets expands the path arguments into a sorted, deduplicated list
// of .py files. Directories contribute their direct children unless
// recursive is set; explicit file arguments are taken as given so a missing
// file surfaces as a finding instead of silently vanishing.
func collectTargets(args []string, recursive bool) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			if strings.HasSuffix(arg, ".py") {
				files = append(files, arg)
			}
			continue
		}
		if recursive {
			found, err := pyreview.CollectPythonFiles(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".py") {
				files = append(files, filepath.Join(arg, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	deduped := files[:0]
	for i, f := range files {
		if i == 0 || f != files[i-1] {
			deduped = append(deduped, f)
		}
	}
	return deduped, nil
}
