package pyreview

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jward/pyreview/internal/config"
	"github.com/jward/pyreview/internal/findings"
)

// Engine orchestrates the review pipeline: file discovery, running the
// configured passes, and severity filtering.
type Engine struct {
	passes      []Pass
	passNames   []string
	minSeverity findings.Severity
	logger      hclog.Logger
	styleCfg    config.StyleConfig
	hasStyleCfg bool
	parallel    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPasses restricts which passes the Engine runs. Names must come from
// PassNames; New rejects unknown ones.
func WithPasses(names ...string) Option {
	return func(e *Engine) {
		e.passNames = append([]string(nil), names...)
	}
}

// WithMinSeverity drops findings below the given severity from results.
func WithMinSeverity(min findings.Severity) Option {
	return func(e *Engine) {
		e.minSeverity = min
	}
}

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(logger hclog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithParallel runs passes over files on a worker pool. Output order is the
// same as serial analysis.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.parallel = parallel
	}
}

// WithStyleConfig overrides the style pass limits.
func WithStyleConfig(cfg config.StyleConfig) Option {
	return func(e *Engine) {
		e.styleCfg = cfg
		e.hasStyleCfg = true
	}
}

// New creates an Engine. With no options it runs every registered pass and
// keeps findings of all severities.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		passNames:   PassNames(),
		minSeverity: findings.SeverityHint,
		logger:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, name := range e.passNames {
		if name == "style" && e.hasStyleCfg {
			e.passes = append(e.passes, NewStylePassWithConfig(e.styleCfg))
			continue
		}
		p, err := NewPass(name)
		if err != nil {
			return nil, err
		}
		e.passes = append(e.passes, p)
	}
	return e, nil
}

// Passes returns the passes the Engine will run, in execution order.
func (e *Engine) Passes() []Pass {
	return append([]Pass(nil), e.passes...)
}

// AnalyzeFiles runs every configured pass over every path and returns the
// combined, severity-filtered collection. Pass order is fixed, file order
// follows the input, so output order is deterministic.
func (e *Engine) AnalyzeFiles(ctx context.Context, paths []string) *findings.Collection {
	var out *findings.Collection
	if e.parallel {
		out = e.analyzeFilesParallel(ctx, paths)
	} else {
		out = findings.NewCollection()
		for _, p := range e.passes {
			e.logger.Debug("running pass", "pass", p.Name(), "files", len(paths))
			got := AnalyzeMultiple(ctx, p, paths)
			e.logger.Debug("pass finished", "pass", p.Name(), "findings", got.Len())
			out.Extend(got)
		}
	}
	filtered := out.FilterMinSeverity(e.minSeverity)
	e.logger.Info("analysis complete",
		"files", len(paths),
		"findings", filtered.Len(),
		"errors", filtered.ErrorCount(),
		"warnings", filtered.WarningCount())
	return filtered
}

// AnalyzeDirectory discovers Python files under root and analyzes them.
func (e *Engine) AnalyzeDirectory(ctx context.Context, root string) (*findings.Collection, error) {
	paths, err := CollectPythonFiles(root)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("discovered files", "root", root, "count", len(paths))
	return e.AnalyzeFiles(ctx, paths), nil
}

// skipDirs names directories excluded from discovery.
var skipDirs = map[string]bool{
	"__pycache__":  true,
	"venv":         true,
	"node_modules": true,
	"vendor":       true,
}

// CollectPythonFiles walks root and returns every .py file, sorted and
// deduplicated. Hidden directories and the usual generated trees are
// skipped.
func CollectPythonFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Strings(paths)
	deduped := paths[:0]
	for i, p := range paths {
		if i == 0 || p != paths[i-1] {
			deduped = append(deduped, p)
		}
	}
	return deduped, nil
}
