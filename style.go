package pyreview

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jward/pyreview/internal/config"
	"github.com/jward/pyreview/internal/findings"
	"github.com/jward/pyreview/internal/pyast"
)

var (
	snakeCasePattern  = regexp.MustCompile(`^_?_?[a-z][a-z0-9_]*_?_?$`)
	pascalCasePattern = regexp.MustCompile(`^_?[A-Z][a-zA-Z0-9]*$`)
	upperCasePattern  = regexp.MustCompile(`^_?_?[A-Z][A-Z0-9_]*_?_?$`)
)

// StylePass checks naming conventions, line formatting, and import grouping.
// Unlike the other passes it keeps working on files that fail to parse: the
// line checks need only raw text, so a syntax error just skips the tree
// checks.
type StylePass struct {
	cfg config.StyleConfig
}

// NewStylePass returns a StylePass with the default limits.
func NewStylePass() *StylePass {
	return &StylePass{cfg: config.Default().Style}
}

// NewStylePassWithConfig returns a StylePass using the given limits.
func NewStylePassWithConfig(cfg config.StyleConfig) *StylePass {
	return &StylePass{cfg: cfg}
}

func (*StylePass) Name() string { return "style" }

func (*StylePass) Description() string {
	return "Checks naming conventions, formatting, and code style"
}

// Analyze runs the style rules over one file.
func (p *StylePass) Analyze(ctx context.Context, path string) *findings.Collection {
	c := newCollector(path, "style")

	src, err := os.ReadFile(path)
	if err != nil {
		c.add(fmt.Sprintf("File not found: %s", path), findings.SeverityError, 1, 0, "STY000", "")
		return c.out
	}

	p.checkLines(c, src)

	tree, err := pyast.Parse(ctx, src, path)
	if err != nil {
		return c.out
	}
	defer tree.Close()

	p.checkImportOrder(c, tree.Root())
	v := &styleVisitor{c: c, cfg: p.cfg}
	tree.Root().Walk(v.visit)
	return c.out
}

// splitLines splits src into lines with their terminators kept, breaking on
// \n, \r\n, and lone \r. Exotic Unicode breaks (\v, \f, \x85, U+2028) are
// not treated as line boundaries.
func splitLines(src string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			lines = append(lines, src[start:i+1])
			start = i + 1
		case '\r':
			end := i + 1
			if end < len(src) && src[end] == '\n' {
				end++
				i++
			}
			lines = append(lines, src[start:end])
			start = end
		}
	}
	if start < len(src) {
		lines = append(lines, src[start:])
	}
	return lines
}

// checkLines runs the text-level rules: line length, trailing whitespace,
// blank-line runs, and the final newline.
func (p *StylePass) checkLines(c *collector, src []byte) {
	lines := splitLines(string(src))

	consecutiveBlank := 0
	for i, line := range lines {
		lineNum := i + 1
		bare := strings.TrimRight(line, "\n\r")

		if n := utf8.RuneCountInString(bare); n > p.cfg.MaxLineLength {
			c.add(fmt.Sprintf("Line too long (%d > %d)", n, p.cfg.MaxLineLength),
				findings.SeverityInfo, lineNum, p.cfg.MaxLineLength, "STY001",
				fmt.Sprintf("Break this line to be under %d characters", p.cfg.MaxLineLength))
		}

		stripped := strings.TrimRightFunc(bare, unicode.IsSpace)
		if stripped != bare {
			c.add("Trailing whitespace", findings.SeverityHint,
				lineNum, utf8.RuneCountInString(stripped), "STY002",
				"Remove trailing whitespace")
		}

		if strings.TrimSpace(bare) == "" {
			consecutiveBlank++
			if consecutiveBlank > 2 {
				c.add("Too many consecutive blank lines", findings.SeverityHint,
					lineNum, 0, "STY003", "Use at most 2 consecutive blank lines")
			}
		} else {
			consecutiveBlank = 0
		}
	}

	if len(lines) > 0 && !strings.HasSuffix(lines[len(lines)-1], "\n") {
		c.add("File does not end with newline", findings.SeverityHint,
			len(lines), 0, "STY004", "Add a newline at end of file")
	}
}

// importEntry is one imported module for ordering purposes.
type importEntry struct {
	line   int
	group  string
	module string
}

var importGroupOrder = []string{"stdlib", "third_party", "local"}

// checkImportOrder flags imports that appear after a later group has
// started: stdlib first, then third-party, then local.
func (p *StylePass) checkImportOrder(c *collector, root pyast.Node) {
	var imports []importEntry

	root.Walk(func(n pyast.Node) {
		switch n.Kind() {
		case "import_statement":
			for _, b := range pyast.ImportStatementBindings(n) {
				imports = append(imports, importEntry{n.Line(), p.classifyImport(b.Module), b.Module})
			}
		case "import_from_statement":
			module, _ := pyast.ImportFromParts(n)
			if module != "" {
				imports = append(imports, importEntry{n.Line(), p.classifyImport(module), module})
			}
		}
	})

	sort.SliceStable(imports, func(i, j int) bool { return imports[i].line < imports[j].line })

	currentGroup := 0
	for _, imp := range imports {
		groupIdx := -1
		for i, g := range importGroupOrder {
			if g == imp.group {
				groupIdx = i
				break
			}
		}
		if groupIdx < 0 {
			continue
		}
		if groupIdx < currentGroup {
			c.add(
				fmt.Sprintf("Import '%s' is out of order (expected %s imports)", imp.module, importGroupOrder[currentGroup]),
				findings.SeverityInfo, imp.line, 0, "STY005",
				"Group imports: stdlib, then third-party, then local",
			)
		} else {
			currentGroup = groupIdx
		}
	}
}

// pythonStdlib names the standard-library top-level modules the import
// classifier recognizes.
var pythonStdlib = map[string]bool{
	"abc": true, "ast": true, "asyncio": true, "base64": true, "collections": true,
	"contextlib": true, "copy": true, "dataclasses": true, "datetime": true,
	"decimal": true, "enum": true, "functools": true, "hashlib": true, "hmac": true,
	"html": true, "http": true, "importlib": true, "inspect": true, "io": true,
	"itertools": true, "json": true, "logging": true, "math": true, "operator": true,
	"os": true, "pathlib": true, "pickle": true, "platform": true, "pprint": true,
	"queue": true, "random": true, "re": true, "secrets": true, "shutil": true,
	"signal": true, "socket": true, "sqlite3": true, "string": true,
	"subprocess": true, "sys": true, "tempfile": true, "threading": true,
	"time": true, "traceback": true, "typing": true, "unittest": true,
	"urllib": true, "uuid": true, "warnings": true, "weakref": true, "xml": true,
	"zipfile": true,
}

// classifyImport buckets a dotted module path as stdlib, local, or
// third-party. Relative imports and the configured local package count as
// local.
func (p *StylePass) classifyImport(module string) string {
	top, _, _ := strings.Cut(module, ".")
	if pythonStdlib[top] {
		return "stdlib"
	}
	if strings.HasPrefix(module, ".") || top == p.cfg.LocalPackage {
		return "local"
	}
	return "third_party"
}

type styleVisitor struct {
	c   *collector
	cfg config.StyleConfig
}

func (v *styleVisitor) visit(n pyast.Node) {
	switch n.Kind() {
	case "class_definition":
		v.checkClassName(n)
	case "function_definition":
		v.checkFunctionName(n)
		v.checkParameterNames(n)
	case "assignment", "augmented_assignment", "for_statement", "for_in_clause":
		if target, ok := n.ChildByField("left"); ok {
			v.checkStoreTarget(target)
		}
	case "named_expression":
		if target, ok := n.ChildByField("name"); ok {
			v.checkStoreTarget(target)
		}
	case "with_item":
		// `with expr as name` binds name; a bare with item binds nothing.
		if value, ok := n.ChildByField("value"); ok && value.Kind() == "as_pattern" {
			if alias, ok := value.ChildByField("alias"); ok {
				v.checkStoreTarget(alias)
			}
		}
	}
}

func (v *styleVisitor) checkClassName(n pyast.Node) {
	nameNode, ok := n.ChildByField("name")
	if !ok {
		return
	}
	name := nameNode.Text()
	if !pascalCasePattern.MatchString(name) {
		v.c.add(fmt.Sprintf("Class name '%s' should use PascalCase", name),
			findings.SeverityWarning, n.Line(), n.Col(), "STY010",
			fmt.Sprintf("Rename to '%s'", toPascalCase(name)))
	}
}

func (v *styleVisitor) checkFunctionName(n pyast.Node) {
	nameNode, ok := n.ChildByField("name")
	if !ok {
		return
	}
	name := nameNode.Text()
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return
	}

	if !snakeCasePattern.MatchString(name) {
		v.c.add(fmt.Sprintf("Function name '%s' should use snake_case", name),
			findings.SeverityWarning, n.Line(), n.Col(), "STY011",
			fmt.Sprintf("Rename to '%s'", toSnakeCase(name)))
	}

	if l := utf8.RuneCountInString(name); l > v.cfg.MaxFunctionNameLength {
		v.c.add(
			fmt.Sprintf("Function name '%s' is too long (%d > %d)", name, l, v.cfg.MaxFunctionNameLength),
			findings.SeverityInfo, n.Line(), n.Col(), "STY012",
			"Consider a shorter, more concise name",
		)
	}
}

// checkParameterNames flags parameters that are not snake_case. self and cls
// are conventional and *args/**kwargs splats carry their own syntax, so both
// are skipped.
func (v *styleVisitor) checkParameterNames(n pyast.Node) {
	params, ok := n.ChildByField("parameters")
	if !ok {
		return
	}
	for _, param := range params.NamedChildren() {
		var nameNode pyast.Node
		switch param.Kind() {
		case "identifier":
			nameNode = param
		case "typed_parameter":
			children := param.NamedChildren()
			if len(children) == 0 || children[0].Kind() != "identifier" {
				continue
			}
			nameNode = children[0]
		case "default_parameter", "typed_default_parameter":
			named, ok := param.ChildByField("name")
			if !ok || named.Kind() != "identifier" {
				continue
			}
			nameNode = named
		default:
			continue
		}

		name := nameNode.Text()
		if name == "self" || name == "cls" {
			continue
		}
		if !snakeCasePattern.MatchString(name) {
			v.c.add(fmt.Sprintf("Argument name '%s' should use snake_case", name),
				findings.SeverityWarning, param.Line(), param.Col(), "STY013",
				fmt.Sprintf("Rename to '%s'", toSnakeCase(name)))
		}
	}
}

// checkStoreTarget descends through tuple unpacking and checks each bound
// identifier.
func (v *styleVisitor) checkStoreTarget(n pyast.Node) {
	switch n.Kind() {
	case "identifier":
		v.checkVariableName(n)
	case "pattern_list", "tuple_pattern", "list_pattern":
		for _, child := range n.NamedChildren() {
			v.checkStoreTarget(child)
		}
	case "as_pattern_target":
		// The grammar renames the with-alias expression node; a leaf is a
		// plain identifier, anything else is an unpacking pattern.
		children := n.NamedChildren()
		if len(children) == 0 {
			v.checkVariableName(n)
			return
		}
		for _, child := range children {
			v.checkStoreTarget(child)
		}
	}
}

func (v *styleVisitor) checkVariableName(n pyast.Node) {
	name := n.Text()
	if strings.HasPrefix(name, "_") {
		return
	}

	if pythonIsUpper(name) || (strings.ToUpper(name) == name && strings.Contains(name, "_")) {
		if !upperCasePattern.MatchString(name) {
			v.c.add(fmt.Sprintf("Constant '%s' should use UPPER_CASE", name),
				findings.SeverityInfo, n.Line(), n.Col(), "STY014", "")
		}
	} else if !snakeCasePattern.MatchString(name) && !upperCasePattern.MatchString(name) {
		if utf8.RuneCountInString(name) > 1 {
			v.c.add(fmt.Sprintf("Variable name '%s' should use snake_case", name),
				findings.SeverityInfo, n.Line(), n.Col(), "STY015",
				fmt.Sprintf("Rename to '%s'", toSnakeCase(name)))
		}
	}
}

// pythonIsUpper mirrors str.isupper: at least one cased character and no
// lowercase ones.
func pythonIsUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

var (
	camelBoundaryAcronym = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	camelBoundaryLower   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

func toSnakeCase(name string) string {
	out := camelBoundaryAcronym.ReplaceAllString(name, "${1}_${2}")
	out = camelBoundaryLower.ReplaceAllString(out, "${1}_${2}")
	return strings.ToLower(out)
}

func toPascalCase(name string) string {
	parts := strings.Split(strings.ReplaceAll(name, "-", "_"), "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(strings.ToLower(part[size:]))
	}
	return b.String()
}
