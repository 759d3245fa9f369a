package pyreview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jward/pyreview/internal/findings"
	"github.com/jward/pyreview/internal/pyast"
)

// secretNamePattern matches variable names that likely hold secrets.
var secretNamePattern = regexp.MustCompile(`(?i)(password|passwd|secret|api_key|apikey|token|auth|credential|private_key)`)

// sqlKeywordPattern matches SQL keywords at word boundaries.
var sqlKeywordPattern = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|EXEC)\b`)

// dangerousBuiltins maps builtin call names to their rule IDs.
var dangerousBuiltins = map[string]string{
	"eval": "SEC001",
	"exec": "SEC002",
}

type moduleCallRule struct {
	ruleID  string
	message string
}

// dangerousModuleCalls maps (module, attribute) pairs, after alias
// resolution, to their rules.
var dangerousModuleCalls = map[[2]string]moduleCallRule{
	{"os", "system"}:     {"SEC005", "Use of os.system() allows shell injection"},
	{"os", "popen"}:      {"SEC005", "Use of os.popen() allows shell injection"},
	{"pickle", "loads"}:  {"SEC006", "Deserializing untrusted data with pickle can execute arbitrary code"},
	{"pickle", "load"}:   {"SEC006", "Deserializing untrusted data with pickle can execute arbitrary code"},
	{"marshal", "loads"}: {"SEC006", "Deserializing untrusted data with marshal can execute arbitrary code"},
	{"shelve", "open"}:   {"SEC006", "shelve uses pickle internally, an untrusted data risk"},
	{"yaml", "load"}:     {"SEC009", "yaml.load() without SafeLoader can execute arbitrary code"},
}

// subprocessFuncs are the subprocess entry points checked for shell=True.
var subprocessFuncs = map[string]bool{
	"run":          true,
	"call":         true,
	"check_call":   true,
	"check_output": true,
	"Popen":        true,
}

// weakHashes are hash algorithm names considered broken.
var weakHashes = map[string]bool{
	"md5":  true,
	"sha1": true,
}

// SecurityPass detects dangerous calls, hardcoded secrets, insecure
// deserialization, weak hashing, SQL-injection-shaped strings, and shell
// injection. Module-qualified calls are resolved through the file's import
// aliases before matching.
type SecurityPass struct{}

// NewSecurityPass returns a SecurityPass.
func NewSecurityPass() *SecurityPass { return &SecurityPass{} }

func (*SecurityPass) Name() string { return "security" }

func (*SecurityPass) Description() string {
	return "Detects common security vulnerabilities and dangerous patterns"
}

// Analyze runs the security rules over one file.
func (p *SecurityPass) Analyze(ctx context.Context, path string) *findings.Collection {
	c := newCollector(path, "security")

	src, err := os.ReadFile(path)
	if err != nil {
		c.add(fmt.Sprintf("File not found: %s", path), findings.SeverityError, 1, 0, "SEC000", "")
		return c.out
	}

	tree, err := pyast.Parse(ctx, src, path)
	if err != nil {
		var perr *pyast.ParseError
		if !errors.As(err, &perr) {
			perr = &pyast.ParseError{Line: 1, Column: 0, Message: err.Error()}
		}
		c.add(fmt.Sprintf("Syntax error: %s", perr.Message), findings.SeverityError, perr.Line, perr.Column, "SEC000", "")
		return c.out
	}
	defer tree.Close()

	v := &securityVisitor{c: c, aliases: make(map[string]string)}
	tree.Root().Walk(v.visit)
	return c.out
}

// securityVisitor carries the per-file alias map, built in document order.
// An alias used before its import statement is not resolved.
type securityVisitor struct {
	c       *collector
	aliases map[string]string
}

func (v *securityVisitor) visit(n pyast.Node) {
	switch n.Kind() {
	case "import_statement":
		for _, b := range pyast.ImportStatementBindings(n) {
			v.aliases[b.Local] = b.Module
		}
	case "import_from_statement":
		_, bindings := pyast.ImportFromParts(n)
		for _, b := range bindings {
			v.aliases[b.Local] = b.Module
		}
	case "call":
		v.checkDangerousBuiltins(n)
		v.checkSubprocessShell(n)
		v.checkDangerousModuleCalls(n)
		v.checkDynamicImport(n)
		v.checkWeakHashing(n)
	case "assignment":
		v.checkHardcodedSecret(n)
	case "string":
		v.checkSQLFString(n)
	case "binary_operator":
		v.checkSQLPercentFormat(n)
	case "assert_statement":
		v.checkAssert(n)
	}
}

// resolveCallName returns "module.attr" for attribute calls on a simple
// name, the bare name for identifier calls, and "" otherwise.
func resolveCallName(n pyast.Node) string {
	fn, ok := n.ChildByField("function")
	if !ok {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return fn.Text()
	case "attribute":
		obj, okO := fn.ChildByField("object")
		attr, okA := fn.ChildByField("attribute")
		if okO && okA && obj.Kind() == "identifier" {
			return obj.Text() + "." + attr.Text()
		}
	}
	return ""
}

// splitModuleCall resolves a call into (module, attribute) through the alias
// map. ok is false for calls that are not a two-part qualified name.
func (v *securityVisitor) splitModuleCall(n pyast.Node) (module, attr string, ok bool) {
	name := resolveCallName(n)
	parts := strings.Split(name, ".")
	if len(parts) != 2 {
		return "", "", false
	}
	module, attr = parts[0], parts[1]
	if resolved, found := v.aliases[module]; found {
		module = resolved
	}
	return module, attr, true
}

func (v *securityVisitor) checkDangerousBuiltins(n pyast.Node) {
	fn, ok := n.ChildByField("function")
	if !ok || fn.Kind() != "identifier" {
		return
	}
	name := fn.Text()
	ruleID, dangerous := dangerousBuiltins[name]
	if !dangerous {
		return
	}
	v.c.add(
		fmt.Sprintf("Use of %s() is a security risk: it allows arbitrary code execution", name),
		findings.SeverityError, n.Line(), n.Col(), ruleID,
		fmt.Sprintf("Avoid %s(). Use ast.literal_eval() for safe parsing or a dedicated parser", name),
	)
}

func (v *securityVisitor) checkSubprocessShell(n pyast.Node) {
	module, attr, ok := v.splitModuleCall(n)
	if !ok || module != "subprocess" || !subprocessFuncs[attr] {
		return
	}
	_, keywords := pyast.CallArguments(n)
	for _, kw := range keywords {
		if kw.Name == "shell" && kw.Value.Kind() == "true" {
			v.c.add(
				fmt.Sprintf("subprocess.%s() called with shell=True", attr),
				findings.SeverityWarning, n.Line(), n.Col(), "SEC004",
				"Avoid shell=True. Pass arguments as a list to prevent shell injection",
			)
		}
	}
}

func (v *securityVisitor) checkDangerousModuleCalls(n pyast.Node) {
	module, attr, ok := v.splitModuleCall(n)
	if !ok {
		return
	}
	rule, dangerous := dangerousModuleCalls[[2]string{module, attr}]
	if !dangerous {
		return
	}

	// yaml.load() is safe when a Loader= keyword or a second positional
	// argument is present; the value is not inspected.
	if module == "yaml" && attr == "load" {
		positional, keywords := pyast.CallArguments(n)
		for _, kw := range keywords {
			if kw.Name == "Loader" {
				return
			}
		}
		if len(positional) >= 2 {
			return
		}
	}

	v.c.add(rule.message, findings.SeverityWarning, n.Line(), n.Col(), rule.ruleID,
		"See https://owasp.org for secure alternatives")
}

func (v *securityVisitor) checkDynamicImport(n pyast.Node) {
	fn, ok := n.ChildByField("function")
	if !ok || fn.Kind() != "identifier" || fn.Text() != "__import__" {
		return
	}
	v.c.add("Use of __import__() enables dynamic code loading",
		findings.SeverityInfo, n.Line(), n.Col(), "SEC007",
		"Use importlib.import_module() for clearer intent, or static imports where possible")
}

func (v *securityVisitor) checkWeakHashing(n pyast.Node) {
	module, attr, ok := v.splitModuleCall(n)
	if !ok || module != "hashlib" {
		return
	}

	if weakHashes[attr] {
		v.c.add(
			fmt.Sprintf("Use of weak hash algorithm: hashlib.%s()", attr),
			findings.SeverityWarning, n.Line(), n.Col(), "SEC008",
			"Use hashlib.sha256() or stronger. MD5/SHA1 are broken for security purposes",
		)
	}

	// hashlib.new("md5") is the alternative spelling of the same weakness.
	if attr == "new" {
		positional, _ := pyast.CallArguments(n)
		if len(positional) == 0 {
			return
		}
		first := positional[0]
		if !pyast.IsStrConstant(first) {
			return
		}
		name := pyast.StringContent(first)
		if weakHashes[strings.ToLower(name)] {
			v.c.add(
				fmt.Sprintf("Use of weak hash algorithm: hashlib.new('%s')", name),
				findings.SeverityWarning, n.Line(), n.Col(), "SEC008",
				"Use 'sha256' or stronger. MD5/SHA1 are broken for security purposes",
			)
		}
	}
}

// checkHardcodedSecret reports secret-looking names assigned non-empty
// string literals. Chained assignments resolve to the rightmost value, and
// annotated assignments without a value are ignored.
func (v *securityVisitor) checkHardcodedSecret(n pyast.Node) {
	left, ok := n.ChildByField("left")
	if !ok || left.Kind() != "identifier" {
		return
	}
	name := left.Text()
	if !secretNamePattern.MatchString(name) {
		return
	}

	value, ok := n.ChildByField("right")
	if !ok {
		return
	}
	for value.Kind() == "assignment" {
		inner, ok := value.ChildByField("right")
		if !ok {
			return
		}
		value = inner
	}
	if !pyast.IsStrConstant(value) || pyast.StringContent(value) == "" {
		return
	}

	v.c.add(
		fmt.Sprintf("Possible hardcoded secret in variable '%s'", name),
		findings.SeverityWarning, n.Line(), n.Col(), "SEC003",
		"Use environment variables or a secrets manager instead of hardcoded values",
	)
}

// checkSQLFString inspects only the literal segments of an f-string,
// concatenated with spaces; interpolated expressions are ignored.
func (v *securityVisitor) checkSQLFString(n pyast.Node) {
	segments, hasInterpolation := pyast.FStringSegments(n)
	if !pyast.IsFString(n) || !hasInterpolation {
		return
	}
	combined := strings.TrimSpace(strings.Join(segments, " "))
	v.checkSQLPattern(combined, n.Line(), n.Col())
}

// checkSQLPercentFormat inspects %-formatting where the left operand is a
// plain string literal.
func (v *securityVisitor) checkSQLPercentFormat(n pyast.Node) {
	op, ok := n.ChildByField("operator")
	if !ok || op.Text() != "%" {
		return
	}
	left, ok := n.ChildByField("left")
	if !ok || !pyast.IsStrConstant(left) {
		return
	}
	v.checkSQLPattern(pyast.StringContent(left), n.Line(), n.Col())
}

func (v *securityVisitor) checkSQLPattern(text string, line, col int) {
	if !sqlKeywordPattern.MatchString(text) {
		return
	}
	v.c.add("Possible SQL injection: query built with string formatting",
		findings.SeverityWarning, line, col, "SEC010",
		"Use parameterized queries (e.g., cursor.execute('SELECT * FROM t WHERE id=?', (id,)))")
}

func (v *securityVisitor) checkAssert(n pyast.Node) {
	v.c.add("assert statements are removed when Python runs with -O (optimized mode)",
		findings.SeverityInfo, n.Line(), n.Col(), "SEC011",
		"Use explicit if/raise for security checks. assert is for debugging only")
}
