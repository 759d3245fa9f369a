package pyast

import "strings"

// ImportBinding is one local name bound by an import statement, together
// with the canonical dotted module path it resolves to.
type ImportBinding struct {
	Local   string
	Module  string
	Aliased bool
}

// ImportStatementBindings returns the bindings of an import_statement node:
// `import a.b` binds "a.b" to "a.b", `import a.b as c` binds "c" to "a.b".
func ImportStatementBindings(n Node) []ImportBinding {
	var out []ImportBinding
	for _, child := range n.NamedChildren() {
		switch child.Kind() {
		case "dotted_name":
			path := child.Text()
			out = append(out, ImportBinding{Local: path, Module: path})
		case "aliased_import":
			name, ok := child.ChildByField("name")
			if !ok {
				continue
			}
			local := name.Text()
			aliased := false
			if alias, ok := child.ChildByField("alias"); ok {
				local = alias.Text()
				aliased = true
			}
			out = append(out, ImportBinding{Local: local, Module: name.Text(), Aliased: aliased})
		}
	}
	return out
}

// ImportFromParts returns the module of an import_from_statement and the
// bindings it creates: `from m import n as l` binds "l" to "m.n". Wildcard
// imports bind nothing.
func ImportFromParts(n Node) (module string, bindings []ImportBinding) {
	mod, ok := n.ChildByField("module_name")
	if !ok {
		return "", nil
	}
	module = mod.Text()
	for _, child := range n.NamedChildren() {
		if child.StartByte() == mod.StartByte() && child.EndByte() == mod.EndByte() {
			continue
		}
		switch child.Kind() {
		case "dotted_name", "identifier":
			name := child.Text()
			bindings = append(bindings, ImportBinding{Local: name, Module: joinModule(module, name)})
		case "aliased_import":
			nameNode, ok := child.ChildByField("name")
			if !ok {
				continue
			}
			local := nameNode.Text()
			aliased := false
			if alias, ok := child.ChildByField("alias"); ok {
				local = alias.Text()
				aliased = true
			}
			bindings = append(bindings, ImportBinding{
				Local:   local,
				Module:  joinModule(module, nameNode.Text()),
				Aliased: aliased,
			})
		}
	}
	return module, bindings
}

// joinModule joins a module path and an imported name with a single dot,
// keeping relative prefixes like "." intact.
func joinModule(module, name string) string {
	if strings.HasSuffix(module, ".") {
		return module + name
	}
	return module + "." + name
}

// ComparisonParts decomposes a comparison_operator node into its operands
// and operator texts in order. Two-token operators ("not in", "is not") are
// merged into one entry, so ops[i] compares operands[i] and operands[i+1].
func ComparisonParts(n Node) (operands []Node, ops []string) {
	var tokens []string
	for _, child := range n.AllChildren() {
		if child.IsNamed() {
			if child.Kind() == "comment" {
				continue
			}
			operands = append(operands, child)
			continue
		}
		tokens = append(tokens, child.Text())
	}
	for i := 0; i < len(tokens); i++ {
		if tokens[i] == "not" && i+1 < len(tokens) && tokens[i+1] == "in" {
			ops = append(ops, "not in")
			i++
			continue
		}
		if tokens[i] == "is" && i+1 < len(tokens) && tokens[i+1] == "not" {
			ops = append(ops, "is not")
			i++
			continue
		}
		ops = append(ops, tokens[i])
	}
	return operands, ops
}

// KeywordArg is one keyword argument of a call.
type KeywordArg struct {
	Name  string
	Value Node
}

// CallArguments splits a call node's argument list into positional
// arguments and keyword arguments, in source order.
func CallArguments(n Node) (positional []Node, keywords []KeywordArg) {
	args, ok := n.ChildByField("arguments")
	if !ok {
		return nil, nil
	}
	for _, arg := range args.NamedChildren() {
		if arg.Kind() == "keyword_argument" {
			name, okN := arg.ChildByField("name")
			value, okV := arg.ChildByField("value")
			if okN && okV {
				keywords = append(keywords, KeywordArg{Name: name.Text(), Value: value})
			}
			continue
		}
		positional = append(positional, arg)
	}
	return positional, keywords
}
