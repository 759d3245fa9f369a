package pyast

import (
	"strconv"
	"strings"
)

// IsStringNode reports whether n is a string literal of any flavor,
// f-strings included.
func IsStringNode(n Node) bool {
	return n.Kind() == "string"
}

// stringQuote locates the quote of a string literal: the prefix letters
// before it (r, b, f, u in any case) and the quote length (3 for
// triple-quoted strings, otherwise 1).
func stringQuote(n Node) (prefix string, quoteLen int) {
	raw := n.Text()
	idx := strings.IndexAny(raw, `"'`)
	if idx < 0 {
		return raw, 0
	}
	prefix = raw[:idx]
	rest := raw[idx:]
	quoteLen = 1
	if len(rest) >= 3 && (strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, "'''")) {
		quoteLen = 3
	}
	return prefix, quoteLen
}

// IsFString reports whether n is a formatted string literal (f-prefix).
func IsFString(n Node) bool {
	if !IsStringNode(n) {
		return false
	}
	prefix, _ := stringQuote(n)
	return strings.ContainsAny(prefix, "fF")
}

// IsPlainString reports whether n is a string literal without an f-prefix.
// This is the tree-sitter shape of what Python's abstract syntax calls a
// string constant.
func IsPlainString(n Node) bool {
	return IsStringNode(n) && !IsFString(n)
}

// IsBytes reports whether n is a bytes literal (b-prefix). Rules that need a
// str constant must exclude these.
func IsBytes(n Node) bool {
	if !IsStringNode(n) {
		return false
	}
	prefix, _ := stringQuote(n)
	return strings.ContainsAny(prefix, "bB")
}

// IsStrConstant reports whether n is a plain (non-f, non-bytes) string
// literal.
func IsStrConstant(n Node) bool {
	return IsPlainString(n) && !IsBytes(n)
}

// StringContent returns the text between the quotes of a string literal.
// Escape sequences are left unprocessed; callers only match patterns or
// test for emptiness.
func StringContent(n Node) string {
	raw := n.Text()
	prefix, quoteLen := stringQuote(n)
	if quoteLen == 0 {
		return ""
	}
	start := len(prefix) + quoteLen
	end := len(raw) - quoteLen
	if end < start {
		return ""
	}
	return raw[start:end]
}

// FStringSegments returns the literal text segments of a string node,
// split around its interpolations, and whether any interpolation is
// present. For a plain string it returns one segment and false.
func FStringSegments(n Node) (segments []string, hasInterpolation bool) {
	prefix, quoteLen := stringQuote(n)
	if quoteLen == 0 {
		return nil, false
	}
	contentStart := n.StartByte() + len(prefix) + quoteLen
	contentEnd := n.EndByte() - quoteLen
	if contentEnd < contentStart {
		return nil, false
	}

	var interps []Node
	for _, child := range n.NamedChildren() {
		if child.Kind() == "interpolation" {
			interps = append(interps, child)
		}
	}

	cur := contentStart
	for _, in := range interps {
		if in.StartByte() > cur {
			segments = append(segments, string(n.src[cur:in.StartByte()]))
		}
		cur = in.EndByte()
	}
	if cur < contentEnd {
		segments = append(segments, string(n.src[cur:contentEnd]))
	}
	return segments, len(interps) > 0
}

// IsConstant reports whether n is a literal constant in the abstract-syntax
// sense: True/False/None, a number, or a plain string. F-strings are not
// constants.
func IsConstant(n Node) bool {
	switch n.Kind() {
	case "true", "false", "none", "integer", "float":
		return true
	case "string":
		return IsPlainString(n)
	}
	return false
}

// ConstantTruth evaluates the truthiness of a literal constant. ok is false
// when n is not a constant or its value cannot be read.
func ConstantTruth(n Node) (truth, ok bool) {
	switch n.Kind() {
	case "true":
		return true, true
	case "false", "none":
		return false, true
	case "integer":
		v, err := parseInt(n.Text())
		if err != nil {
			return false, false
		}
		return v != 0, true
	case "float":
		v, err := strconv.ParseFloat(strings.ReplaceAll(n.Text(), "_", ""), 64)
		if err != nil {
			return false, false
		}
		return v != 0, true
	case "string":
		if !IsPlainString(n) {
			return false, false
		}
		return StringContent(n) != "", true
	}
	return false, false
}

// IntValue resolves an integer literal to its value. It special-cases the
// unary-negation form, since "-1" parses as a unary operator applied to the
// literal 1.
func IntValue(n Node) (int, bool) {
	switch n.Kind() {
	case "integer":
		v, err := parseInt(n.Text())
		if err != nil {
			return 0, false
		}
		return int(v), true
	case "unary_operator":
		op, ok := n.ChildByField("operator")
		if !ok || op.Text() != "-" {
			return 0, false
		}
		arg, ok := n.ChildByField("argument")
		if !ok || arg.Kind() != "integer" {
			return 0, false
		}
		v, err := parseInt(arg.Text())
		if err != nil {
			return 0, false
		}
		return -int(v), true
	}
	return 0, false
}

// parseInt handles Python integer literal syntax: underscores and the
// 0x/0o/0b prefixes.
func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 0, 64)
}
