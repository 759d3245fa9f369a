// Package pyast provides the Python syntax tree the analysis passes walk.
// It wraps tree-sitter's Python grammar behind a small Node type that binds
// each node to its source bytes, so passes read node kinds, positions, and
// text without touching tree-sitter directly.
package pyast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ParseError describes a syntax failure. Line is 1-based, Column 0-based.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pyast: %s at line %d, column %d", e.Message, e.Line, e.Column)
}

// Tree is a parsed Python source file. It keeps the tree-sitter tree and the
// source bytes alive together; Nodes handed out from it stay valid until
// Close is called.
type Tree struct {
	tree *sitter.Tree
	src  []byte
	name string
}

// Parse parses Python source text. On invalid syntax it returns a *ParseError
// carrying the position of the first error node; tree-sitter itself is
// error-tolerant, so syntax failures are detected from the produced tree.
func Parse(ctx context.Context, src []byte, name string) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{Line: 1, Column: 0, Message: err.Error()}
	}

	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, &ParseError{Line: 1, Column: 0, Message: "invalid syntax"}
	}
	if root.HasError() {
		perr := &ParseError{Line: 1, Column: 0, Message: "invalid syntax"}
		if bad := firstErrorNode(root); bad != nil {
			perr.Line = int(bad.StartPoint().Row) + 1
			perr.Column = int(bad.StartPoint().Column)
		}
		tree.Close()
		return nil, perr
	}

	return &Tree{tree: tree, src: src, name: name}, nil
}

// firstErrorNode returns the first ERROR or missing node in pre-order.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

// Close releases the underlying tree-sitter tree. Nodes obtained from the
// Tree must not be used afterwards.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Name returns the display name the source was parsed under.
func (t *Tree) Name() string { return t.name }

// Root returns the module node.
func (t *Tree) Root() Node {
	return Node{n: t.tree.RootNode(), src: t.src}
}

// Node is one syntax tree node bound to its source bytes. The zero Node is
// invalid; accessors on it are only safe after checking Valid.
type Node struct {
	n   *sitter.Node
	src []byte
}

// Valid reports whether the node is non-nil.
func (n Node) Valid() bool { return n.n != nil }

// Kind returns the grammar node type, e.g. "call" or "function_definition".
func (n Node) Kind() string { return n.n.Type() }

// Text returns the source text the node spans.
func (n Node) Text() string { return n.n.Content(n.src) }

// Line returns the 1-based start line.
func (n Node) Line() int { return int(n.n.StartPoint().Row) + 1 }

// Col returns the 0-based start column.
func (n Node) Col() int { return int(n.n.StartPoint().Column) }

// StartByte returns the byte offset of the node's start.
func (n Node) StartByte() int { return int(n.n.StartByte()) }

// EndByte returns the byte offset just past the node's end.
func (n Node) EndByte() int { return int(n.n.EndByte()) }

// IsNamed reports whether the node is a named grammar node rather than an
// anonymous token.
func (n Node) IsNamed() bool { return n.n.IsNamed() }

// ChildByField returns the child bound to a grammar field such as "left" or
// "arguments". The second result is false when the field is absent.
func (n Node) ChildByField(field string) (Node, bool) {
	child := n.n.ChildByFieldName(field)
	if child == nil {
		return Node{}, false
	}
	return Node{n: child, src: n.src}, true
}

// NamedChildren returns the named children in order, with comment nodes
// filtered out: Python's abstract syntax has no comment statements, and the
// pass rules count statements the way the abstract tree does.
func (n Node) NamedChildren() []Node {
	count := int(n.n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, Node{n: child, src: n.src})
	}
	return out
}

// AllChildren returns every child including anonymous tokens, in order.
// Needed for comparison chains, whose operators are anonymous tokens.
func (n Node) AllChildren() []Node {
	count := int(n.n.ChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.n.Child(i)
		if child == nil {
			continue
		}
		out = append(out, Node{n: child, src: n.src})
	}
	return out
}

// Walk visits the subtree rooted at n in pre-order, depth-first document
// order, skipping comments. This is the traversal that defines finding
// emission order.
func (n Node) Walk(visit func(Node)) {
	visit(n)
	for _, child := range n.NamedChildren() {
		child.Walk(visit)
	}
}
