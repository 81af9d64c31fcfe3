// Package cst is the uniform facade over the concrete syntax tree that the
// Fortran grammar produces. Apart from the grammar wiring in cmd/fortitude
// and tests that parse fixtures, it is the only code in this module that
// touches the tree-sitter SDK directly; rule bodies, the symbol table, and
// the analyser consume Node values and never import go-tree-sitter.
//
// The grammar itself (a compiled tree-sitter language) is an external
// collaborator per the core's scope: NewParser takes a *sitter.Language
// supplied by the caller (cmd/fortitude wires in the concrete Fortran
// grammar), so this package never pins a grammar dependency of its own.
package cst

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node is an opaque, value-typed handle over a tree-sitter node plus the
// source bytes it was parsed from, matching spec's Node contract: a kind
// tag, a byte range, ordered children, named-child-by-field lookup, and
// ancestors.
type Node struct {
	raw    *sitter.Node
	source []byte
}

// IsZero reports whether n wraps no underlying node.
func (n Node) IsZero() bool {
	return n.raw == nil
}

// Kind returns the node's grammar tag, e.g. "module_statement".
func (n Node) Kind() string {
	if n.raw == nil {
		return ""
	}
	return n.raw.Kind()
}

// IsNamed reports whether this is a named (not anonymous/literal) node.
func (n Node) IsNamed() bool {
	return n.raw != nil && n.raw.IsNamed()
}

// ByteRange returns the node's half-open byte span within the source.
func (n Node) ByteRange() (start, end int) {
	if n.raw == nil {
		return 0, 0
	}
	return int(n.raw.StartByte()), int(n.raw.EndByte())
}

// Text returns the UTF-8 slice of source covered by the node, or ("", false)
// if the span is not valid UTF-8.
func (n Node) Text() (string, bool) {
	if n.raw == nil {
		return "", false
	}
	start, end := n.ByteRange()
	if start < 0 || end > len(n.source) || start > end {
		return "", false
	}
	b := n.source[start:end]
	if !isValidUTF8(b) {
		return "", false
	}
	return string(b), true
}

func isValidUTF8(b []byte) bool {
	return strings.ToValidUTF8(string(b), "�") == string(b)
}

// ChildCount returns the number of direct children, named and anonymous.
func (n Node) ChildCount() int {
	if n.raw == nil {
		return 0
	}
	return int(n.raw.ChildCount())
}

// Child returns the i-th direct child (0-based), including anonymous nodes.
func (n Node) Child(i int) (Node, bool) {
	if n.raw == nil {
		return Node{}, false
	}
	c := n.raw.Child(uint(i))
	if c == nil {
		return Node{}, false
	}
	return Node{raw: c, source: n.source}, true
}

// Children returns every direct child, named and anonymous, in order.
func (n Node) Children() []Node {
	count := n.ChildCount()
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if c, ok := n.Child(i); ok {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns direct named children, in order.
func (n Node) NamedChildren() []Node {
	if n.raw == nil {
		return nil
	}
	count := int(n.raw.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.raw.NamedChild(uint(i))
		if c != nil {
			out = append(out, Node{raw: c, source: n.source})
		}
	}
	return out
}

// ChildByField returns the unique named child registered under field, if
// any.
func (n Node) ChildByField(field string) (Node, bool) {
	if n.raw == nil {
		return Node{}, false
	}
	c := n.raw.ChildByFieldName(field)
	if c == nil {
		return Node{}, false
	}
	return Node{raw: c, source: n.source}, true
}

// ChildWithKind returns the first named child whose Kind equals kind.
func (n Node) ChildWithKind(kind string) (Node, bool) {
	for _, c := range n.NamedChildren() {
		if c.Kind() == kind {
			return c, true
		}
	}
	return Node{}, false
}

// Parent returns the node's parent, if any.
func (n Node) Parent() (Node, bool) {
	if n.raw == nil {
		return Node{}, false
	}
	p := n.raw.Parent()
	if p == nil {
		return Node{}, false
	}
	return Node{raw: p, source: n.source}, true
}

// NextSibling returns the next direct sibling, named or not.
func (n Node) NextSibling() (Node, bool) {
	if n.raw == nil {
		return Node{}, false
	}
	s := n.raw.NextSibling()
	if s == nil {
		return Node{}, false
	}
	return Node{raw: s, source: n.source}, true
}

// NextNamedSibling returns the next named sibling, skipping anonymous nodes
// (punctuation, keywords parsed as leaves). This is the primitive the
// allow-comment system walks to find "the next statement".
func (n Node) NextNamedSibling() (Node, bool) {
	if n.raw == nil {
		return Node{}, false
	}
	s := n.raw.NextNamedSibling()
	if s == nil {
		return Node{}, false
	}
	return Node{raw: s, source: n.source}, true
}

// Ancestors returns the lazy upward chain from n's parent to the root.
func (n Node) Ancestors() func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		cur, ok := n.Parent()
		for ok {
			if !yield(cur) {
				return
			}
			cur, ok = cur.Parent()
		}
	}
}

// NamedDescendants walks every named descendant of n, in stable pre-order,
// excluding n itself.
func NamedDescendants(n Node) []Node {
	return namedDescendantsExcept(n, nil)
}

// NamedDescendantsExcept walks named descendants in pre-order, pruning (not
// descending into) the subtree rooted at any node whose kind is in skip.
func NamedDescendantsExcept(n Node, skip map[string]bool) []Node {
	return namedDescendantsExcept(n, skip)
}

func namedDescendantsExcept(n Node, skip map[string]bool) []Node {
	var out []Node
	var walk func(Node)
	walk = func(cur Node) {
		for _, child := range cur.NamedChildren() {
			out = append(out, child)
			if skip != nil && skip[child.Kind()] {
				continue
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// KwargExists reports whether a keyword-argument-shaped child named name
// exists among n's named children, matched ASCII-case-insensitively against
// the "name=value" style actual-argument grammar used for keyword
// arguments in calls and declarations.
func KwargExists(n Node, name string, src []byte) bool {
	_, ok := Kwarg(n, name, src)
	return ok
}

// Kwarg returns the argument node for the keyword argument named name, if
// present; matching is ASCII-case-insensitive on the "keyword=" prefix.
func Kwarg(n Node, name string, src []byte) (Node, bool) {
	for _, c := range n.NamedChildren() {
		if c.Kind() != "keyword_argument" {
			continue
		}
		nameNode, ok := c.ChildByField("name")
		if !ok {
			continue
		}
		text, ok := nameNode.Text()
		if !ok || !strings.EqualFold(text, name) {
			continue
		}
		if value, ok := c.ChildByField("value"); ok {
			return value, true
		}
	}
	return Node{}, false
}

// KwargValue returns the text of the keyword argument named name, if
// present and valid UTF-8.
func KwargValue(n Node, name string, src []byte) (string, bool) {
	arg, ok := Kwarg(n, name, src)
	if !ok {
		return "", false
	}
	return arg.Text()
}

// intrinsicTypeNames is the fixed set of Fortran intrinsic type keywords.
var intrinsicTypeNames = map[string]bool{
	"integer": true, "real": true, "logical": true, "complex": true,
	"character": true, "double precision": true, "doubleprecision": true,
}

// DtypeIsPlainNumber reports whether text names one of the plain numeric
// intrinsic types {integer, real, logical, complex} with no kind selector.
func DtypeIsPlainNumber(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "integer", "real", "logical", "complex":
		return true
	default:
		return false
	}
}

// ParseIntrinsicType returns the inner intrinsic type text of a
// variable_declaration node, if its type field names an intrinsic type.
func ParseIntrinsicType(variableDeclaration Node) (string, bool) {
	typeField, ok := variableDeclaration.ChildByField("type")
	if !ok {
		return "", false
	}
	text, ok := typeField.Text()
	if !ok {
		return "", false
	}
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if intrinsicTypeNames[normalized] {
		return normalized, true
	}
	return "", false
}
