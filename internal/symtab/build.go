package symtab

import (
	"strings"

	"github.com/fortitude-sh/fortitude/internal/cst"
)

// Build constructs a SymbolTable for scopeNode by enumerating its direct
// named children of kind "variable_declaration" — not descendants, per
// spec's construction rule — plus any direct "parameter_statement" children,
// which decorate names declared elsewhere with an out-of-line parameter
// attribution.
func Build(scopeNode cst.Node, src []byte) *SymbolTable {
	table := NewSymbolTable(scopeNode)
	for _, child := range scopeNode.NamedChildren() {
		switch child.Kind() {
		case "variable_declaration":
			if decl, ok := parseVariableDeclaration(child, src); ok {
				table.Insert(decl)
			}
		case "parameter_statement":
			for _, name := range parseParameterStatement(child, src) {
				table.MarkParameter(name, child)
			}
		}
	}
	return table
}

// parseVariableDeclaration parses one variable_declaration statement into a
// VariableDeclaration. A declaration with no "type" field is silently
// dropped: the grammar has already flagged the syntax error.
func parseVariableDeclaration(node cst.Node, src []byte) (VariableDeclaration, bool) {
	typeField, ok := node.ChildByField("type")
	if !ok {
		return VariableDeclaration{}, false
	}
	typ := parseType(typeField)

	var attrs []Attribute
	for _, c := range node.NamedChildren() {
		if c.Kind() != "attribute" && c.Kind() != "attribute_specifier" {
			continue
		}
		attrs = append(attrs, parseAttribute(c))
	}

	var names []NameDecl
	for _, c := range node.NamedChildren() {
		if name, declarator, ok := declaratorName(c); ok {
			names = append(names, NameDecl{Name: name, Declarator: declarator})
		}
	}

	return VariableDeclaration{Type: typ, Attributes: attrs, Names: names, Node: node}, true
}

func parseType(typeField cst.Node) Type {
	text, _ := typeField.Text()
	if cst.DtypeIsPlainNumber(text) {
		return Type{Tag: TypeIntrinsic, Text: text}
	}
	switch typeField.Kind() {
	case "intrinsic_type":
		return Type{Tag: TypeIntrinsic, Text: text}
	case "derived_type_specifier", "derived_type":
		return Type{Tag: TypeDerived, Text: text}
	case "procedure_type":
		return Type{Tag: TypeProcedure, Text: text}
	default:
		return Type{Tag: TypeDeclared, Text: text}
	}
}

// declaratorName computes the canonical (name, declarator-node) pair for one
// of the declarator shapes the grammar emits within a declaration statement.
func declaratorName(n cst.Node) (string, cst.Node, bool) {
	switch n.Kind() {
	case "identifier", "method_name":
		if text, ok := n.Text(); ok {
			return text, n, true
		}
	case "sized_declarator":
		if inner, ok := n.Child(0); ok {
			return declaratorName(inner)
		}
	case "coarray_declarator":
		if inner, ok := n.ChildWithKind("identifier"); ok {
			return declaratorName(inner)
		}
		if inner, ok := n.ChildWithKind("sized_declarator"); ok {
			return declaratorName(inner)
		}
	case "init_declarator", "pointer_init_declarator", "data_declarator":
		if left, ok := n.ChildByField("left"); ok {
			return declaratorName(left)
		}
	}
	return "", cst.Node{}, false
}

// parseAttribute classifies one attribute child node. The first child's
// kind identifies the attribute tag, matched case-insensitively against its
// text since the grammar sometimes represents keyword attributes as bare
// identifier/keyword leaves rather than dedicated node kinds.
func parseAttribute(n cst.Node) Attribute {
	tagText := strings.ToLower(firstChildText(n))
	switch tagText {
	case "dimension":
		return Attribute{Kind: AttrDimension, Dimensions: parseDimensions(n)}
	case "intent":
		return Attribute{Kind: AttrIntent, Intent: parseIntent(n)}
	}
	if kind, ok := attributeNames[tagText]; ok {
		return Attribute{Kind: kind}
	}
	return Attribute{Kind: AttrUnknown}
}

func firstChildText(n cst.Node) string {
	if c, ok := n.Child(0); ok {
		if text, ok := c.Text(); ok {
			return text
		}
	}
	if text, ok := n.Text(); ok {
		return text
	}
	return ""
}

func parseIntent(n cst.Node) Intent {
	text := strings.ToLower(firstOrOwnText(n))
	hasIn := strings.Contains(text, "in")
	hasOut := strings.Contains(text, "out")
	switch {
	case strings.Contains(text, "inout"):
		return IntentInOut
	case hasIn && hasOut:
		return IntentInOut
	case hasIn:
		return IntentIn
	case hasOut:
		return IntentOut
	default:
		return IntentNone
	}
}

func firstOrOwnText(n cst.Node) string {
	if argList, ok := n.ChildWithKind("argument_list"); ok {
		if text, ok := argList.Text(); ok {
			return text
		}
	}
	if text, ok := n.Text(); ok {
		return text
	}
	return ""
}

// parseDimensions parses a dimension attribute's argument_list into one
// Dimension per rank.
func parseDimensions(n cst.Node) []Dimension {
	argList, ok := n.ChildWithKind("argument_list")
	if !ok {
		return nil
	}
	var out []Dimension
	for _, arg := range argList.NamedChildren() {
		out = append(out, parseDimensionRank(arg))
	}
	return out
}

func parseDimensionRank(n cst.Node) Dimension {
	switch n.Kind() {
	case "extent_specifier":
		d := Dimension{Spec: DimExtent}
		if lower, ok := n.ChildByField("start"); ok {
			d.Lower, _ = lower.Text()
		}
		if upper, ok := n.ChildByField("stop"); ok {
			d.Upper, _ = upper.Text()
		}
		if stride, ok := n.ChildByField("stride"); ok {
			d.Stride, _ = stride.Text()
		}
		return d
	case "assumed_size":
		return Dimension{Spec: DimAssumedSize}
	case "assumed_rank":
		return Dimension{Spec: DimAssumedRank}
	default:
		text, _ := n.Text()
		switch {
		case strings.Contains(text, "..") && strings.Count(text, ":") > 1:
			return Dimension{Spec: DimMultipleSubscriptTriplet}
		case strings.Contains(text, ","):
			return Dimension{Spec: DimMultipleSubscript}
		default:
			return Dimension{Spec: DimExpression, Lower: text}
		}
	}
}

// parseParameterStatement extracts the names declared by a standalone
// parameter_statement, e.g. `parameter (pi = 3.14, e = 2.71)`.
func parseParameterStatement(n cst.Node, src []byte) []string {
	var names []string
	for _, c := range n.NamedChildren() {
		if c.Kind() != "named_tuple" && c.Kind() != "assignment" && c.Kind() != "keyword_argument" {
			continue
		}
		if left, ok := c.ChildByField("left"); ok {
			if text, ok := left.Text(); ok {
				names = append(names, text)
				continue
			}
		}
		if name, ok := c.ChildByField("name"); ok {
			if text, ok := name.Text(); ok {
				names = append(names, text)
			}
		}
	}
	return names
}
