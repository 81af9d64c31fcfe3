package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_fortran "github.com/tree-sitter-grammars/tree-sitter-fortran/bindings/go"

	"github.com/fortitude-sh/fortitude/internal/cst"
	"github.com/fortitude-sh/fortitude/internal/symtab"
)

// parseScope parses source with the real Fortran grammar and returns the
// first named descendant of kind scopeKind plus a closer.
func parseScope(t *testing.T, source, scopeKind string) (cst.Node, func()) {
	t.Helper()
	lang := sitter.NewLanguage(tree_sitter_fortran.Language())
	parser, err := cst.NewParser(lang)
	require.NoError(t, err)

	tree := parser.Parse([]byte(source))
	require.False(t, tree.HasError(), "grammar failed to parse fixture:\n%s", source)

	node, ok := findScope(tree.Root(), scopeKind)
	require.True(t, ok, "no %s node found", scopeKind)

	return node, func() {
		tree.Close()
		parser.Close()
	}
}

func findScope(n cst.Node, kind string) (cst.Node, bool) {
	if n.Kind() == kind {
		return n, true
	}
	for _, c := range n.NamedChildren() {
		if found, ok := findScope(c, kind); ok {
			return found, true
		}
	}
	return cst.Node{}, false
}

func TestBuildParsesPlainDeclaration(t *testing.T) {
	source := "subroutine s(n)\n  integer, intent(in) :: n\nend subroutine s\n"
	node, closeTree := parseScope(t, source, "subroutine")
	defer closeTree()

	table := symtab.Build(node, []byte(source))
	v, ok := table.Get("n")
	require.True(t, ok)
	assert.Equal(t, symtab.TypeIntrinsic, v.Decl.Type.Tag)
	assert.Equal(t, symtab.IntentIn, v.Decl.IntentAttribute())
}

func TestBuildParsesDimensionAttribute(t *testing.T) {
	source := "subroutine s()\n  real, dimension(10, 1:20) :: a\nend subroutine s\n"
	node, closeTree := parseScope(t, source, "subroutine")
	defer closeTree()

	table := symtab.Build(node, []byte(source))
	v, ok := table.Get("a")
	require.True(t, ok)
	require.True(t, v.Decl.HasAttribute(symtab.AttrDimension))

	var dims []symtab.Dimension
	for _, attr := range v.Decl.Attributes {
		if attr.Kind == symtab.AttrDimension {
			dims = attr.Dimensions
		}
	}
	require.Len(t, dims, 2)
	assert.Equal(t, symtab.DimExpression, dims[0].Spec)
	assert.Equal(t, symtab.DimExtent, dims[1].Spec)
	assert.Equal(t, "1", dims[1].Lower)
	assert.Equal(t, "20", dims[1].Upper)
}

func TestBuildParsesSizedArrayDeclarator(t *testing.T) {
	source := "subroutine s()\n  real :: a(10)\nend subroutine s\n"
	node, closeTree := parseScope(t, source, "subroutine")
	defer closeTree()

	table := symtab.Build(node, []byte(source))
	_, ok := table.Get("a")
	assert.True(t, ok, "sized_declarator's wrapped identifier is still indexed by name")
}

func TestBuildParsesParameterStatement(t *testing.T) {
	source := "module m\n  real :: x\n  parameter (x = 3.14)\nend module m\n"
	node, closeTree := parseScope(t, source, "module")
	defer closeTree()

	table := symtab.Build(node, []byte(source))
	assert.True(t, table.IsParameterStatement("x"))
	assert.False(t, table.IsParameterStatement("y"))
}
