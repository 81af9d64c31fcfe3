package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortitude-sh/fortitude/internal/cst"
	"github.com/fortitude-sh/fortitude/internal/symtab"
)

func TestIsScopeNode(t *testing.T) {
	assert.True(t, symtab.IsScopeNode("subroutine"))
	assert.True(t, symtab.IsScopeNode("module"))
	assert.False(t, symtab.IsScopeNode("if_statement"))
}

func declWithIntent(name string, intent symtab.Intent) symtab.VariableDeclaration {
	return symtab.VariableDeclaration{
		Type: symtab.Type{Tag: symtab.TypeIntrinsic, Text: "integer"},
		Attributes: []symtab.Attribute{
			{Kind: symtab.AttrIntent, Intent: intent},
		},
		Names: []symtab.NameDecl{{Name: name}},
	}
}

func TestVariableDeclarationIntentAttribute(t *testing.T) {
	d := declWithIntent("n", symtab.IntentIn)
	assert.True(t, d.HasAttribute(symtab.AttrIntent))
	assert.Equal(t, symtab.IntentIn, d.IntentAttribute())
	assert.False(t, d.HasAttribute(symtab.AttrAllocatable))
}

func TestVariableDeclarationNoIntentIsIntentNone(t *testing.T) {
	d := symtab.VariableDeclaration{Names: []symtab.NameDecl{{Name: "x"}}}
	assert.Equal(t, symtab.IntentNone, d.IntentAttribute())
}

func TestSymbolTableInsertAndGetIsCaseInsensitive(t *testing.T) {
	table := symtab.NewSymbolTable(cst.Node{})
	table.Insert(declWithIntent("Count", symtab.IntentOut))

	v, ok := table.Get("count")
	require.True(t, ok)
	assert.Equal(t, "count", v.Name)
	assert.Equal(t, symtab.IntentOut, v.Decl.IntentAttribute())

	_, ok = table.Get("missing")
	assert.False(t, ok)
}

func TestSymbolTableRedeclarationOverwrites(t *testing.T) {
	table := symtab.NewSymbolTable(cst.Node{})
	table.Insert(declWithIntent("x", symtab.IntentIn))
	table.Insert(declWithIntent("x", symtab.IntentOut))

	v, ok := table.Get("x")
	require.True(t, ok)
	assert.Equal(t, symtab.IntentOut, v.Decl.IntentAttribute())
}

func TestSymbolTableParameterStatement(t *testing.T) {
	table := symtab.NewSymbolTable(cst.Node{})
	assert.False(t, table.IsParameterStatement("pi"))
	table.MarkParameter("PI", cst.Node{})
	assert.True(t, table.IsParameterStatement("pi"))
}

func TestStackPushPopAndLookup(t *testing.T) {
	stack := symtab.NewStack()
	assert.Equal(t, 0, stack.Depth())
	assert.Nil(t, stack.Top())

	outer := symtab.NewSymbolTable(cst.Node{})
	outer.Insert(declWithIntent("shared", symtab.IntentIn))
	stack.Push(outer)

	inner := symtab.NewSymbolTable(cst.Node{})
	inner.Insert(declWithIntent("local", symtab.IntentNone))
	stack.Push(inner)

	assert.Equal(t, 2, stack.Depth())
	assert.Same(t, inner, stack.Top())

	_, ok := stack.Get("local")
	assert.True(t, ok)
	_, ok = stack.Get("shared")
	assert.True(t, ok, "lookup falls through to the enclosing scope")

	stack.Pop()
	assert.Equal(t, 1, stack.Depth())
	_, ok = stack.Get("local")
	assert.False(t, ok, "popped scope's declarations are no longer visible")
}

func TestStackPopOnEmptyPanics(t *testing.T) {
	stack := symtab.NewStack()
	assert.Panics(t, func() { stack.Pop() })
}
