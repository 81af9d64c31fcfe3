package cst

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree owns a parsed syntax tree and the source bytes it was built from. The
// tree-sitter tree must be closed when no longer needed to release the
// native parser's memory.
type Tree struct {
	raw    *sitter.Tree
	source []byte
}

// Root returns the tree's root node.
func (t *Tree) Root() Node {
	if t == nil || t.raw == nil {
		return Node{}
	}
	return Node{raw: t.raw.RootNode(), source: t.source}
}

// HasError reports whether the parse produced any ERROR or MISSING node,
// i.e. whether the grammar could not fully recognise the input.
func (t *Tree) HasError() bool {
	return t.Root().raw != nil && t.raw.RootNode().HasError()
}

// Close releases the native tree. Safe to call on a nil Tree.
func (t *Tree) Close() {
	if t != nil && t.raw != nil {
		t.raw.Close()
	}
}

// Parser wraps a tree-sitter parser bound to a single language.
type Parser struct {
	raw *sitter.Parser
}

// NewParser constructs a Parser bound to language. The language is supplied
// by the caller — see the package doc comment — so this constructor is the
// single seam through which a concrete Fortran grammar enters the module.
func NewParser(language *sitter.Language) (*Parser, error) {
	p := sitter.NewParser()
	if err := p.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("cst: set language: %w", err)
	}
	return &Parser{raw: p}, nil
}

// Parse parses source into a Tree. The returned Tree's Root always returns a
// usable node even when HasError is true: tree-sitter produces a best-effort
// partial tree on malformed input, which is exactly the "partial tree
// analysis continues where rules tolerate it" behaviour the per-file
// analyser relies on.
func (p *Parser) Parse(source []byte) *Tree {
	tree := p.raw.Parse(source, nil)
	return &Tree{raw: tree, source: source}
}

// Close releases the native parser.
func (p *Parser) Close() {
	if p != nil && p.raw != nil {
		p.raw.Close()
	}
}
