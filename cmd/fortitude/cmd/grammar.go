package cmd

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_fortran "github.com/tree-sitter-grammars/tree-sitter-fortran/bindings/go"

	"github.com/fortitude-sh/fortitude/internal/cst"
)

// newFortranParser binds the cgo-compiled Fortran grammar into a cst.Parser.
// This is the one seam named in internal/cst's package doc: the grammar is
// an external collaborator, wired in here rather than inside internal/cst
// itself, so the core module never imports a concrete grammar package.
func newFortranParser() (*cst.Parser, error) {
	lang := sitter.NewLanguage(tree_sitter_fortran.Language())
	return cst.NewParser(lang)
}
