// # internal/engine/parser/loader.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// GrammarLoader holds the compiled-in tree-sitter grammar.
type GrammarLoader struct {
	python *sitter.Language
}

func NewGrammarLoader() *GrammarLoader {
	return &GrammarLoader{
		python: sitter.NewLanguage(tree_sitter_python.Language()),
	}
}

func (gl *GrammarLoader) Python() *sitter.Language {
	return gl.python
}

// SupportsMatchStatement reports whether the loaded grammar recognizes
// structural pattern matching. Older grammar revisions parse "match" as a
// plain identifier, in which case the 3.10 feature cannot be detected.
func (gl *GrammarLoader) SupportsMatchStatement() bool {
	return gl.python.IdForNodeKind("match_statement", true) != 0
}
