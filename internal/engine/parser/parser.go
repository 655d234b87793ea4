// # internal/engine/parser/parser.go
package parser

import (
	"path/filepath"
	"strings"
	"time"

	"envinfer/internal/core/errors"
)

type Parser struct {
	loader    *GrammarLoader
	pool      *ParserPool
	extractor *PythonExtractor
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{
		loader:    loader,
		pool:      NewParserPool(loader.Python()),
		extractor: &PythonExtractor{},
	}
}

// LoadUnit turns raw file bytes into a source unit. Notebook files are
// decoded and their code cells reassembled; a notebook whose JSON is
// malformed or lacks a cells array yields a validation error.
func (p *Parser) LoadUnit(path string, raw []byte) (*SourceUnit, error) {
	switch DetectKind(path) {
	case KindScript:
		return &SourceUnit{Path: path, Kind: KindScript, Text: string(raw)}, nil
	case KindNotebook:
		text, err := ExtractNotebookSource(raw)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeValidationError, "invalid notebook"),
				errors.CtxPath, path)
		}
		return &SourceUnit{Path: path, Kind: KindNotebook, Text: text}, nil
	default:
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported source unit"),
			errors.CtxPath, path)
	}
}

// AnalyzeUnit parses the unit's text and extracts its import set and
// version features. A tree whose root contains syntax errors counts as a
// parse failure: the returned analysis has Failed set and empty sets.
func (p *Parser) AnalyzeUnit(unit *SourceUnit) (*UnitAnalysis, error) {
	parser := p.pool.Get()
	defer p.pool.Put(parser)

	tree := parser.Parse([]byte(unit.Text), nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return &UnitAnalysis{
			Path:     unit.Path,
			Kind:     unit.Kind,
			Failed:   true,
			ParsedAt: time.Now(),
		}, nil
	}

	analysis, err := p.extractor.Extract(root, []byte(unit.Text), unit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	return analysis, nil
}

// DetectKind maps a path to its unit kind by extension, or "" when the
// path is not analyzable.
func DetectKind(path string) UnitKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return KindScript
	case ".ipynb":
		return KindNotebook
	default:
		return ""
	}
}

func (p *Parser) IsSupportedPath(path string) bool {
	return DetectKind(path) != ""
}
