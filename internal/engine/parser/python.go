package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonExtractor collects top-level import names and version features from
// a parsed source unit. Import handlers stop descent into their statement;
// feature handlers keep walking so nested constructs are still visited.
type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, unit *SourceUnit) (*UnitAnalysis, error) {
	analysis := &UnitAnalysis{
		Path:     unit.Path,
		Kind:     unit.Kind,
		ParsedAt: time.Now(),
	}

	ctx := newExtractionContext(source, analysis)
	handlers := make(map[string]NodeHandler)
	for kind, handler := range e.importHandlers() {
		handlers[kind] = handler
	}
	for kind, handler := range e.featureHandlers() {
		handlers[kind] = handler
	}
	engine := NewExtractorEngine(handlers)
	engine.Walk(ctx, root)
	ctx.finalize()

	return analysis, nil
}

func (e *PythonExtractor) importHandlers() map[string]NodeHandler {
	return map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
	}
}

func (e *PythonExtractor) featureHandlers() map[string]NodeHandler {
	return map[string]NodeHandler{
		"assignment":            e.detectAnnotatedAssignment,
		"string":                e.detectFString,
		"decorated_definition":  e.detectDataclassDecorator,
		"named_expression":      e.detectWalrusOperator,
		"binary_operator":       e.detectDictUnion,
		"match_statement":       e.detectMatchStatement,
	}
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "dotted_name", "identifier":
			ctx.AddImport(topLevelName(ctx.Text(child)))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				ctx.AddImport(topLevelName(ctx.Text(name)))
			}
		}
	}
	return true
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	module := node.ChildByFieldName("module_name")
	if module == nil {
		return true
	}

	switch module.Kind() {
	case "dotted_name", "identifier":
		ctx.AddImport(topLevelName(ctx.Text(module)))
	case "relative_import":
		// "from ..pkg import x" still names a module after the dots;
		// "from . import x" does not and contributes nothing.
		for i := uint(0); i < module.ChildCount(); i++ {
			child := module.Child(i)
			if child.Kind() == "dotted_name" || child.Kind() == "identifier" {
				ctx.AddImport(topLevelName(ctx.Text(child)))
				break
			}
		}
	}
	return true
}

func (e *PythonExtractor) detectAnnotatedAssignment(ctx *ExtractionContext, node *sitter.Node) bool {
	if node.ChildByFieldName("type") != nil {
		ctx.AddFeature(FeatureAnnotatedAssignment)
	}
	return false
}

func (e *PythonExtractor) detectFString(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "string_start" {
			continue
		}
		if strings.ContainsAny(ctx.Text(child), "fF") {
			ctx.AddFeature(FeatureFString)
		}
		break
	}
	return false
}

func (e *PythonExtractor) detectDataclassDecorator(ctx *ExtractionContext, node *sitter.Node) bool {
	definition := node.ChildByFieldName("definition")
	if definition == nil || definition.Kind() != "class_definition" {
		return false
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "decorator" {
			continue
		}
		// Bare "@dataclass" only; "@dataclasses.dataclass" and the call
		// form "@dataclass(...)" have a non-identifier expression here.
		for j := uint(0); j < child.ChildCount(); j++ {
			expr := child.Child(j)
			if expr.Kind() == "identifier" && ctx.Text(expr) == "dataclass" {
				ctx.AddFeature(FeatureDataclassDecorator)
				return false
			}
		}
	}
	return false
}

func (e *PythonExtractor) detectWalrusOperator(ctx *ExtractionContext, node *sitter.Node) bool {
	ctx.AddFeature(FeatureWalrusOperator)
	return false
}

func (e *PythonExtractor) detectDictUnion(ctx *ExtractionContext, node *sitter.Node) bool {
	operator := node.ChildByFieldName("operator")
	if operator == nil || operator.Kind() != "|" {
		return false
	}

	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if (left != nil && left.Kind() == "dictionary") || (right != nil && right.Kind() == "dictionary") {
		ctx.AddFeature(FeatureDictUnion)
	}
	return false
}

func (e *PythonExtractor) detectMatchStatement(ctx *ExtractionContext, node *sitter.Node) bool {
	ctx.AddFeature(FeatureMatchStatement)
	return false
}

func topLevelName(module string) string {
	if module == "" {
		return ""
	}
	if idx := strings.IndexByte(module, '.'); idx >= 0 {
		return module[:idx]
	}
	return module
}
