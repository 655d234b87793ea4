package parser

import (
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"envinfer/internal/shared/util"
)

// NodeHandler processes a node for an extractor.
// Returns true if the handler has processed children and the walker should stop.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries shared state/helpers used by all extractors.
type ExtractionContext struct {
	Source            []byte
	Analysis          *UnitAnalysis
	ProcessedChildren bool // If true, the walker will skip this node's children

	imports  map[string]bool
	features map[Feature]bool
}

func newExtractionContext(source []byte, analysis *UnitAnalysis) *ExtractionContext {
	return &ExtractionContext{
		Source:   source,
		Analysis: analysis,
		imports:  make(map[string]bool),
		features: make(map[Feature]bool),
	}
}

func (c *ExtractionContext) ResetProcessedChildren() {
	c.ProcessedChildren = false
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}

	ctx.ResetProcessedChildren()
	stop := false
	if handler, ok := e.handlers[node.Kind()]; ok {
		stop = handler(ctx, node)
	}

	if !stop && !ctx.ProcessedChildren {
		for i := uint(0); i < node.ChildCount(); i++ {
			e.Walk(ctx, node.Child(i))
		}
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

// AddImport records a top-level module name; empty names are dropped.
func (c *ExtractionContext) AddImport(name string) {
	if name == "" {
		return
	}
	c.imports[name] = true
}

func (c *ExtractionContext) AddFeature(feature Feature) {
	c.features[feature] = true
}

// finalize flattens the working sets into the analysis in sorted order.
func (c *ExtractionContext) finalize() {
	c.Analysis.Imports = util.SortedStringKeys(c.imports)

	features := make([]Feature, 0, len(c.features))
	for feature := range c.features {
		features = append(features, feature)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	c.Analysis.Features = features
}
