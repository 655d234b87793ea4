// # internal/engine/parser/types.go
package parser

import (
	"time"
)

type UnitKind string

const (
	KindScript   UnitKind = "script"
	KindNotebook UnitKind = "notebook"
)

// SourceUnit is one analyzable input: a Python script, or the code cells
// of a notebook reassembled into a single Python text.
type SourceUnit struct {
	Path string
	Kind UnitKind
	Text string
}

// UnitAnalysis is what one unit contributes to the project-wide report.
type UnitAnalysis struct {
	Path     string
	Kind     UnitKind
	Imports  []string  // Top-level module names, sorted, deduplicated
	Features []Feature // Detected version features, sorted
	Failed   bool      // Syntax errors in the unit; both sets are empty
	ParsedAt time.Time
}

// Feature marks a syntax construct that raises the minimum runtime version.
type Feature string

const (
	FeatureAnnotatedAssignment Feature = "annotated_assignment"
	FeatureFString             Feature = "f_string"
	FeatureDataclassDecorator  Feature = "dataclass_decorator"
	FeatureWalrusOperator      Feature = "walrus_operator"
	FeatureDictUnion           Feature = "dict_union"
	FeatureMatchStatement      Feature = "match_statement"
)
