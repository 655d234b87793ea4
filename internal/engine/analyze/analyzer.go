// # internal/engine/analyze/analyzer.go
package analyze

import (
	"sort"
	"time"

	"envinfer/internal/engine/classify"
)

// DependencyReport partitions every top-level import name seen
// project-wide into three disjoint, alphabetically ordered sequences.
type DependencyReport struct {
	ThirdParty  []string // "name==version" entries, or bare names when unmatched
	StandardLib []string
	Unknown     []string
}

func (r *DependencyReport) Total() int {
	return len(r.ThirdParty) + len(r.StandardLib) + len(r.Unknown)
}

// EnvironmentSpec is the full analysis outcome: the recommended runtime
// version with its reasoning, the dependency partitions, and the manifest
// skeleton inputs.
type EnvironmentSpec struct {
	ProjectName        string
	RecommendedVersion Version
	Reasoning          []string
	Dependencies       DependencyReport
	Channels           []string
	GeneratedAt        time.Time
}

// Analyzer folds a project's unit analyses into an environment spec.
type Analyzer struct {
	classifier *classify.Classifier
}

func NewAnalyzer(classifier *classify.Classifier) *Analyzer {
	return &Analyzer{classifier: classifier}
}

// BuildReport merges the unit import sets, classifies each distinct name
// once, and derives the recommended version as the maximum unit minimum.
func (a *Analyzer) BuildReport(project *Project, channels []string) *EnvironmentSpec {
	names := make(map[string]bool)
	recommended := Floor

	for _, unit := range project.Units() {
		if unit.Failed {
			continue
		}
		for _, name := range unit.Imports {
			names[name] = true
		}
		if min := UnitMinimum(unit.Features); recommended.Less(min) {
			recommended = min
		}
	}

	var report DependencyReport
	for name := range names {
		classification := a.classifier.Classify(name)
		switch classification.Category {
		case classify.CategoryStandardLibrary:
			report.StandardLib = append(report.StandardLib, classification.Entry)
		case classify.CategoryThirdParty:
			report.ThirdParty = append(report.ThirdParty, classification.Entry)
		default:
			report.Unknown = append(report.Unknown, classification.Entry)
		}
	}
	sort.Strings(report.ThirdParty)
	sort.Strings(report.StandardLib)
	sort.Strings(report.Unknown)

	return &EnvironmentSpec{
		ProjectName:        project.Name(),
		RecommendedVersion: recommended,
		Reasoning:          Reasoning(recommended),
		Dependencies:       report,
		Channels:           channels,
		GeneratedAt:        time.Now().UTC(),
	}
}
