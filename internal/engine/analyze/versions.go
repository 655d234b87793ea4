// # internal/engine/analyze/versions.go
package analyze

import (
	"fmt"

	"envinfer/internal/engine/parser"
)

// Version is an ordered (major, minor) runtime version pair. Pair
// ordering keeps 3.10 above 3.9.
type Version struct {
	Major int
	Minor int
}

// Floor is the process-wide minimum: without any qualifying feature a
// unit still requires it.
var Floor = Version{Major: 3, Minor: 5}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

func (v Version) AtLeast(other Version) bool {
	return !v.Less(other)
}

// featureVersions maps each detected feature to the runtime version it
// demands.
var featureVersions = map[parser.Feature]Version{
	parser.FeatureAnnotatedAssignment: {3, 5},
	parser.FeatureFString:             {3, 6},
	parser.FeatureDataclassDecorator:  {3, 7},
	parser.FeatureWalrusOperator:      {3, 8},
	parser.FeatureDictUnion:           {3, 9},
	parser.FeatureMatchStatement:      {3, 10},
}

// reasonTable drives the cumulative reasoning block, ascending by
// threshold.
var reasonTable = []struct {
	version Version
	reason  string
}{
	{Version{3, 5}, "Type hints detected (Python 3.5+)"},
	{Version{3, 6}, "F-strings detected (Python 3.6+)"},
	{Version{3, 7}, "Dataclasses detected (Python 3.7+)"},
	{Version{3, 8}, "Walrus operator detected (Python 3.8+)"},
	{Version{3, 9}, "Dictionary union operators detected (Python 3.9+)"},
	{Version{3, 10}, "Match statements detected (Python 3.10+)"},
}

// UnitMinimum is the maximum version demanded by the unit's features,
// with the process-wide floor when none were detected.
func UnitMinimum(features []parser.Feature) Version {
	min := Floor
	for _, feature := range features {
		if required, ok := featureVersions[feature]; ok && min.Less(required) {
			min = required
		}
	}
	return min
}

// Reasoning lists one line per version threshold the recommendation
// crossed, lowest to highest. Lower thresholds stay listed once a higher
// one is reached.
func Reasoning(recommended Version) []string {
	reasons := make([]string, 0, len(reasonTable))
	for _, entry := range reasonTable {
		if recommended.AtLeast(entry.version) {
			reasons = append(reasons, entry.reason)
		}
	}
	return reasons
}
