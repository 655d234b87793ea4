// # internal/ui/report/sarif.go
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"envinfer/internal/engine/parser"
	"envinfer/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDUnknownImport = "ENVI001"
	ruleIDParseFailure  = "ENVI002"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

// GenerateSARIF builds a SARIF v2.1.0 document from the analyzed units and
// the set of unknown imports. All file URIs are made relative to projectRoot;
// absolute paths are never included so that reports are safe to share.
func GenerateSARIF(projectRoot string, units []*parser.UnitAnalysis, unknown []string) ([]byte, error) {
	unknownSet := make(map[string]struct{}, len(unknown))
	for _, name := range unknown {
		unknownSet[name] = struct{}{}
	}

	results := make([]sarifResult, 0)
	unknownResults := 0
	failureResults := 0

	for _, unit := range units {
		if unit.Failed {
			results = append(results, sarifResult{
				RuleID:    ruleIDParseFailure,
				Level:     "error",
				Message:   sarifMessage{Text: fmt.Sprintf("Python source could not be parsed; imports from this %s are not counted.", unit.Kind)},
				Locations: []sarifLocation{unitLocation(projectRoot, unit.Path)},
			})
			failureResults++
			continue
		}
		for _, imp := range unit.Imports {
			if _, ok := unknownSet[imp]; !ok {
				continue
			}
			results = append(results, sarifResult{
				RuleID:    ruleIDUnknownImport,
				Level:     "warning",
				Message:   sarifMessage{Text: fmt.Sprintf("Import %q is neither a standard library module nor an installed package.", imp)},
				Locations: []sarifLocation{unitLocation(projectRoot, unit.Path)},
			})
			unknownResults++
		}
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "envinfer",
						Version: version.Version,
						Rules:   buildSARIFRules(unknownResults, failureResults),
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

// buildSARIFRules returns only the rules that are relevant for the given findings.
func buildSARIFRules(unknownResults, failureResults int) []sarifRule {
	rules := make([]sarifRule, 0, 2)
	if unknownResults > 0 {
		rules = append(rules, sarifRule{
			ID:               ruleIDUnknownImport,
			Name:             "UnknownImport",
			ShortDescription: sarifMessage{Text: "An import could not be matched to the standard library or any installed package."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}
	if failureResults > 0 {
		rules = append(rules, sarifRule{
			ID:               ruleIDParseFailure,
			Name:             "ParseFailure",
			ShortDescription: sarifMessage{Text: "A source unit could not be parsed as Python."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		})
	}
	return rules
}

// unitLocation creates a SARIF location for a source unit path.
func unitLocation(projectRoot, unitPath string) sarifLocation {
	return sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       relativeURI(projectRoot, unitPath),
				URIBaseID: "%SRCROOT%",
			},
		},
	}
}

// relativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot. If the path is already relative or projectRoot is
// empty, the original path (with forward slashes) is returned.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil {
			filePath = rel
		}
	}
	// SARIF URIs use forward slashes.
	return filepath.ToSlash(filePath)
}
