// # internal/ui/manifest/conda.go
package manifest

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"envinfer/internal/engine/analyze"
	"envinfer/internal/shared/util"
)

// condaEnvironment mirrors the conventional environment.yml key order.
// Field order matters: yaml.v3 emits struct fields in declaration order.
type condaEnvironment struct {
	Name         string        `yaml:"name"`
	Channels     []string      `yaml:"channels"`
	Dependencies []interface{} `yaml:"dependencies"`
}

func condaFromSpec(spec *analyze.EnvironmentSpec) condaEnvironment {
	pip := spec.Dependencies.ThirdParty
	if pip == nil {
		pip = []string{}
	}
	return condaEnvironment{
		Name:     spec.ProjectName,
		Channels: spec.Channels,
		Dependencies: []interface{}{
			"python>=" + spec.RecommendedVersion.String(),
			"pip",
			map[string][]string{"pip": pip},
		},
	}
}

// RenderConda produces the environment.yml document in block style with
// two-space indentation.
func RenderConda(spec *analyze.EnvironmentSpec) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(condaFromSpec(spec)); err != nil {
		return "", fmt.Errorf("encode conda environment: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize conda environment: %w", err)
	}
	return buf.String(), nil
}

// WriteConda renders the environment and writes it to path, creating
// parent directories as needed.
func WriteConda(spec *analyze.EnvironmentSpec, path string) error {
	doc, err := RenderConda(spec)
	if err != nil {
		return err
	}
	if err := util.WriteStringWithDirs(path, doc, 0o644); err != nil {
		return fmt.Errorf("write conda environment %q: %w", path, err)
	}
	return nil
}
