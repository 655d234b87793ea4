// # internal/ui/report/report.go
package report

import (
	"fmt"
	"io"
	"strings"

	"envinfer/internal/engine/analyze"
)

// TerminalReport renders an environment spec as the plain-text summary
// printed after an analysis run.
type TerminalReport struct {
	// RequirementsFile names the written base-requirements file. Empty
	// omits the closing note, e.g. when requirements generation is off.
	RequirementsFile string
}

func (r *TerminalReport) Render(spec *analyze.EnvironmentSpec) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "\nRecommended Python version: %s\n", spec.RecommendedVersion)
	if len(spec.Reasoning) > 0 {
		buf.WriteString("\nReasoning:\n")
		for _, reason := range spec.Reasoning {
			fmt.Fprintf(&buf, "  - %s\n", reason)
		}
	}

	buf.WriteString("\nThird-party dependencies:\n")
	for _, dep := range spec.Dependencies.ThirdParty {
		fmt.Fprintf(&buf, "  - %s\n", dep)
	}

	buf.WriteString("\nStandard library imports:\n")
	for _, dep := range spec.Dependencies.StandardLib {
		fmt.Fprintf(&buf, "  - %s\n", dep)
	}

	if len(spec.Dependencies.Unknown) > 0 {
		buf.WriteString("\nUnknown/Uninstalled imports:\n")
		for _, dep := range spec.Dependencies.Unknown {
			fmt.Fprintf(&buf, "  - %s\n", dep)
		}
	}

	buf.WriteString("\nSample conda environment.yml:\n")
	fmt.Fprintf(&buf, "name: %s\n", spec.ProjectName)
	buf.WriteString("channels:\n")
	for _, channel := range spec.Channels {
		fmt.Fprintf(&buf, "  - %s\n", channel)
	}
	buf.WriteString("dependencies:\n")
	fmt.Fprintf(&buf, "  - python>=%s\n", spec.RecommendedVersion)
	buf.WriteString("  - pip\n")
	buf.WriteString("  - pip:\n")
	for _, dep := range spec.Dependencies.ThirdParty {
		fmt.Fprintf(&buf, "    - %s\n", dep)
	}

	if r.RequirementsFile != "" {
		fmt.Fprintf(&buf, "\nBase requirements have been saved to %s\n", r.RequirementsFile)
		buf.WriteString("These represent the minimum compatible versions of each package.\n")
		buf.WriteString("Note: It's recommended to test your code with these versions before deployment.\n")
	}

	return buf.String()
}

func (r *TerminalReport) Print(w io.Writer, spec *analyze.EnvironmentSpec) error {
	_, err := io.WriteString(w, r.Render(spec))
	return err
}
