package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"envinfer/internal/engine/analyze"
	"envinfer/internal/shared/util"
	"envinfer/internal/ui/manifest"
)

// RenderMarkdown produces the markdown report: project header, generation
// timestamp, version reasoning, dependency tables, and the rendered conda
// environment in a fenced block.
func RenderMarkdown(spec *analyze.EnvironmentSpec) (string, error) {
	body, err := RenderMarkdownBody(spec)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "# Environment report: %s\n\n", spec.ProjectName)
	fmt.Fprintf(&buf, "Generated: %s\n\n", spec.GeneratedAt.Format(time.RFC3339))
	buf.WriteString(body)
	return buf.String(), nil
}

// RenderMarkdownBody renders the report sections without the document
// header, suitable for injection into an existing markdown file.
func RenderMarkdownBody(spec *analyze.EnvironmentSpec) (string, error) {
	var buf strings.Builder

	fmt.Fprintf(&buf, "## Recommended Python version: %s\n\n", spec.RecommendedVersion)
	for _, reason := range spec.Reasoning {
		fmt.Fprintf(&buf, "- %s\n", reason)
	}
	buf.WriteString("\n")

	buf.WriteString("## Third-party dependencies\n\n")
	if len(spec.Dependencies.ThirdParty) == 0 {
		buf.WriteString("None detected.\n\n")
	} else {
		buf.WriteString("| Package | Installed version |\n")
		buf.WriteString("| --- | --- |\n")
		for _, entry := range spec.Dependencies.ThirdParty {
			name, version, pinned := strings.Cut(entry, "==")
			if !pinned {
				version = "-"
			}
			fmt.Fprintf(&buf, "| %s | %s |\n", name, version)
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Standard library imports\n\n")
	if len(spec.Dependencies.StandardLib) == 0 {
		buf.WriteString("None detected.\n\n")
	} else {
		for _, name := range spec.Dependencies.StandardLib {
			fmt.Fprintf(&buf, "- `%s`\n", name)
		}
		buf.WriteString("\n")
	}

	if len(spec.Dependencies.Unknown) > 0 {
		buf.WriteString("## Unknown or uninstalled imports\n\n")
		for _, name := range spec.Dependencies.Unknown {
			fmt.Fprintf(&buf, "- `%s`\n", name)
		}
		buf.WriteString("\n")
	}

	conda, err := manifest.RenderConda(spec)
	if err != nil {
		return "", err
	}
	buf.WriteString("## Conda environment\n\n")
	buf.WriteString("```yaml\n")
	buf.WriteString(conda)
	buf.WriteString("```\n")

	return buf.String(), nil
}

// WriteMarkdown renders the full report and writes it to path, creating
// parent directories as needed.
func WriteMarkdown(spec *analyze.EnvironmentSpec, path string) error {
	doc, err := RenderMarkdown(spec)
	if err != nil {
		return err
	}
	if err := util.WriteStringWithDirs(path, doc, 0o644); err != nil {
		return fmt.Errorf("write markdown report %q: %w", path, err)
	}
	return nil
}

// SummaryMarker is the default marker name for report injection.
const SummaryMarker = "report"

// InjectSummary replaces the marked section of an existing markdown file
// with content, writing through a temp file so a crash never leaves the
// target truncated.
func InjectSummary(filePath, marker, summary string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read markdown file %q: %w", filePath, err)
	}

	next, err := ReplaceBetweenMarkers(string(content), marker, summary)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, ".markdown-inject-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", filePath, err)
	}
	tmpName := tmp.Name()

	writeErr := error(nil)
	if _, err := tmp.WriteString(next); err != nil {
		writeErr = fmt.Errorf("write temp markdown file %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close temp markdown file %q: %w", tmpName, err)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return writeErr
	}

	if err := os.Rename(tmpName, filePath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace markdown file %q: %w", filePath, err)
	}
	return nil
}

// HasMarkers reports whether content carries exactly one start and one end
// marker for the given name.
func HasMarkers(content, marker string) bool {
	start := fmt.Sprintf("<!-- envinfer:%s:start -->", marker)
	end := fmt.Sprintf("<!-- envinfer:%s:end -->", marker)
	return strings.Count(content, start) == 1 && strings.Count(content, end) == 1
}

func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", fmt.Errorf("markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start := fmt.Sprintf("<!-- envinfer:%s:start -->", marker)
	end := fmt.Sprintf("<!-- envinfer:%s:end -->", marker)

	startCount := strings.Count(content, start)
	endCount := strings.Count(content, end)
	if startCount != 1 || endCount != 1 {
		return "", fmt.Errorf("markdown marker %q must appear exactly once for start and end", marker)
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("invalid marker order for %q", marker)
	}

	startBlockEnd := startIdx + len(start)
	prefix := content[:startBlockEnd]
	suffix := content[endIdx:]
	cleanReplacement := strings.TrimRight(replacement, "\r\n")

	return prefix + newline + cleanReplacement + newline + suffix, nil
}
