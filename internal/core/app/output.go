package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"envinfer/internal/core/config"
	"envinfer/internal/core/ports"
	"envinfer/internal/engine/analyze"
	"envinfer/internal/ui/manifest"
	"envinfer/internal/ui/report"
)

func defaultOutputsRequest(cfg *config.Config) ports.WriteOutputsRequest {
	return ports.WriteOutputsRequest{
		CondaFile:        cfg.Output.CondaFile,
		RequirementsFile: cfg.Output.RequirementsFile,
		MarkdownFile:     cfg.Output.Markdown,
	}
}

// GenerateOutputs writes the requested output files from the current
// spec. Registry lookup failures degrade individual requirement entries,
// never the whole pass.
func (a *App) GenerateOutputs(ctx context.Context, req ports.WriteOutputsRequest) (ports.WriteOutputsResult, error) {
	spec := a.CurrentSpec()
	if spec == nil {
		return ports.WriteOutputsResult{}, fmt.Errorf("no analysis available, run a scan first")
	}

	result := ports.WriteOutputsResult{
		Written:  make([]string, 0, 3),
		Warnings: make([]string, 0),
	}

	if !req.SkipConda && strings.TrimSpace(req.CondaFile) != "" {
		if err := manifest.WriteConda(spec, req.CondaFile); err != nil {
			return result, err
		}
		result.Written = append(result.Written, req.CondaFile)
	}

	if !req.SkipBaseReqs && strings.TrimSpace(req.RequirementsFile) != "" {
		entries, warnings := a.baseRequirements(ctx, spec.Dependencies.ThirdParty)
		result.Warnings = append(result.Warnings, warnings...)
		if err := manifest.WriteRequirements(entries, req.RequirementsFile); err != nil {
			return result, err
		}
		result.Written = append(result.Written, req.RequirementsFile)
		a.setLastRequirements(req.RequirementsFile)
	} else {
		a.setLastRequirements("")
	}

	if strings.TrimSpace(req.MarkdownFile) != "" {
		if err := writeOrInjectMarkdown(spec, req.MarkdownFile); err != nil {
			return result, err
		}
		result.Written = append(result.Written, req.MarkdownFile)
	}

	return result, nil
}

// baseRequirements maps each third-party entry to its oldest stable
// release on the registry. An entry whose lookup fails keeps its reported
// form so the file never silently loses a dependency.
func (a *App) baseRequirements(ctx context.Context, thirdParty []string) (entries, warnings []string) {
	entries = make([]string, 0, len(thirdParty))
	warnings = make([]string, 0)

	for _, entry := range thirdParty {
		name, _, _ := strings.Cut(entry, "==")
		oldest, err := a.registry.OldestStable(ctx, name)
		if err != nil {
			slog.Warn("could not determine minimum compatible version", "package", name, "error", err)
			warnings = append(warnings, fmt.Sprintf("minimum version lookup for %s: %v", name, err))
			entries = append(entries, entry)
			continue
		}
		entries = append(entries, name+"=="+oldest)
	}
	return entries, warnings
}

// writeOrInjectMarkdown replaces the marked section when the target file
// already carries injection markers, and writes a full report otherwise.
func writeOrInjectMarkdown(spec *analyze.EnvironmentSpec, path string) error {
	content, err := os.ReadFile(path)
	if err == nil && report.HasMarkers(string(content), report.SummaryMarker) {
		body, err := report.RenderMarkdownBody(spec)
		if err != nil {
			return err
		}
		if err := report.InjectSummary(path, report.SummaryMarker, body); err != nil {
			return fmt.Errorf("inject summary into %q: %w", path, err)
		}
		return nil
	}
	return report.WriteMarkdown(spec, path)
}
