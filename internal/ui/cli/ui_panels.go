package cli

import (
	"fmt"
	"strings"

	"envinfer/internal/data/history"
)

func renderHelp(m model) string {
	keys := "Keys: tab panel | / filter | enter unit detail | esc back | t trend overlay | o open source | q quit"
	if m.mode == panelDependencies {
		keys = "Keys: tab panel | / filter | t trend overlay | q quit"
	}
	return statusStyle.Render(keys)
}

func renderDiagnosticsPanel(m model) string {
	summary := m.diagnosticList.View()
	if m.selectedUnit == nil {
		return summary
	}
	return summary + "\n\n" + renderUnitDetail(m)
}

func renderUnitDetail(m model) string {
	unit := m.selectedUnit
	lines := []string{
		fmt.Sprintf("Unit Detail: %s", unit.Path),
		fmt.Sprintf("  Kind: %s", unit.Kind),
		fmt.Sprintf("  Parsed: %s", unit.ParsedAt.Format("15:04:05")),
	}
	if unit.Failed {
		lines = append(lines, failureStyle.Render("  Syntax errors: imports and features from this unit are not counted."))
	}
	if len(unit.Imports) > 0 {
		lines = append(lines, fmt.Sprintf("  Imports (%d): %s", len(unit.Imports), strings.Join(unit.Imports, ", ")))
	}
	if len(unit.Features) > 0 {
		features := make([]string, 0, len(unit.Features))
		for _, f := range unit.Features {
			features = append(features, string(f))
		}
		lines = append(lines, fmt.Sprintf("  Version features (%d): %s", len(features), strings.Join(features, ", ")))
	}
	lines = append(lines, "  Press esc to exit detail, o to open the source file.")
	return strings.Join(lines, "\n")
}

func renderTrendOverlay(report *history.TrendReport) string {
	if report == nil || len(report.Points) == 0 {
		return statusStyle.Render("Trend overlay unavailable (enable -history to capture snapshots).")
	}
	last := report.Points[len(report.Points)-1]
	return strings.Join([]string{
		"Trend Overlay",
		fmt.Sprintf("  Window: %s | Scans: %d", report.Window, report.ScanCount),
		fmt.Sprintf("  Unit growth: %+d (%.2f%%)", last.DeltaUnits, last.UnitGrowthPct),
		fmt.Sprintf("  Third-party drift: %+d (avg %.2f)", last.DeltaThirdParty, last.AvgThirdParty),
		fmt.Sprintf("  Unknown drift: %+d (avg %.2f)", last.DeltaUnknown, last.AvgUnknown),
		fmt.Sprintf("  Failed delta: %+d | Recommended: Python %s", last.DeltaFailed, last.RecommendedVersion),
	}, "\n")
}
