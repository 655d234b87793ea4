package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"envinfer/internal/data/history"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRunID\tScripts\tNotebooks\tFailed\tThirdParty\tStandardLib\tUnknown\tRecommendedVersion\tDeltaUnits\tDeltaThirdParty\tDeltaUnknown\tDeltaFailed\tUnitGrowthPct\tAvgThirdParty\tAvgUnknown\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.RunID,
			point.ScriptCount,
			point.NotebookCount,
			point.FailedUnitCount,
			point.ThirdPartyCount,
			point.StandardLibCount,
			point.UnknownCount,
			point.RecommendedVersion,
			point.DeltaUnits,
			point.DeltaThirdParty,
			point.DeltaUnknown,
			point.DeltaFailed,
			point.UnitGrowthPct,
			point.AvgThirdParty,
			point.AvgUnknown,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
