package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport derives per-run deltas and moving averages from an
// ordered snapshot sequence. Snapshots must be sorted by timestamp
// ascending, which is how LoadSnapshots returns them.
func BuildTrendReport(projectKey string, snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:          current.Timestamp,
			RunID:              current.RunID,
			ScriptCount:        current.ScriptCount,
			NotebookCount:      current.NotebookCount,
			FailedUnitCount:    current.FailedUnitCount,
			ThirdPartyCount:    current.ThirdPartyCount,
			StandardLibCount:   current.StandardLibCount,
			UnknownCount:       current.UnknownCount,
			RecommendedVersion: current.RecommendedVersion,
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaUnits = current.UnitCount() - prev.UnitCount()
			point.DeltaThirdParty = current.ThirdPartyCount - prev.ThirdPartyCount
			point.DeltaUnknown = current.UnknownCount - prev.UnknownCount
			point.DeltaFailed = current.FailedUnitCount - prev.FailedUnitCount
			if prev.UnitCount() > 0 {
				point.UnitGrowthPct = (float64(point.DeltaUnits) / float64(prev.UnitCount())) * 100
			}
		}

		avgThirdParty, avgUnknown := movingAverages(snapshots, i, window)
		point.AvgThirdParty = round2(avgThirdParty)
		point.AvgUnknown = round2(avgUnknown)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    projectKey,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverages(snapshots []Snapshot, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		return float64(snapshots[index].ThirdPartyCount), float64(snapshots[index].UnknownCount)
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	var thirdPartyTotal int
	var unknownTotal int
	count := 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		thirdPartyTotal += snapshots[i].ThirdPartyCount
		unknownTotal += snapshots[i].UnknownCount
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(thirdPartyTotal) / float64(count), float64(unknownTotal) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
