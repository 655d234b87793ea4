package history

import "time"

const SchemaVersion = 1

// Snapshot is one persisted analysis run.
type Snapshot struct {
	SchemaVersion      int       `json:"schema_version"`
	RunID              string    `json:"run_id"`
	Timestamp          time.Time `json:"timestamp"`
	ScriptCount        int       `json:"script_count"`
	NotebookCount      int       `json:"notebook_count"`
	FailedUnitCount    int       `json:"failed_unit_count"`
	ThirdPartyCount    int       `json:"third_party_count"`
	StandardLibCount   int       `json:"standard_lib_count"`
	UnknownCount       int       `json:"unknown_count"`
	RecommendedVersion string    `json:"recommended_version"`
	DurationMS         int64     `json:"duration_ms"`
}

// UnitCount is the total number of analyzed units in the snapshot.
func (s Snapshot) UnitCount() int {
	return s.ScriptCount + s.NotebookCount
}

type TrendPoint struct {
	Timestamp          time.Time `json:"timestamp"`
	RunID              string    `json:"run_id,omitempty"`
	ScriptCount        int       `json:"script_count"`
	NotebookCount      int       `json:"notebook_count"`
	FailedUnitCount    int       `json:"failed_unit_count"`
	ThirdPartyCount    int       `json:"third_party_count"`
	StandardLibCount   int       `json:"standard_lib_count"`
	UnknownCount       int       `json:"unknown_count"`
	RecommendedVersion string    `json:"recommended_version"`
	DeltaUnits         int       `json:"delta_units"`
	DeltaThirdParty    int       `json:"delta_third_party"`
	DeltaUnknown       int       `json:"delta_unknown"`
	DeltaFailed        int       `json:"delta_failed"`
	UnitGrowthPct      float64   `json:"unit_growth_pct"`
	AvgThirdParty      float64   `json:"avg_third_party"`
	AvgUnknown         float64   `json:"avg_unknown"`
	WindowHours        float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	ProjectKey    string       `json:"project_key"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	ScanCount     int          `json:"scan_count"`
	Points        []TrendPoint `json:"points"`
}
