package ports

import (
	"context"
	"io"
	"time"

	"envinfer/internal/data/history"
	"envinfer/internal/engine/analyze"
	"envinfer/internal/engine/parser"
)

// HistoryStore abstracts snapshot persistence for trend/report workflows.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) error
	LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error)
}

// VersionRegistry abstracts oldest-stable package version lookups so that
// output generation can be tested without network access.
type VersionRegistry interface {
	OldestStable(ctx context.Context, name string) (string, error)
}

// AnalysisRequest defines one analysis pass over the configured project roots.
type AnalysisRequest struct {
	Roots []string
}

// AnalysisResult summarizes a completed analysis pass.
type AnalysisResult struct {
	Scripts   int
	Notebooks int
	Failed    int
	Warnings  []string
	Duration  time.Duration
}

// WriteOutputsRequest defines which output files to generate.
type WriteOutputsRequest struct {
	CondaFile        string
	RequirementsFile string
	MarkdownFile     string
	SkipConda        bool
	SkipBaseReqs     bool
}

// WriteOutputsResult contains generated output paths and per-package warnings.
type WriteOutputsResult struct {
	Written  []string
	Warnings []string
}

// WatchUpdate contains state emitted to driving adapters during watch-mode updates.
type WatchUpdate struct {
	ScriptCount        int
	NotebookCount      int
	FailedCount        int
	ThirdPartyCount    int
	StandardLibCount   int
	UnknownCount       int
	RecommendedVersion string
	GeneratedAt        time.Time
}

// WatchService exposes watch lifecycle and updates for driving adapters.
type WatchService interface {
	Start(ctx context.Context) error
	CurrentUpdate(ctx context.Context) (WatchUpdate, error)
	Subscribe(ctx context.Context, handler func(WatchUpdate)) error
}

// HistoryTrendRequest captures inputs needed to save a snapshot and compute trends.
type HistoryTrendRequest struct {
	ProjectKey string
	Since      time.Time
	Window     time.Duration
}

// HistoryTrendResult contains the optional trend report and saved snapshot metadata.
type HistoryTrendResult struct {
	Report             *history.TrendReport
	SnapshotSaved      bool
	SnapshotsEvaluated int
	LatestUnitCount    int
	LatestThirdParty   int
	LatestUnknown      int
}

// AnalysisService defines the driving-port surface over the analysis use cases.
type AnalysisService interface {
	RunAnalysis(ctx context.Context, req AnalysisRequest) (AnalysisResult, error)
	CurrentSpec(ctx context.Context) (*analyze.EnvironmentSpec, error)
	ListUnits(ctx context.Context) ([]*parser.UnitAnalysis, error)
	ProjectRoot() string
	PrintReport(ctx context.Context, w io.Writer) error
	WriteOutputs(ctx context.Context, req WriteOutputsRequest) (WriteOutputsResult, error)
	CaptureHistoryTrend(ctx context.Context, store HistoryStore, req HistoryTrendRequest) (HistoryTrendResult, error)
	WatchService() WatchService
}
