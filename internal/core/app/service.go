package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"envinfer/internal/core/errors"
	"envinfer/internal/core/ports"
	"envinfer/internal/data/history"
	"envinfer/internal/engine/analyze"
	"envinfer/internal/engine/parser"
	"envinfer/internal/shared/observability"
	"envinfer/internal/ui/report"
)

type analysisService struct {
	app *App
}

var _ ports.AnalysisService = (*analysisService)(nil)

func NewAnalysisService(app *App) ports.AnalysisService {
	return &analysisService{app: app}
}

func (a *App) AnalysisService() ports.AnalysisService {
	return NewAnalysisService(a)
}

func (s *analysisService) RunAnalysis(ctx context.Context, req ports.AnalysisRequest) (ports.AnalysisResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "analysisService.RunAnalysis", trace.WithAttributes())
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.AnalysisResult{}, err
	}
	if s.app == nil {
		return ports.AnalysisResult{}, fmt.Errorf("app is required")
	}
	if s.app.Config == nil {
		return ports.AnalysisResult{}, fmt.Errorf("config is required")
	}

	start := time.Now()
	warnings := make([]string, 0)

	roots := req.Roots
	if len(roots) == 0 {
		roots = s.app.Config.ProjectDirs
	}
	paths, err := s.app.ScanDirectories(uniqueScanRoots(roots), s.app.Config.Exclude.Dirs, s.app.Config.Exclude.Files)
	if err != nil {
		return ports.AnalysisResult{}, errors.AddContext(err, errors.CtxOperation, "scan_directories")
	}

	for i, path := range paths {
		if err := s.app.ProcessUnit(path); err != nil {
			warnings = append(warnings, fmt.Sprintf("process unit %s: %v", path, err))
		}
		if i%100 == 0 {
			s.app.checkHeapPressure()
		}
	}

	s.app.RebuildSpec()
	duration := time.Since(start)
	s.app.setLastDuration(duration)

	scripts, notebooks, failed := s.app.Project.Counts()
	return ports.AnalysisResult{
		Scripts:   scripts,
		Notebooks: notebooks,
		Failed:    failed,
		Warnings:  warnings,
		Duration:  duration,
	}, nil
}

func (s *analysisService) CurrentSpec(ctx context.Context) (*analyze.EnvironmentSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.app == nil {
		return nil, fmt.Errorf("app is required")
	}
	spec := s.app.CurrentSpec()
	if spec == nil {
		return nil, fmt.Errorf("no analysis available, run a scan first")
	}
	return spec, nil
}

func (s *analysisService) ListUnits(ctx context.Context) ([]*parser.UnitAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.app == nil || s.app.Project == nil {
		return nil, fmt.Errorf("app is required")
	}
	return s.app.Project.Units(), nil
}

func (s *analysisService) ProjectRoot() string {
	if s.app == nil || s.app.Project == nil {
		return ""
	}
	return s.app.Project.Root()
}

func (s *analysisService) PrintReport(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	spec := s.app.CurrentSpec()
	if spec == nil {
		return fmt.Errorf("no analysis available, run a scan first")
	}
	r := &report.TerminalReport{RequirementsFile: s.app.LastRequirements()}
	return r.Print(w, spec)
}

func (s *analysisService) WriteOutputs(ctx context.Context, req ports.WriteOutputsRequest) (ports.WriteOutputsResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "analysisService.WriteOutputs", trace.WithAttributes())
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.WriteOutputsResult{}, err
	}
	if s.app == nil {
		return ports.WriteOutputsResult{}, fmt.Errorf("app is required")
	}

	start := time.Now()
	result, err := s.app.GenerateOutputs(ctx, req)
	observability.AnalysisDuration.WithLabelValues("write_outputs").Observe(time.Since(start).Seconds())
	return result, err
}

func (s *analysisService) CaptureHistoryTrend(ctx context.Context, store ports.HistoryStore, req ports.HistoryTrendRequest) (ports.HistoryTrendResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.HistoryTrendResult{}, err
	}
	if s.app == nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("app is required")
	}
	if store == nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("history store is required")
	}
	spec := s.app.CurrentSpec()
	if spec == nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("no analysis available, run a scan first")
	}

	projectKey := strings.TrimSpace(req.ProjectKey)
	if projectKey == "" {
		projectKey = "default"
	}
	window := req.Window
	if window <= 0 {
		window = 24 * time.Hour
	}

	scripts, notebooks, failed := s.app.Project.Counts()
	snapshot := history.Snapshot{
		Timestamp:          time.Now().UTC(),
		ScriptCount:        scripts,
		NotebookCount:      notebooks,
		FailedUnitCount:    failed,
		ThirdPartyCount:    len(spec.Dependencies.ThirdParty),
		StandardLibCount:   len(spec.Dependencies.StandardLib),
		UnknownCount:       len(spec.Dependencies.Unknown),
		RecommendedVersion: spec.RecommendedVersion.String(),
		DurationMS:         s.app.LastDuration().Milliseconds(),
	}

	if err := store.SaveSnapshot(projectKey, snapshot); err != nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("save history snapshot: %w", err)
	}

	snapshots, err := store.LoadSnapshots(projectKey, req.Since)
	if err != nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("load history snapshots: %w", err)
	}

	result := ports.HistoryTrendResult{
		SnapshotSaved:      true,
		SnapshotsEvaluated: len(snapshots),
		LatestUnitCount:    snapshot.UnitCount(),
		LatestThirdParty:   snapshot.ThirdPartyCount,
		LatestUnknown:      snapshot.UnknownCount,
	}
	if len(snapshots) == 0 {
		return result, nil
	}

	trend, err := history.BuildTrendReport(projectKey, snapshots, window)
	if err != nil {
		return ports.HistoryTrendResult{}, fmt.Errorf("build trend report: %w", err)
	}
	result.Report = &trend
	return result, nil
}

func (s *analysisService) WatchService() ports.WatchService {
	return &watchService{app: s.app}
}

type watchService struct {
	app *App
}

var _ ports.WatchService = (*watchService)(nil)

func (s *watchService) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	return s.app.StartWatcher()
}

func (s *watchService) CurrentUpdate(ctx context.Context) (ports.WatchUpdate, error) {
	if err := ctx.Err(); err != nil {
		return ports.WatchUpdate{}, err
	}
	if s.app == nil {
		return ports.WatchUpdate{}, fmt.Errorf("app is required")
	}
	return toWatchUpdate(s.app.CurrentUpdate()), nil
}

func (s *watchService) Subscribe(ctx context.Context, handler func(ports.WatchUpdate)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}
	s.app.SetUpdateHandler(func(update Update) {
		if ctx.Err() != nil {
			return
		}
		handler(toWatchUpdate(update))
	})
	return nil
}

func toWatchUpdate(update Update) ports.WatchUpdate {
	return ports.WatchUpdate{
		ScriptCount:        update.ScriptCount,
		NotebookCount:      update.NotebookCount,
		FailedCount:        update.FailedCount,
		ThirdPartyCount:    update.ThirdPartyCount,
		StandardLibCount:   update.StandardLibCount,
		UnknownCount:       update.UnknownCount,
		RecommendedVersion: update.RecommendedVersion,
		GeneratedAt:        update.GeneratedAt,
	}
}

