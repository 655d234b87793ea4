package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"envinfer/internal/core/ports"
	"envinfer/internal/data/history"
)

// writeVenvFixture lays out a minimal project-local virtualenv with one
// installed distribution so classification finds a third-party package.
func writeVenvFixture(t *testing.T, root, pkg, version string) {
	t.Helper()
	site := filepath.Join(root, ".venv", "lib", "python3.11", "site-packages")
	if err := os.MkdirAll(filepath.Join(site, pkg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(site, pkg, "__init__.py"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	info := filepath.Join(site, fmt.Sprintf("%s-%s.dist-info", pkg, version))
	if err := os.MkdirAll(info, 0o755); err != nil {
		t.Fatal(err)
	}
	metadata := fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\n", pkg, version)
	if err := os.WriteFile(filepath.Join(info, "METADATA"), []byte(metadata), 0o644); err != nil {
		t.Fatal(err)
	}
}

type stubRegistry struct {
	oldest map[string]string
	calls  int
}

func (s *stubRegistry) OldestStable(ctx context.Context, name string) (string, error) {
	s.calls++
	if v, ok := s.oldest[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("no releases for %s", name)
}

type historyStoreStub struct {
	byProject map[string][]history.Snapshot
}

func newHistoryStoreStub() *historyStoreStub {
	return &historyStoreStub{byProject: make(map[string][]history.Snapshot)}
}

func (h *historyStoreStub) SaveSnapshot(projectKey string, snapshot history.Snapshot) error {
	h.byProject[projectKey] = append(h.byProject[projectKey], snapshot)
	return nil
}

func (h *historyStoreStub) LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error) {
	out := make([]history.Snapshot, 0)
	for _, snapshot := range h.byProject[projectKey] {
		if !since.IsZero() && snapshot.Timestamp.Before(since) {
			continue
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func newTestService(t *testing.T, root string) (*analysisService, *App) {
	t.Helper()
	cfg := testConfig(root)
	cfg.Output.CondaFile = filepath.Join(root, "environment.yml")
	cfg.Output.RequirementsFile = filepath.Join(root, "base_requirements.txt")

	app, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return &analysisService{app: app}, app
}

func TestAnalysisServiceRunAnalysis(t *testing.T) {
	tmpDir := t.TempDir()
	writeVenvFixture(t, tmpDir, "requests", "2.31.0")
	writeFixture(t, tmpDir, "main.py", "import requests\nimport os\n")
	writeFixture(t, tmpDir, "broken.py", "def f(:\n")

	svc, app := newTestService(t, tmpDir)
	res, err := svc.RunAnalysis(context.Background(), ports.AnalysisRequest{})
	if err != nil {
		t.Fatalf("run analysis: %v", err)
	}

	if res.Scripts != 2 {
		t.Fatalf("expected 2 scripts, got %d", res.Scripts)
	}
	if res.Failed != 1 {
		t.Fatalf("expected 1 failed unit, got %d", res.Failed)
	}
	if res.Duration <= 0 {
		t.Fatal("expected positive duration")
	}

	spec := app.CurrentSpec()
	if spec == nil {
		t.Fatal("expected spec after analysis")
	}
	if len(spec.Dependencies.ThirdParty) != 1 || spec.Dependencies.ThirdParty[0] != "requests==2.31.0" {
		t.Fatalf("expected pinned requests entry, got %v", spec.Dependencies.ThirdParty)
	}
	if len(spec.Dependencies.StandardLib) != 1 || spec.Dependencies.StandardLib[0] != "os" {
		t.Fatalf("expected os in standard lib, got %v", spec.Dependencies.StandardLib)
	}
}

func TestAnalysisServiceRunAnalysisCancelled(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.RunAnalysis(ctx, ports.AnalysisRequest{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestAnalysisServiceCurrentSpecBeforeRun(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir())
	if _, err := svc.CurrentSpec(context.Background()); err == nil {
		t.Fatal("expected error before first analysis")
	}
}

func TestAnalysisServiceWriteOutputs(t *testing.T) {
	tmpDir := t.TempDir()
	writeVenvFixture(t, tmpDir, "requests", "2.31.0")
	writeFixture(t, tmpDir, "main.py", "import requests\nimport os\n")

	svc, app := newTestService(t, tmpDir)
	if _, err := svc.RunAnalysis(context.Background(), ports.AnalysisRequest{}); err != nil {
		t.Fatal(err)
	}
	app.registry = &stubRegistry{oldest: map[string]string{"requests": "2.25.0"}}

	res, err := svc.WriteOutputs(context.Background(), defaultOutputsRequest(app.Config))
	if err != nil {
		t.Fatalf("write outputs: %v", err)
	}
	if len(res.Written) != 2 {
		t.Fatalf("expected 2 written files, got %v", res.Written)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", res.Warnings)
	}

	conda, err := os.ReadFile(app.Config.Output.CondaFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(conda), "requests==2.31.0") {
		t.Fatalf("conda file missing pinned dependency:\n%s", conda)
	}

	reqs, err := os.ReadFile(app.Config.Output.RequirementsFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(reqs) != "requests==2.25.0\n" {
		t.Fatalf("unexpected requirements content: %q", reqs)
	}

	if app.LastRequirements() != app.Config.Output.RequirementsFile {
		t.Fatalf("expected requirements path recorded, got %q", app.LastRequirements())
	}
}

func TestAnalysisServiceWriteOutputsLookupFailureKeepsEntry(t *testing.T) {
	tmpDir := t.TempDir()
	writeVenvFixture(t, tmpDir, "requests", "2.31.0")
	writeFixture(t, tmpDir, "main.py", "import requests\n")

	svc, app := newTestService(t, tmpDir)
	if _, err := svc.RunAnalysis(context.Background(), ports.AnalysisRequest{}); err != nil {
		t.Fatal(err)
	}
	app.registry = &stubRegistry{}

	res, err := svc.WriteOutputs(context.Background(), defaultOutputsRequest(app.Config))
	if err != nil {
		t.Fatalf("write outputs: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 lookup warning, got %v", res.Warnings)
	}

	reqs, err := os.ReadFile(app.Config.Output.RequirementsFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(reqs) != "requests==2.31.0\n" {
		t.Fatalf("expected reported entry fallback, got %q", reqs)
	}
}

func TestAnalysisServiceWriteOutputsSkips(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixture(t, tmpDir, "main.py", "import os\n")

	svc, app := newTestService(t, tmpDir)
	if _, err := svc.RunAnalysis(context.Background(), ports.AnalysisRequest{}); err != nil {
		t.Fatal(err)
	}
	app.registry = &stubRegistry{}

	req := defaultOutputsRequest(app.Config)
	req.SkipConda = true
	req.SkipBaseReqs = true
	res, err := svc.WriteOutputs(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Written) != 0 {
		t.Fatalf("expected nothing written, got %v", res.Written)
	}
	if _, err := os.Stat(app.Config.Output.CondaFile); !os.IsNotExist(err) {
		t.Fatal("conda file should not exist")
	}
	if app.LastRequirements() != "" {
		t.Fatal("expected no requirements path recorded")
	}
}

func TestAnalysisServicePrintReport(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixture(t, tmpDir, "main.py", "import os\nvalue = f\"{1}\"\n")

	svc, _ := newTestService(t, tmpDir)
	if _, err := svc.RunAnalysis(context.Background(), ports.AnalysisRequest{}); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	if err := svc.PrintReport(context.Background(), &buf); err != nil {
		t.Fatalf("print report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Recommended Python version: 3.6") {
		t.Fatalf("missing recommended version:\n%s", out)
	}
	if !strings.Contains(out, "F-strings detected (Python 3.6+)") {
		t.Fatalf("missing reasoning:\n%s", out)
	}
	// No outputs were written, so the base-requirements note is omitted.
	if strings.Contains(out, "Base requirements have been saved") {
		t.Fatalf("unexpected requirements note:\n%s", out)
	}
}

func TestAnalysisServiceCaptureHistoryTrend(t *testing.T) {
	tmpDir := t.TempDir()
	writeVenvFixture(t, tmpDir, "requests", "2.31.0")
	writeFixture(t, tmpDir, "main.py", "import requests\nimport os\n")

	svc, _ := newTestService(t, tmpDir)
	if _, err := svc.RunAnalysis(context.Background(), ports.AnalysisRequest{}); err != nil {
		t.Fatal(err)
	}

	store := newHistoryStoreStub()
	res, err := svc.CaptureHistoryTrend(context.Background(), store, ports.HistoryTrendRequest{ProjectKey: "demo"})
	if err != nil {
		t.Fatalf("capture history trend: %v", err)
	}
	if !res.SnapshotSaved {
		t.Fatal("expected snapshot saved")
	}
	if res.SnapshotsEvaluated != 1 {
		t.Fatalf("expected 1 snapshot evaluated, got %d", res.SnapshotsEvaluated)
	}
	if res.LatestUnitCount != 1 {
		t.Fatalf("expected 1 unit, got %d", res.LatestUnitCount)
	}
	if res.LatestThirdParty != 1 {
		t.Fatalf("expected 1 third-party entry, got %d", res.LatestThirdParty)
	}
	if res.Report == nil || res.Report.ScanCount != 1 {
		t.Fatalf("expected trend report with 1 scan, got %+v", res.Report)
	}

	if len(store.byProject["demo"]) != 1 {
		t.Fatalf("expected snapshot stored under demo, got %+v", store.byProject)
	}
	saved := store.byProject["demo"][0]
	if saved.RecommendedVersion != "3.5" {
		t.Fatalf("expected recommended version 3.5, got %q", saved.RecommendedVersion)
	}
}

func TestAnalysisServiceCaptureHistoryTrendRequiresStore(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir())
	if _, err := svc.CaptureHistoryTrend(context.Background(), nil, ports.HistoryTrendRequest{}); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestWatchServiceSubscribeRequiresHandler(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir())
	watch := svc.WatchService()
	if err := watch.Subscribe(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}

func TestWatchServiceCurrentUpdate(t *testing.T) {
	tmpDir := t.TempDir()
	writeFixture(t, tmpDir, "main.py", "import os\n")

	svc, _ := newTestService(t, tmpDir)
	if _, err := svc.RunAnalysis(context.Background(), ports.AnalysisRequest{}); err != nil {
		t.Fatal(err)
	}

	update, err := svc.WatchService().CurrentUpdate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if update.ScriptCount != 1 || update.StandardLibCount != 1 {
		t.Fatalf("unexpected update: %+v", update)
	}
	if update.RecommendedVersion != "3.5" {
		t.Fatalf("expected version 3.5, got %q", update.RecommendedVersion)
	}
}
