package app

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"envinfer/internal/core/config"
	"envinfer/internal/core/ports"
	"envinfer/internal/core/watcher"
	"envinfer/internal/data/registry"
	"envinfer/internal/engine/analyze"
	"envinfer/internal/engine/classify"
	"envinfer/internal/engine/parser"
	"envinfer/internal/engine/pyenv"
	"envinfer/internal/shared/observability"
)

// Update is the state pushed to subscribers after each watch-mode pass.
type Update struct {
	ScriptCount        int
	NotebookCount      int
	FailedCount        int
	ThirdPartyCount    int
	StandardLibCount   int
	UnknownCount       int
	RecommendedVersion string
	GeneratedAt        time.Time
}

type App struct {
	Config   *config.Config
	Parser   *parser.Parser
	Project  *analyze.Project
	analyzer *analyze.Analyzer
	registry ports.VersionRegistry

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	specMu sync.RWMutex
	spec   *analyze.EnvironmentSpec

	// Outcome of the most recent analysis/output pass, read by the
	// terminal report and the history snapshot.
	stateMu          sync.Mutex
	lastRequirements string
	lastDuration     time.Duration

	updateMu sync.RWMutex
	onUpdate func(Update)

	activeWatcher *watcher.Watcher
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	roots := uniqueScanRoots(cfg.ProjectDirs)
	if len(roots) == 0 {
		return nil, fmt.Errorf("at least one project dir is required")
	}

	env := pyenv.Discover(pyenv.DiscoverOptions{
		ProjectDir:        roots[0],
		ExtraSearchPaths:  cfg.Python.SearchPaths,
		VenvNames:         cfg.Python.VenvNames,
		InterpreterPrefix: cfg.Python.InterpreterPrefix,
	})
	classifier := classify.New(
		pyenv.NewStandardModuleSet(),
		pyenv.NewResolver(env),
		pyenv.LoadInstalledPackages(env.SitePackageRoots()),
	)

	return &App{
		Config:       cfg,
		Parser:       parser.NewParser(parser.NewGrammarLoader()),
		Project:      analyze.NewProject(roots[0]),
		analyzer:     analyze.NewAnalyzer(classifier),
		registry:     registry.NewClient(cfg.Registry),
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
	}, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func uniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(update Update) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(update)
	}
}

func (a *App) CurrentUpdate() Update {
	scripts, notebooks, failed := a.Project.Counts()
	update := Update{
		ScriptCount:   scripts,
		NotebookCount: notebooks,
		FailedCount:   failed,
	}
	if spec := a.CurrentSpec(); spec != nil {
		update.ThirdPartyCount = len(spec.Dependencies.ThirdParty)
		update.StandardLibCount = len(spec.Dependencies.StandardLib)
		update.UnknownCount = len(spec.Dependencies.Unknown)
		update.RecommendedVersion = spec.RecommendedVersion.String()
		update.GeneratedAt = spec.GeneratedAt
	}
	return update
}

// RebuildSpec re-derives the environment spec from the current project
// store and refreshes the partition-size gauges.
func (a *App) RebuildSpec() *analyze.EnvironmentSpec {
	start := time.Now()
	spec := a.analyzer.BuildReport(a.Project, a.Config.Output.Channels)
	observability.AnalysisDuration.WithLabelValues("build_report").Observe(time.Since(start).Seconds())

	observability.DependencyPartitionSize.WithLabelValues("third_party").Set(float64(len(spec.Dependencies.ThirdParty)))
	observability.DependencyPartitionSize.WithLabelValues("standard_lib").Set(float64(len(spec.Dependencies.StandardLib)))
	observability.DependencyPartitionSize.WithLabelValues("unknown").Set(float64(len(spec.Dependencies.Unknown)))

	a.specMu.Lock()
	a.spec = spec
	a.specMu.Unlock()
	return spec
}

// CurrentSpec returns the spec from the most recent analysis pass, or nil
// before the first pass completes.
func (a *App) CurrentSpec() *analyze.EnvironmentSpec {
	a.specMu.RLock()
	defer a.specMu.RUnlock()
	return a.spec
}

func (a *App) setLastRequirements(path string) {
	a.stateMu.Lock()
	a.lastRequirements = path
	a.stateMu.Unlock()
}

func (a *App) LastRequirements() string {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.lastRequirements
}

func (a *App) setLastDuration(d time.Duration) {
	a.stateMu.Lock()
	a.lastDuration = d
	a.stateMu.Unlock()
}

func (a *App) LastDuration() time.Duration {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.lastDuration
}

func (a *App) Close() error {
	if a.activeWatcher != nil {
		return a.activeWatcher.Close()
	}
	return nil
}
