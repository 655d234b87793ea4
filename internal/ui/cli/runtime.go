package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"envinfer/internal/core/config"
	"envinfer/internal/core/ports"
	"envinfer/internal/data/history"
	"envinfer/internal/shared/observability"
	"envinfer/internal/shared/util"
	"envinfer/internal/shared/version"
	"envinfer/internal/ui/report"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("envinfer v%s\n", version.Version)
		return 0
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, _, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	analysis, health, err := initializeAnalysis(cfg, coreAnalysisFactory{})
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}

	shutdownObservability, err := startObservability(context.Background(), cfg, health)
	if err != nil {
		slog.Error("failed to start observability endpoints", "error", err)
		return 1
	}
	defer shutdownObservability()

	result, err := analysis.RunAnalysis(context.Background(), ports.AnalysisRequest{})
	if err != nil {
		slog.Error("analysis failed", "error", err)
		return 1
	}
	for _, warning := range result.Warnings {
		slog.Warn("analysis warning", "detail", warning)
	}

	outputs, err := analysis.WriteOutputs(context.Background(), ports.WriteOutputsRequest{
		CondaFile:        cfg.Output.CondaFile,
		RequirementsFile: cfg.Output.RequirementsFile,
		MarkdownFile:     cfg.Output.Markdown,
		SkipConda:        opts.noConda,
		SkipBaseReqs:     opts.noBaseReqs,
	})
	if err != nil {
		slog.Error("failed to generate outputs", "error", err)
		return 1
	}
	for _, warning := range outputs.Warnings {
		slog.Warn("output warning", "detail", warning)
	}

	if opts.sarifPath != "" {
		if err := writeSARIFReport(analysis, opts.sarifPath); err != nil {
			slog.Error("failed to write SARIF report", "error", err)
			return 1
		}
	}

	historyStore, err := openHistoryStoreIfEnabled(cfg)
	if err != nil {
		slog.Error("history setup failed", "error", err)
		return 1
	}
	// Keep the port value nil when no store was opened; a typed nil
	// pointer inside the interface would dodge the nil checks below.
	var store ports.HistoryStore
	if historyStore != nil {
		defer historyStore.Close()
		store = historyStore
	}

	trend, err := runHistoryMode(opts, analysis, resolveProjectKey(cfg), store)
	if err != nil {
		slog.Error("history mode failed", "error", err)
		return 1
	}

	if !opts.quiet && !opts.ui {
		if err := analysis.PrintReport(context.Background(), os.Stdout); err != nil {
			slog.Error("failed to print report", "error", err)
			return 1
		}
	}

	if !opts.watch {
		return 0
	}

	watch := analysis.WatchService()
	if watch == nil {
		slog.Error("watch service unavailable")
		return 1
	}
	if err := watch.Start(context.Background()); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	if opts.ui {
		if err := runUI(analysis, watch, trend); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	if !opts.quiet && cfg.Alerts.TerminalEnabled() {
		err := watch.Subscribe(context.Background(), func(ports.WatchUpdate) {
			if err := analysis.PrintReport(context.Background(), os.Stdout); err != nil {
				slog.Warn("failed to print report", "error", err)
			}
		})
		if err != nil {
			slog.Error("failed to subscribe to watch updates", "error", err)
			return 1
		}
	}

	select {}
}

func loadConfig(path, cwd string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	for _, candidate := range defaultConfigCandidates(cwd) {
		cfg, loadErr := config.Load(candidate)
		if loadErr == nil {
			return cfg, candidate, nil
		}
		if os.IsNotExist(loadErr) {
			continue
		}
		return nil, "", loadErr
	}

	// Running without a config file is the common case: every setting
	// has a default.
	cfg, err := config.Default()
	if err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

func defaultConfigCandidates(cwd string) []string {
	return []string{
		filepath.Clean(filepath.Join(cwd, "envinfer.toml")),
		filepath.Clean(filepath.Join(cwd, "data/config/envinfer.toml")),
	}
}

func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if opts.ui {
		opts.watch = true
	}

	if len(opts.args) > 1 {
		return fmt.Errorf("at most one positional directory argument is accepted")
	}
	if len(opts.args) == 1 {
		if opts.dirSet {
			return fmt.Errorf("-dir and a positional directory cannot be combined")
		}
		cfg.ProjectDirs = []string{opts.args[0]}
	} else if opts.dirSet {
		cfg.ProjectDirs = []string{opts.dir}
	}

	if opts.noConda {
		cfg.Output.CondaFile = ""
	}
	if opts.noBaseReqs {
		cfg.Output.RequirementsFile = ""
	}
	if opts.reportMarkdown && strings.TrimSpace(cfg.Output.Markdown) == "" {
		cfg.Output.Markdown = "environment-report.md"
	}

	if opts.history {
		cfg.History.Enabled = true
	}
	if (opts.historyTSV != "" || opts.historyJSON != "") && !opts.history {
		return fmt.Errorf("-history-tsv/-history-json require -history")
	}
	if opts.history {
		if _, err := parseHistoryWindow(opts.historyWindow); err != nil {
			return err
		}
	}
	if _, err := parseSince(opts.since); err != nil {
		return err
	}
	return nil
}

func startObservability(ctx context.Context, cfg *config.Config, health observability.HealthReporter) (func(), error) {
	shutdown := func() {}

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddr); addr != "" && health != nil {
		server := observability.NewServer(addr, health)
		if err := server.Start(ctx); err != nil {
			return shutdown, err
		}
		shutdown = func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(stopCtx); err != nil {
				slog.Warn("failed to stop observability server", "error", err)
			}
		}
	}

	if endpoint := strings.TrimSpace(cfg.Observability.OTLPEndpoint); endpoint != "" {
		stopTracing, err := observability.SetupTracing(ctx, endpoint, "envinfer")
		if err != nil {
			return shutdown, err
		}
		stopServer := shutdown
		shutdown = func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := stopTracing(stopCtx); err != nil {
				slog.Warn("failed to shut down tracing", "error", err)
			}
			stopServer()
		}
	}

	return shutdown, nil
}

func writeSARIFReport(analysis ports.AnalysisService, path string) error {
	if analysis == nil {
		return fmt.Errorf("analysis service unavailable")
	}
	units, err := analysis.ListUnits(context.Background())
	if err != nil {
		return err
	}
	spec, err := analysis.CurrentSpec(context.Background())
	if err != nil {
		return err
	}
	payload, err := report.GenerateSARIF(analysis.ProjectRoot(), units, spec.Dependencies.Unknown)
	if err != nil {
		return fmt.Errorf("render SARIF report: %w", err)
	}
	return writeBytes(path, payload)
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("-since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func writeBytes(path string, data []byte) error {
	return util.WriteFileWithDirs(path, data, 0o644)
}

func runHistoryMode(
	opts cliOptions,
	analysis ports.AnalysisService,
	projectKey string,
	store ports.HistoryStore,
) (*history.TrendReport, error) {
	if !opts.history {
		return nil, nil
	}
	if analysis == nil {
		return nil, fmt.Errorf("analysis service unavailable")
	}

	since, err := parseSince(opts.since)
	if err != nil {
		return nil, err
	}
	window, err := parseHistoryWindow(opts.historyWindow)
	if err != nil {
		return nil, err
	}

	if store == nil {
		return nil, fmt.Errorf("history store unavailable")
	}

	trend, err := analysis.CaptureHistoryTrend(context.Background(), store, ports.HistoryTrendRequest{
		ProjectKey: projectKey,
		Since:      since,
		Window:     window,
	})
	if err != nil {
		return nil, err
	}
	if trend.Report == nil {
		fmt.Println("History: no snapshots matched the requested time window.")
		return nil, nil
	}
	trendReport := trend.Report

	fmt.Printf(
		"History: %d snapshots from %s to %s\n",
		trendReport.ScanCount,
		trendReport.Since.Format("2006-01-02 15:04:05"),
		trendReport.Until.Format("2006-01-02 15:04:05"),
	)
	if len(trendReport.Points) > 0 {
		latest := trendReport.Points[len(trendReport.Points)-1]
		fmt.Printf(
			"Trend latest: units=%d (%+d), third-party=%d (%+d), unknown=%d (%+d), recommended=%s\n",
			latest.ScriptCount+latest.NotebookCount,
			latest.DeltaUnits,
			latest.ThirdPartyCount,
			latest.DeltaThirdParty,
			latest.UnknownCount,
			latest.DeltaUnknown,
			latest.RecommendedVersion,
		)
	}

	if opts.historyTSV != "" {
		tsv, err := report.RenderTrendTSV(*trendReport)
		if err != nil {
			return nil, fmt.Errorf("render trend TSV: %w", err)
		}
		if err := writeBytes(opts.historyTSV, tsv); err != nil {
			return nil, fmt.Errorf("write trend TSV %q: %w", opts.historyTSV, err)
		}
	}

	if opts.historyJSON != "" {
		raw, err := report.RenderTrendJSON(*trendReport)
		if err != nil {
			return nil, fmt.Errorf("render trend JSON: %w", err)
		}
		if err := writeBytes(opts.historyJSON, raw); err != nil {
			return nil, fmt.Errorf("write trend JSON %q: %w", opts.historyJSON, err)
		}
	}

	return trendReport, nil
}

func parseHistoryWindow(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("-history-window must be a Go duration (example: 24h), got %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("-history-window must be > 0, got %q", value)
	}
	return d, nil
}

func openHistoryStoreIfEnabled(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

func resolveProjectKey(cfg *config.Config) string {
	key := strings.TrimSpace(cfg.History.ProjectKey)
	if key == "" {
		return "default"
	}
	return key
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "envinfer", "envinfer.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "envinfer", "envinfer.log")
	}

	return "envinfer.log"
}
