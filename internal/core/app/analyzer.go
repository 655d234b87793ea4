package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"envinfer/internal/shared/util"
)

// HandleChanges is the watch-mode callback: it re-analyzes each changed
// unit, rebuilds the spec, regenerates the configured outputs, and pushes
// an update to subscribers.
func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	for _, path := range paths {
		if !a.Parser.IsSupportedPath(path) {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.RemoveUnit(path)
			continue
		}

		if err := a.ProcessUnit(path); err != nil {
			slog.Warn("failed to re-process unit", "path", path, "error", err)
		}
	}
	a.checkHeapPressure()

	spec := a.RebuildSpec()
	a.setLastDuration(time.Since(start))

	result, err := a.GenerateOutputs(context.Background(), defaultOutputsRequest(a.Config))
	if err != nil {
		slog.Error("failed to regenerate outputs", "error", err)
	}
	for _, warning := range result.Warnings {
		slog.Warn("output warning", "detail", warning)
	}

	a.emitUpdate(a.CurrentUpdate())

	if a.Config.Alerts.Beep && len(spec.Dependencies.Unknown) > 0 {
		fmt.Print("\a")
	}
}

// checkHeapPressure forces a collection when transient parse buffers push
// the heap above the configured ceiling.
func (a *App) checkHeapPressure() {
	limit := a.Config.Performance.MaxHeapMB
	if limit <= 0 {
		return
	}
	if util.HeapAllocMB() > uint64(limit) {
		slog.Debug("heap above configured limit, forcing collection", "limit_mb", limit)
		runtime.GC()
	}
}
