package app

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"envinfer/internal/core/errors"
	"envinfer/internal/engine/parser"
	"envinfer/internal/shared/observability"
)

// InitialScan walks every project root and processes each analyzable
// unit. Unit-local failures are warnings; an inaccessible root is fatal.
func (a *App) InitialScan() error {
	paths, err := a.ScanDirectories(uniqueScanRoots(a.Config.ProjectDirs), a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := a.ProcessUnit(path); err != nil {
			slog.Warn("failed to process unit", "path", path, "error", err)
		}
	}
	return nil
}

// ScanDirectories collects the analyzable files under the given roots,
// honoring the exclude glob lists. Patterns match against path base names.
func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirGlobs, err := compileGlobs(excludeDirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(excludeFiles, "exclude file")
	if err != nil {
		return nil, err
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return errors.AddContext(
						errors.Wrap(err, rootErrorCode(err), "project root is not accessible"),
						errors.CtxPath, root)
				}
				slog.Warn("skipping unreadable path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.Parser.IsSupportedPath(path) {
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func rootErrorCode(err error) errors.ErrorCode {
	if os.IsPermission(err) {
		return errors.CodePermissionDenied
	}
	return errors.CodeNotFound
}

// ProcessUnit reads, parses, and stores one source unit. A unit whose
// syntax does not parse is stored with its Failed flag set so that counts
// and diagnostics still see it.
func (a *App) ProcessUnit(path string) error {
	kind := parser.DetectKind(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		observability.UnitsProcessedTotal.WithLabelValues(string(kind), "error").Inc()
		return err
	}

	unit, err := a.Parser.LoadUnit(path, raw)
	if err != nil {
		observability.UnitsProcessedTotal.WithLabelValues(string(kind), "error").Inc()
		return err
	}

	start := time.Now()
	analysis, err := a.Parser.AnalyzeUnit(unit)
	observability.ParsingDuration.WithLabelValues(string(unit.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.UnitsProcessedTotal.WithLabelValues(string(unit.Kind), "error").Inc()
		return err
	}

	status := "ok"
	if analysis.Failed {
		status = "failed"
		slog.Warn("unit has syntax errors, skipping its contents", "path", path)
	}
	observability.UnitsProcessedTotal.WithLabelValues(string(unit.Kind), status).Inc()

	a.Project.Add(analysis)
	return nil
}

// RemoveUnit drops a deleted unit from the project store.
func (a *App) RemoveUnit(path string) {
	a.Project.Remove(path)
}
