package app

import "envinfer/internal/core/watcher"

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	a.activeWatcher = w
	return w.Watch(uniqueScanRoots(a.Config.ProjectDirs))
}
