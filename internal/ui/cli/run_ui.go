package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"envinfer/internal/core/ports"
	"envinfer/internal/data/history"
)

func runUI(analysis ports.AnalysisService, watch ports.WatchService, trend *history.TrendReport) error {
	m := initialModel(trend)
	p := tea.NewProgram(m, tea.WithAltScreen())

	sendUpdate := func(update ports.WatchUpdate) {
		spec, err := analysis.CurrentSpec(context.Background())
		if err != nil {
			spec = nil
		}
		units, err := analysis.ListUnits(context.Background())
		if err != nil {
			units = nil
		}
		p.Send(updateMsg{
			spec:          spec,
			units:         units,
			scriptCount:   update.ScriptCount,
			notebookCount: update.NotebookCount,
			failedCount:   update.FailedCount,
		})
	}

	if err := watch.Subscribe(context.Background(), sendUpdate); err != nil {
		return err
	}

	go func() {
		update, err := watch.CurrentUpdate(context.Background())
		if err != nil {
			return
		}
		sendUpdate(update)
	}()

	_, err := p.Run()
	return err
}
