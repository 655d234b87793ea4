package cli

import (
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.mode == panelDependencies {
			m.mode = panelDiagnostics
		} else {
			m.mode = panelDependencies
		}
		return m, nil
	case "t":
		m.showTrend = !m.showTrend
		return m, nil
	}

	if m.mode != panelDiagnostics {
		var cmd tea.Cmd
		m.dependencyList, cmd = m.dependencyList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter":
		return openUnitDetail(m)
	case "esc", "backspace":
		m.selectedUnit = nil
		return m, nil
	case "o":
		target, ok := selectedSourceTarget(m)
		if !ok {
			m.sourceJumpStatus = statusStyle.Render("No source target available.")
			return m, nil
		}
		return m, jumpToSourceCmd(target)
	}

	var cmd tea.Cmd
	m.diagnosticList, cmd = m.diagnosticList.Update(msg)
	return m, cmd
}

func openUnitDetail(m model) (model, tea.Cmd) {
	idx := m.diagnosticList.Index()
	if idx < 0 || idx >= len(m.diagnostics) {
		return m, nil
	}
	path := m.diagnostics[idx].path
	if path == "" {
		m.sourceJumpStatus = statusStyle.Render("No source unit for this diagnostic.")
		return m, nil
	}
	unit := findUnit(m.units, path)
	if unit == nil {
		m.sourceJumpStatus = statusStyle.Render("Source unit no longer present.")
		return m, nil
	}
	m.selectedUnit = unit
	m.sourceJumpStatus = ""
	return m, nil
}

type sourceTarget struct {
	file string
}

func selectedSourceTarget(m model) (sourceTarget, bool) {
	if m.selectedUnit != nil && m.selectedUnit.Path != "" {
		return sourceTarget{file: m.selectedUnit.Path}, true
	}
	idx := m.diagnosticList.Index()
	if idx >= 0 && idx < len(m.diagnostics) && m.diagnostics[idx].path != "" {
		return sourceTarget{file: m.diagnostics[idx].path}, true
	}
	return sourceTarget{}, false
}

func jumpToSourceCmd(target sourceTarget) tea.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, target.file)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return sourceJumpResultMsg{target: target.file, err: err}
	})
}
