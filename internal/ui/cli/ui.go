package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"envinfer/internal/data/history"
	"envinfer/internal/engine/analyze"
	"envinfer/internal/engine/parser"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	unknownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

// diagnostic ties one diagnostics-panel row to the source unit it came
// from, so detail and source-jump actions can find the file.
type diagnostic struct {
	title string
	desc  string
	path  string
}

type model struct {
	dependencyList list.Model
	diagnosticList list.Model
	mode           panelMode
	trendReport    *history.TrendReport
	showTrend      bool

	spec          *analyze.EnvironmentSpec
	units         []*parser.UnitAnalysis
	diagnostics   []diagnostic
	scriptCount   int
	notebookCount int
	failedCount   int
	lastUpdate    time.Time

	selectedUnit     *parser.UnitAnalysis
	sourceJumpStatus string
}

type panelMode int

const (
	panelDependencies panelMode = iota
	panelDiagnostics
)

type updateMsg struct {
	spec          *analyze.EnvironmentSpec
	units         []*parser.UnitAnalysis
	scriptCount   int
	notebookCount int
	failedCount   int
}

type sourceJumpResultMsg struct {
	target string
	err    error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.dependencyList.SetSize(width, height)
		m.diagnosticList.SetSize(width, height)
	case updateMsg:
		m.spec = msg.spec
		m.units = msg.units
		m.scriptCount = msg.scriptCount
		m.notebookCount = msg.notebookCount
		m.failedCount = msg.failedCount
		m.lastUpdate = time.Now()

		m.dependencyList.SetItems(dependencyItems(m.spec))
		m.diagnostics = buildDiagnostics(m.spec, m.units)
		items := make([]list.Item, 0, len(m.diagnostics))
		for _, d := range m.diagnostics {
			items = append(items, item{title: d.title, desc: d.desc})
		}
		m.diagnosticList.SetItems(items)

		if m.selectedUnit != nil {
			m.selectedUnit = findUnit(m.units, m.selectedUnit.Path)
		}
	case sourceJumpResultMsg:
		if msg.err != nil {
			m.sourceJumpStatus = statusStyle.Render(fmt.Sprintf("Source jump failed: %v", msg.err))
		} else {
			m.sourceJumpStatus = statusStyle.Render(fmt.Sprintf("Opened source: %s", msg.target))
		}
	}

	var cmd tea.Cmd
	if m.mode == panelDependencies {
		m.dependencyList, cmd = m.dependencyList.Update(msg)
	} else {
		m.diagnosticList, cmd = m.diagnosticList.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	project := "(no project)"
	recommended := "?"
	unknownCount := 0
	if m.spec != nil {
		project = m.spec.ProjectName
		recommended = m.spec.RecommendedVersion.String()
		unknownCount = len(m.spec.Dependencies.Unknown)
	}

	status := statusStyle.Render(fmt.Sprintf("%s | Python %s | %d scripts | %d notebooks | updated %s",
		project, recommended, m.scriptCount, m.notebookCount, m.lastUpdate.Format("15:04:05")))

	var summary string
	if m.failedCount == 0 && unknownCount == 0 {
		summary = successStyle.Render("Environment Clean")
	} else {
		summary = fmt.Sprintf("%s | %s",
			failureStyle.Render(fmt.Sprintf("%d parse failures", m.failedCount)),
			unknownStyle.Render(fmt.Sprintf("%d unknown imports", unknownCount)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Python Environment Monitor"), status, summary)
	help := renderHelp(m)

	body := m.dependencyList.View()
	if m.mode == panelDiagnostics {
		body = renderDiagnosticsPanel(m)
	}
	if m.showTrend {
		body += "\n\n" + renderTrendOverlay(m.trendReport)
	}
	if m.sourceJumpStatus != "" {
		body += "\n\n" + m.sourceJumpStatus
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func initialModel(trendReport *history.TrendReport) model {
	dependencyList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	dependencyList.Title = "Dependencies"
	dependencyList.SetShowStatusBar(false)
	dependencyList.SetFilteringEnabled(true)

	diagnosticList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	diagnosticList.Title = "Diagnostics"
	diagnosticList.SetShowStatusBar(false)
	diagnosticList.SetFilteringEnabled(true)

	return model{
		dependencyList: dependencyList,
		diagnosticList: diagnosticList,
		mode:           panelDependencies,
		trendReport:    trendReport,
		lastUpdate:     time.Now(),
	}
}

func dependencyItems(spec *analyze.EnvironmentSpec) []list.Item {
	if spec == nil {
		return nil
	}
	items := make([]list.Item, 0, spec.Dependencies.Total())
	for _, entry := range spec.Dependencies.ThirdParty {
		items = append(items, item{title: entry, desc: "third-party"})
	}
	for _, entry := range spec.Dependencies.StandardLib {
		items = append(items, item{title: entry, desc: "standard library"})
	}
	for _, entry := range spec.Dependencies.Unknown {
		items = append(items, item{title: entry, desc: "unknown"})
	}
	return items
}

// buildDiagnostics lists every failed unit, then every unknown import
// with the first unit that mentions it.
func buildDiagnostics(spec *analyze.EnvironmentSpec, units []*parser.UnitAnalysis) []diagnostic {
	diagnostics := make([]diagnostic, 0)
	for _, unit := range units {
		if !unit.Failed {
			continue
		}
		diagnostics = append(diagnostics, diagnostic{
			title: "Parse Failure",
			desc:  fmt.Sprintf("%s (%s)", unit.Path, unit.Kind),
			path:  unit.Path,
		})
	}

	if spec == nil {
		return diagnostics
	}
	for _, name := range spec.Dependencies.Unknown {
		d := diagnostic{title: "Unknown Import", desc: name}
		if unit := firstImporter(units, name); unit != nil {
			d.desc = fmt.Sprintf("%s in %s", name, unit.Path)
			d.path = unit.Path
		}
		diagnostics = append(diagnostics, d)
	}
	return diagnostics
}

func firstImporter(units []*parser.UnitAnalysis, name string) *parser.UnitAnalysis {
	for _, unit := range units {
		if unit.Failed {
			continue
		}
		for _, imported := range unit.Imports {
			if imported == name {
				return unit
			}
		}
	}
	return nil
}

func findUnit(units []*parser.UnitAnalysis, path string) *parser.UnitAnalysis {
	for _, unit := range units {
		if unit.Path == path {
			return unit
		}
	}
	return nil
}
