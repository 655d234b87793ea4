package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"envinfer/internal/engine/analyze"
	"envinfer/internal/engine/parser"
)

func testSpec() *analyze.EnvironmentSpec {
	return &analyze.EnvironmentSpec{
		ProjectName:        "demo",
		RecommendedVersion: analyze.Version{Major: 3, Minor: 8},
		Dependencies: analyze.DependencyReport{
			ThirdParty:  []string{"requests==2.31.0"},
			StandardLib: []string{"os"},
			Unknown:     []string{"mysterylib"},
		},
	}
}

func testUnits() []*parser.UnitAnalysis {
	return []*parser.UnitAnalysis{
		{Path: "broken.py", Kind: parser.KindScript, Failed: true},
		{Path: "main.py", Kind: parser.KindScript, Imports: []string{"mysterylib", "os", "requests"}},
	}
}

func TestModel_PanelsAndFocusFlow(t *testing.T) {
	m := initialModel(nil)

	updated, _ := m.Update(updateMsg{
		spec:          testSpec(),
		units:         testUnits(),
		scriptCount:   2,
		notebookCount: 0,
		failedCount:   1,
	})

	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}
	if len(state.dependencyList.Items()) != 3 {
		t.Fatalf("expected 3 dependency items, got %d", len(state.dependencyList.Items()))
	}
	// One parse failure plus one unknown import.
	if len(state.diagnosticList.Items()) != 2 {
		t.Fatalf("expected 2 diagnostic items, got %d", len(state.diagnosticList.Items()))
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyTab})
	state = updated.(model)
	if state.mode != panelDiagnostics {
		t.Fatalf("expected diagnostics panel after tab, got %v", state.mode)
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyTab})
	state = updated.(model)
	if state.mode != panelDependencies {
		t.Fatalf("expected dependencies panel after second tab, got %v", state.mode)
	}
}

func TestModel_UnitDetailAndTrendToggle(t *testing.T) {
	m := initialModel(nil)
	updated, _ := m.Update(updateMsg{
		spec:        testSpec(),
		units:       testUnits(),
		scriptCount: 2,
		failedCount: 1,
	})
	state := updated.(model)

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyTab})
	state = updated.(model)
	if state.mode != panelDiagnostics {
		t.Fatalf("expected diagnostics panel, got %v", state.mode)
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEnter})
	state = updated.(model)
	if state.selectedUnit == nil {
		t.Fatal("expected unit detail to open")
	}
	if state.selectedUnit.Path != "broken.py" {
		t.Fatalf("expected failed unit selected, got %q", state.selectedUnit.Path)
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	state = updated.(model)
	if !state.showTrend {
		t.Fatal("expected trend overlay toggled on")
	}

	updated, _ = state.Update(tea.KeyMsg{Type: tea.KeyEsc})
	state = updated.(model)
	if state.selectedUnit != nil {
		t.Fatal("expected unit detail to close on esc")
	}
}

func TestBuildDiagnostics_LinksUnknownImportToFirstImporter(t *testing.T) {
	diagnostics := buildDiagnostics(testSpec(), testUnits())
	if len(diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diagnostics))
	}
	if diagnostics[0].title != "Parse Failure" || diagnostics[0].path != "broken.py" {
		t.Fatalf("unexpected first diagnostic: %+v", diagnostics[0])
	}
	if diagnostics[1].title != "Unknown Import" || diagnostics[1].path != "main.py" {
		t.Fatalf("unexpected second diagnostic: %+v", diagnostics[1])
	}
}
