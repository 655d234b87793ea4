// # internal/engine/analyze/project.go
package analyze

import (
	"path/filepath"
	"sort"
	"sync"

	"envinfer/internal/engine/parser"
)

// Project accumulates per-unit analyses keyed by path. Watch mode
// replaces and removes entries incrementally; reads take a snapshot.
type Project struct {
	mu    sync.RWMutex
	root  string
	units map[string]*parser.UnitAnalysis
}

func NewProject(root string) *Project {
	return &Project{
		root:  root,
		units: make(map[string]*parser.UnitAnalysis),
	}
}

func (p *Project) Root() string {
	return p.root
}

// Name is the root directory's base name, used as the environment name.
func (p *Project) Name() string {
	abs, err := filepath.Abs(p.root)
	if err != nil {
		return filepath.Base(p.root)
	}
	return filepath.Base(abs)
}

// Add stores the analysis, replacing any previous one for the same path.
func (p *Project) Add(analysis *parser.UnitAnalysis) {
	if analysis == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.units[analysis.Path] = analysis
}

func (p *Project) Remove(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.units, path)
}

func (p *Project) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.units)
}

// Units returns a snapshot sorted by path.
func (p *Project) Units() []*parser.UnitAnalysis {
	p.mu.RLock()
	defer p.mu.RUnlock()

	units := make([]*parser.UnitAnalysis, 0, len(p.units))
	for _, analysis := range p.units {
		units = append(units, analysis)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })
	return units
}

// Counts reports how many scripts, notebooks, and failed units the
// project currently holds.
func (p *Project) Counts() (scripts, notebooks, failed int) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, analysis := range p.units {
		switch analysis.Kind {
		case parser.KindScript:
			scripts++
		case parser.KindNotebook:
			notebooks++
		}
		if analysis.Failed {
			failed++
		}
	}
	return scripts, notebooks, failed
}
