// # internal/engine/pyenv/stdlib.go
package pyenv

import (
	_ "embed"
	"strings"
)

// The canonical standard-library module names of CPython 3.12, private
// implementation modules included. Names absent here (modules removed in
// newer runtimes, modules of older ones) can still classify as standard
// library through the resolution fallback.
//
//go:embed stdlib/modules.txt
var stdlibModules string

// StandardModuleSet is the fixed set of canonical standard-library module
// names. Membership checks are exact and case-sensitive.
type StandardModuleSet struct {
	names map[string]bool
}

func NewStandardModuleSet() *StandardModuleSet {
	names := make(map[string]bool)
	for _, line := range strings.Split(stdlibModules, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		names[name] = true
	}
	return &StandardModuleSet{names: names}
}

// NewStandardModuleSetFrom builds a set from explicit names. Tests use it
// to substitute fixtures for the embedded list.
func NewStandardModuleSetFrom(names []string) *StandardModuleSet {
	set := &StandardModuleSet{names: make(map[string]bool, len(names))}
	for _, name := range names {
		set.names[name] = true
	}
	return set
}

func (s *StandardModuleSet) Contains(name string) bool {
	return s.names[name]
}

func (s *StandardModuleSet) Len() int {
	return len(s.names)
}
