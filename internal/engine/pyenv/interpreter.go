// # internal/engine/pyenv/interpreter.go
package pyenv

import (
	"os"
	"path/filepath"
	"strings"
)

// Environment describes the local Python installation the analysis
// resolves modules against. It is discovered once per run and read-only
// afterwards.
type Environment struct {
	SearchPaths []string // module resolution roots, in priority order
}

// DiscoverOptions control which locations contribute search paths.
type DiscoverOptions struct {
	ProjectDir        string
	ExtraSearchPaths  []string // configured paths, highest priority
	VenvNames         []string // project-local virtualenv directory names
	InterpreterPrefix string   // installation prefix holding lib/pythonX.Y
}

// Discover assembles the environment's search paths: configured extras,
// project-local virtualenvs, active VIRTUAL_ENV / CONDA_PREFIX prefixes,
// and the configured interpreter prefix. Paths that do not exist are
// dropped; duplicates keep their first position.
func Discover(opts DiscoverOptions) *Environment {
	env := &Environment{}
	seen := make(map[string]bool)

	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			return
		}
		seen[path] = true
		env.SearchPaths = append(env.SearchPaths, path)
	}

	addPrefix := func(prefix string) {
		for _, path := range prefixSearchPaths(prefix) {
			add(path)
		}
	}

	for _, path := range opts.ExtraSearchPaths {
		add(path)
	}

	for _, name := range opts.VenvNames {
		addPrefix(filepath.Join(opts.ProjectDir, name))
	}

	if prefix := os.Getenv("VIRTUAL_ENV"); prefix != "" {
		addPrefix(prefix)
	}
	if prefix := os.Getenv("CONDA_PREFIX"); prefix != "" {
		addPrefix(prefix)
	}

	if opts.InterpreterPrefix != "" {
		addPrefix(opts.InterpreterPrefix)
	}

	return env
}

// prefixSearchPaths expands an installation prefix into its module
// directories: lib/pythonX.Y (the standard library of a full
// installation), lib-dynload, the posix site-packages beneath it, and
// the windows-layout Lib/site-packages.
func prefixSearchPaths(prefix string) []string {
	var paths []string

	matches, _ := filepath.Glob(filepath.Join(prefix, "lib", "python*"))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || !info.IsDir() {
			continue
		}
		paths = append(paths, match)
		paths = append(paths, filepath.Join(match, "lib-dynload"))
		paths = append(paths, filepath.Join(match, "site-packages"))
	}

	paths = append(paths, filepath.Join(prefix, "Lib", "site-packages"))
	return paths
}

// SitePackageRoots returns the search paths that sit under a third-party
// installation marker. The installed-package registry is built from these.
func (e *Environment) SitePackageRoots() []string {
	var roots []string
	for _, path := range e.SearchPaths {
		if IsThirdPartyLocation(path) {
			roots = append(roots, path)
		}
	}
	return roots
}

// IsThirdPartyLocation reports whether a resolved module location sits
// under an installation root for third-party distributions. The two
// recognized markers are a "site-packages" or a "dist-packages" path
// segment.
func IsThirdPartyLocation(location string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(location), "/") {
		if segment == "site-packages" || segment == "dist-packages" {
			return true
		}
	}
	return false
}
