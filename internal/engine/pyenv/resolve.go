// # internal/engine/pyenv/resolve.go
package pyenv

import (
	"os"
	"path/filepath"
)

// Resolver locates importable modules on the environment's search paths
// without executing Python. Resolution mirrors the import system's file
// finder: a regular package beats an extension module beats a plain
// module file, with bare package directories (namespace packages) as the
// last resort.
type Resolver struct {
	searchPaths []string
}

func NewResolver(env *Environment) *Resolver {
	return &Resolver{searchPaths: env.SearchPaths}
}

// NewResolverFromPaths builds a resolver over explicit roots; tests use
// it with fixture trees.
func NewResolverFromPaths(paths []string) *Resolver {
	return &Resolver{searchPaths: paths}
}

// Resolve returns the location of the module's defining file or package
// directory, or ok=false when the name is not importable here.
func (r *Resolver) Resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	for _, root := range r.searchPaths {
		if initFile := filepath.Join(root, name, "__init__.py"); fileExists(initFile) {
			return initFile, true
		}
		if ext, ok := extensionModule(root, name); ok {
			return ext, true
		}
		if moduleFile := filepath.Join(root, name+".py"); fileExists(moduleFile) {
			return moduleFile, true
		}
	}

	for _, root := range r.searchPaths {
		if dir := filepath.Join(root, name); dirExists(dir) {
			return dir, true
		}
	}

	return "", false
}

// extensionModule matches compiled module artifacts: name.so, the tagged
// name.cpython-XY-platform.so form, and the windows name.pyd variants.
func extensionModule(root, name string) (string, bool) {
	for _, pattern := range []string{name + ".so", name + ".*.so", name + ".pyd", name + ".*.pyd"} {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		for _, match := range matches {
			if fileExists(match) {
				return match, true
			}
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
