// # internal/engine/pyenv/registry.go
package pyenv

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// InstalledPackageRegistry maps lower-cased distribution names to the
// installed version, built once per run from the metadata files in the
// environment's site-packages roots. Immutable after construction.
type InstalledPackageRegistry struct {
	versions map[string]string
}

// NewInstalledPackageRegistry wraps an explicit mapping; keys are
// normalized to lower case. Tests substitute fixtures this way.
func NewInstalledPackageRegistry(versions map[string]string) *InstalledPackageRegistry {
	r := &InstalledPackageRegistry{versions: make(map[string]string, len(versions))}
	for name, version := range versions {
		r.versions[strings.ToLower(name)] = version
	}
	return r
}

// LoadInstalledPackages scans the given roots for *.dist-info/METADATA
// and *.egg-info/PKG-INFO entries (the egg-info form may be a single
// file). The first occurrence of a name wins, matching import precedence.
func LoadInstalledPackages(roots []string) *InstalledPackageRegistry {
	registry := &InstalledPackageRegistry{versions: make(map[string]string)}

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			var metadataPath string
			switch {
			case strings.HasSuffix(entry.Name(), ".dist-info") && entry.IsDir():
				metadataPath = filepath.Join(root, entry.Name(), "METADATA")
			case strings.HasSuffix(entry.Name(), ".egg-info") && entry.IsDir():
				metadataPath = filepath.Join(root, entry.Name(), "PKG-INFO")
			case strings.HasSuffix(entry.Name(), ".egg-info"):
				metadataPath = filepath.Join(root, entry.Name())
			default:
				continue
			}

			name, version, ok := readMetadata(metadataPath)
			if !ok {
				continue
			}
			key := strings.ToLower(name)
			if _, exists := registry.versions[key]; !exists {
				registry.versions[key] = version
			}
		}
	}

	return registry
}

// readMetadata pulls the Name and Version headers out of a core-metadata
// file. Header parsing stops at the first blank line, where the
// description body begins.
func readMetadata(path string) (name, version string, ok bool) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		if value, found := strings.CutPrefix(line, "Name: "); found && name == "" {
			name = strings.TrimSpace(value)
		}
		if value, found := strings.CutPrefix(line, "Version: "); found && version == "" {
			version = strings.TrimSpace(value)
		}
		if name != "" && version != "" {
			break
		}
	}

	if name == "" || version == "" {
		return "", "", false
	}
	return name, version, true
}

// Version looks up a module name case-insensitively.
func (r *InstalledPackageRegistry) Version(name string) (string, bool) {
	version, ok := r.versions[strings.ToLower(name)]
	return version, ok
}

func (r *InstalledPackageRegistry) Len() int {
	return len(r.versions)
}
