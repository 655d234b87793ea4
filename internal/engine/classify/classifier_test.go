// # internal/engine/classify/classifier_test.go
package classify

import (
	"testing"

	"envinfer/internal/engine/pyenv"
)

type fixtureResolver struct {
	locations map[string]string
}

func (r *fixtureResolver) Resolve(name string) (string, bool) {
	location, ok := r.locations[name]
	return location, ok
}

func newFixtureClassifier() *Classifier {
	stdlib := pyenv.NewStandardModuleSetFrom([]string{"os", "sys", "json"})
	resolver := &fixtureResolver{locations: map[string]string{
		"numpy":    "/env/lib/python3.12/site-packages/numpy/__init__.py",
		"orphan":   "/env/lib/python3.12/site-packages/orphan.py",
		"sitemod":  "/usr/lib/python3.12/sitemod.py",
		"debundle": "/usr/lib/python3/dist-packages/debundle/__init__.py",
	}}
	registry := pyenv.NewInstalledPackageRegistry(map[string]string{
		"NumPy":    "1.24.0",
		"debundle": "0.3.1",
	})
	return New(stdlib, resolver, registry)
}

func TestClassify(t *testing.T) {
	c := newFixtureClassifier()

	tests := []struct {
		name     string
		category Category
		entry    string
	}{
		// Step 1: exact standard-set match, no resolution needed.
		{"os", CategoryStandardLibrary, "os"},
		// Step 2: unresolvable names are unknown.
		{"ghost", CategoryUnknown, "ghost"},
		// Step 3: resolved without a marker segment falls back to stdlib.
		{"sitemod", CategoryStandardLibrary, "sitemod"},
		// Step 4: marker plus registry match carries the pinned version.
		{"numpy", CategoryThirdParty, "numpy==1.24.0"},
		{"debundle", CategoryThirdParty, "debundle==0.3.1"},
		// Step 4 degraded: marker but no registry entry, bare name.
		{"orphan", CategoryThirdParty, "orphan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.name)
			if got.Category != tt.category {
				t.Errorf("Classify(%q).Category = %s, want %s", tt.name, got.Category, tt.category)
			}
			if got.Entry != tt.entry {
				t.Errorf("Classify(%q).Entry = %q, want %q", tt.name, got.Entry, tt.entry)
			}
		})
	}
}

func TestClassifyStandardSetBeatsResolution(t *testing.T) {
	stdlib := pyenv.NewStandardModuleSetFrom([]string{"json"})
	// A shadowing json package installed under site-packages must not
	// displace the standard-set match.
	resolver := &fixtureResolver{locations: map[string]string{
		"json": "/env/lib/python3.12/site-packages/json/__init__.py",
	}}
	registry := pyenv.NewInstalledPackageRegistry(map[string]string{"json": "9.9.9"})

	got := New(stdlib, resolver, registry).Classify("json")
	if got.Category != CategoryStandardLibrary {
		t.Errorf("Expected standard-set match to win, got %s", got.Category)
	}
}

func TestClassifyCaseSensitiveSetCaseInsensitiveRegistry(t *testing.T) {
	c := newFixtureClassifier()

	// "OS" misses the case-sensitive set and the resolver: unknown.
	if got := c.Classify("OS"); got.Category != CategoryUnknown {
		t.Errorf("Classify(OS) = %s, want unknown", got.Category)
	}
}

func TestClassifyUnresolvedInstalledPackageIsUnknown(t *testing.T) {
	// The registry knows the distribution, but the import name does not
	// resolve; the resolution short-circuit wins.
	stdlib := pyenv.NewStandardModuleSetFrom(nil)
	resolver := &fixtureResolver{locations: map[string]string{}}
	registry := pyenv.NewInstalledPackageRegistry(map[string]string{"pillow": "10.0.0"})

	got := New(stdlib, resolver, registry).Classify("pillow")
	if got.Category != CategoryUnknown {
		t.Errorf("Expected unknown for unresolvable name, got %s", got.Category)
	}
}
