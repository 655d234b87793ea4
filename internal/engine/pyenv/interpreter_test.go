package pyenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscover(t *testing.T) {
	project := t.TempDir()
	sitePkgs := filepath.Join(project, ".venv", "lib", "python3.12", "site-packages")
	if err := os.MkdirAll(sitePkgs, 0o755); err != nil {
		t.Fatal(err)
	}
	extra := t.TempDir()

	t.Setenv("VIRTUAL_ENV", "")
	t.Setenv("CONDA_PREFIX", "")

	env := Discover(DiscoverOptions{
		ProjectDir:       project,
		ExtraSearchPaths: []string{extra, filepath.Join(extra, "missing")},
		VenvNames:        []string{".venv", "venv"},
	})

	if len(env.SearchPaths) < 2 {
		t.Fatalf("Expected extra path and venv site-packages, got %v", env.SearchPaths)
	}
	if env.SearchPaths[0] != extra {
		t.Errorf("Expected configured path first, got %v", env.SearchPaths)
	}

	found := false
	for _, path := range env.SearchPaths {
		if path == sitePkgs {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected venv site-packages %q in %v", sitePkgs, env.SearchPaths)
	}
}

func TestDiscoverVirtualEnvVariable(t *testing.T) {
	prefix := t.TempDir()
	sitePkgs := filepath.Join(prefix, "lib", "python3.11", "site-packages")
	if err := os.MkdirAll(sitePkgs, 0o755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VIRTUAL_ENV", prefix)
	t.Setenv("CONDA_PREFIX", "")

	env := Discover(DiscoverOptions{ProjectDir: t.TempDir()})

	found := false
	for _, path := range env.SearchPaths {
		if path == sitePkgs {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected VIRTUAL_ENV site-packages in %v", env.SearchPaths)
	}
}

func TestDiscoverWindowsLayout(t *testing.T) {
	project := t.TempDir()
	sitePkgs := filepath.Join(project, "venv", "Lib", "site-packages")
	if err := os.MkdirAll(sitePkgs, 0o755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VIRTUAL_ENV", "")
	t.Setenv("CONDA_PREFIX", "")

	env := Discover(DiscoverOptions{
		ProjectDir: project,
		VenvNames:  []string{"venv"},
	})

	found := false
	for _, path := range env.SearchPaths {
		if path == sitePkgs {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected Lib/site-packages in %v", env.SearchPaths)
	}
}

func TestIsThirdPartyLocation(t *testing.T) {
	tests := []struct {
		location string
		want     bool
	}{
		{"/usr/lib/python3.12/site-packages/requests/__init__.py", true},
		{"/usr/lib/python3/dist-packages/yaml/__init__.py", true},
		{"/usr/lib/python3.12/os.py", false},
		{"/home/user/project/site-packages-notes.txt", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsThirdPartyLocation(tt.location); got != tt.want {
			t.Errorf("IsThirdPartyLocation(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}

func TestSitePackageRoots(t *testing.T) {
	env := &Environment{SearchPaths: []string{
		"/usr/lib/python3.12",
		"/usr/lib/python3.12/site-packages",
		"/usr/lib/python3/dist-packages",
	}}

	roots := env.SitePackageRoots()
	if len(roots) != 2 {
		t.Fatalf("Expected 2 site-package roots, got %v", roots)
	}
}
