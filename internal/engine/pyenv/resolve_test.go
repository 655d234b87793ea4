package pyenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("# fixture\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "requests", "__init__.py"))
	writeFixture(t, filepath.Join(root, "six.py"))
	writeFixture(t, filepath.Join(root, "_speedups.cpython-312-x86_64-linux-gnu.so"))
	if err := os.MkdirAll(filepath.Join(root, "namespace_pkg"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewResolverFromPaths([]string{root})

	tests := []struct {
		name       string
		wantSuffix string
		wantOK     bool
	}{
		{"requests", filepath.Join("requests", "__init__.py"), true},
		{"six", "six.py", true},
		{"_speedups", "_speedups.cpython-312-x86_64-linux-gnu.so", true},
		{"namespace_pkg", "namespace_pkg", true},
		{"missing", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		location, ok := r.Resolve(tt.name)
		if ok != tt.wantOK {
			t.Errorf("Resolve(%q) ok=%v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if ok && !strings.HasSuffix(location, tt.wantSuffix) {
			t.Errorf("Resolve(%q) = %q, want suffix %q", tt.name, location, tt.wantSuffix)
		}
	}
}

func TestResolvePackageBeatsModule(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "dual", "__init__.py"))
	writeFixture(t, filepath.Join(root, "dual.py"))

	r := NewResolverFromPaths([]string{root})

	location, ok := r.Resolve("dual")
	if !ok {
		t.Fatal("Expected resolution")
	}
	if !strings.HasSuffix(location, "__init__.py") {
		t.Errorf("Expected the package to win, got %q", location)
	}
}

func TestResolveSearchPathOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFixture(t, filepath.Join(first, "shared.py"))
	writeFixture(t, filepath.Join(second, "shared.py"))

	r := NewResolverFromPaths([]string{first, second})

	location, ok := r.Resolve("shared")
	if !ok {
		t.Fatal("Expected resolution")
	}
	if !strings.HasPrefix(location, first) {
		t.Errorf("Expected first search path to win, got %q", location)
	}
}

func TestResolveNamespaceDirIsLastResort(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	if err := os.MkdirAll(filepath.Join(first, "late"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFixture(t, filepath.Join(second, "late.py"))

	r := NewResolverFromPaths([]string{first, second})

	location, ok := r.Resolve("late")
	if !ok {
		t.Fatal("Expected resolution")
	}
	if !strings.HasSuffix(location, "late.py") {
		t.Errorf("Expected module file over bare directory, got %q", location)
	}
}
