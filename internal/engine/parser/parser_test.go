// # internal/engine/parser/parser_test.go
package parser

import (
	"reflect"
	"testing"
)

func analyzeSource(t *testing.T, path, code string) *UnitAnalysis {
	t.Helper()

	p := NewParser(NewGrammarLoader())
	unit, err := p.LoadUnit(path, []byte(code))
	if err != nil {
		t.Fatalf("LoadUnit failed: %v", err)
	}
	analysis, err := p.AnalyzeUnit(unit)
	if err != nil {
		t.Fatalf("AnalyzeUnit failed: %v", err)
	}
	return analysis
}

func TestImportExtraction(t *testing.T) {
	code := `
import os
import sys as system
import numpy.linalg.solvers
import json, re
from auth.utils import login as auth_login
from . import local_mod
from ..parent import parent_mod

def worker():
    import hashlib
    return hashlib.md5
`
	analysis := analyzeSource(t, "test.py", code)

	expected := []string{"auth", "hashlib", "json", "numpy", "os", "parent", "re", "sys"}
	if !reflect.DeepEqual(analysis.Imports, expected) {
		t.Errorf("Expected imports %v, got %v", expected, analysis.Imports)
	}
}

func TestImportDeduplication(t *testing.T) {
	code := `
import os
import os.path
from os import environ
`
	analysis := analyzeSource(t, "test.py", code)

	if len(analysis.Imports) != 1 || analysis.Imports[0] != "os" {
		t.Errorf("Expected single deduplicated import os, got %v", analysis.Imports)
	}
}

func TestRelativeImportWithoutModule(t *testing.T) {
	analysis := analyzeSource(t, "test.py", "from . import sibling\n")

	if len(analysis.Imports) != 0 {
		t.Errorf("Expected no imports from bare relative import, got %v", analysis.Imports)
	}
}

func TestFeatureDetection(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		feature Feature
		want    bool
	}{
		{"annotated assignment with value", "x: int = 5\n", FeatureAnnotatedAssignment, true},
		{"annotated assignment without value", "x: int\n", FeatureAnnotatedAssignment, true},
		{"plain assignment", "x = 5\n", FeatureAnnotatedAssignment, false},
		{"f-string", "y = f\"hello {name}\"\n", FeatureFString, true},
		{"capital F prefix", "y = F'v{n}'\n", FeatureFString, true},
		{"plain string", "y = \"hello\"\n", FeatureFString, false},
		{"raw string", "y = r\"hello\"\n", FeatureFString, false},
		{"bare dataclass decorator", "@dataclass\nclass Point:\n    x: int\n", FeatureDataclassDecorator, true},
		{"qualified dataclass decorator", "@dataclasses.dataclass\nclass Point:\n    x: int\n", FeatureDataclassDecorator, false},
		{"dataclass call decorator", "@dataclass(frozen=True)\nclass Point:\n    x: int\n", FeatureDataclassDecorator, false},
		{"dataclass on function", "@dataclass\ndef build():\n    pass\n", FeatureDataclassDecorator, false},
		{"walrus operator", "if (n := compute()) > 5:\n    print(n)\n", FeatureWalrusOperator, true},
		{"dict union with literal", "merged = {\"a\": 1} | overrides\n", FeatureDictUnion, true},
		{"dict union literal right", "merged = overrides | {\"a\": 1}\n", FeatureDictUnion, true},
		{"bitwise or on variables", "c = a | b\n", FeatureDictUnion, false},
		{"bitwise or on ints", "flags = 1 | 2\n", FeatureDictUnion, false},
		{"match statement", "match command:\n    case \"go\":\n        pass\n    case _:\n        pass\n", FeatureMatchStatement, true},
		{"match as identifier", "match = find(pattern)\n", FeatureMatchStatement, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := analyzeSource(t, "test.py", tt.code)

			found := false
			for _, feature := range analysis.Features {
				if feature == tt.feature {
					found = true
				}
			}
			if found != tt.want {
				t.Errorf("Expected %s detection=%v, got features %v", tt.feature, tt.want, analysis.Features)
			}
		})
	}
}

func TestFeatureInsideFStringInterpolation(t *testing.T) {
	analysis := analyzeSource(t, "test.py", "y = f\"{(n := 1)}\"\n")

	wantFeatures := map[Feature]bool{FeatureFString: true, FeatureWalrusOperator: true}
	for feature := range wantFeatures {
		found := false
		for _, got := range analysis.Features {
			if got == feature {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s inside interpolation, got %v", feature, analysis.Features)
		}
	}
}

func TestFailedParse(t *testing.T) {
	analysis := analyzeSource(t, "broken.py", "def broken(:\n")

	if !analysis.Failed {
		t.Fatal("Expected analysis.Failed for syntactically invalid source")
	}
	if len(analysis.Imports) != 0 || len(analysis.Features) != 0 {
		t.Errorf("Expected empty sets for failed unit, got %v / %v", analysis.Imports, analysis.Features)
	}
}

func TestEmptySource(t *testing.T) {
	analysis := analyzeSource(t, "empty.py", "")

	if analysis.Failed {
		t.Fatal("Empty source should parse cleanly")
	}
	if len(analysis.Imports) != 0 || len(analysis.Features) != 0 {
		t.Errorf("Expected empty sets, got %v / %v", analysis.Imports, analysis.Features)
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		path string
		want UnitKind
	}{
		{"main.py", KindScript},
		{"dir/MAIN.PY", KindScript},
		{"analysis.ipynb", KindNotebook},
		{"readme.md", ""},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := DetectKind(tt.path); got != tt.want {
			t.Errorf("DetectKind(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoadUnitUnsupported(t *testing.T) {
	p := NewParser(NewGrammarLoader())
	if _, err := p.LoadUnit("notes.txt", []byte("hello")); err == nil {
		t.Fatal("Expected error for unsupported path")
	}
}

func TestGrammarSupportsMatchStatement(t *testing.T) {
	loader := NewGrammarLoader()
	if !loader.SupportsMatchStatement() {
		t.Fatal("Expected bundled grammar to recognize match statements")
	}
}
