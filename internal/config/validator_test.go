package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckPaths_ReportsAllIssues(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	os.WriteFile(file, []byte("x"), 0644)

	cfg := NewDefaultConfig()
	cfg.Base = filepath.Join(root, "missing-parent", "sorted")
	cfg.Sources = []string{filepath.Join(root, "nope"), file}

	result := CheckPaths(cfg)
	if result.Valid {
		t.Fatal("Expected invalid result")
	}
	if len(result.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d: %+v", len(result.Errors), result.Errors)
	}
}

func TestCheckPaths_Valid(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "in")
	os.Mkdir(src, 0755)

	cfg := NewDefaultConfig()
	cfg.Base = filepath.Join(root, "sorted")
	cfg.Sources = []string{src}

	result := CheckPaths(cfg)
	if !result.Valid {
		t.Fatalf("Expected valid result, got %+v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "will be created") {
		t.Errorf("Expected a will-be-created warning, got %+v", result.Warnings)
	}
}

func TestCheckPaths_DestinationInsideSource(t *testing.T) {
	root := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Base = root
	cfg.Sources = []string{root, root + string(filepath.Separator)}

	result := CheckPaths(cfg)
	if !result.Valid {
		t.Fatalf("Overlap should only warn, got %+v", result.Errors)
	}
	var overlap, dup bool
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "inside source") {
			overlap = true
		}
		if strings.Contains(w.Message, "duplicate") {
			dup = true
		}
	}
	if !overlap || !dup {
		t.Errorf("Expected overlap and duplicate warnings, got %+v", result.Warnings)
	}
}

func TestCheckPaths_NoSources(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Base = t.TempDir()
	if CheckPaths(cfg).Valid {
		t.Error("Expected error without sources")
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		path, dir string
		want      bool
	}{
		{"/a/b", "/a", true},
		{"/a", "/a", true},
		{"/ab", "/a", false},
		{"/a", "/a/b", false},
	}
	for _, tt := range tests {
		if got := isWithin(tt.path, tt.dir); got != tt.want {
			t.Errorf("isWithin(%q, %q) = %v, want %v", tt.path, tt.dir, got, tt.want)
		}
	}
}
