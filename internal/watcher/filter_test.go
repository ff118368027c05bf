package watcher

import (
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNewFileFilter_EmptyUsesDefaults(t *testing.T) {
	for _, patterns := range [][]string{nil, {}} {
		f := NewFileFilter(patterns)
		if got, want := len(f.Patterns()), len(DefaultIgnorePatterns()); got != want {
			t.Errorf("expected %d default patterns, got %d", want, got)
		}
	}
}

func TestFileFilter_ShouldIgnore(t *testing.T) {
	f := NewFileFilter(nil)

	tests := []struct {
		path string
		want bool
	}{
		{"/in/report.tmp", true},
		{"/in/REPORT.TMP", true},
		{"/in/movie.mkv.part", true},
		{"/in/setup.exe.crdownload", true},
		{"/in/archive.zip.download", true},
		{"/in/.~lock.sheet.ods#", true},
		{"/in/.DS_Store", true},
		{"/in/invoice_2024-01-01.pdf", false},
		{"/in/tmp/report.pdf", false},
		{"/in/notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			if got := f.ShouldIgnore(tt.path); got != tt.want {
				t.Errorf("ShouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileFilter_CustomPatterns(t *testing.T) {
	f := NewFileFilter([]string{"draft_*", "*.BAK"})

	if !f.ShouldIgnore("/in/draft_2024-01-01.docx") {
		t.Error("draft_* should match")
	}
	if !f.ShouldIgnore("/in/old.bak") {
		t.Error("*.BAK should match case-insensitively")
	}
	if f.ShouldIgnore("/in/report.tmp") {
		t.Error("custom patterns replace the defaults")
	}
}

func TestFileFilter_PatternsReturnsCopy(t *testing.T) {
	f := NewFileFilter([]string{"*.tmp"})
	p := f.Patterns()
	p[0] = "changed"
	if f.Patterns()[0] != "*.tmp" {
		t.Error("Patterns should return a copy")
	}
}

func TestAlreadySorted(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/dest/(07)Jul-2023/photo-20230715.jpg", true},
		{"/dest/(07)Jul-2023/photo-20230715_3.jpg", true},
		{"/dest/(07)Jul-2023/photo.jpg", false},
		{"/inbox/photo-20230715.jpg", false},
		{"/dest/(13)Jul-2023/photo-20230715.jpg", false},
		{"/dest/Jul-2023/photo-20230715.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := AlreadySorted(tt.path); got != tt.want {
				t.Errorf("AlreadySorted(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// TestTmpExtensionAlwaysIgnored checks the default filter against arbitrary
// stems.
func TestTmpExtensionAlwaysIgnored(t *testing.T) {
	properties := gopter.NewProperties(nil)
	f := NewFileFilter(nil)

	properties.Property("any stem with .tmp is ignored", prop.ForAll(
		func(stem string) bool {
			return f.ShouldIgnore(filepath.Join("/in", stem+".tmp"))
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
