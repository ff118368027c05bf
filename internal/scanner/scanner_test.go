package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"

	"monthsort/internal/dateparser"
)

// DirectoryStructure represents a generated directory structure for testing.
type DirectoryStructure struct {
	Files       []string // List of file names to create at the root
	Directories []string // List of subdirectory names, each holding one nested file
}

// genFileName generates valid file names.
func genFileName() gopter.Gen {
	return gen.IntRange(1, 20).FlatMap(func(length interface{}) gopter.Gen {
		return gen.SliceOfN(length.(int), gen.AlphaLowerChar())
	}, reflect.TypeOf([]rune{})).Map(func(chars []rune) string {
		return string(chars) + ".txt"
	})
}

// genDirName generates valid directory names.
func genDirName() gopter.Gen {
	return gen.IntRange(1, 20).FlatMap(func(length interface{}) gopter.Gen {
		return gen.SliceOfN(length.(int), gen.AlphaLowerChar())
	}, reflect.TypeOf([]rune{})).Map(func(chars []rune) string {
		return "dir_" + string(chars)
	})
}

// genDirectoryStructure generates a directory structure with files and subdirectories.
func genDirectoryStructure() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOfN(5, genFileName()),
		gen.SliceOfN(3, genDirName()),
	).Map(func(vals []interface{}) DirectoryStructure {
		files := vals[0].([]string)
		dirs := vals[1].([]string)

		fileSet := make(map[string]bool)
		uniqueFiles := []string{}
		for _, f := range files {
			if !fileSet[f] {
				fileSet[f] = true
				uniqueFiles = append(uniqueFiles, f)
			}
		}

		dirSet := make(map[string]bool)
		uniqueDirs := []string{}
		for _, d := range dirs {
			if !dirSet[d] {
				dirSet[d] = true
				uniqueDirs = append(uniqueDirs, d)
			}
		}

		return DirectoryStructure{Files: uniqueFiles, Directories: uniqueDirs}
	})
}

func collect(t *testing.T, seq func(func(FileEntry, error) bool)) ([]FileEntry, []error) {
	t.Helper()
	var entries []FileEntry
	var errs []error
	for entry, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errs
}

func TestWalkReturnsOnlyFiles(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("Walk yields every file, recursively, and no directories", prop.ForAll(
		func(structure DirectoryStructure) bool {
			fsys := afero.NewMemMapFs()
			root := "/root"
			fsys.MkdirAll(root, 0755)

			want := []string{}
			for _, f := range structure.Files {
				p := filepath.Join(root, f)
				afero.WriteFile(fsys, p, []byte("x"), 0644)
				want = append(want, p)
			}
			for _, d := range structure.Directories {
				p := filepath.Join(root, d, "nested.txt")
				fsys.MkdirAll(filepath.Dir(p), 0755)
				afero.WriteFile(fsys, p, []byte("x"), 0644)
				want = append(want, p)
			}

			entries, errs := collect(t, Walk(fsys, root, DefaultOptions()))
			if len(errs) != 0 {
				t.Logf("Unexpected errors: %v", errs)
				return false
			}

			got := make([]string, len(entries))
			for i, e := range entries {
				got[i] = e.FullPath
				if e.Name != filepath.Base(e.FullPath) {
					return false
				}
			}
			sort.Strings(got)
			sort.Strings(want)
			if !reflect.DeepEqual(got, want) {
				t.Logf("Expected %v, got %v", want, got)
				return false
			}
			return true
		},
		genDirectoryStructure(),
	))

	properties.TestingRun(t)
}

func TestWalk_LexicalOrder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, p := range []string{"/r/b.txt", "/r/a/z.txt", "/r/c.txt", "/r/a/y.txt"} {
		fsys.MkdirAll(filepath.Dir(p), 0755)
		afero.WriteFile(fsys, p, nil, 0644)
	}

	entries, _ := collect(t, Walk(fsys, "/r", DefaultOptions()))
	var got []string
	for _, e := range entries {
		got = append(got, e.FullPath)
	}
	want := []string{"/r/a/y.txt", "/r/a/z.txt", "/r/b.txt", "/r/c.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestWalk_MaxDepth(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, p := range []string{"/r/top.txt", "/r/l1/one.txt", "/r/l1/l2/two.txt"} {
		fsys.MkdirAll(filepath.Dir(p), 0755)
		afero.WriteFile(fsys, p, nil, 0644)
	}

	tests := []struct {
		depth int
		want  int
	}{
		{0, 1},
		{1, 2},
		{2, 3},
		{-1, 3},
	}
	for _, tt := range tests {
		entries, _ := collect(t, Walk(fsys, "/r", Options{MaxDepth: tt.depth, SymlinkPolicy: SymlinkPolicySkip}))
		if len(entries) != tt.want {
			t.Errorf("MaxDepth %d: expected %d files, got %d", tt.depth, tt.want, len(entries))
		}
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	_, errs := collect(t, Walk(afero.NewMemMapFs(), "/nope", DefaultOptions()))
	if len(errs) != 1 {
		t.Fatalf("Expected one error, got %v", errs)
	}
	var serr *ScanError
	if !errors.As(errs[0], &serr) || serr.Type != DirectoryNotFound {
		t.Errorf("Expected DirectoryNotFound, got %v", errs[0])
	}
}

func TestWalk_RootIsFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/file.txt", nil, 0644)
	_, errs := collect(t, Walk(fsys, "/file.txt", DefaultOptions()))
	if len(errs) != 1 {
		t.Fatalf("Expected one error, got %v", errs)
	}
}

func TestWalk_StopsWhenConsumerBreaks(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for i := 0; i < 10; i++ {
		afero.WriteFile(fsys, filepath.Join("/r", string(rune('a'+i))+".txt"), nil, 0644)
	}
	n := 0
	for range Walk(fsys, "/r", DefaultOptions()) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("Expected to stop after 3, got %d", n)
	}
}

func setupSymlinkTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	outside := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, "real.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outside, "linked.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	return root
}

func TestWalk_SymlinkPolicies(t *testing.T) {
	root := setupSymlinkTree(t)
	fsys := afero.NewOsFs()

	entries, errs := collect(t, Walk(fsys, root, Options{MaxDepth: -1, SymlinkPolicy: SymlinkPolicySkip}))
	if len(entries) != 1 || len(errs) != 0 {
		t.Errorf("skip: expected 1 file and no errors, got %d files, %v", len(entries), errs)
	}

	entries, errs = collect(t, Walk(fsys, root, Options{MaxDepth: -1, SymlinkPolicy: SymlinkPolicyFollow}))
	if len(entries) != 2 || len(errs) != 0 {
		t.Errorf("follow: expected 2 files and no errors, got %d files, %v", len(entries), errs)
	}

	entries, errs = collect(t, Walk(fsys, root, Options{MaxDepth: -1, SymlinkPolicy: SymlinkPolicyError}))
	if len(entries) != 1 || len(errs) != 1 {
		t.Fatalf("error: expected 1 file and 1 error, got %d files, %v", len(entries), errs)
	}
	var serr *ScanError
	if !errors.As(errs[0], &serr) || serr.Type != SymlinkError {
		t.Errorf("Expected SymlinkError, got %v", errs[0])
	}
}

func TestWalk_FollowDetectsCycle(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "f.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(root, filepath.Join(sub, "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	entries, errs := collect(t, Walk(afero.NewOsFs(), root, Options{MaxDepth: -1, SymlinkPolicy: SymlinkPolicyFollow}))
	if len(entries) != 1 {
		t.Errorf("Expected 1 file, got %d", len(entries))
	}
	if len(errs) != 1 {
		t.Fatalf("Expected one cycle error, got %v", errs)
	}
	var serr *ScanError
	if !errors.As(errs[0], &serr) || serr.Type != CycleDetected {
		t.Errorf("Expected CycleDetected, got %v", errs[0])
	}
}

func TestDated(t *testing.T) {
	fsys := afero.NewMemMapFs()
	names := []string{"photo-2023_07_15.jpg", "note_15-07-2023.txt", "2023July15_log.csv", "ignoreme.txt", "old_2022-01-01.txt"}
	for _, n := range names {
		afero.WriteFile(fsys, filepath.Join("/src", n), nil, 0644)
	}

	var got []Record
	for rec, err := range Dated(fsys, "/src", dateparser.NewResolver(nil), 2023, DefaultOptions()) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got = append(got, rec)
	}

	if len(got) != 3 {
		t.Fatalf("Expected 3 dated files, got %d: %+v", len(got), got)
	}
	want := dateparser.Date{Year: 2023, Month: 7, Day: 15}
	for _, rec := range got {
		if rec.Date != want {
			t.Errorf("%s: expected %v, got %v", rec.Name, want, rec.Date)
		}
		if rec.Dir != "/src" {
			t.Errorf("%s: expected dir /src, got %s", rec.Name, rec.Dir)
		}
	}
}
