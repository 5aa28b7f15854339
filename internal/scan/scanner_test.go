package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akelsh/seek/internal/exclude"
)

// indexableTempDir returns a fresh directory outside the exclusion
// policy's system-path deny list (which covers /tmp and /var/folders,
// where t.TempDir lives), removed when the test ends.
func indexableTempDir(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir, err := os.MkdirTemp(wd, "fixture-")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func setup(t *testing.T) (string, *Scanner) {
	root := indexableTempDir(t)

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("world"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "node_modules", "c.txt"), []byte("dep"), 0o644); err != nil {
		t.Fatal(err)
	}

	factory := NewFactory(exclude.NewDefault(), 1000)
	return root, NewScanner(factory)
}

func TestScanRootLevelFiles(t *testing.T) {
	root, s := setup(t)

	entries, err := s.ScanRootLevelFiles(root, Options{})
	if err != nil {
		t.Fatalf("ScanRootLevelFiles failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" {
		t.Fatalf("entries = %+v, want [a.txt]", entries)
	}
}

func TestTopLevelDirectoriesExcludesDevDirs(t *testing.T) {
	root, s := setup(t)

	dirs, err := s.TopLevelDirectories(root, Options{})
	if err != nil {
		t.Fatalf("TopLevelDirectories failed: %v", err)
	}
	if len(dirs) != 1 || filepath.Base(dirs[0]) != "sub" {
		t.Fatalf("dirs = %v, want [sub]", dirs)
	}
}

func TestScanRecursiveSkipsExcludedSubtree(t *testing.T) {
	root, s := setup(t)

	entries, err := s.ScanRecursive(root, Options{})
	if err != nil {
		t.Fatalf("ScanRecursive failed: %v", err)
	}

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	if !names["a.txt"] || !names["b.txt"] {
		t.Errorf("expected a.txt and b.txt, got %v", names)
	}
	if names["c.txt"] {
		t.Errorf("expected node_modules/c.txt excluded, got %v", names)
	}
}

func TestChangedSubtreeRootsPrunesUnmodified(t *testing.T) {
	root, s := setup(t)

	roots, err := s.ChangedSubtreeRoots(root, 0)
	if err != nil {
		t.Fatalf("ChangedSubtreeRoots failed: %v", err)
	}
	if len(roots) != 1 || roots[0] != root {
		t.Fatalf("roots = %v, want [%s] since since=0 predates everything", roots, root)
	}
}
