package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/akelsh/seek/internal/watch"
)

func setup(t *testing.T) *App {
	a, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

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

func TestOpenWiresEmptyStore(t *testing.T) {
	a := setup(t)

	indexed, err := a.IsIndexed()
	if err != nil {
		t.Fatalf("IsIndexed failed: %v", err)
	}
	if indexed {
		t.Error("IsIndexed = true, want false for a fresh store")
	}

	if got := a.MonitoringStatus(); got != watch.Stopped {
		t.Errorf("MonitoringStatus = %v, want Stopped", got)
	}
}

func TestPerformFullIndexingPopulatesFileCount(t *testing.T) {
	a := setup(t)

	root := indexableTempDir(t)
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := a.PerformFullIndexing(context.Background(), []string{root}, nil); err != nil {
		t.Fatalf("PerformFullIndexing failed: %v", err)
	}

	count, err := a.FileCount()
	if err != nil {
		t.Fatalf("FileCount failed: %v", err)
	}
	if count == 0 {
		t.Error("FileCount = 0, want at least the seeded file")
	}

	indexed, err := a.IsIndexed()
	if err != nil {
		t.Fatalf("IsIndexed failed: %v", err)
	}
	if !indexed {
		t.Error("IsIndexed = false after a full index")
	}
}

func TestSearchAfterIndexing(t *testing.T) {
	a := setup(t)

	root := indexableTempDir(t)
	if err := os.WriteFile(filepath.Join(root, "report.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := a.PerformFullIndexing(context.Background(), []string{root}, nil); err != nil {
		t.Fatalf("PerformFullIndexing failed: %v", err)
	}

	result, err := a.Search(context.Background(), "report", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Errorf("entries = %+v, want 1 match", result.Entries)
	}
}

func TestStartStopMonitoring(t *testing.T) {
	a := setup(t)
	root := t.TempDir()

	if err := a.StartMonitoring([]string{root}); err != nil {
		t.Fatalf("StartMonitoring failed: %v", err)
	}
	if got := a.MonitoringStatus(); got != watch.Active {
		t.Errorf("MonitoringStatus = %v, want Active", got)
	}
	if err := a.StopMonitoring(); err != nil {
		t.Fatalf("StopMonitoring failed: %v", err)
	}
}
