package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/akelsh/seek/internal/store"
)

func setup(t *testing.T) *Manager {
	pool, err := store.Open(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	m, err := New(pool)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func TestGetStringFallsBackToDefault(t *testing.T) {
	m := setup(t)

	if got := m.GetString(KeyBatchSize, "nope"); got != "50000" {
		t.Errorf("GetString = %q, want built-in default", got)
	}
	if got := m.GetString("unknown.key", "fallback"); got != "fallback" {
		t.Errorf("GetString = %q, want caller fallback", got)
	}
}

func TestSetStringThenGetReflectsImmediately(t *testing.T) {
	m := setup(t)

	if err := m.SetString(KeyFullIndexWorkers, "4"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	if got := m.GetInt(KeyFullIndexWorkers, -1); got != 4 {
		t.Errorf("GetInt = %d, want 4", got)
	}
}

func TestGetBoolParsesTruthyValues(t *testing.T) {
	m := setup(t)

	if err := m.SetString("feature.x", "true"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	if !m.GetBool("feature.x", false) {
		t.Error("GetBool = false, want true")
	}
	if m.GetBool("feature.unset", false) {
		t.Error("GetBool = true, want false default")
	}
}

func TestOnChangeFiresOnSetString(t *testing.T) {
	m := setup(t)

	ch := make(chan string, 1)
	m.OnChange(func(key string) { ch <- key })

	if err := m.SetString(KeyBatchThreshold, "75"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	select {
	case got := <-ch:
		if got != KeyBatchThreshold {
			t.Errorf("notified key = %q, want %q", got, KeyBatchThreshold)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnChange callback")
	}
}

func TestWatchStopsCleanly(t *testing.T) {
	m := setup(t)

	go m.Watch()
	m.Stop()
}
