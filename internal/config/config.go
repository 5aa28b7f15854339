// Package config implements the hot-reloadable tunables store holding
// the indexer's and change monitor's knobs (worker counts, batch size,
// debounce window). internal/app applies only the indexer keys; the
// monitor keys are stored and readable here, but the change monitor
// does not read them and keeps its own built-in defaults. Grounded on internal/core/db.go's Engine.watchConfig poll
// loop and GetConfig/SetConfig/OnChange methods, generalized from a
// single chat-engine config table to seek's own key set.
package config

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/akelsh/seek/internal/logx"
	"github.com/akelsh/seek/internal/store"
)

// Keys for the tunables seek's components read at startup and on
// reload. Defaults mirror the constants already hardcoded in
// internal/index and internal/watch.
const (
	KeyFullIndexWorkers = "index.full_workers"
	KeyBatchSize        = "index.batch_size"
	KeyBatchThreshold   = "watch.batch_threshold"
	KeyFlushDelayMillis = "watch.flush_delay_ms"
)

var defaults = map[string]string{
	KeyFullIndexWorkers: "8",
	KeyBatchSize:        "50000",
	KeyBatchThreshold:   "50",
	KeyFlushDelayMillis: "2000",
}

// pollInterval matches the teacher's watchConfig ticker.
const pollInterval = 1 * time.Second

// Manager is an in-memory cache over the config table, kept in sync by
// a background poll loop that compares the trigger-maintained MAX(version)
// against the last value it has seen.
type Manager struct {
	pool *store.Pool
	log  *logx.Logger

	mu      sync.RWMutex
	cache   map[string]string
	version int64

	watchersMu sync.RWMutex
	watchers   []func(key string)

	stopCh chan struct{}
	doneCh chan struct{}
}

// New builds a Manager and loads the current table contents into cache.
// Unset keys fall back to defaults until explicitly written.
func New(pool *store.Pool) (*Manager, error) {
	m := &Manager{
		pool:   pool,
		log:    logx.New("config"),
		cache:  make(map[string]string),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) reload() error {
	return m.pool.Write(func(db *sql.DB) error {
		rows, err := db.Query("SELECT key, value FROM config")
		if err != nil {
			return fmt.Errorf("config: load: %w", err)
		}
		defer rows.Close()

		fresh := make(map[string]string)
		for rows.Next() {
			var k, v string
			if err := rows.Scan(&k, &v); err != nil {
				return err
			}
			fresh[k] = v
		}
		if err := rows.Err(); err != nil {
			return err
		}

		var maxVersion int64
		if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM config").Scan(&maxVersion); err != nil {
			return err
		}

		m.mu.Lock()
		m.cache = fresh
		m.version = maxVersion
		m.mu.Unlock()
		return nil
	})
}

// GetString returns key's value, falling back to a built-in default and
// then to def when neither is set.
func (m *Manager) GetString(key, def string) string {
	m.mu.RLock()
	v, ok := m.cache[key]
	m.mu.RUnlock()
	if ok {
		return v
	}
	if d, ok := defaults[key]; ok {
		return d
	}
	return def
}

// GetInt parses key's value as an int, falling back to def on a missing
// or malformed value.
func (m *Manager) GetInt(key string, def int) int {
	v := m.GetString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetBool treats "true" or "1" as true, anything else as false.
func (m *Manager) GetBool(key string, def bool) bool {
	v := m.GetString(key, "")
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}

// SetString upserts key, bumping version via the config_version_bump
// trigger so Watch's poll loop picks up the change.
func (m *Manager) SetString(key, value string) error {
	err := m.pool.Write(func(db *sql.DB) error {
		_, err := db.Exec(`
			INSERT INTO config (key, value, version)
			VALUES (?, ?, (SELECT COALESCE(MAX(version), 0) + 1 FROM config))
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("config: set %s: %w", key, err)
	}

	m.mu.Lock()
	m.cache[key] = value
	m.mu.Unlock()

	m.notifyWatchers(key)
	return nil
}

// OnChange registers fn to be called after SetString, with the key that
// was set, and whenever Watch's poll loop detects a version bump, with an
// empty key (the poll loop reloads the whole table and does not know
// which key changed). fn runs in its own goroutine, matching the
// teacher's notifyWatchers fire-and-forget style.
func (m *Manager) OnChange(fn func(key string)) {
	m.watchersMu.Lock()
	defer m.watchersMu.Unlock()
	m.watchers = append(m.watchers, fn)
}

func (m *Manager) notifyWatchers(key string) {
	m.watchersMu.RLock()
	defer m.watchersMu.RUnlock()
	for _, fn := range m.watchers {
		go fn(key)
	}
}

// Watch runs the poll loop until Stop is called. Callers start it in its
// own goroutine, e.g. go manager.Watch().
func (m *Manager) Watch() {
	defer close(m.doneCh)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			var maxVersion int64
			err := m.pool.Write(func(db *sql.DB) error {
				return db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM config").Scan(&maxVersion)
			})
			if err != nil {
				m.log.Printf("poll: %v", err)
				continue
			}

			m.mu.RLock()
			seen := m.version
			m.mu.RUnlock()

			if maxVersion > seen {
				if err := m.reload(); err != nil {
					m.log.Printf("reload: %v", err)
					continue
				}
				m.notifyWatchers("")
			}
		}
	}
}

// Stop ends the poll loop and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stopCh)
	<-m.doneCh
}
