// Package app wires the connection pool, config manager, indexer,
// change monitor and search service into a single bundle. Grounded on
// jra3-linear-fuse's db.DefaultDBPath()-rooted Open() constructor,
// generalized from one cache.db to seek's full persistent-state layout.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/akelsh/seek/internal/config"
	"github.com/akelsh/seek/internal/exclude"
	"github.com/akelsh/seek/internal/index"
	"github.com/akelsh/seek/internal/logx"
	"github.com/akelsh/seek/internal/search"
	"github.com/akelsh/seek/internal/store"
	"github.com/akelsh/seek/internal/watch"
)

// appDirName names the app-support subdirectory under os.UserConfigDir,
// matching DefaultDBPath's "linearfs" sibling convention.
const appDirName = "Seek"

// DefaultDBPath mirrors jra3-linear-fuse's DefaultDBPath, rooted under
// appDirName instead of "linearfs".
func DefaultDBPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}
	return filepath.Join(configDir, appDirName, "index.db")
}

// App is the top-level bundle exposed to internal/app's callers (cmd/seek).
type App struct {
	pool    *store.Pool
	cfg     *config.Manager
	policy  *exclude.Policy
	indexer *index.Indexer
	monitor *watch.Monitor
	search  *search.Service
	log     *logx.Logger
}

// Open creates (or reopens) the store at path and wires every component
// over it in dependency order: store, config, exclusion policy,
// indexer, monitor, search. Pass "" to use DefaultDBPath().
func Open(path string) (*App, error) {
	if path == "" {
		path = DefaultDBPath()
	}

	pool, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	cfg, err := config.New(pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: open config: %w", err)
	}
	go cfg.Watch()

	policy := exclude.NewDefault()

	ix := index.New(pool, policy)
	ix.WFull = cfg.GetInt(config.KeyFullIndexWorkers, index.DefaultWFull)
	ix.Batch = cfg.GetInt(config.KeyBatchSize, index.DefaultBatch)

	mon := watch.New(pool, policy)

	a := &App{
		pool:    pool,
		cfg:     cfg,
		policy:  policy,
		indexer: ix,
		monitor: mon,
		search:  search.New(pool),
		log:     logx.New("app"),
	}

	cfg.OnChange(func(key string) {
		a.indexer.WFull = cfg.GetInt(config.KeyFullIndexWorkers, index.DefaultWFull)
		a.indexer.Batch = cfg.GetInt(config.KeyBatchSize, index.DefaultBatch)
	})

	return a, nil
}

// Close stops the config watcher and any active monitor, then closes
// the store.
func (a *App) Close() error {
	if a.monitor.State() == watch.Active || a.monitor.State() == watch.Starting {
		_ = a.monitor.StopMonitoring()
	}
	a.cfg.Stop()
	return a.pool.Close()
}

// Search runs q against the index, defaulting limit to search.DefaultLimit
// when <= 0.
func (a *App) Search(ctx context.Context, q string, limit int) (search.Result, error) {
	return a.search.Search(ctx, q, limit)
}

// IsIndexed reports whether indexing_metadata.is_indexed is set.
func (a *App) IsIndexed() (bool, error) {
	meta, err := a.pool.Metadata()
	if err != nil {
		return false, err
	}
	return meta.IsIndexed, nil
}

// IndexingStatus returns the externally relevant fields of the metadata
// row.
func (a *App) IndexingStatus() (IndexingStatus, error) {
	meta, err := a.pool.Metadata()
	if err != nil {
		return IndexingStatus{}, err
	}
	return IndexingStatus{
		IsIndexed:         meta.IsIndexed,
		LastIndexedDate:   meta.LastIndexedDate,
		IndexedPaths:      meta.IndexedPaths,
		TotalFilesIndexed: meta.TotalFilesIndexed,
	}, nil
}

// IndexingStatus mirrors model.IndexMetadata's externally relevant fields.
type IndexingStatus struct {
	IsIndexed         bool
	LastIndexedDate   *float64
	IndexedPaths      []string
	TotalFilesIndexed int
}

// PerformSmartIndexing runs a smart (or, if invalid/missing, full) index
// over roots, reporting progress via fn. Stamps a run id in log lines the
// way the teacher stamps session/message ids with uuid, for correlating
// a single run's progress messages.
func (a *App) PerformSmartIndexing(ctx context.Context, roots []string, fn index.ProgressFunc) (index.Snapshot, error) {
	runID := uuid.NewString()
	a.log.Printf("run %s: smart indexing %v", runID, roots)
	valid := func(id int64, _ []string) bool { return a.monitor.IsEventIDValid(id) }
	return a.indexer.PerformSmartIndexing(ctx, roots, valid, fn)
}

// PerformFullIndexing forces a full reindex of roots.
func (a *App) PerformFullIndexing(ctx context.Context, roots []string, fn index.ProgressFunc) (index.Snapshot, error) {
	runID := uuid.NewString()
	a.log.Printf("run %s: full indexing %v", runID, roots)
	return a.indexer.PerformFullIndexing(ctx, roots, fn)
}

// StartMonitoring starts the live change monitor over roots.
func (a *App) StartMonitoring(roots []string) error {
	return a.monitor.StartMonitoringWithRecovery(roots)
}

// StopMonitoring stops the live change monitor.
func (a *App) StopMonitoring() error {
	return a.monitor.StopMonitoring()
}

// MonitoringStatus returns the monitor's current lifecycle state.
func (a *App) MonitoringStatus() watch.State {
	return a.monitor.State()
}

// FileCount returns the number of indexed rows.
func (a *App) FileCount() (int, error) {
	return a.pool.EntryCount()
}

// SearchStats reports the index database's size in bytes, for status
// displays.
func (a *App) SearchStats() (int64, error) {
	return a.pool.SizeBytes()
}
