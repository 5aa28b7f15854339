// Package index implements the indexer (C7): smart/full indexing, bulk
// mode, batched writes, and run statistics. Grounded on other_examples
// AbdelazizMoustafa10m-Harvx's errgroup.WithContext bounded-worker
// pattern for the per-directory fan-out, and jra3-linear-fuse's
// sync/worker.go for the Start/Stop lifecycle shape reused by
// internal/watch. Humanized progress messages use dustin/go-humanize,
// matching the rest of the domain stack's adoption of that library.
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/akelsh/seek/internal/apperr"
	"github.com/akelsh/seek/internal/exclude"
	"github.com/akelsh/seek/internal/logx"
	"github.com/akelsh/seek/internal/model"
	"github.com/akelsh/seek/internal/queue"
	"github.com/akelsh/seek/internal/scan"
	"github.com/akelsh/seek/internal/store"
)

// Concurrency tunables.
const (
	DefaultWFull    = 8
	DefaultWChanges = 6
	DefaultWRebuild = 4
	DefaultBatch    = 50000
)

// ProgressFunc reports indexing progress. message is optional context,
// e.g. a humanized rate string.
type ProgressFunc func(fraction float64, processed, total int, message string)

func noopProgress(float64, int, int, string) {}

// Indexer drives full and smart indexing runs against a store.Pool.
type Indexer struct {
	pool    *store.Pool
	policy  *exclude.Policy
	log     *logx.Logger
	WFull   int
	Batch   int
	nowFunc func() float64
}

// New builds an Indexer with the default concurrency tunables.
func New(pool *store.Pool, policy *exclude.Policy) *Indexer {
	return &Indexer{
		pool:    pool,
		policy:  policy,
		log:     logx.New("index"),
		WFull:   DefaultWFull,
		Batch:   DefaultBatch,
		nowFunc: func() float64 { return float64(time.Now().Unix()) },
	}
}

// ValidEventIDFunc decides whether a stored last_event_id is still valid
// for roots. Owned by internal/watch and supplied here to keep the two
// packages decoupled.
type ValidEventIDFunc func(lastEventID int64, roots []string) bool

// PerformSmartIndexing decides whether a reindex is needed: skip
// entirely if the store is already indexed with a still-valid event-id
// cursor, otherwise perform a full index.
func (ix *Indexer) PerformSmartIndexing(ctx context.Context, roots []string, valid ValidEventIDFunc, progress ProgressFunc) (Snapshot, error) {
	meta, err := ix.pool.Metadata()
	if err != nil {
		return Snapshot{}, fmt.Errorf("smart indexing: %w", err)
	}

	if meta.IsIndexed && meta.LastEventID != nil && valid != nil && valid(*meta.LastEventID, roots) {
		ix.log.Printf("smart indexing: store already indexed and event cursor valid, skipping")
		return Snapshot{}, nil
	}

	return ix.PerformFullIndexing(ctx, roots, progress)
}

// PerformFullIndexing runs the full indexing sequence: truncate any
// existing data, scan and enqueue under bulk mode, then mark the store
// indexed.
func (ix *Indexer) PerformFullIndexing(ctx context.Context, roots []string, progress ProgressFunc) (Snapshot, error) {
	if progress == nil {
		progress = noopProgress
	}
	stats := NewStatistics()
	progress(0.0, 0, 0, "starting full index")

	meta, err := ix.pool.Metadata()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read metadata: %v", apperr.ErrIndexingFailed, err)
	}
	count, err := ix.pool.EntryCount()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read entry count: %v", apperr.ErrIndexingFailed, err)
	}
	if count > 0 || meta.IsIndexed {
		if err := ix.pool.Truncate(); err != nil {
			return Snapshot{}, fmt.Errorf("%w: truncate: %v", apperr.ErrIndexingFailed, err)
		}
		if err := ix.pool.ResetForFullReindex(); err != nil {
			return Snapshot{}, fmt.Errorf("%w: reset metadata: %v", apperr.ErrIndexingFailed, err)
		}
	}

	bulk, err := ix.pool.BeginBulk()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", apperr.ErrIndexingFailed, err)
	}

	factory := scan.NewFactory(ix.policy, ix.nowFunc())
	scanner := scan.NewScanner(factory)
	q := queue.New()

	existingRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			ix.log.Printf("full indexing: skip missing root %s: %v", root, err)
			continue
		}
		existingRoots = append(existingRoots, root)

		rootEntries, err := scanner.ScanRootLevelFiles(root, scan.Options{})
		if err != nil {
			ix.log.Printf("full indexing: root-level scan failed for %s: %v", root, err)
		}
		if err := writeChunks(bulk, rootEntries, ix.Batch); err != nil {
			bulk.Rollback()
			return Snapshot{}, fmt.Errorf("%w: %v", apperr.ErrIndexingFailed, err)
		}
		stats.TotalProcessed.Add(int64(len(rootEntries)))

		topDirs, err := scanner.TopLevelDirectories(root, scan.Options{})
		if err != nil {
			ix.log.Printf("full indexing: top-level directory scan failed for %s: %v", root, err)
		}
		for _, d := range topDirs {
			q.Enqueue(d)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < ix.WFull; i++ {
		q.AddWorker()
		g.Go(func() error {
			defer q.RemoveWorker()
			return ix.fullIndexWorker(gctx, bulk, factory, q, stats)
		})
	}
	if err := g.Wait(); err != nil {
		bulk.Rollback()
		return Snapshot{}, fmt.Errorf("%w: %v", apperr.ErrIndexingFailed, err)
	}

	if err := bulk.Commit(); err != nil {
		return Snapshot{}, err
	}

	total := int(stats.TotalProcessed.Load())
	if err := ix.pool.MarkIndexed(existingRoots, total, ix.nowFunc()); err != nil {
		return Snapshot{}, fmt.Errorf("%w: mark indexed: %v", apperr.ErrIndexingFailed, err)
	}

	snap := stats.Snapshot()
	progress(1.0, total, total, fmt.Sprintf("indexed %s at %s/s",
		humanize.Comma(int64(total)), humanize.Comma(int64(snap.RatePerSecond))))
	return snap, nil
}

// fullIndexWorker runs one worker's per-directory processing loop:
// dequeue, process, insert-batch, repeat until the coordinator signals
// done.
func (ix *Indexer) fullIndexWorker(ctx context.Context, bulk *store.BulkSession, factory *scan.Factory, q *queue.Coordinator, stats *Statistics) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		dir, ok := q.DequeueForWorker()
		if !ok {
			return nil
		}

		entries, subdirs := ix.processDirectory(dir, factory, stats)
		if err := writeChunks(bulk, entries, ix.Batch); err != nil {
			ix.log.Printf("batch insert failed for %s: %v", dir, err) // logged, scan continues
		}
		for _, sub := range subdirs {
			q.Enqueue(sub)
		}

		q.WorkerFinishedItem()
	}
}

// processDirectory implements one per-directory processing step: emit
// an entry for the directory itself, then classify each child as
// symlink/excluded/bundle/subdirectory/file.
func (ix *Indexer) processDirectory(dir string, factory *scan.Factory, stats *Statistics) (entries []model.Entry, subdirs []string) {
	info, err := os.Lstat(dir)
	if err != nil {
		ix.log.Printf("process directory: skip %s: %v", dir, err) // unreadable directory treated as empty
		return nil, nil
	}
	entries = append(entries, factory.EntryFor(dir, info))

	children, err := os.ReadDir(dir)
	if err != nil {
		ix.log.Printf("process directory: treat %s as empty: %v", dir, err)
		return entries, nil
	}

	for _, child := range children {
		name := child.Name()
		full := filepath.Join(dir, name)

		if child.Type()&os.ModeSymlink != 0 {
			stats.SymlinkCount.Add(1)
			continue
		}
		if factory.Exclude(full, name, child.IsDir()) {
			stats.ExcludedPathCount.Add(1)
			continue
		}

		if child.IsDir() && scan.IsBundle(name) {
			childInfo, err := child.Info()
			if err != nil {
				ix.log.Printf("process directory: skip bundle %s: %v", full, err)
				continue
			}
			entries = append(entries, factory.EntryFor(full, childInfo))
			continue
		}
		if child.IsDir() {
			subdirs = append(subdirs, full)
			continue
		}

		childInfo, err := child.Info()
		if err != nil {
			ix.log.Printf("process directory: skip %s: %v", full, err)
			continue
		}
		entries = append(entries, factory.EntryFor(full, childInfo))
	}

	stats.TotalProcessed.Add(int64(len(entries)))
	return entries, subdirs
}

func writeChunks(bulk *store.BulkSession, entries []model.Entry, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatch
	}
	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := store.UpsertEntries(bulk, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}
