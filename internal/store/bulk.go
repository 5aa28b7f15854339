package store

import (
	"database/sql"
	"fmt"

	"github.com/akelsh/seek/internal/apperr"
)

// BulkSession wraps the single transaction used during full indexing.
// Entered/exited only by the indexer (C7); Commit restores write-mode
// pragmas and runs vacuum+analyze.
type BulkSession struct {
	pool *Pool
	tx   *sql.Tx
}

// BeginBulk enters bulk mode: applies the bulk pragma profile and opens
// the single transaction all full-indexing writes flow through.
func (p *Pool) BeginBulk() (*BulkSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.write == nil {
		return nil, apperr.ErrStoreUnavailable
	}
	if p.inBulk {
		return nil, fmt.Errorf("store: bulk session already active")
	}

	if _, err := p.write.Exec(bulkPragmas); err != nil {
		return nil, fmt.Errorf("%w: enter bulk mode: %v", apperr.ErrIndexingFailed, err)
	}

	tx, err := p.write.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: begin bulk transaction: %v", apperr.ErrIndexingFailed, err)
	}

	p.inBulk = true
	return &BulkSession{pool: p, tx: tx}, nil
}

// Exec runs a write inside the bulk transaction.
func (b *BulkSession) Exec(query string, args ...interface{}) (sql.Result, error) {
	return b.tx.Exec(query, args...)
}

// Commit commits the bulk transaction, restores write-mode pragmas, and
// runs vacuum+analyze.
func (b *BulkSession) Commit() error {
	if err := b.tx.Commit(); err != nil {
		b.pool.mu.Lock()
		b.pool.inBulk = false
		b.pool.mu.Unlock()
		return fmt.Errorf("%w: commit bulk transaction: %v", apperr.ErrIndexingFailed, err)
	}

	b.pool.mu.Lock()
	defer func() {
		b.pool.inBulk = false
		b.pool.mu.Unlock()
	}()

	restorePragmas := "PRAGMA synchronous=NORMAL; PRAGMA cache_size=-64000; PRAGMA mmap_size=32212254720;"
	if _, err := b.pool.write.Exec(restorePragmas); err != nil {
		return fmt.Errorf("%w: restore write pragmas: %v", apperr.ErrIndexingFailed, err)
	}
	if _, err := b.pool.write.Exec("VACUUM"); err != nil {
		return fmt.Errorf("%w: vacuum: %v", apperr.ErrIndexingFailed, err)
	}
	if _, err := b.pool.write.Exec("ANALYZE"); err != nil {
		return fmt.Errorf("%w: analyze: %v", apperr.ErrIndexingFailed, err)
	}
	return nil
}

// Rollback aborts the bulk transaction without touching pragmas further
// than releasing the bulk flag; the caller is expected to mark the store
// not-indexed.
func (b *BulkSession) Rollback() error {
	err := b.tx.Rollback()
	b.pool.mu.Lock()
	b.pool.inBulk = false
	b.pool.mu.Unlock()
	return err
}
