// Package store implements the connection pool (C2): one writer, N
// readers, and a transient bulk mode, each with its own pragma profile,
// over a single modernc.org/sqlite-backed file. Grounded on
// internal/core/db.go's sql.Open(dsn+"?_pragma=...") idiom and
// jra3-linear-fuse/internal/db/store.go's Open/openDB shape.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/akelsh/seek/internal/apperr"
	"github.com/akelsh/seek/internal/model"
)

// Pool owns the write connection and a pool of read connections over one
// database file.
type Pool struct {
	path string

	mu     sync.RWMutex
	write  *sql.DB
	read   *sql.DB
	closed bool

	inBulk bool
}

// Open creates (or opens) the database at path, applying schema DDL and
// the write-connection pragma profile. path's parent directory is
// created if missing, mirroring jra3-linear-fuse's openDB.
func Open(path string) (*Pool, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	p := &Pool{path: path}
	if err := p.connect(); err != nil {
		return nil, err
	}
	if err := p.initSchema(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Pool) connect() error {
	write, err := sql.Open("sqlite", p.path+writeDSNSuffix)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStoreConnectFailed, err)
	}
	write.SetMaxOpenConns(1) // single serialized writer
	if err := write.Ping(); err != nil {
		write.Close()
		return fmt.Errorf("%w: %v", apperr.ErrStoreConnectFailed, err)
	}

	read, err := sql.Open("sqlite", p.path+readDSNSuffix)
	if err != nil {
		write.Close()
		return fmt.Errorf("%w: %v", apperr.ErrStoreConnectFailed, err)
	}
	if err := read.Ping(); err != nil {
		write.Close()
		read.Close()
		return fmt.Errorf("%w: %v", apperr.ErrStoreConnectFailed, err)
	}

	p.write = write
	p.read = read
	p.closed = false
	return nil
}

// Pragma profiles as DSN query parameters, in the teacher's _pragma= DSN
// idiom.
const (
	writeDSNSuffix = "?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=cache_size(-64000)" +
		"&_pragma=temp_store(MEMORY)" +
		"&_pragma=mmap_size(32212254720)" +
		"&_pragma=wal_autocheckpoint(10000)" +
		"&_pragma=busy_timeout(30000)"

	readDSNSuffix = "?_pragma=journal_mode(WAL)" +
		"&mode=ro" +
		"&_pragma=cache_size(-200000)" +
		"&_pragma=temp_store(MEMORY)" +
		"&_pragma=busy_timeout(30000)"

	bulkPragmas = "PRAGMA synchronous=OFF; PRAGMA cache_size=-256000; PRAGMA mmap_size=2147483648;"
)

func (p *Pool) initSchema() error {
	tx, err := p.write.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStoreConnectFailed, err)
	}
	defer tx.Rollback()

	for _, stmt := range model.Statements() {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%w: init schema: %v", apperr.ErrStoreQueryFailed, err)
		}
	}
	return tx.Commit()
}

// Read runs fn against a read-only connection.
func (p *Pool) Read(fn func(*sql.DB) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.read == nil {
		return apperr.ErrStoreUnavailable
	}
	return fn(p.read)
}

// Write runs fn against the single serialized write connection.
func (p *Pool) Write(fn func(*sql.DB) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.write == nil {
		return apperr.ErrStoreUnavailable
	}
	return fn(p.write)
}

// HealthCheck runs a scalar probe against the write connection.
func (p *Pool) HealthCheck() error {
	return p.Write(func(db *sql.DB) error {
		var one int
		return db.QueryRow("SELECT 1").Scan(&one)
	})
}

// Reconnect tears down and re-establishes both connections, e.g. after a
// StoreUnavailable error from a stale handle.
func (p *Pool) Reconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.write != nil {
		p.write.Close()
	}
	if p.read != nil {
		p.read.Close()
	}
	return p.connect()
}

// Close closes both connections.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	var firstErr error
	if p.write != nil {
		if err := p.write.Close(); err != nil {
			firstErr = err
		}
	}
	if p.read != nil {
		if err := p.read.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Path returns the database file path.
func (p *Pool) Path() string {
	return p.path
}
