package store

import (
	"database/sql"
	"fmt"

	"github.com/akelsh/seek/internal/apperr"
	"github.com/akelsh/seek/internal/model"
)

// UpsertEntries batch-inserts entries through the given execer (either
// the write *sql.DB or a BulkSession), using INSERT OR REPLACE keyed on
// full_path.
func UpsertEntries(exec execer, entries []model.Entry) error {
	for _, e := range entries {
		if err := upsertOne(exec, e); err != nil {
			return err
		}
	}
	return nil
}

// execer abstracts over *sql.DB and *store.BulkSession so the same
// upsert/delete helpers serve both the indexer's bulk path and the
// monitor's batched-write path.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func upsertOne(exec execer, e model.Entry) error {
	var ext interface{}
	if e.FileExtension != nil {
		ext = *e.FileExtension
	}
	var size interface{}
	if e.Size != nil {
		size = *e.Size
	}

	_, err := exec.Exec(`INSERT INTO file_entries
		(name, full_path, is_directory, file_extension, size, date_modified, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(full_path) DO UPDATE SET
			name = excluded.name,
			is_directory = excluded.is_directory,
			file_extension = excluded.file_extension,
			size = excluded.size,
			date_modified = excluded.date_modified`,
		e.Name, e.FullPath, e.IsDirectory, ext, size, e.DateModified, e.DateAdded)
	return err
}

// DeleteEntries removes entries by full_path.
func DeleteEntries(exec execer, paths []string) error {
	for _, path := range paths {
		if _, err := exec.Exec(`DELETE FROM file_entries WHERE full_path = ?`, path); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch applies a batch of upserts via the Write connection. A
// failing row is logged by the caller and dropped; the rest of the
// batch proceeds rather than aborting the scan.
func (p *Pool) WriteBatch(entries []model.Entry) (inserted int, err error) {
	err = p.Write(func(db *sql.DB) error {
		for _, e := range entries {
			if upsertErr := upsertOne(dbExecer{db}, e); upsertErr != nil {
				continue // logged by the caller, batch continues
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return inserted, fmt.Errorf("%w: %v", apperr.ErrIndexBatchInsert, err)
	}
	return inserted, nil
}

// DeleteBatch applies a batch of deletes via the Write connection.
func (p *Pool) DeleteBatch(paths []string) error {
	return p.Write(func(db *sql.DB) error {
		return DeleteEntries(dbExecer{db}, paths)
	})
}

type dbExecer struct{ db *sql.DB }

func (d dbExecer) Exec(query string, args ...interface{}) (sql.Result, error) {
	return d.db.Exec(query, args...)
}
