package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/akelsh/seek/internal/model"
)

// Metadata reads the single indexing_metadata row.
func (p *Pool) Metadata() (model.IndexMetadata, error) {
	var m model.IndexMetadata
	err := p.Read(func(db *sql.DB) error {
		var isIndexed int
		var lastIndexed sql.NullFloat64
		var indexedPathsJSON sql.NullString
		var lastEventID sql.NullInt64

		row := db.QueryRow(`SELECT is_indexed, last_indexed_date, indexed_paths,
			total_files_indexed, indexing_version, last_event_id
			FROM indexing_metadata WHERE id = 1`)
		if err := row.Scan(&isIndexed, &lastIndexed, &indexedPathsJSON,
			&m.TotalFilesIndexed, &m.IndexingVersion, &lastEventID); err != nil {
			return err
		}

		m.IsIndexed = isIndexed != 0
		if lastIndexed.Valid {
			v := lastIndexed.Float64
			m.LastIndexedDate = &v
		}
		if indexedPathsJSON.Valid && indexedPathsJSON.String != "" {
			json.Unmarshal([]byte(indexedPathsJSON.String), &m.IndexedPaths)
		}
		if lastEventID.Valid {
			v := lastEventID.Int64
			m.LastEventID = &v
		}
		return nil
	})
	return m, err
}

// MarkIndexed records a successful full indexing run. now is the
// completion timestamp.
func (p *Pool) MarkIndexed(roots []string, totalFiles int, now float64) error {
	pathsJSON, err := json.Marshal(roots)
	if err != nil {
		return fmt.Errorf("marshal indexed paths: %w", err)
	}
	return p.Write(func(db *sql.DB) error {
		_, err := db.Exec(`UPDATE indexing_metadata SET
			is_indexed = 1, last_indexed_date = ?, indexed_paths = ?, total_files_indexed = ?
			WHERE id = 1`, now, string(pathsJSON), totalFiles)
		return err
	})
}

// ResetForFullReindex clears is_indexed and last_event_id (Open Question
// 1: cleared only here, on a successful recreate, never eagerly).
func (p *Pool) ResetForFullReindex() error {
	return p.Write(func(db *sql.DB) error {
		_, err := db.Exec(`UPDATE indexing_metadata SET
			is_indexed = 0, last_indexed_date = NULL, indexed_paths = NULL,
			total_files_indexed = 0, last_event_id = NULL WHERE id = 1`)
		return err
	})
}

// Truncate empties file_entries (and its FTS shadow via triggers).
func (p *Pool) Truncate() error {
	return p.Write(func(db *sql.DB) error {
		_, err := db.Exec(`DELETE FROM file_entries`)
		return err
	})
}

// SetLastEventID checkpoints the monitor's cursor. Callers pass the max
// id seen in a batch; enforcing that a write never resurrects a value
// smaller than what is already stored is left to the caller (internal/
// watch only ever advances its own counter).
func (p *Pool) SetLastEventID(id int64) error {
	return p.Write(func(db *sql.DB) error {
		_, err := db.Exec(`UPDATE indexing_metadata SET last_event_id = ? WHERE id = 1`, id)
		return err
	})
}

// EntryCount returns the number of rows in file_entries.
func (p *Pool) EntryCount() (int, error) {
	var n int
	err := p.Read(func(db *sql.DB) error {
		return db.QueryRow(`SELECT COUNT(*) FROM file_entries`).Scan(&n)
	})
	return n, err
}

// SizeBytes returns page_count * page_size of the main database; pages
// still held only in the WAL file are not counted.
func (p *Pool) SizeBytes() (int64, error) {
	var pageCount, pageSize int64
	err := p.Read(func(db *sql.DB) error {
		if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
			return err
		}
		return db.QueryRow("PRAGMA page_size").Scan(&pageSize)
	})
	return pageCount * pageSize, err
}
