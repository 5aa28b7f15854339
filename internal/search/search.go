// Package search implements the search service (C13): parses a query,
// plans it, executes against the store, and materializes ordered,
// limited results. Grounded on internal/core/db.go's Read-scoped query
// helpers, generalized from config lookups to a dynamic WHERE fragment.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akelsh/seek/internal/apperr"
	"github.com/akelsh/seek/internal/logx"
	"github.com/akelsh/seek/internal/model"
	"github.com/akelsh/seek/internal/query"
	"github.com/akelsh/seek/internal/store"
)

// DefaultLimit is applied when a caller does not specify one.
const DefaultLimit = 1000

// Result is the outcome of one Search call.
type Result struct {
	Entries        []model.Entry
	SearchTimeSecs float64
}

// Service executes searches against a store.Pool.
type Service struct {
	pool *store.Pool
	log  *logx.Logger
}

// New builds a Service over pool.
func New(pool *store.Pool) *Service {
	return &Service{pool: pool, log: logx.New("search")}
}

// Search runs the full execution contract: parse, plan, execute,
// materialize, order by LENGTH(name), name, limit. Returns an empty
// result (not an error) for EmptyQuery, and respects ctx cancellation
// between planning and row materialization.
func (s *Service) Search(ctx context.Context, q string, limit int) (Result, error) {
	start := time.Now()

	if limit <= 0 {
		limit = DefaultLimit
	}

	expr, err := query.Parse(q)
	if err != nil {
		if err == apperr.ErrQueryEmpty {
			return Result{SearchTimeSecs: time.Since(start).Seconds()}, nil
		}
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrSearchInvalid, err)
	}

	where, bindings, err := query.Plan(expr)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrSearchInvalid, err)
	}

	args := make([]interface{}, 0, len(bindings)+1)
	args = append(args, bindings...)
	args = append(args, limit)

	sqlText := fmt.Sprintf(`SELECT name, full_path, is_directory, file_extension, size, date_modified
		FROM file_entries WHERE %s ORDER BY LENGTH(name), name LIMIT ?`, where)

	var entries []model.Entry
	err = s.pool.Read(func(db *sql.DB) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rows, err := db.QueryContext(ctx, sqlText, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e model.Entry
			var ext sql.NullString
			var size sql.NullInt64
			if err := rows.Scan(&e.Name, &e.FullPath, &e.IsDirectory, &ext, &size, &e.DateModified); err != nil {
				s.log.Printf("search: skip malformed row: %v", err)
				continue
			}
			if ext.Valid {
				v := ext.String
				e.FileExtension = &v
			}
			if size.Valid {
				v := size.Int64
				e.Size = &v
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrSearchResultProcessing, err)
	}

	return Result{Entries: entries, SearchTimeSecs: time.Since(start).Seconds()}, nil
}
