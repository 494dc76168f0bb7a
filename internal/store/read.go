package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ExportSummary describes a finished export.
type ExportSummary struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"createdAt"`
	EntryCount int64     `json:"entryCount"`
}

// RowCounts holds the number of rows an export wrote per table.
type RowCounts struct {
	LogEntries   int64 `json:"logEntries"`
	LogEvents    int64 `json:"logEvents"`
	LogErrors    int64 `json:"logErrors"`
	StateEntries int64 `json:"stateEntries"`
}

// ListExports returns all exports ordered by creation time, then id.
//
// Returns an empty slice (not nil) if the database holds no exports.
func (s *Store) ListExports(ctx context.Context) ([]ExportSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, source, created_at, entry_count
		FROM exports
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	exports := []ExportSummary{}
	for rows.Next() {
		var (
			e       ExportSummary
			kind    string
			created string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Source, &created, &e.EntryCount); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		e.Kind = Kind(kind)
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("export %s: invalid created_at %q: %w", e.ID, created, err)
		}
		exports = append(exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return exports, nil
}

// CountRows counts the rows stored for exportID.
func (s *Store) CountRows(ctx context.Context, exportID string) (RowCounts, error) {
	var c RowCounts
	tables := []struct {
		name string
		dest *int64
	}{
		{"log_entries", &c.LogEntries},
		{"log_events", &c.LogEvents},
		{"log_errors", &c.LogErrors},
		{"state_entries", &c.StateEntries},
	}
	for _, t := range tables {
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+t.name+" WHERE export_id = ?", exportID).Scan(t.dest)
		if err != nil && err != sql.ErrNoRows {
			return RowCounts{}, fmt.Errorf("count %s: %w", t.name, err)
		}
	}
	return c, nil
}
