package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Zelldon/zdb-sub001/internal/inspect"
	"github.com/Zelldon/zdb-sub001/internal/raftlog"
	"github.com/Zelldon/zdb-sub001/internal/state"
)

// Kind names what an export holds.
type Kind string

const (
	KindLog   Kind = "log"
	KindState Kind = "state"
)

// ErrExportDone is returned when writing to a finished or aborted export.
var ErrExportDone = errors.New("export already finished")

// Export is an open export. All rows go into one transaction which Finish
// commits and Abort rolls back.
type Export struct {
	tx    *sql.Tx
	id    string
	kind  Kind
	now   func() time.Time
	count int64
	done  bool
}

// BeginExport starts an export of source, the inspected directory.
func (s *Store) BeginExport(ctx context.Context, kind Kind, source string) (*Export, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("begin export: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin export: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO exports (id, kind, source, created_at)
		VALUES (?, ?, ?, ?)
	`, id.String(), string(kind), source, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("begin export: %w", err)
	}
	return &Export{tx: tx, id: id.String(), kind: kind, now: s.now}, nil
}

// ID returns the export id, a version 7 UUID.
func (e *Export) ID() string {
	return e.id
}

// Count returns the number of entries written so far.
func (e *Export) Count() int64 {
	return e.count
}

// WriteLogEntry stores a log record and its events.
// Uses ON CONFLICT DO NOTHING so a repeated index is ignored along with its events.
func (e *Export) WriteLogEntry(ctx context.Context, rec inspect.Record) error {
	if e.done {
		return ErrExportDone
	}
	var lowest, highest sql.NullInt64
	if rec.Kind == raftlog.KindApplication.String() {
		lowest = sql.NullInt64{Int64: rec.LowestPosition, Valid: true}
		highest = sql.NullInt64{Int64: rec.HighestPosition, Valid: true}
	}
	res, err := e.tx.ExecContext(ctx, `
		INSERT INTO log_entries
		(export_id, idx, term, asqn, kind, lowest_position, highest_position, size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, e.id, rec.Index, rec.Term, rec.Asqn, rec.Kind, lowest, highest, rec.Size)
	if err != nil {
		return fmt.Errorf("write log entry %d: %w", rec.Index, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	for _, ev := range rec.Entries {
		_, err := e.tx.ExecContext(ctx, `
			INSERT INTO log_events
			(export_id, idx, position, source_position, timestamp_ms, record_key,
			 record_type, value_type, intent, value_json, value_error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			e.id,
			rec.Index,
			ev.Position,
			ev.SourcePosition,
			ev.Timestamp,
			ev.Key,
			ev.RecordType.String(),
			ev.ValueType.String(),
			int(ev.Intent),
			string(ev.Value),
			nullString(ev.ValueError),
		)
		if err != nil {
			return fmt.Errorf("write log event %d: %w", ev.Position, err)
		}
	}
	e.count++
	return nil
}

// WriteLogError records an entry that could not be decoded.
func (e *Export) WriteLogError(ctx context.Context, failed inspect.EntryError) error {
	if e.done {
		return ErrExportDone
	}
	_, err := e.tx.ExecContext(ctx, `
		INSERT INTO log_errors (export_id, idx, error)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, e.id, failed.Index, failed.Error)
	if err != nil {
		return fmt.Errorf("write log error %d: %w", failed.Index, err)
	}
	return nil
}

// WriteStateEntry stores one state entry with its rendered value.
func (e *Export) WriteStateEntry(ctx context.Context, entry state.Entry, row state.Row) error {
	if e.done {
		return ErrExportDone
	}
	res, err := e.tx.ExecContext(ctx, `
		INSERT INTO state_entries
		(export_id, category, key_hex, formatted_key, value_json, value_error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		e.id,
		row.Category,
		fmt.Sprintf("%x", entry.Key),
		row.Key,
		string(row.Value),
		nullString(row.Error),
	)
	if err != nil {
		return fmt.Errorf("write state entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		e.count++
	}
	return nil
}

// Finish records the entry count and commits the export.
func (e *Export) Finish(ctx context.Context) error {
	if e.done {
		return ErrExportDone
	}
	e.done = true
	_, err := e.tx.ExecContext(ctx, `
		UPDATE exports SET entry_count = ?, finished_at = ? WHERE id = ?
	`, e.count, e.now().UTC().Format(time.RFC3339Nano), e.id)
	if err != nil {
		_ = e.tx.Rollback()
		return fmt.Errorf("finish export: %w", err)
	}
	if err := e.tx.Commit(); err != nil {
		return fmt.Errorf("finish export: %w", err)
	}
	return nil
}

// Abort discards everything written to the export. It is a no-op after Finish.
func (e *Export) Abort() error {
	if e.done {
		return nil
	}
	e.done = true
	return e.tx.Rollback()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
