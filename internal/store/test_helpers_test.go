package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zelldon/zdb-sub001/internal/inspect"
	"github.com/Zelldon/zdb-sub001/internal/raftlog"
)

// createTestStore creates a new store in a temporary directory with a fixed clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates an application record with one event per position.
func createTestRecord(index int64, positions ...int64) inspect.Record {
	rec := inspect.Record{
		Index: index,
		Term:  1,
		Kind:  raftlog.KindApplication.String(),
		Asqn:  positions[0],
		Size:  64,
	}
	rec.LowestPosition = positions[0]
	rec.HighestPosition = positions[len(positions)-1]
	for _, p := range positions {
		rec.Entries = append(rec.Entries, inspect.Event{
			Position:       p,
			SourcePosition: -1,
			Key:            p * 10,
			RecordType:     raftlog.RecordTypeEvent,
			ValueType:      raftlog.ValueTypeJob,
			Value:          json.RawMessage(`{"type":"payment"}`),
		})
	}
	return rec
}
