package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zelldon/zdb-sub001/internal/journal"
	"github.com/Zelldon/zdb-sub001/internal/raftlog"
)

// AppendEvents adds an application entry holding events. The record's asqn is
// the lowest event position.
func (b *JournalBuilder) AppendEvents(term int64, events ...raftlog.LoggedEvent) int64 {
	entry := raftlog.NewApplicationEntry(events...)
	return b.Append(entry.LowestPosition, raftlog.Encode(term, entry))
}

// AppendControl adds an entry of the given control kind.
func (b *JournalBuilder) AppendControl(term int64, kind raftlog.Kind) int64 {
	return b.Append(journal.AsqnIgnore, raftlog.Encode(term, raftlog.ControlEntry{EntryKind: kind}))
}

// OpenLog opens the journal in dir and returns a reader over its entries. Both
// are closed when the test ends.
func OpenLog(t testing.TB, dir string, opts ...raftlog.ReaderOption) *raftlog.Reader {
	t.Helper()
	j, err := journal.Open(dir, journal.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	jr, err := j.OpenReader()
	require.NoError(t, err)
	r := raftlog.NewReader(jr, opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}
