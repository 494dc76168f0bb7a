package testutil

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

// StateEntry is a raw key/value pair for a state fixture.
type StateEntry struct {
	Key   []byte
	Value []byte
}

// WriteState creates a Pebble store in dir holding entries.
func WriteState(t testing.TB, dir string, entries ...StateEntry) string {
	t.Helper()
	db, err := pebble.Open(dir, &pebble.Options{})
	require.NoError(t, err)

	batch := db.NewBatch()
	for _, e := range entries {
		require.NoError(t, batch.Set(e.Key, e.Value, nil))
	}
	require.NoError(t, batch.Commit(pebble.Sync))
	require.NoError(t, batch.Close())
	require.NoError(t, db.Close())
	return dir
}

// MsgpackMap encodes a flat map as MessagePack. Keys are written in the order
// given by keys so the encoding is deterministic.
func MsgpackMap(t testing.TB, keys []string, values map[string]any) []byte {
	t.Helper()
	b := msgp.AppendMapHeader(nil, uint32(len(keys)))
	for _, k := range keys {
		b = msgp.AppendString(b, k)
		var err error
		b, err = msgp.AppendIntf(b, values[k])
		require.NoError(t, err)
	}
	return b
}
