package journal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zelldon/zdb-sub001/internal/journal"
	"github.com/Zelldon/zdb-sub001/internal/testutil"
)

func TestLoadMetaStore(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteMeta(t, dir, 42)

	m, err := journal.LoadMetaStore(dir)
	require.NoError(t, err)
	index, ok := m.LastFlushedIndex()
	assert.True(t, ok)
	assert.Equal(t, int64(42), index)
}

func TestLoadMetaStoreZeroIsAValue(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteMeta(t, dir, 0)

	m, err := journal.LoadMetaStore(dir)
	require.NoError(t, err)
	index, ok := m.LastFlushedIndex()
	assert.True(t, ok)
	assert.Equal(t, int64(0), index)
}

func TestLoadMetaStoreMissing(t *testing.T) {
	m, err := journal.LoadMetaStore(t.TempDir())
	require.NoError(t, err)
	_, ok := m.LastFlushedIndex()
	assert.False(t, ok)
}

func TestLoadMetaStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	b := journal.EncodeMeta(42)
	b[0] ^= 0xff
	require.NoError(t, os.WriteFile(filepath.Join(dir, journal.MetaFileName), b, 0o644))

	m, err := journal.LoadMetaStore(dir)
	require.NoError(t, err)
	_, ok := m.LastFlushedIndex()
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, journal.MetaFileName), []byte{1, 2}, 0o644))
	m, err = journal.LoadMetaStore(dir)
	require.NoError(t, err)
	_, ok = m.LastFlushedIndex()
	assert.False(t, ok)
}

func TestUnboundedMetaStore(t *testing.T) {
	_, ok := journal.UnboundedMetaStore.LastFlushedIndex()
	assert.True(t, ok)
}
