package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
)

// MetaFileName is the metadata file the broker keeps next to the segments.
const MetaFileName = "journal.meta"

const metaLength = 8 + 4

// MetaStore supplies the last index the broker has flushed to disk.
// ok is false when no index is known, which is distinct from a flushed index of 0.
type MetaStore interface {
	LastFlushedIndex() (index int64, ok bool)
}

// StaticMetaStore is a MetaStore with a fixed answer.
type StaticMetaStore struct {
	Index int64
	Known bool
}

// LastFlushedIndex implements MetaStore.
func (m StaticMetaStore) LastFlushedIndex() (int64, bool) {
	return m.Index, m.Known
}

// UnboundedMetaStore reports every index as flushed. Use it to read the whole journal.
var UnboundedMetaStore MetaStore = StaticMetaStore{Index: math.MaxInt64, Known: true}

// LoadMetaStore reads the metadata file in dir. A missing, short or corrupt file
// yields a store without a known index; only I/O failures are returned as errors.
func LoadMetaStore(dir string) (StaticMetaStore, error) {
	b, err := os.ReadFile(filepath.Join(dir, MetaFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return StaticMetaStore{}, nil
	}
	if err != nil {
		return StaticMetaStore{}, fmt.Errorf("failed to read journal metadata: %w", err)
	}
	index, ok := DecodeMeta(b)
	return StaticMetaStore{Index: index, Known: ok}, nil
}

// EncodeMeta returns the on-disk form of a last flushed index.
func EncodeMeta(lastFlushedIndex int64) []byte {
	b := binary.LittleEndian.AppendUint64(make([]byte, 0, metaLength), uint64(lastFlushedIndex))
	return binary.LittleEndian.AppendUint32(b, Checksum(b))
}

// DecodeMeta parses metadata file contents.
func DecodeMeta(b []byte) (int64, bool) {
	if len(b) < metaLength {
		return 0, false
	}
	if binary.LittleEndian.Uint32(b[8:]) != Checksum(b[:8]) {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(b)), true
}
