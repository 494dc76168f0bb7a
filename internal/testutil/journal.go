package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zelldon/zdb-sub001/internal/journal"
)

// DefaultJournalName is the segment prefix used by journal fixtures.
const DefaultJournalName = "raft-partition-partition-1"

// JournalBuilder writes journal segment files.
//
// Records are appended to the current segment; Roll starts a new one. Nothing
// touches the disk until Write is called.
type JournalBuilder struct {
	t        testing.TB
	dir      string
	name     string
	next     int64
	segments []*fixtureSegment
}

type fixtureSegment struct {
	descriptor journal.Descriptor
	body       []byte
}

// NewJournal starts a journal whose first record gets firstIndex.
func NewJournal(t testing.TB, dir string, firstIndex int64) *JournalBuilder {
	t.Helper()
	b := &JournalBuilder{t: t, dir: dir, name: DefaultJournalName, next: firstIndex}
	b.Roll()
	return b
}

// WithName changes the segment file prefix.
func (b *JournalBuilder) WithName(name string) *JournalBuilder {
	b.name = name
	return b
}

// Append adds a record and returns its index.
func (b *JournalBuilder) Append(asqn int64, payload []byte) int64 {
	seg := b.segments[len(b.segments)-1]
	index := b.next
	seg.body = journal.AppendFrame(seg.body, index, asqn, payload)
	seg.descriptor.LastIndex = index
	b.next++
	return index
}

// AppendRaw adds bytes verbatim to the current segment, e.g. a torn frame.
func (b *JournalBuilder) AppendRaw(raw []byte) {
	seg := b.segments[len(b.segments)-1]
	seg.body = append(seg.body, raw...)
}

// Skip advances the next index without writing, producing a gap.
func (b *JournalBuilder) Skip(n int64) {
	b.next += n
}

// Roll starts a new segment beginning at the next index.
func (b *JournalBuilder) Roll() {
	id := int64(len(b.segments) + 1)
	b.segments = append(b.segments, &fixtureSegment{
		descriptor: journal.Descriptor{
			ID:             id,
			Index:          b.next,
			MaxSegmentSize: 128 * 1024 * 1024,
		},
	})
}

// NextIndex returns the index the next Append will use.
func (b *JournalBuilder) NextIndex() int64 {
	return b.next
}

// Write stores all segments in the directory and returns it.
func (b *JournalBuilder) Write() string {
	b.t.Helper()
	require.NoError(b.t, os.MkdirAll(b.dir, 0o755))
	for _, seg := range b.segments {
		content := append(journal.EncodeDescriptor(seg.descriptor), seg.body...)
		path := filepath.Join(b.dir, fmt.Sprintf("%s-%d.log", b.name, seg.descriptor.ID))
		require.NoError(b.t, os.WriteFile(path, content, 0o644))
	}
	return b.dir
}

// WriteMeta stores a journal metadata file with the given last flushed index.
func WriteMeta(t testing.TB, dir string, lastFlushedIndex int64) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, journal.MetaFileName), journal.EncodeMeta(lastFlushedIndex), 0o644))
}

// TornFrame returns the first half of an encoded frame for index.
func TornFrame(index int64, payload []byte) []byte {
	frame := journal.AppendFrame(nil, index, journal.AsqnIgnore, payload)
	return frame[:len(frame)/2]
}
