package journal

import "fmt"

// Reader is a cursor over the records of a journal.
//
// The cursor is either before the first record, on a record, or past the end.
// Every seek returns the index the next call to Next would yield; callers must
// still check HasNext, since the returned index may not exist.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	journal   *Journal
	seg       int
	frames    *frameReader
	nextIndex int64
	err       error
	closed    bool
}

// NextIndex returns the index the next call to Next would return.
func (r *Reader) NextIndex() int64 {
	return r.nextIndex
}

// Err returns the storage error that stopped the reader, if any.
func (r *Reader) Err() error {
	return r.err
}

// HasNext reports whether a record exists at the cursor.
func (r *Reader) HasNext() bool {
	if r.closed || r.err != nil || !r.journal.open {
		return false
	}
	return r.nextIndex >= r.journal.FirstIndex() && r.nextIndex <= r.journal.LastIndex()
}

// Next returns the record at the cursor and advances it.
// It returns ErrNoSuchRecord when HasNext is false.
func (r *Reader) Next() (Record, error) {
	if !r.HasNext() {
		if r.err != nil {
			return Record{}, r.err
		}
		return Record{}, ErrNoSuchRecord
	}

	for r.nextIndex > r.journal.segments[r.seg].lastIndex {
		r.seg++
		r.frames = nil
	}
	if r.frames == nil {
		s := r.journal.segments[r.seg]
		r.frames = newFrameReader(s, DescriptorLength, s.end)
	}

	rec, err := r.frames.next()
	if err != nil {
		r.err = fmt.Errorf("failed to read record %d: %w", r.nextIndex, err)
		return Record{}, r.err
	}
	if rec.Index != r.nextIndex {
		r.err = &CorruptedLogError{
			Segment:  r.journal.segments[r.seg].path,
			Position: r.frames.position,
			Reason:   fmt.Sprintf("expected index %d, found %d", r.nextIndex, rec.Index),
		}
		return Record{}, r.err
	}
	r.nextIndex++
	return rec, nil
}

// Seek positions the cursor so that Next returns the record at index.
//
// On an empty journal the cursor moves to FirstIndex, which is returned. An index
// below FirstIndex is clamped to it. An index above LastIndex moves the cursor
// past the end and LastIndex+1 is returned.
func (r *Reader) Seek(index int64) int64 {
	j := r.journal
	if r.closed || !j.open {
		return r.nextIndex
	}
	r.err = nil
	first, last := j.FirstIndex(), j.LastIndex()

	if j.IsEmpty() {
		r.seg = 0
		r.frames = nil
		r.nextIndex = first
		return first
	}
	if index < first {
		index = first
	}
	if index > last {
		r.seg = len(j.segments) - 1
		r.frames = nil
		r.nextIndex = last + 1
		return r.nextIndex
	}

	r.seg = j.segmentFor(index)
	s := j.segments[r.seg]
	position, current := int64(DescriptorLength), s.firstIndex()
	if hint, ok := j.index.lookup(index); ok && hint.index >= s.firstIndex() {
		position, current = hint.position, hint.index
	}
	r.frames = newFrameReader(s, position, s.end)
	r.nextIndex = current
	for r.nextIndex < index {
		if _, err := r.Next(); err != nil {
			break
		}
	}
	return index
}

// SeekToFirst positions the cursor before the first record.
func (r *Reader) SeekToFirst() int64 {
	return r.Seek(r.journal.FirstIndex())
}

// SeekToLast positions the cursor on the last record. On an empty journal it
// behaves like SeekToFirst.
func (r *Reader) SeekToLast() int64 {
	return r.Seek(r.journal.LastIndex())
}

// SeekToAsqn positions the cursor on the highest-indexed record whose asqn is at
// most asqn. See SeekToAsqnBelow.
func (r *Reader) SeekToAsqn(asqn int64) int64 {
	return r.SeekToAsqnBelow(asqn, r.journal.LastIndex())
}

// SeekToAsqnBelow positions the cursor on the highest-indexed record not above
// indexUpperBound whose asqn is set and at most asqn. Records without an asqn
// are skipped. When no record qualifies it behaves like SeekToFirst.
//
// Asqns are assumed to grow with the index, so the scan stops at the first record
// whose asqn exceeds the target.
func (r *Reader) SeekToAsqnBelow(asqn, indexUpperBound int64) int64 {
	j := r.journal
	if r.closed || !j.open {
		return r.nextIndex
	}
	maxIndex := min(indexUpperBound, j.LastIndex())
	if j.IsEmpty() || maxIndex < j.FirstIndex() {
		return r.SeekToFirst()
	}

	if hint, ok := j.index.lookupAsqn(asqn, maxIndex); ok {
		r.Seek(hint)
	} else {
		r.SeekToFirst()
	}

	var found int64
	var ok bool
	for r.HasNext() {
		rec, err := r.Next()
		if err != nil {
			break
		}
		if rec.Index > maxIndex || (rec.Asqn != AsqnIgnore && rec.Asqn > asqn) {
			break
		}
		if rec.Asqn != AsqnIgnore {
			found, ok = rec.Index, true
		}
	}
	if !ok {
		return r.SeekToFirst()
	}
	return r.Seek(found)
}

// Close releases the reader. It is safe to call more than once.
func (r *Reader) Close() error {
	r.closed = true
	r.frames = nil
	return nil
}
