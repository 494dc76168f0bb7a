package raftlog

import (
	"github.com/Zelldon/zdb-sub001/internal/journal"
)

// Reader reads decoded entries from a journal, including entries that may not
// have been committed by the cluster yet.
//
// It owns the wrapped journal.Reader and closes it on Close.
type Reader struct {
	inner   *journal.Reader
	meta    journal.MetaStore
	bounded bool
}

// ReaderOption configures NewReader.
type ReaderOption func(*Reader)

// WithFlushedBound stops the reader after the last flushed index reported by
// meta. A store without a known index leaves the reader unbounded.
func WithFlushedBound(meta journal.MetaStore) ReaderOption {
	return func(r *Reader) {
		r.meta = meta
		r.bounded = true
	}
}

// NewReader wraps inner.
func NewReader(inner *journal.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{inner: inner, meta: journal.UnboundedMetaStore}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HasNext reports whether another entry can be read.
func (r *Reader) HasNext() bool {
	if !r.inner.HasNext() {
		return false
	}
	if r.bounded {
		if last, ok := r.meta.LastFlushedIndex(); ok && r.inner.NextIndex() > last {
			return false
		}
	}
	return true
}

// Next returns the next entry. It returns journal.ErrNoSuchRecord when HasNext is
// false and a *DecodeError, carrying the index, for a malformed payload. The
// cursor moves past a malformed record so scans may continue.
func (r *Reader) Next() (Entry, error) {
	if !r.HasNext() {
		if err := r.inner.Err(); err != nil {
			return Entry{}, err
		}
		return Entry{}, journal.ErrNoSuchRecord
	}
	rec, err := r.inner.Next()
	if err != nil {
		return Entry{}, err
	}
	return DecodeRecord(rec)
}

// NextIndex returns the index of the entry Next would return.
func (r *Reader) NextIndex() int64 {
	return r.inner.NextIndex()
}

// Seek delegates to journal.Reader.Seek.
func (r *Reader) Seek(index int64) int64 {
	return r.inner.Seek(index)
}

// SeekToFirst delegates to journal.Reader.SeekToFirst.
func (r *Reader) SeekToFirst() int64 {
	return r.inner.SeekToFirst()
}

// SeekToLast delegates to journal.Reader.SeekToLast.
func (r *Reader) SeekToLast() int64 {
	return r.inner.SeekToLast()
}

// SeekToAsqn delegates to journal.Reader.SeekToAsqn.
func (r *Reader) SeekToAsqn(asqn int64) int64 {
	return r.inner.SeekToAsqn(asqn)
}

// SeekToAsqnBelow delegates to journal.Reader.SeekToAsqnBelow.
func (r *Reader) SeekToAsqnBelow(asqn, indexUpperBound int64) int64 {
	return r.inner.SeekToAsqnBelow(asqn, indexUpperBound)
}

// Close closes the wrapped reader.
func (r *Reader) Close() error {
	return r.inner.Close()
}

// Err returns the storage error that ended the scan, if any.
func (r *Reader) Err() error {
	return r.inner.Err()
}
