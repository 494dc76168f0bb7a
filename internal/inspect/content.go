package inspect

import (
	"errors"

	"github.com/Zelldon/zdb-sub001/internal/raftlog"
)

// Options bound a content scan.
type Options struct {
	// From is the first index to read; zero or less starts at the first entry.
	From int64
	// To is the last index to read; zero or less reads to the end.
	To int64
	// Filter drops records and events it does not match. Nil keeps everything.
	Filter *Filter
	// Limit caps the number of records returned; zero means no limit.
	Limit int
}

// Scan reads entries within opts and calls fn for each record kept by the
// filter. Entries that fail to decode do not stop the scan; they are returned
// as EntryErrors. Storage errors and errors from fn end it.
func Scan(r *raftlog.Reader, opts Options, fn func(Record) error) ([]EntryError, error) {
	if opts.From > 0 {
		r.Seek(opts.From)
	} else {
		r.SeekToFirst()
	}

	var (
		failed []EntryError
		count  int
	)
	for r.HasNext() {
		if opts.To > 0 && r.NextIndex() > opts.To {
			break
		}
		if opts.Limit > 0 && count >= opts.Limit {
			break
		}
		index := r.NextIndex()
		entry, err := r.Next()
		if err == nil {
			var rec Record
			rec, err = NewRecord(entry)
			if err == nil {
				if !opts.Filter.apply(&rec) {
					continue
				}
				count++
				if err := fn(rec); err != nil {
					return failed, err
				}
				continue
			}
		}
		var de *raftlog.DecodeError
		if !errors.As(err, &de) {
			return failed, err
		}
		failed = append(failed, EntryError{Index: index, Error: err.Error()})
	}
	return failed, r.Err()
}

// ReadContent collects the records Scan yields.
func ReadContent(r *raftlog.Reader, opts Options) (*Content, error) {
	content := &Content{Records: []Record{}}
	failed, err := Scan(r, opts, func(rec Record) error {
		content.Records = append(content.Records, rec)
		return nil
	})
	content.Errors = failed
	if err != nil {
		return nil, err
	}
	return content, nil
}
