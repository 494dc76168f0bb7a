package inspect

import (
	"errors"

	"github.com/Zelldon/zdb-sub001/internal/raftlog"
)

// SearchPosition returns the event at position, or nil when no entry holds it
// or position is not positive.
func SearchPosition(r *raftlog.Reader, position int64) (*Event, error) {
	if position <= 0 {
		return nil, nil
	}
	r.SeekToAsqn(position)
	if !r.HasNext() {
		return nil, r.Err()
	}
	entry, err := r.Next()
	if err != nil {
		return nil, err
	}
	app, ok := entry.ApplicationEntry()
	if !ok {
		return nil, nil
	}
	events, err := raftlog.DecodeEvents(app.Data)
	if err != nil {
		var de *raftlog.DecodeError
		if errors.As(err, &de) {
			de.Index = entry.Index
		}
		return nil, err
	}
	for _, e := range events {
		if e.Position == position {
			ev := NewEvent(e)
			return &ev, nil
		}
	}
	return nil, nil
}

// SearchIndex returns the content of the entry at index, or nil when the log
// has no such entry or index is not positive. A malformed entry is reported in
// Content.Errors.
func SearchIndex(r *raftlog.Reader, index int64) (*Content, error) {
	if index <= 0 {
		return nil, nil
	}
	if r.Seek(index) != index || !r.HasNext() {
		return nil, r.Err()
	}
	content, err := ReadContent(r, Options{From: index, To: index})
	if err != nil {
		return nil, err
	}
	if len(content.Records) == 0 && len(content.Errors) == 0 {
		return nil, nil
	}
	return content, nil
}
