package inspect

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/Zelldon/zdb-sub001/internal/codec"
	"github.com/Zelldon/zdb-sub001/internal/keyformat"
	"github.com/Zelldon/zdb-sub001/internal/raftlog"
)

// Event is a logged event with its value decoded to JSON.
type Event struct {
	Position       int64              `json:"position"`
	SourcePosition int64              `json:"sourceRecordPosition"`
	Timestamp      int64              `json:"timestamp"`
	Key            int64              `json:"key"`
	RecordType     raftlog.RecordType `json:"recordType"`
	ValueType      raftlog.ValueType  `json:"valueType"`
	Intent         uint8              `json:"intent"`
	Value          json.RawMessage    `json:"value"`
	// ValueError is set when the value is not valid MessagePack. Value then
	// holds the hex form of the raw bytes.
	ValueError string `json:"valueError,omitempty"`
}

// Record is one log entry. Positions and Entries are set for application
// entries, Members for configuration entries.
type Record struct {
	Index           int64            `json:"index"`
	Term            int64            `json:"term"`
	Kind            string           `json:"kind"`
	Asqn            int64            `json:"asqn"`
	Size            int              `json:"size"`
	LowestPosition  int64            `json:"lowestPosition,omitempty"`
	HighestPosition int64            `json:"highestPosition,omitempty"`
	Entries         []Event          `json:"entries,omitempty"`
	Members         []raftlog.Member `json:"members,omitempty"`
}

// EntryError records an entry that could not be decoded.
type EntryError struct {
	Index int64  `json:"index"`
	Error string `json:"error"`
}

// Content is a list of records plus the entries that failed to decode.
type Content struct {
	Records []Record     `json:"records"`
	Errors  []EntryError `json:"errors,omitempty"`
}

// NewEvent converts a logged event. A value that does not decode is kept as hex.
func NewEvent(e raftlog.LoggedEvent) Event {
	ev := Event{
		Position:       e.Position,
		SourcePosition: e.SourcePosition,
		Timestamp:      e.Timestamp,
		Key:            e.Key,
		RecordType:     e.RecordType,
		ValueType:      e.ValueType,
		Intent:         e.Intent,
	}
	value, err := codec.MsgpackToJSON(e.Value)
	if err != nil {
		ev.ValueError = err.Error()
		value, _ = json.Marshal(keyformat.Hex(e.Value))
	}
	ev.Value = value
	return ev
}

// NewRecord converts a decoded entry, splitting application data into events.
func NewRecord(e raftlog.Entry) (Record, error) {
	rec := Record{
		Index: e.Index,
		Term:  e.Term,
		Kind:  e.Body.Kind().String(),
		Asqn:  e.Asqn,
		Size:  e.Size,
	}
	switch body := e.Body.(type) {
	case raftlog.ApplicationEntry:
		rec.LowestPosition = body.LowestPosition
		rec.HighestPosition = body.HighestPosition
		events, err := raftlog.DecodeEvents(body.Data)
		if err != nil {
			var de *raftlog.DecodeError
			if errors.As(err, &de) {
				de.Index = e.Index
			}
			return Record{}, err
		}
		rec.Entries = make([]Event, 0, len(events))
		for _, ev := range events {
			rec.Entries = append(rec.Entries, NewEvent(ev))
		}
	case raftlog.ControlEntry:
		rec.Members = body.Members
	}
	return rec, nil
}

// valueOf decodes the JSON value of ev. Undecodable values yield nil. With
// useNumber, numbers decode as json.Number so 64-bit keys stay exact.
func valueOf(ev *Event, useNumber bool) any {
	if ev == nil || ev.ValueError != "" || len(ev.Value) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(ev.Value))
	if useNumber {
		dec.UseNumber()
	}
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}
