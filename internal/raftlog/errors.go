package raftlog

import "fmt"

// DecodeError reports a payload that is not a well-formed entry or event batch.
type DecodeError struct {
	// Index is the journal index of the record, 0 when decoding a bare payload.
	Index  int64
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("failed to decode entry at index %d (offset %d): %s", e.Index, e.Offset, e.Reason)
	}
	return fmt.Sprintf("failed to decode entry (offset %d): %s", e.Offset, e.Reason)
}

func decodeErrorf(offset int, format string, args ...any) *DecodeError {
	return &DecodeError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
