package journal

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchRecord is returned by Reader.Next when HasNext is false.
	ErrNoSuchRecord = errors.New("no such record")

	// ErrClosed is returned when using a closed journal or reader.
	ErrClosed = errors.New("journal is closed")

	// ErrNoSegments is returned by Open when the directory holds no segment files.
	ErrNoSegments = errors.New("no journal segments found")
)

// CorruptedLogError reports a structural problem in a segment that cannot be
// explained by a torn trailing write.
type CorruptedLogError struct {
	Segment  string
	Position int64
	Reason   string
}

func (e *CorruptedLogError) Error() string {
	return fmt.Sprintf("corrupted journal segment %s at position %d: %s", e.Segment, e.Position, e.Reason)
}
