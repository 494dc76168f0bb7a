package raftlog

import "encoding/binary"

// eventHeaderLength covers everything in an event frame before the value.
const eventHeaderLength = 4 + 8 + 8 + 8 + 8 + 1 + 2 + 1 + 4

// LoggedEvent is one record of an application entry batch.
type LoggedEvent struct {
	Position       int64
	SourcePosition int64
	// Timestamp in milliseconds since the epoch.
	Timestamp  int64
	Key        int64
	RecordType RecordType
	ValueType  ValueType
	Intent     uint8
	// Value is MessagePack encoded.
	Value []byte
}

// DecodeEvents splits application entry data into its logged events.
func DecodeEvents(data []byte) ([]LoggedEvent, error) {
	var events []LoggedEvent
	for off := 0; off < len(data); {
		if len(data)-off < eventHeaderLength {
			return nil, decodeErrorf(off, "event header needs %d bytes, got %d", eventHeaderLength, len(data)-off)
		}
		b := data[off:]
		length := int(binary.LittleEndian.Uint32(b))
		if length < eventHeaderLength-4 || length > len(b)-4 {
			return nil, decodeErrorf(off, "event length %d out of range", length)
		}
		valueLength := int(binary.LittleEndian.Uint32(b[40:]))
		if valueLength != length-(eventHeaderLength-4) {
			return nil, decodeErrorf(off+40, "event value length %d does not match frame length %d", valueLength, length)
		}
		events = append(events, LoggedEvent{
			Position:       int64(binary.LittleEndian.Uint64(b[4:])),
			SourcePosition: int64(binary.LittleEndian.Uint64(b[12:])),
			Timestamp:      int64(binary.LittleEndian.Uint64(b[20:])),
			Key:            int64(binary.LittleEndian.Uint64(b[28:])),
			RecordType:     RecordType(b[36]),
			ValueType:      ValueType(binary.LittleEndian.Uint16(b[37:])),
			Intent:         b[39],
			Value:          b[eventHeaderLength : eventHeaderLength+valueLength],
		})
		off += 4 + length
	}
	return events, nil
}

// AppendEvent appends the frame for e to dst.
func AppendEvent(dst []byte, e LoggedEvent) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(eventHeaderLength-4+len(e.Value)))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(e.Position))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(e.SourcePosition))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(e.Timestamp))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(e.Key))
	dst = append(dst, byte(e.RecordType))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(e.ValueType))
	dst = append(dst, e.Intent)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(e.Value)))
	return append(dst, e.Value...)
}

// NewApplicationEntry builds an application entry holding events, with the
// position range taken from them.
func NewApplicationEntry(events ...LoggedEvent) ApplicationEntry {
	var a ApplicationEntry
	for i, e := range events {
		if i == 0 || e.Position < a.LowestPosition {
			a.LowestPosition = e.Position
		}
		if i == 0 || e.Position > a.HighestPosition {
			a.HighestPosition = e.Position
		}
		a.Data = AppendEvent(a.Data, e)
	}
	return a
}
