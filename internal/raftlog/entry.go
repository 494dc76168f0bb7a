package raftlog

import (
	"encoding/binary"

	"github.com/Zelldon/zdb-sub001/internal/journal"
)

// Kind tags the entry body.
type Kind uint8

const (
	KindApplication   Kind = 1
	KindInitial       Kind = 2
	KindConfiguration Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "APPLICATION"
	case KindInitial:
		return "INITIAL"
	case KindConfiguration:
		return "CONFIGURATION"
	}
	return "UNKNOWN"
}

// Body is either an ApplicationEntry or a ControlEntry.
type Body interface {
	Kind() Kind
}

// ApplicationEntry holds a batch of logged events with positions
// LowestPosition through HighestPosition.
type ApplicationEntry struct {
	LowestPosition  int64
	HighestPosition int64
	Data            []byte
}

// Kind implements Body.
func (ApplicationEntry) Kind() Kind { return KindApplication }

// Member is a cluster member listed in a configuration entry.
type Member struct {
	ID   string `json:"id"`
	Type uint8  `json:"type"`
}

// ControlEntry is written by the replication layer. Timestamp and Members are
// set for configuration entries only.
type ControlEntry struct {
	EntryKind Kind
	Timestamp int64
	Members   []Member
}

// Kind implements Body.
func (c ControlEntry) Kind() Kind { return c.EntryKind }

// Entry is a decoded journal record.
type Entry struct {
	Index    int64
	Asqn     int64
	Checksum uint32
	Term     int64
	Body     Body
	// Size is the length of the serialized record in bytes.
	Size int
}

// IsApplicationEntry reports whether the entry carries application data.
func (e Entry) IsApplicationEntry() bool {
	_, ok := e.Body.(ApplicationEntry)
	return ok
}

// ApplicationEntry returns the body if it is an application entry.
func (e Entry) ApplicationEntry() (ApplicationEntry, bool) {
	a, ok := e.Body.(ApplicationEntry)
	return a, ok
}

// lowest position, highest position, data length
const applicationHeaderLength = 8 + 8 + 4

// Decode parses an entry payload into its term and body.
func Decode(payload []byte) (int64, Body, error) {
	if len(payload) < 9 {
		return 0, nil, decodeErrorf(0, "payload of %d bytes is shorter than the entry header", len(payload))
	}
	term := int64(binary.LittleEndian.Uint64(payload))
	kind := Kind(payload[8])
	body := payload[9:]
	const offset = 9

	switch kind {
	case KindApplication:
		if len(body) < applicationHeaderLength {
			return 0, nil, decodeErrorf(offset, "application entry header needs %d bytes, got %d", applicationHeaderLength, len(body))
		}
		n := int(binary.LittleEndian.Uint32(body[16:]))
		if n != len(body)-applicationHeaderLength {
			return 0, nil, decodeErrorf(offset+16, "application data length %d does not match remaining %d bytes", n, len(body)-applicationHeaderLength)
		}
		return term, ApplicationEntry{
			LowestPosition:  int64(binary.LittleEndian.Uint64(body)),
			HighestPosition: int64(binary.LittleEndian.Uint64(body[8:])),
			Data:            body[applicationHeaderLength:],
		}, nil

	case KindInitial:
		if len(body) != 0 {
			return 0, nil, decodeErrorf(offset, "initial entry has %d unexpected bytes", len(body))
		}
		return term, ControlEntry{EntryKind: KindInitial}, nil

	case KindConfiguration:
		c, err := decodeConfiguration(body, offset)
		if err != nil {
			return 0, nil, err
		}
		return term, c, nil
	}
	return 0, nil, decodeErrorf(8, "unknown entry kind %d", kind)
}

func decodeConfiguration(b []byte, base int) (ControlEntry, error) {
	if len(b) < 10 {
		return ControlEntry{}, decodeErrorf(base, "configuration entry header needs 10 bytes, got %d", len(b))
	}
	c := ControlEntry{
		EntryKind: KindConfiguration,
		Timestamp: int64(binary.LittleEndian.Uint64(b)),
	}
	count := int(binary.LittleEndian.Uint16(b[8:]))
	off := 10
	c.Members = make([]Member, 0, count)
	for i := 0; i < count; i++ {
		if len(b)-off < 2 {
			return ControlEntry{}, decodeErrorf(base+off, "member %d truncated", i)
		}
		n := int(binary.LittleEndian.Uint16(b[off:]))
		off += 2
		if len(b)-off < n+1 {
			return ControlEntry{}, decodeErrorf(base+off, "member %d id of %d bytes truncated", i, n)
		}
		c.Members = append(c.Members, Member{ID: string(b[off : off+n]), Type: b[off+n]})
		off += n + 1
	}
	if off != len(b) {
		return ControlEntry{}, decodeErrorf(base+off, "configuration entry has %d trailing bytes", len(b)-off)
	}
	return c, nil
}

// Encode returns the payload for an entry with the given term and body.
func Encode(term int64, body Body) []byte {
	b := binary.LittleEndian.AppendUint64(nil, uint64(term))
	b = append(b, byte(body.Kind()))
	switch v := body.(type) {
	case ApplicationEntry:
		b = binary.LittleEndian.AppendUint64(b, uint64(v.LowestPosition))
		b = binary.LittleEndian.AppendUint64(b, uint64(v.HighestPosition))
		b = binary.LittleEndian.AppendUint32(b, uint32(len(v.Data)))
		b = append(b, v.Data...)
	case ControlEntry:
		if v.EntryKind == KindConfiguration {
			b = binary.LittleEndian.AppendUint64(b, uint64(v.Timestamp))
			b = binary.LittleEndian.AppendUint16(b, uint16(len(v.Members)))
			for _, m := range v.Members {
				b = binary.LittleEndian.AppendUint16(b, uint16(len(m.ID)))
				b = append(b, m.ID...)
				b = append(b, m.Type)
			}
		}
	}
	return b
}

// DecodeRecord decodes a journal record. A *DecodeError carries the record index.
func DecodeRecord(rec journal.Record) (Entry, error) {
	term, body, err := Decode(rec.Data)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Index = rec.Index
		}
		return Entry{}, err
	}
	return Entry{
		Index:    rec.Index,
		Asqn:     rec.Asqn,
		Checksum: rec.Checksum,
		Term:     term,
		Body:     body,
		Size:     len(rec.Serialized),
	}, nil
}
