package journal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// AsqnIgnore marks a record without an application sequence number.
const AsqnIgnore int64 = -1

// DescriptorVersion is the only descriptor layout this package reads.
const DescriptorVersion byte = 2

// DescriptorLength is the encoded size of a segment descriptor.
const DescriptorLength = 37

// FrameVersion marks a written frame. A zero byte marks the end of the segment.
const FrameVersion byte = 1

const (
	frameHeaderLength  = 1 + 4 + 4
	recordHeaderLength = 8 + 8 + 4
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Checksum computes the CRC-32C used by descriptors and frames.
func Checksum(b []byte) uint32 {
	return crc32.Checksum(b, castagnoli)
}

// Descriptor is the header of a segment file.
type Descriptor struct {
	Version        byte
	ID             int64
	Index          int64 // first index stored in the segment
	MaxSegmentSize uint32
	LastIndex      int64 // 0 when unknown
	LastPosition   uint32
}

// EncodeDescriptor returns the on-disk form of d. A zero Version is encoded as
// DescriptorVersion.
func EncodeDescriptor(d Descriptor) []byte {
	if d.Version == 0 {
		d.Version = DescriptorVersion
	}
	b := make([]byte, DescriptorLength)
	b[0] = d.Version
	binary.LittleEndian.PutUint64(b[1:], uint64(d.ID))
	binary.LittleEndian.PutUint64(b[9:], uint64(d.Index))
	binary.LittleEndian.PutUint32(b[17:], d.MaxSegmentSize)
	binary.LittleEndian.PutUint64(b[21:], uint64(d.LastIndex))
	binary.LittleEndian.PutUint32(b[29:], d.LastPosition)
	binary.LittleEndian.PutUint32(b[33:], Checksum(b[:33]))
	return b
}

// DecodeDescriptor parses a segment header.
func DecodeDescriptor(b []byte) (Descriptor, error) {
	if len(b) < DescriptorLength {
		return Descriptor{}, fmt.Errorf("descriptor too short: %d bytes", len(b))
	}
	if b[0] != DescriptorVersion {
		return Descriptor{}, fmt.Errorf("unsupported descriptor version %d", b[0])
	}
	if want, got := binary.LittleEndian.Uint32(b[33:]), Checksum(b[:33]); want != got {
		return Descriptor{}, fmt.Errorf("descriptor checksum mismatch: stored %08x, computed %08x", want, got)
	}
	return Descriptor{
		Version:        b[0],
		ID:             int64(binary.LittleEndian.Uint64(b[1:])),
		Index:          int64(binary.LittleEndian.Uint64(b[9:])),
		MaxSegmentSize: binary.LittleEndian.Uint32(b[17:]),
		LastIndex:      int64(binary.LittleEndian.Uint64(b[21:])),
		LastPosition:   binary.LittleEndian.Uint32(b[29:]),
	}, nil
}

// Record is a single journal entry.
type Record struct {
	Index    int64
	Asqn     int64
	Checksum uint32
	// Data is the application payload.
	Data []byte
	// Serialized holds the frame as stored, without the version byte.
	Serialized []byte
}

// AppendFrame appends the framed encoding of a record with the given index, asqn
// and payload to dst.
func AppendFrame(dst []byte, index, asqn int64, payload []byte) []byte {
	data := make([]byte, recordHeaderLength, recordHeaderLength+len(payload))
	binary.LittleEndian.PutUint64(data[0:], uint64(index))
	binary.LittleEndian.PutUint64(data[8:], uint64(asqn))
	binary.LittleEndian.PutUint32(data[16:], uint32(len(payload)))
	data = append(data, payload...)

	dst = append(dst, FrameVersion)
	dst = binary.LittleEndian.AppendUint32(dst, Checksum(data))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data)))
	return append(dst, data...)
}

// decodeRecord parses the data section of a frame. serialized is the frame
// without its version byte.
func decodeRecord(serialized []byte) (Record, error) {
	checksum := binary.LittleEndian.Uint32(serialized[0:])
	data := serialized[8:]
	if len(data) < recordHeaderLength {
		return Record{}, fmt.Errorf("record data too short: %d bytes", len(data))
	}
	n := binary.LittleEndian.Uint32(data[16:])
	if int(n) != len(data)-recordHeaderLength {
		return Record{}, fmt.Errorf("payload length %d does not match frame length %d", n, len(data))
	}
	return Record{
		Index:      int64(binary.LittleEndian.Uint64(data[0:])),
		Asqn:       int64(binary.LittleEndian.Uint64(data[8:])),
		Checksum:   checksum,
		Data:       data[recordHeaderLength:],
		Serialized: serialized,
	}, nil
}
