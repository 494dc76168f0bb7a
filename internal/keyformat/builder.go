package keyformat

import "encoding/binary"

// Builder assembles composite keys in the engine's encoding. Chain calls and
// finish with Bytes.
type Builder struct {
	buf []byte
}

// NewKey starts a key in category c.
func NewKey(c Category) *Builder {
	return &Builder{buf: c.Prefix()}
}

// String appends a length-prefixed string.
func (b *Builder) String(s string) *Builder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(len(s)))
	b.buf = append(b.buf, s...)
	return b
}

// Long appends an int64.
func (b *Builder) Long(v int64) *Builder {
	b.buf = binary.BigEndian.AppendUint64(b.buf, uint64(v))
	return b
}

// Int appends an int32.
func (b *Builder) Int(v int32) *Builder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(v))
	return b
}

// Byte appends a single byte.
func (b *Builder) Byte(v byte) *Builder {
	b.buf = append(b.buf, v)
	return b
}

// ByteArray appends a length-prefixed byte array.
func (b *Builder) ByteArray(v []byte) *Builder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(len(v)))
	b.buf = append(b.buf, v...)
	return b
}

// Bytes returns the encoded key.
func (b *Builder) Bytes() []byte {
	return append([]byte(nil), b.buf...)
}
