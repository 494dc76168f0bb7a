package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorRoundTrip(t *testing.T) {
	d := Descriptor{ID: 3, Index: 100, MaxSegmentSize: 1024, LastIndex: 150, LastPosition: 900}

	b := EncodeDescriptor(d)
	require.Len(t, b, DescriptorLength)
	assert.Equal(t, DescriptorVersion, b[0])

	got, err := DecodeDescriptor(b)
	require.NoError(t, err)
	d.Version = DescriptorVersion
	assert.Equal(t, d, got)
}

func TestDecodeDescriptorErrors(t *testing.T) {
	b := EncodeDescriptor(Descriptor{ID: 1, Index: 1})

	_, err := DecodeDescriptor(b[:10])
	assert.ErrorContains(t, err, "too short")

	wrongVersion := append([]byte(nil), b...)
	wrongVersion[0] = 1
	_, err = DecodeDescriptor(wrongVersion)
	assert.ErrorContains(t, err, "unsupported descriptor version")

	flipped := append([]byte(nil), b...)
	flipped[12] ^= 0x01
	_, err = DecodeDescriptor(flipped)
	assert.ErrorContains(t, err, "checksum mismatch")
}

func TestDecodeRecordLengthMismatch(t *testing.T) {
	frame := AppendFrame(nil, 1, 2, []byte("abc"))
	serialized := frame[1 : len(frame)-1]

	_, err := decodeRecord(serialized)
	assert.ErrorContains(t, err, "does not match")
}
