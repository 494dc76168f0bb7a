// Package keyformat decodes the engine's composite state keys into readable strings.
//
// A composite key is an 8-byte big-endian category id followed by typed components.
// The layout is not self-describing, so a format spec supplies it out of band, one
// character per component:
//
//	s  string, 4-byte length prefix followed by UTF-8 bytes
//	l  int64
//	i  int32
//	b  single byte
//	B  byte array, 4-byte length prefix followed by the bytes
//
// Decoded components are joined with ":". Byte arrays render as lowercase hex pairs
// separated by spaces. If the key is too short for the spec, the whole key is rendered
// as hex instead. Bytes left over after the last component are ignored, so a shorter
// spec decodes a prefix of the key. The empty spec decodes no component at all and
// renders "".
//
// A Registry maps categories to compiled formatters and is immutable once built.
package keyformat
