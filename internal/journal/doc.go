// Package journal reads the engine's segmented append-only log without writing to it.
//
// A journal directory holds segment files named <name>-<id>.log. Each segment starts
// with a fixed-size descriptor and continues with frames, one per record:
//
//	version(1) checksum(4) length(4) | index(8) asqn(8) payloadLength(4) payload
//
// All integers are little-endian. The checksum is CRC-32C over the data section
// (everything after the length field). A zero version byte marks the end of the
// written region. A frame that runs past the end of the file or fails its checksum
// is treated as a torn write: it and anything after it are invisible.
//
// Indices are gapless across segments. A journal with no records reports
// FirstIndex() == LastIndex()+1.
//
// Readers are single-cursor and not safe for concurrent use. Reading a directory
// that a broker is still writing to is supported on a best-effort basis: the
// journal sees the records that were complete when it was opened.
package journal
