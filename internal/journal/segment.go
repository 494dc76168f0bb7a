package journal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// segment is one read-only segment file.
type segment struct {
	file       *os.File
	path       string
	descriptor Descriptor
	// lastIndex is descriptor.Index-1 when the segment holds no records.
	lastIndex int64
	// end is the offset just past the last readable frame.
	end int64
}

func (s *segment) firstIndex() int64 {
	return s.descriptor.Index
}

func (s *segment) isEmpty() bool {
	return s.lastIndex < s.firstIndex()
}

func (s *segment) close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// openSegment opens path, validates its descriptor and scans its frames to find
// the last readable record. Every density-th record is added to idx.
func openSegment(path string, idx *sparseIndex, log *zap.Logger) (*segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment: %w", err)
	}
	seg := &segment{file: f, path: path}
	if err := seg.load(idx, log); err != nil {
		f.Close()
		return nil, err
	}
	return seg, nil
}

func (s *segment) load(idx *sparseIndex, log *zap.Logger) error {
	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat segment %s: %w", s.path, err)
	}

	header := make([]byte, DescriptorLength)
	if _, err := s.file.ReadAt(header, 0); err != nil {
		return &CorruptedLogError{Segment: s.path, Position: 0, Reason: "cannot read descriptor: " + err.Error()}
	}
	d, err := DecodeDescriptor(header)
	if err != nil {
		return &CorruptedLogError{Segment: s.path, Position: 0, Reason: err.Error()}
	}
	s.descriptor = d
	s.lastIndex = d.Index - 1
	s.end = DescriptorLength

	fr := newFrameReader(s, DescriptorLength, info.Size())
	for {
		position := fr.position
		r, err := fr.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var torn *tornFrameError
		if errors.As(err, &torn) {
			log.Warn("Ignoring torn frame at end of segment",
				zap.String("segment", s.path),
				zap.Int64("position", position),
				zap.String("reason", torn.reason))
			return nil
		}
		if err != nil {
			return err
		}
		if want := s.lastIndex + 1; r.Index != want {
			return &CorruptedLogError{
				Segment:  s.path,
				Position: position,
				Reason:   fmt.Sprintf("expected index %d, found %d", want, r.Index),
			}
		}
		idx.index(r, position)
		s.lastIndex = r.Index
		s.end = fr.position
	}
}

// tornFrameError marks an incomplete or unverifiable trailing frame.
type tornFrameError struct {
	reason string
}

func (e *tornFrameError) Error() string {
	return "torn frame: " + e.reason
}

// frameReader reads frames sequentially from a segment. It returns io.EOF at the
// end of the written region and *tornFrameError for a trailing partial frame.
type frameReader struct {
	seg      *segment
	limit    int64
	position int64
	br       *bufio.Reader
}

func newFrameReader(s *segment, position, limit int64) *frameReader {
	fr := &frameReader{seg: s, limit: limit}
	fr.reset(position)
	return fr
}

func (fr *frameReader) reset(position int64) {
	fr.position = position
	section := io.NewSectionReader(fr.seg.file, position, fr.limit-position)
	if fr.br == nil {
		fr.br = bufio.NewReaderSize(section, 64*1024)
		return
	}
	fr.br.Reset(section)
}

func (fr *frameReader) next() (Record, error) {
	remaining := fr.limit - fr.position
	if remaining < 1 {
		return Record{}, io.EOF
	}
	version, err := fr.br.ReadByte()
	if err != nil {
		return Record{}, io.EOF
	}
	if version == 0 {
		return Record{}, io.EOF
	}
	if version != FrameVersion {
		return Record{}, &CorruptedLogError{
			Segment:  fr.seg.path,
			Position: fr.position,
			Reason:   fmt.Sprintf("unknown frame version %d", version),
		}
	}
	if remaining < frameHeaderLength {
		return Record{}, &tornFrameError{reason: "frame header past end of file"}
	}

	meta := make([]byte, frameHeaderLength-1)
	if _, err := io.ReadFull(fr.br, meta); err != nil {
		return Record{}, &tornFrameError{reason: "short frame header"}
	}
	length := int64(binary.LittleEndian.Uint32(meta[4:]))
	if length > remaining-frameHeaderLength {
		return Record{}, &tornFrameError{reason: fmt.Sprintf("frame length %d past end of file", length)}
	}

	serialized := make([]byte, len(meta)+int(length))
	copy(serialized, meta)
	if _, err := io.ReadFull(fr.br, serialized[len(meta):]); err != nil {
		return Record{}, &tornFrameError{reason: "short frame data"}
	}
	if want, got := binary.LittleEndian.Uint32(meta), Checksum(serialized[len(meta):]); want != got {
		return Record{}, &tornFrameError{reason: fmt.Sprintf("checksum mismatch: stored %08x, computed %08x", want, got)}
	}

	r, err := decodeRecord(serialized)
	if err != nil {
		return Record{}, &CorruptedLogError{Segment: fr.seg.path, Position: fr.position, Reason: err.Error()}
	}
	fr.position += frameHeaderLength + length
	return r, nil
}

var segmentFilePattern = regexp.MustCompile(`^(.+)-(\d+)\.log$`)

// segmentFile is a candidate segment found in a journal directory.
type segmentFile struct {
	path string
	id   int64
}

// listSegmentFiles returns the segments of journal name in dir ordered by id.
// An empty name accepts any segment prefix.
func listSegmentFiles(dir, name string) ([]segmentFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}
	var files []segmentFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := segmentFilePattern.FindStringSubmatch(e.Name())
		if m == nil || (name != "" && m[1] != name) {
			continue
		}
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || id < 1 {
			continue
		}
		files = append(files, segmentFile{path: filepath.Join(dir, e.Name()), id: id})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].id < files[j].id })
	return files, nil
}
