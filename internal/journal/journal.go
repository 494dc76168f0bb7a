package journal

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// PartitionNameFormat is the journal name the broker uses for a partition directory.
const PartitionNameFormat = "raft-partition-partition-%d"

// Options configures Open.
type Options struct {
	// Name is the segment file prefix. When empty it is derived from the
	// directory: a numeric directory N maps to "raft-partition-partition-N",
	// anything else accepts every <name>-<id>.log file.
	Name string
	// IndexDensity controls the sparse index granularity. Defaults to DefaultIndexDensity.
	IndexDensity int
	// Logger receives warnings about torn segments. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Journal is a read-only view of a segmented journal directory. It captures the
// segments and their readable extent when opened.
type Journal struct {
	dir      string
	name     string
	segments []*segment
	index    *sparseIndex
	log      *zap.Logger
	open     bool
}

// SegmentInfo describes one segment for status output.
type SegmentInfo struct {
	ID         int64  `json:"id"`
	Path       string `json:"path"`
	FirstIndex int64  `json:"firstIndex"`
	LastIndex  int64  `json:"lastIndex"`
	Size       int64  `json:"size"`
}

// Open loads all segments of the journal in dir.
//
// Storage errors and structural corruption are returned as is. A torn trailing
// frame is not an error: the journal ends at the last complete record.
func Open(dir string, opts Options) (*Journal, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	name := opts.Name
	if name == "" {
		name = partitionName(dir)
	}

	files, err := listSegmentFiles(dir, name)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSegments, dir)
	}

	j := &Journal{
		dir:   dir,
		name:  name,
		index: newSparseIndex(opts.IndexDensity),
		log:   log,
	}
	for _, f := range files {
		seg, err := openSegment(f.path, j.index, log)
		if err != nil {
			return nil, multierr.Append(err, j.closeSegments())
		}
		if n := len(j.segments); n > 0 {
			prev := j.segments[n-1]
			if seg.firstIndex() != prev.lastIndex+1 {
				err := &CorruptedLogError{
					Segment:  seg.path,
					Position: 0,
					Reason: fmt.Sprintf("segment starts at index %d but previous segment ends at %d",
						seg.firstIndex(), prev.lastIndex),
				}
				return nil, multierr.Combine(err, seg.close(), j.closeSegments())
			}
		}
		j.segments = append(j.segments, seg)
	}
	j.open = true

	log.Debug("Opened journal",
		zap.String("dir", dir),
		zap.String("name", name),
		zap.Int("segments", len(j.segments)),
		zap.Int64("firstIndex", j.FirstIndex()),
		zap.Int64("lastIndex", j.LastIndex()))
	return j, nil
}

func partitionName(dir string) string {
	id, err := strconv.Atoi(filepath.Base(filepath.Clean(dir)))
	if err != nil {
		return ""
	}
	return fmt.Sprintf(PartitionNameFormat, id)
}

// Name returns the segment prefix the journal was opened with ("" for any).
func (j *Journal) Name() string {
	return j.name
}

// FirstIndex returns the index of the first record.
func (j *Journal) FirstIndex() int64 {
	return j.segments[0].firstIndex()
}

// LastIndex returns the index of the last record, FirstIndex()-1 if there is none.
func (j *Journal) LastIndex() int64 {
	return j.segments[len(j.segments)-1].lastIndex
}

// IsEmpty reports whether the journal holds no records.
func (j *Journal) IsEmpty() bool {
	return j.LastIndex() < j.FirstIndex()
}

// IsOpen reports whether Close has not been called yet.
func (j *Journal) IsOpen() bool {
	return j.open
}

// Segments describes the loaded segments in order.
func (j *Journal) Segments() []SegmentInfo {
	infos := make([]SegmentInfo, 0, len(j.segments))
	for _, s := range j.segments {
		infos = append(infos, SegmentInfo{
			ID:         s.descriptor.ID,
			Path:       s.path,
			FirstIndex: s.firstIndex(),
			LastIndex:  s.lastIndex,
			Size:       s.end,
		})
	}
	return infos
}

// OpenReader returns a new reader positioned before the first record.
func (j *Journal) OpenReader() (*Reader, error) {
	if !j.open {
		return nil, ErrClosed
	}
	r := &Reader{journal: j}
	r.SeekToFirst()
	return r, nil
}

// Close releases all segment files. It is safe to call more than once.
func (j *Journal) Close() error {
	if !j.open {
		return nil
	}
	j.open = false
	return j.closeSegments()
}

func (j *Journal) closeSegments() error {
	var err error
	for _, s := range j.segments {
		err = multierr.Append(err, s.close())
	}
	return err
}

// segmentFor returns the position in j.segments of the segment holding index.
// index must lie within [FirstIndex, LastIndex].
func (j *Journal) segmentFor(index int64) int {
	i := sort.Search(len(j.segments), func(i int) bool {
		return j.segments[i].firstIndex() > index
	})
	i--
	// skip empty segments sharing the same first index
	for i > 0 && j.segments[i].isEmpty() {
		i--
	}
	return i
}
