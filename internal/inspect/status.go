package inspect

import (
	"errors"

	"github.com/Zelldon/zdb-sub001/internal/raftlog"
)

// Status summarizes a full scan of the log. Fields stay zero when no entry
// of the relevant kind was read.
type Status struct {
	ScannedEntries        int64   `json:"scannedEntries"`
	MaxEntrySizeBytes     int     `json:"maxEntrySizeBytes"`
	MinEntrySizeBytes     int     `json:"minEntrySizeBytes"`
	AvgEntrySizeBytes     float64 `json:"avgEntrySizeBytes"`
	LowestRecordPosition  int64   `json:"lowestRecordPosition"`
	HighestRecordPosition int64   `json:"highestRecordPosition"`
	LowestIndex           int64   `json:"lowestIndex"`
	HighestIndex          int64   `json:"highestIndex"`
	HighestTerm           int64   `json:"highestTerm"`
	// DecodeErrors counts entries whose payload could not be decoded. They
	// are not part of the other fields.
	DecodeErrors int64 `json:"decodeErrors"`
}

// ReadStatus scans r from the first entry.
func ReadStatus(r *raftlog.Reader) (Status, error) {
	var (
		s         Status
		totalSize int64
		positions bool
	)
	r.SeekToFirst()
	for r.HasNext() {
		entry, err := r.Next()
		if err != nil {
			var de *raftlog.DecodeError
			if errors.As(err, &de) {
				s.DecodeErrors++
				continue
			}
			return Status{}, err
		}

		if s.ScannedEntries == 0 {
			s.LowestIndex = entry.Index
			s.MinEntrySizeBytes = entry.Size
		}
		s.ScannedEntries++
		totalSize += int64(entry.Size)
		s.HighestTerm = max(s.HighestTerm, entry.Term)
		s.HighestIndex = max(s.HighestIndex, entry.Index)
		s.LowestIndex = min(s.LowestIndex, entry.Index)
		s.MaxEntrySizeBytes = max(s.MaxEntrySizeBytes, entry.Size)
		s.MinEntrySizeBytes = min(s.MinEntrySizeBytes, entry.Size)

		if app, ok := entry.ApplicationEntry(); ok {
			if !positions {
				s.LowestRecordPosition = app.LowestPosition
				positions = true
			}
			s.LowestRecordPosition = min(s.LowestRecordPosition, app.LowestPosition)
			s.HighestRecordPosition = max(s.HighestRecordPosition, app.HighestPosition)
		}
	}
	if err := r.Err(); err != nil {
		return Status{}, err
	}
	if s.ScannedEntries > 0 {
		s.AvgEntrySizeBytes = float64(totalSize) / float64(s.ScannedEntries)
	}
	return s, nil
}
