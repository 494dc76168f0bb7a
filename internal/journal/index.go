package journal

import "github.com/google/btree"

// DefaultIndexDensity is how many records lie between two sparse index entries.
const DefaultIndexDensity = 100

// indexInfo locates a record inside its segment.
type indexInfo struct {
	index    int64
	position int64
}

type asqnEntry struct {
	asqn  int64
	index int64
}

// sparseIndex keeps every density-th record's position and, for those that carry
// one, its asqn. Lookups return the closest entry at or below the target, which a
// reader then scans forward from.
type sparseIndex struct {
	density   int64
	positions *btree.BTreeG[indexInfo]
	asqns     *btree.BTreeG[asqnEntry]
}

func newSparseIndex(density int) *sparseIndex {
	if density <= 0 {
		density = DefaultIndexDensity
	}
	return &sparseIndex{
		density: int64(density),
		positions: btree.NewG(8, func(a, b indexInfo) bool {
			return a.index < b.index
		}),
		asqns: btree.NewG(8, func(a, b asqnEntry) bool {
			if a.asqn != b.asqn {
				return a.asqn < b.asqn
			}
			return a.index < b.index
		}),
	}
}

// index records the location of a record if it falls on the density grid.
func (s *sparseIndex) index(r Record, position int64) {
	if r.Index%s.density != 0 {
		return
	}
	s.positions.ReplaceOrInsert(indexInfo{index: r.Index, position: position})
	if r.Asqn != AsqnIgnore {
		s.asqns.ReplaceOrInsert(asqnEntry{asqn: r.Asqn, index: r.Index})
	}
}

// lookup returns the closest indexed record at or below index.
func (s *sparseIndex) lookup(index int64) (indexInfo, bool) {
	var found indexInfo
	var ok bool
	s.positions.DescendLessOrEqual(indexInfo{index: index}, func(i indexInfo) bool {
		found, ok = i, true
		return false
	})
	return found, ok
}

// lookupAsqn returns the highest indexed record with an asqn at or below asqn
// whose index does not exceed upperBound.
func (s *sparseIndex) lookupAsqn(asqn, upperBound int64) (int64, bool) {
	var found int64
	var ok bool
	pivot := asqnEntry{asqn: asqn, index: upperBound}
	s.asqns.DescendLessOrEqual(pivot, func(e asqnEntry) bool {
		if e.index > upperBound {
			return true
		}
		found, ok = e.index, true
		return false
	})
	return found, ok
}

func (s *sparseIndex) len() int {
	return s.positions.Len()
}
