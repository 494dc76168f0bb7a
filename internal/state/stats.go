package state

import "github.com/Zelldon/zdb-sub001/internal/keyformat"

// CategoryStats summarizes the entries of one category.
type CategoryStats struct {
	Category   keyformat.Category `json:"-"`
	Name       string             `json:"name"`
	Count      int64              `json:"count"`
	KeyBytes   int64              `json:"keyBytes"`
	ValueBytes int64              `json:"valueBytes"`
}

// Stats summarizes a whole store.
type Stats struct {
	Categories []CategoryStats `json:"categories"`
	Total      int64           `json:"total"`
}

// Counts maps category names to entry counts.
func (s Stats) Counts() map[string]int64 {
	m := make(map[string]int64, len(s.Categories))
	for _, c := range s.Categories {
		m[c.Name] = c.Count
	}
	return m
}

// Stats counts entries per category. Categories appear in key order.
func (r *Reader) Stats() (Stats, error) {
	var s Stats
	err := r.Each(Filter{}, func(e Entry) error {
		n := len(s.Categories)
		if n == 0 || s.Categories[n-1].Category != e.Category {
			s.Categories = append(s.Categories, CategoryStats{Category: e.Category, Name: e.Category.String()})
			n++
		}
		c := &s.Categories[n-1]
		c.Count++
		c.KeyBytes += int64(len(e.Key))
		c.ValueBytes += int64(len(e.Value))
		s.Total++
		return nil
	})
	return s, err
}
