package state

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Zelldon/zdb-sub001/internal/keyformat"
	"github.com/Zelldon/zdb-sub001/internal/kvstore"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// Options configures Open.
type Options struct {
	// Registry renders keys. The zero value renders every key as hex.
	Registry keyformat.Registry
	Logger   *zap.Logger
}

// Entry is one key/value pair of the store.
type Entry struct {
	Category     keyformat.Category
	Key          []byte
	FormattedKey string
	Value        []byte
}

// Filter restricts an enumeration. The zero Filter visits every entry.
type Filter struct {
	// Category limits the scan to one category when HasCategory is set.
	Category    keyformat.Category
	HasCategory bool
	// Prefix limits the scan to keys starting with these bytes. It is applied
	// after the category prefix when both are set.
	Prefix []byte
}

// ForCategory returns a filter for all keys of c.
func ForCategory(c keyformat.Category) Filter {
	return Filter{Category: c, HasCategory: true}
}

func (f Filter) prefix() []byte {
	var p []byte
	if f.HasCategory {
		p = f.Category.Prefix()
	}
	return append(p, f.Prefix...)
}

// Reader reads a consistent snapshot of a state directory. It is not safe for
// concurrent use.
type Reader struct {
	db       *kvstore.DB
	snap     *pebble.Snapshot
	registry keyformat.Registry
	log      *zap.Logger
}

// Open opens the store in dir read-only and pins a snapshot of it.
func Open(dir string, opts Options) (*Reader, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	db, err := kvstore.Open(kvstore.Options{DataDir: dir})
	if err != nil {
		return nil, err
	}
	log.Debug("Opened state", zap.String("dir", dir))
	return &Reader{db: db, snap: db.NewSnapshot(), registry: opts.Registry, log: log}, nil
}

// Each calls fn for every entry matching f, in key order. It stops at the first
// error returned by fn and returns it.
func (r *Reader) Each(f Filter, fn func(Entry) error) (err error) {
	opts := &pebble.IterOptions{}
	if p := f.prefix(); len(p) > 0 {
		opts.LowerBound = p
		opts.UpperBound = kvstore.PrefixUpperBound(p)
	}
	it, err := r.snap.NewIter(opts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer func() {
		err = multierr.Append(err, it.Close())
	}()

	for it.First(); it.Valid(); it.Next() {
		e := r.Entry(append([]byte(nil), it.Key()...), append([]byte(nil), it.Value()...))
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("failed to iterate state: %w", err)
	}
	return nil
}

// Entry builds the entry for a raw key and value. Keys shorter than the
// category prefix get keyformat.NoCategory.
func (r *Reader) Entry(key, value []byte) Entry {
	c, ok := keyformat.CategoryOf(key)
	if !ok {
		c = keyformat.NoCategory
	}
	return Entry{
		Category:     c,
		Key:          key,
		FormattedKey: r.registry.Format(key),
		Value:        value,
	}
}

// Get returns the value stored under key.
func (r *Reader) Get(key []byte) ([]byte, error) {
	v, err := kvstore.Get(r.snap, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	return v, nil
}

// GetLong returns the value of the key made of category c and a single int64.
func (r *Reader) GetLong(c keyformat.Category, key int64) ([]byte, error) {
	return r.Get(keyformat.NewKey(c).Long(key).Bytes())
}

// Close releases the snapshot and the store.
func (r *Reader) Close() error {
	var err error
	if r.snap != nil {
		err = r.snap.Close()
		r.snap = nil
	}
	return multierr.Append(err, r.db.Close())
}
