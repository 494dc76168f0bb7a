// Package kvstore opens the engine's embedded key-value store read-only.
package kvstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = pebble.ErrNotFound

// Options configures Open.
type Options struct {
	// DataDir is the path to the store directory.
	DataDir string
	// PebbleOptions allows advanced tuning. ReadOnly is always forced on.
	PebbleOptions *pebble.Options
}

// DB wraps a read-only Pebble database.
type DB struct {
	inner *pebble.DB
}

// Open opens an existing store. It never creates or modifies files.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("kvstore: Options.DataDir is required")
	}
	info, err := os.Stat(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("kvstore: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("kvstore: %s is not a directory", opts.DataDir)
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	po.ReadOnly = true
	po.ErrorIfNotExists = true

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("kvstore: failed to open %s: %w", opts.DataDir, err)
	}
	return &DB{inner: inner}, nil
}

// Close closes the database. It is safe to call more than once.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	err := db.inner.Close()
	db.inner = nil
	return err
}

// NewSnapshot creates a consistent view of the database. Caller must Close the snapshot.
func (db *DB) NewSnapshot() *pebble.Snapshot {
	return db.inner.NewSnapshot()
}

// Get copies the value for key out of r, which may be a database or a snapshot.
func Get(r pebble.Reader, key []byte) ([]byte, error) {
	val, closer, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

// PrefixUpperBound returns the smallest key greater than every key starting
// with prefix, or nil if there is none.
func PrefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
