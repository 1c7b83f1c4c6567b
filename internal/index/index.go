// Package index provides the in-memory mapping from key to on-disk
// RecordLocation that the engine's get/set/remove/compact paths consult
// and update directly.
package index

import (
	stdErrors "errors"
	"sort"

	"github.com/ignitedb/ignite/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates and initializes a new Index instance configured according to
// the provided parameters, with pre-allocated map capacity for the common
// case of a directory with a non-trivial existing key count.
func New(config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:       config.Logger,
		dataDir:   config.DataDir,
		locations: make(map[string]*RecordLocation, 2046),
	}, nil
}

// Get returns the RecordLocation for key, if any.
func (idx *Index) Get(key string) (*RecordLocation, bool) {
	loc, ok := idx.locations[key]
	return loc, ok
}

// Put records key's location, returning the previous location if key was
// already present so the caller can account for the superseded record's
// length as dead space.
func (idx *Index) Put(key string, loc RecordLocation) *RecordLocation {
	prev := idx.locations[key]
	idx.locations[key] = &loc
	return prev
}

// Delete removes key from the index, returning its prior location if any
// existed.
func (idx *Index) Delete(key string) (*RecordLocation, bool) {
	prev, ok := idx.locations[key]
	if ok {
		delete(idx.locations, key)
	}
	return prev, ok
}

// Len returns the number of live keys in the index.
func (idx *Index) Len() int {
	return len(idx.locations)
}

// Keys returns every live key in sorted order. Compaction iterates the
// index "in its natural order" (spec.md §4.8); a sorted key list gives a
// deterministic order without requiring a tree-backed map.
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.locations))
	for key := range idx.locations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Close gracefully shuts down the Index, releasing the location map.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("Closing index", "keys", len(idx.locations))
	clear(idx.locations)
	idx.locations = nil

	return nil
}
