// Package ignite provides an embedded, log-structured key/value data
// store, inspired by Bitcask. It combines an in-memory index with an
// append-only log structure on disk to achieve high write throughput and
// constant-time reads.
//
// An Instance is not safe for concurrent use: the underlying engine
// performs no internal locking and blocking operations accept no
// cancellation, since there are no cooperative yield points to honor.
// Callers must serialize access to a single Instance themselves.
package ignite

import (
	"github.com/ignitedb/ignite/internal/engine"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
)

// Instance is the primary entry point for interacting with the Ignite
// store, providing methods for setting, getting, and removing key-value
// pairs backed by a directory on disk.
type Instance struct {
	engine  *engine.Engine   // The underlying storage engine handling reads and writes.
	options *options.Options // Configuration options applied to this instance.
}

// Open creates and initializes a new Ignite instance rooted at the
// directory given by options.WithDataDir (or the default data directory
// if none is supplied). It replays any existing data on disk before
// returning.
func Open(service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.New(&engine.Config{Logger: log, Options: &defaultOpts})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// Set stores a key-value pair in the database. If the key already
// exists, its value is overwritten. The write is durable once Set
// returns successfully.
func (i *Instance) Set(key, value string) error {
	return i.engine.Set(key, value)
}

// Get retrieves the value associated with the given key. The second
// return value is false if the key has never been set or was most
// recently removed.
func (i *Instance) Get(key string) (string, bool, error) {
	return i.engine.Get(key)
}

// Remove deletes a key-value pair from the database. It returns a
// KeyNotFound error if the key is absent; no write occurs in that case.
func (i *Instance) Remove(key string) error {
	return i.engine.Remove(key)
}

// Close gracefully shuts down the Ignite instance, flushing any pending
// writes and releasing every open file handle.
func (i *Instance) Close() error {
	return i.engine.Close()
}
