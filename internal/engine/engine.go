// Package engine provides the core database engine implementation for the
// Ignite storage system.
//
// The engine coordinates three subsystems: the index (in-memory key to
// on-disk location mapping), storage (the open generation files), and
// compaction (the procedure that reclaims dead space). It is the sole
// subject of the crash-safety and ordering guarantees this system makes —
// everything above it (the CLI, process startup) is a thin caller.
//
// The engine is not safe for concurrent use: it performs no internal
// locking and accepts no context.Context on its operations, since there
// are no cooperative yield points or cancellation semantics to honor.
// Callers must serialize access to a single Engine themselves.
package engine

import (
	stdErrors "errors"
	"io"
	"sync/atomic"

	"github.com/ignitedb/ignite/internal/compaction"
	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/record"
	"github.com/ignitedb/ignite/internal/storage"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
	"go.uber.org/zap"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")
)

// Engine is the storage engine: segment layout, in-memory index, the
// crash-safe append path, and compaction.
type Engine struct {
	options   *options.Options   // Configuration parameters for the engine and its subsystems.
	log       *zap.SugaredLogger // Structured logger for operational visibility.
	closed    atomic.Bool        // Tracks the engine's lifecycle state.
	index     *index.Index       // In-memory mapping from key to on-disk location.
	storage   *storage.Storage   // Open generation files: the active writer and every reader.
	deadBytes int64              // Upper bound on on-disk bytes shadowed by later records.
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens the engine rooted at config.Options.DataDir: it creates the
// directory if missing, replays every existing generation in ascending
// order to rebuild the index and dead-byte count, and allocates a fresh
// active generation for subsequent writes.
func New(config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "engine configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	idx, err := index.New(&index.Config{DataDir: config.Options.DataDir, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	st, existingGenerations, err := storage.Open(&storage.Config{
		Options: config.Options,
		Logger:  config.Logger,
	})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		options: config.Options,
		log:     config.Logger,
		index:   idx,
		storage: st,
	}

	for _, gen := range existingGenerations {
		if err := e.replay(gen); err != nil {
			st.Close()
			return nil, err
		}
	}

	config.Logger.Infow("Engine opened", "dataDir", config.Options.DataDir, "activeGeneration", st.ActiveGeneration(), "deadBytes", e.deadBytes, "keys", idx.Len())
	return e, nil
}

// replay decodes every record in generation's segment file in order,
// rebuilding the index and dead-byte count to match spec.md §4.4 step 3
// exactly.
func (e *Engine) replay(generation uint64) error {
	reader, err := e.storage.Reader(generation)
	if err != nil {
		return err
	}

	dec := record.NewStreamDecoder(reader)
	var pos int64

	for {
		rec, newPos, err := dec.Next()
		if stdErrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.NewDecodeError(err, generation, pos)
		}

		length := newPos - pos

		switch rec.Kind {
		case record.KindSet:
			prev := e.index.Put(rec.Key, index.RecordLocation{Generation: generation, Offset: pos, Length: length})
			if prev != nil {
				e.deadBytes += prev.Length
			}
		case record.KindRemove:
			if prev, ok := e.index.Delete(rec.Key); ok {
				e.deadBytes += prev.Length
			}
			e.deadBytes += length
		}

		pos = newPos
	}

	// The streaming decoder may have buffered ahead past the final
	// confirmed record boundary; trust only dec's own offset bookkeeping
	// during the loop, then reseek the reader to that exact boundary so
	// the next caller (get, another replay, compaction) starts from a
	// position that matches what the index just recorded.
	if _, err := reader.Seek(pos, io.SeekStart); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to reseek reader after replay")
	}

	return nil
}

// Set stores key mapped to value, flushing to disk before the index is
// updated so a crash before flush leaves the index consistent with what's
// on disk.
func (e *Engine) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	writer := e.storage.ActiveWriter()
	offsetBefore := writer.Pos()

	encoded, err := record.Encode(record.Set(key, value))
	if err != nil {
		return err
	}

	if _, err := writer.Write(encoded); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append Set record")
	}

	if err := writer.Flush(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to flush Set record")
	}

	length := writer.Pos() - offsetBefore
	prev := e.index.Put(key, index.RecordLocation{
		Generation: e.storage.ActiveGeneration(),
		Offset:     offsetBefore,
		Length:     length,
	})
	if prev != nil {
		e.deadBytes += prev.Length
	}

	if e.deadBytes > e.options.CompactionThreshold {
		if err := e.Compact(); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the value last set for key, or ("", false) if key has never
// been set or was most recently removed.
func (e *Engine) Get(key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}

	loc, ok := e.index.Get(key)
	if !ok {
		return "", false, nil
	}

	reader, err := e.storage.Reader(loc.Generation)
	if err != nil {
		return "", false, err
	}

	if reader.Pos() != loc.Offset {
		if _, err := reader.Seek(loc.Offset, io.SeekStart); err != nil {
			return "", false, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek to record location")
		}
	}

	buf := make([]byte, loc.Length)
	if _, err := reader.ReadFull(buf); err != nil {
		return "", false, errors.NewDecodeError(err, loc.Generation, loc.Offset)
	}

	rec, err := record.Decode(buf)
	if err != nil {
		return "", false, err
	}

	if rec.Kind != record.KindSet {
		return "", false, errors.NewUnexpectedCommandTypeError(key, loc.Generation)
	}

	return rec.Value, true, nil
}

// Remove deletes key from the engine. It fails with a KeyNotFound error
// (and performs no write) if key is absent.
func (e *Engine) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	prevLoc, ok := e.index.Get(key)
	if !ok {
		return errors.NewKeyNotFoundError(key)
	}

	writer := e.storage.ActiveWriter()
	offsetBefore := writer.Pos()

	encoded, err := record.Encode(record.Remove(key))
	if err != nil {
		return err
	}

	if _, err := writer.Write(encoded); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append Remove record")
	}

	if err := writer.Flush(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to flush Remove record")
	}

	length := writer.Pos() - offsetBefore
	e.index.Delete(key)
	e.deadBytes += prevLoc.Length
	e.deadBytes += length

	if e.deadBytes > e.options.CompactionThreshold {
		if err := e.Compact(); err != nil {
			return err
		}
	}

	return nil
}

// Compact rewrites every live record into a fresh generation and deletes
// every generation that preceded it, per spec.md §4.8.
func (e *Engine) Compact() error {
	newActiveGen, newActiveWriter, err := compaction.Run(e.storage, e.index, e.log)
	if err != nil {
		return err
	}

	if err := e.storage.SetActiveWriter(newActiveGen, newActiveWriter); err != nil {
		return err
	}
	e.deadBytes = 0
	return nil
}

// Close flushes and closes every open file handle the engine owns.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	if err := e.index.Close(); err != nil {
		e.log.Errorw("Failed to close index", "error", err)
	}

	return e.storage.Close()
}
