// Package storage manages the family of generation files an engine
// directory holds: opening a positioned reader for every existing
// generation at startup, creating new generations as the active segment
// rolls over during compaction, and removing generations once compaction
// has made them redundant.
//
// Exactly one generation is active at any time; storage hands the engine
// its writer. Every generation, including the active one, has a
// positioned reader registered so get and compaction never reopen a file
// that's already known to the process.
package storage

import (
	stdErrors "errors"
	"fmt"
	"os"

	"github.com/ignitedb/ignite/internal/posio"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/filesys"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/ignitedb/ignite/pkg/seginfo"
	"go.uber.org/multierr"
)

// ErrStorageClosed is returned by Close on a Storage that has already
// been closed.
var ErrStorageClosed = stdErrors.New("operation failed: cannot access closed storage")

// Open creates the data directory if missing, opens a positioned reader
// for every existing generation, and allocates and opens a fresh active
// generation one past the highest existing one (or 1 if the directory
// was empty). It returns the Storage along with every pre-existing
// generation in ascending order, which is the replay order the engine
// needs to rebuild its index; the freshly created active generation is
// not included since it starts empty.
func Open(config *Config) (*Storage, []uint64, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, nil, fmt.Errorf("invalid configuration")
	}

	config.Logger.Infow("Initializing storage system", "dataDir", config.Options.DataDir)

	if err := filesys.CreateDir(config.Options.DataDir, 0755, true); err != nil {
		return nil, nil, errors.ClassifyDirectoryCreationError(err, config.Options.DataDir)
	}

	generations, err := seginfo.ScanGenerations(config.Options.DataDir)
	if err != nil {
		return nil, nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "Failed to scan data directory for existing generations",
		).WithPath(config.Options.DataDir)
	}

	config.Logger.Infow("Discovered existing generations", "generations", generations)

	st := &Storage{
		dataDir: config.Options.DataDir,
		options: config.Options,
		log:     config.Logger,
		readers: make(map[uint64]*posio.Reader, len(generations)+1),
	}

	for _, gen := range generations {
		if _, err := st.openReader(gen); err != nil {
			st.closeAll()
			return nil, nil, err
		}
	}

	var nextGen uint64 = 1
	if len(generations) > 0 {
		nextGen = generations[len(generations)-1] + 1
	}

	writer, err := st.CreateGeneration(nextGen)
	if err != nil {
		st.closeAll()
		return nil, nil, err
	}
	if err := st.SetActiveWriter(nextGen, writer); err != nil {
		st.closeAll()
		return nil, nil, err
	}

	config.Logger.Infow("Storage system initialized", "activeGeneration", nextGen, "priorGenerations", generations)
	return st, generations, nil
}

// openReader opens the existing generation file for read-only positioned
// access and registers it in the readers map.
func (s *Storage) openReader(generation uint64) (*posio.Reader, error) {
	path := seginfo.Path(s.dataDir, generation)

	file, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, seginfo.FileName(generation))
	}

	reader, err := posio.NewReader(file, s.options.ReaderBufferSize)
	if err != nil {
		file.Close()
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "Failed to initialize positioned reader",
		).WithFileName(seginfo.FileName(generation)).WithPath(path)
	}

	s.readers[generation] = reader
	return reader, nil
}

// CreateGeneration creates a new, empty generation file opened for
// append, wraps it in a positioned writer, and also opens and registers a
// read-only reader for the same generation — the engine reads back its
// own active segment during get the same way it reads any other.
// It does not change the Storage's notion of which generation is active;
// callers that are rolling over the active writer call SetActiveWriter
// afterward.
func (s *Storage) CreateGeneration(generation uint64) (*posio.Writer, error) {
	path := seginfo.Path(s.dataDir, generation)
	filename := seginfo.FileName(generation)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filename)
	}

	writer, err := posio.NewWriter(file, s.options.WriterBufferSize)
	if err != nil {
		file.Close()
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeIO, "Failed to initialize positioned writer",
		).WithFileName(filename).WithPath(path)
	}

	if _, err := s.openReader(generation); err != nil {
		writer.Close()
		return nil, err
	}

	s.log.Infow("Created generation file", "generation", generation, "path", path)
	return writer, nil
}

// SetActiveWriter makes writer, bound to generation, the active writer
// that Set and Remove append through, closing the writer it replaces.
// The outgoing generation's reader stays registered in the readers map —
// only the writer's own file handle is released, since compaction and get
// still need to read back records already flushed to that generation.
func (s *Storage) SetActiveWriter(generation uint64, writer *posio.Writer) error {
	var err error
	if s.activeWriter != nil {
		if closeErr := s.activeWriter.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close superseded active writer for generation %d: %w", s.activeGeneration, closeErr)
		}
	}

	s.activeGeneration = generation
	s.activeWriter = writer
	return err
}

// ActiveWriter returns the positioned writer for the currently active generation.
func (s *Storage) ActiveWriter() *posio.Writer {
	return s.activeWriter
}

// ActiveGeneration returns the generation currently receiving appends.
func (s *Storage) ActiveGeneration() uint64 {
	return s.activeGeneration
}

// Reader returns the positioned reader registered for generation, or a
// structured error if no reader is registered — an internal consistency
// failure between the index and the storage layer.
func (s *Storage) Reader(generation uint64) (*posio.Reader, error) {
	reader, ok := s.readers[generation]
	if !ok {
		return nil, errors.NewSegmentIDError(generation, "")
	}
	return reader, nil
}

// RemoveGenerationsBelow closes and deletes every generation file with a
// generation strictly less than threshold, per the compaction procedure
// in spec.md §4.8. It aggregates every close/remove failure via multierr
// rather than stopping at the first one, since compaction has already
// committed the new generations and should make as much forward progress
// on cleanup as it can.
func (s *Storage) RemoveGenerationsBelow(threshold uint64) error {
	var errs error

	for generation, reader := range s.readers {
		if generation >= threshold {
			continue
		}

		if err := reader.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}

		path := seginfo.Path(s.dataDir, generation)
		if err := os.Remove(path); err != nil {
			errs = multierr.Append(errs, err)
		}

		delete(s.readers, generation)
	}

	if errs != nil {
		s.log.Errorw("Failed to fully remove stale generations", "threshold", threshold, "error", errs)
	}

	return errs
}

// closeAll closes every open reader and the active writer without
// checking the closed flag, used to unwind a partially constructed
// Storage when Open fails partway through.
func (s *Storage) closeAll() {
	for _, reader := range s.readers {
		reader.Close()
	}
	if s.activeWriter != nil {
		s.activeWriter.Close()
	}
}

// Close flushes and closes the active writer and every registered reader,
// aggregating any failures via multierr so a single bad file handle
// doesn't prevent the rest from releasing their resources.
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStorageClosed
	}

	var errs error

	if s.activeWriter != nil {
		if err := s.activeWriter.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	for generation, reader := range s.readers {
		if err := reader.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("generation %d: %w", generation, err))
		}
	}

	if errs != nil {
		s.log.Errorw("Storage closed with errors", "error", errs)
	} else {
		s.log.Infow("Storage closed successfully")
	}

	return errs
}
