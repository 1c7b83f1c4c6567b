// Package options provides data structures and functions for configuring
// the Ignite database. It defines the parameters that control Ignite's
// on-disk layout and buffering behavior: where data lives, how large the
// internal read/write buffers are, and how much dead space a generation
// can accumulate before compaction reclaims it.
package options

import "strings"

// Options defines the configuration parameters for an Ignite engine
// instance. It provides control over storage location and the I/O
// buffering and compaction thresholds that govern how the engine behaves
// under sustained writes.
type Options struct {
	// Specifies the directory where generation files are stored. The
	// directory is created on Open if it does not already exist.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// Defines the number of dead bytes (space occupied by stale Set/Remove
	// records superseded by a later write) a data directory must accumulate
	// before Set triggers a compaction pass.
	//
	// Default: 1048576 (1MiB)
	CompactionThreshold int64 `json:"compactionThreshold"`

	// Defines the buffer size used by the positioned reader wrapping each
	// open generation file.
	//
	// Default: 65536 (64KiB)
	ReaderBufferSize int `json:"readerBufferSize"`

	// Defines the buffer size used by the positioned writer wrapping the
	// active generation file.
	//
	// Default: 65536 (64KiB)
	WriterBufferSize int `json:"writerBufferSize"`
}

// OptionFunc is a function type that modifies the Ignite engine's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.CompactionThreshold = opts.CompactionThreshold
		o.ReaderBufferSize = opts.ReaderBufferSize
		o.WriterBufferSize = opts.WriterBufferSize
	}
}

// WithDataDir sets the primary data directory for the engine.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithCompactionThreshold sets the dead-byte threshold that triggers
// compaction after a write.
func WithCompactionThreshold(threshold int64) OptionFunc {
	return func(o *Options) {
		if threshold > 0 {
			o.CompactionThreshold = threshold
		}
	}
}

// WithReaderBufferSize sets the buffer size used by positioned segment readers.
func WithReaderBufferSize(size int) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.ReaderBufferSize = size
		}
	}
}

// WithWriterBufferSize sets the buffer size used by the positioned segment writer.
func WithWriterBufferSize(size int) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.WriterBufferSize = size
		}
	}
}
