package index

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// RecordLocation is a (generation, offset, length) triple locating one live
// Set record on disk. Only Set records ever have a RecordLocation; a
// Remove record deletes its key's entry instead of creating one.
type RecordLocation struct {
	// Generation identifies which segment file holds the record.
	Generation uint64

	// Offset is the byte position within the segment where the record begins.
	Offset int64

	// Length is the number of bytes the encoded record occupies.
	Length int64
}

// Index is the in-memory mapping from key to RecordLocation. It is the
// engine's sole owner; nothing outside internal/engine reaches into it
// concurrently, so it carries no internal locking — only an atomic
// "closed" flag for idempotent shutdown and use-after-close detection.
type Index struct {
	dataDir   string                    // Directory containing the segment files this index locates.
	log       *zap.SugaredLogger        // Structured logger for index lifecycle events.
	locations map[string]*RecordLocation // Maps each live key to its on-disk location.
	closed    atomic.Bool               // Set once Close has run; guards against double-close.
}

// Config encapsulates the configuration parameters required to initialize an Index.
type Config struct {
	DataDir string             // Directory containing the segment files this index locates.
	Logger  *zap.SugaredLogger // Structured logger for index lifecycle events.
}
