package storage

import (
	"sync/atomic"

	"github.com/ignitedb/ignite/internal/posio"
	"github.com/ignitedb/ignite/pkg/options"
	"go.uber.org/zap"
)

// Storage owns every open generation file: the active writer appends move
// through it, and a positioned reader is kept per generation (including
// the active one) so get and compaction never pay an open() syscall on
// the hot path.
type Storage struct {
	dataDir          string                   // Directory holding every "<generation>.log" file.
	activeGeneration uint64                   // Generation currently receiving appends.
	activeWriter     *posio.Writer            // Positioned writer bound to activeGeneration.
	readers          map[uint64]*posio.Reader // Every known generation's positioned reader, including the active one.
	options          *options.Options         // Configuration parameters controlling buffer sizes.
	log              *zap.SugaredLogger       // Structured logger for operational visibility and debugging.
	closed           atomic.Bool              // Set once Close has run; guards against double-close.
}

// Config encapsulates all the configuration parameters required to initialize a Storage instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}
