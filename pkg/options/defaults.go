package options

const (
	// DefaultDataDir specifies the default base directory where Ignite will
	// store its generation files if no other directory is specified during
	// initialization.
	DefaultDataDir = "/var/lib/ignitedb"

	// DefaultCompactionThreshold is the default number of dead bytes a data
	// directory accumulates before a write triggers compaction.
	DefaultCompactionThreshold int64 = 1024 * 1024

	// DefaultReaderBufferSize is the default buffer size for positioned
	// segment readers.
	DefaultReaderBufferSize = 64 * 1024

	// DefaultWriterBufferSize is the default buffer size for the positioned
	// segment writer.
	DefaultWriterBufferSize = 64 * 1024
)

// defaultOptions holds the default configuration settings for an Ignite
// engine instance.
var defaultOptions = Options{
	DataDir:             DefaultDataDir,
	CompactionThreshold:  DefaultCompactionThreshold,
	ReaderBufferSize:     DefaultReaderBufferSize,
	WriterBufferSize:     DefaultWriterBufferSize,
}

// NewDefaultOptions returns a copy of the default engine configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
