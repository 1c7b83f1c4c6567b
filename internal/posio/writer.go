package posio

import (
	"bufio"
	"io"
	"os"
)

// Writer wraps a buffered writer over an *os.File opened for append, and
// tracks the absolute byte offset the next write will land at.
type Writer struct {
	file   *os.File
	writer *bufio.Writer
	pos    int64
}

// NewWriter seeks file to its current end (the file is expected to be
// opened with os.O_APPEND, but tracking pos still requires knowing where
// that end currently is) and wraps it in a buffered writer with the given
// buffer size.
func NewWriter(file *os.File, bufferSize int) (*Writer, error) {
	pos, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	return &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, bufferSize),
		pos:    pos,
	}, nil
}

// Pos returns the absolute byte offset the next Write will start at.
func (w *Writer) Pos() int64 {
	return w.pos
}

// Write implements io.Writer, advancing pos by the number of bytes written.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.writer.Write(p)
	w.pos += int64(n)
	return n, err
}

// Flush flushes the buffered writer to the underlying file. It does not
// fsync; spec.md leaves fsync cadence to the caller.
func (w *Writer) Flush() error {
	return w.writer.Flush()
}

// Sync flushes the buffer and fsyncs the underlying file, guaranteeing the
// bytes written so far survive a crash.
func (w *Writer) Sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes the buffer and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
