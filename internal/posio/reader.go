// Package posio provides buffered, position-tracking wrappers around a
// generation file's *os.File handle. The index stores byte offsets into a
// generation, so every reader and writer that touches a generation file
// needs to know its own absolute position without an extra syscall per
// operation.
package posio

import (
	"bufio"
	"io"
	"os"
)

// Reader wraps a buffered reader over an *os.File and tracks the absolute
// byte offset of the next read, the way the engine's recovery and
// random-access read paths need to in order to reconcile positions against
// the index.
type Reader struct {
	file   *os.File
	reader *bufio.Reader
	pos    int64
}

// NewReader seeks file to the start and wraps it in a buffered reader with
// the given buffer size.
func NewReader(file *os.File, bufferSize int) (*Reader, error) {
	pos, err := file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, err
	}

	return &Reader{
		file:   file,
		reader: bufio.NewReaderSize(file, bufferSize),
		pos:    pos,
	}, nil
}

// Pos returns the current absolute byte offset.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Read implements io.Reader, advancing pos by the number of bytes read.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.pos += int64(n)
	return n, err
}

// ReadFull reads exactly len(p) bytes, advancing pos accordingly. On a
// short read pos still advances by the bytes actually read, so it can be
// left partway into a record: on error the caller's index entry is
// already known to be bad, so a corrupt position is no worse.
func (r *Reader) ReadFull(p []byte) (int, error) {
	n, err := io.ReadFull(r.reader, p)
	r.pos += int64(n)
	return n, err
}

// Seek implements io.Seeker. It discards the buffered reader's lookahead
// and re-seeks the underlying file, since a bufio.Reader has no way to
// rewind its internal buffer to an arbitrary earlier offset.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.file.Seek(offset, whence)
	if err != nil {
		return 0, err
	}

	r.reader.Reset(r.file)
	r.pos = pos
	return pos, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
