package errors

// SerdeError is a specialized error type for record encode/decode failures.
// It embeds baseError the same way StorageError and IndexError do, adding
// the generation and byte offset a decode failure occurred at so replay
// failures can be pinned to an exact record.
type SerdeError struct {
	*baseError
	generation uint64
	offset     int64
}

// NewSerdeError creates a new serde-specific error.
func NewSerdeError(err error, code ErrorCode, msg string) *SerdeError {
	return &SerdeError{baseError: NewBaseError(err, code, msg)}
}

// WithGeneration records which segment generation was being decoded.
func (se *SerdeError) WithGeneration(generation uint64) *SerdeError {
	se.generation = generation
	return se
}

// WithOffset records the byte offset within the generation's segment file
// where decoding failed.
func (se *SerdeError) WithOffset(offset int64) *SerdeError {
	se.offset = offset
	return se
}

// WithDetail adds contextual information while maintaining the SerdeError type.
func (se *SerdeError) WithDetail(key string, value any) *SerdeError {
	se.baseError.WithDetail(key, value)
	return se
}

// Generation returns the segment generation being decoded when the error occurred.
func (se *SerdeError) Generation() uint64 {
	return se.generation
}

// Offset returns the byte offset within the segment where decoding failed.
func (se *SerdeError) Offset() int64 {
	return se.offset
}

// NewDecodeError wraps a JSON decode failure encountered while replaying or
// reading a segment file.
func NewDecodeError(cause error, generation uint64, offset int64) *SerdeError {
	return NewSerdeError(cause, ErrorCodeSerde, "failed to decode record").
		WithGeneration(generation).
		WithOffset(offset)
}

// NewEncodeError wraps a JSON encode failure encountered while appending a
// record to the active segment.
func NewEncodeError(cause error, generation uint64) *SerdeError {
	return NewSerdeError(cause, ErrorCodeSerde, "failed to encode record").
		WithGeneration(generation)
}
