package chunking

import "fmt"

// ChunkError marks a structural failure: the upstream document
// representation is internally inconsistent and the whole document's
// chunking is aborted. No partial results are surfaced alongside it.
type ChunkError struct {
	msg string
	err error
}

func (e *ChunkError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *ChunkError) Unwrap() error {
	return e.err
}

func newChunkErrorf(format string, args ...interface{}) *ChunkError {
	return &ChunkError{msg: fmt.Sprintf(format, args...)}
}

func wrapChunkError(err error, format string, args ...interface{}) *ChunkError {
	return &ChunkError{msg: fmt.Sprintf(format, args...), err: err}
}
