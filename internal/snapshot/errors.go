package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile indicates the snapshot path does not exist.
	ErrMissingFile = errors.New("snapshot: missing file")

	// ErrTruncatedRecord indicates fewer than N*width*8 bytes were available.
	ErrTruncatedRecord = errors.New("snapshot: truncated record")

	// ErrInvalidWidth indicates a record width other than 5 or 6 doubles.
	ErrInvalidWidth = errors.New("snapshot: record width must be 5 or 6 doubles")

	// ErrInvalidCount indicates a negative particle count.
	ErrInvalidCount = errors.New("snapshot: particle count must be >= 0")

	// ErrInvalidPermutation indicates a permutation that is not a bijection on [0, N).
	ErrInvalidPermutation = errors.New("snapshot: invalid permutation")
)

// ReadError wraps a decode failure with the file and record it happened at.
type ReadError struct {
	Path    string
	Index   int
	Wrapped error
}

func (e *ReadError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: record %d: %v", e.Path, e.Index, e.Wrapped)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Wrapped)
}

func (e *ReadError) Unwrap() error {
	return e.Wrapped
}
