package match

import "errors"

var (
	// ErrSizeMismatch indicates the two snapshots hold different particle counts.
	ErrSizeMismatch = errors.New("match: snapshot sizes differ")

	// ErrDegenerateKey marks a correspondence built from spatial ranking because
	// reference masses were not distinct. It is a warning, not a failure.
	ErrDegenerateKey = errors.New("match: masses not distinct, fell back to spatial ranking")

	// ErrInvalidCost indicates a NaN or infinite cost entry.
	ErrInvalidCost = errors.New("match: cost matrix contains NaN or Inf")

	// errNotSquare indicates a cost matrix with ragged or non-square rows.
	errNotSquare = errors.New("match: cost matrix must be square")
)
