package validate

import "errors"

var (
	ErrBadTransition  = errors.New("validate: invalid session state")
	ErrEmptyReference = errors.New("validate: empty reference snapshot")
	ErrUnknownRegime  = errors.New("validate: unknown regime")
	ErrNoEngine       = errors.New("validate: scenario has no engine")
)
