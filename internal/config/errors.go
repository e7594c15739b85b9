package config

import "errors"

var (
	ErrInvalid       = errors.New("config: invalid")
	ErrUnknownPreset = errors.New("config: unknown preset")
)
