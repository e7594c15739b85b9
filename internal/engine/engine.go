package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/nbodyval/internal/snapshot"
)

// ErrEngineFailure indicates the engine exited nonzero or produced no output.
var ErrEngineFailure = errors.New("engine: failure")

// ErrUnstable indicates an in-process run that failed its energy check.
var ErrUnstable = errors.New("engine: energy drift exceeds bound")

// ErrUnknownKind indicates an engine descriptor with an unsupported kind.
var ErrUnknownKind = errors.New("engine: unknown kind")

// Request carries the arguments of one engine run, in the order the engine
// command line expects them.
type Request struct {
	Particles int
	Input     string
	Steps     int
	Dt        float64
	Threads   int
	Theta     float64
	K         int
	Flags     []string
}

// Args renders r as the engine command line: N input steps dt threads theta k [flags...].
func (r Request) Args() []string {
	args := []string{
		fmt.Sprint(r.Particles),
		r.Input,
		fmt.Sprint(r.Steps),
		fmt.Sprint(r.Dt),
		fmt.Sprint(r.Threads),
		fmt.Sprint(r.Theta),
		fmt.Sprint(r.K),
	}
	return append(args, r.Flags...)
}

type Engine interface {
	Name() string
	Acquire(ctx context.Context, req Request) (snapshot.Snapshot, error)
}

// RunError describes a failed engine process.
type RunError struct {
	Binary   string
	ExitCode int
	Stderr   string
	Wrapped  error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: exit %d", e.Binary, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *RunError) Unwrap() []error {
	if e.Wrapped == nil {
		return []error{ErrEngineFailure}
	}
	return []error{ErrEngineFailure, e.Wrapped}
}
