package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/san-kum/nbodyval/internal/snapshot"
)

// DefaultOutput is the file name engines write their final state to.
const DefaultOutput = "result.gal"

// Exec runs an external engine binary. The engine writes Output inside Dir;
// on success the file is read with Width and, if Archive is set, renamed to
// Archive so the next run cannot overwrite it.
type Exec struct {
	Label   string
	Binary  string
	Dir     string
	Output  string
	Archive string
	Width   int
}

func (e *Exec) Name() string {
	if e.Label != "" {
		return e.Label
	}
	return filepath.Base(e.Binary)
}

func (e *Exec) outputPath() string {
	out := e.Output
	if out == "" {
		out = DefaultOutput
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(e.Dir, out)
}

func (e *Exec) Acquire(ctx context.Context, req Request) (snapshot.Snapshot, error) {
	out := e.outputPath()

	// A stale file from an earlier run must not pass for this run's output.
	if err := os.Remove(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale output: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.Binary, req.Args()...)
	cmd.Dir = e.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return nil, &RunError{Binary: e.Binary, ExitCode: code, Stderr: stderr.String(), Wrapped: err}
	}

	if _, err := os.Stat(out); err != nil {
		return nil, &RunError{Binary: e.Binary, ExitCode: 0, Stderr: stderr.String(), Wrapped: fmt.Errorf("no output at %s", out)}
	}

	width := e.Width
	if width == 0 {
		width = snapshot.WidthResult
	}
	snap, err := snapshot.Read(out, req.Particles, width)
	if err != nil {
		return nil, err
	}

	if e.Archive != "" {
		if err := os.Rename(out, e.Archive); err != nil {
			return nil, fmt.Errorf("archive output: %w", err)
		}
	}
	return snap, nil
}
