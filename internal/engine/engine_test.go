package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/san-kum/nbodyval/internal/metrics"
	"github.com/san-kum/nbodyval/internal/snapshot"
)

func fixture() snapshot.Snapshot {
	return snapshot.Snapshot{
		{X: 0.8, Y: 0.1, Mass: 1, VX: 0.0, VY: 0.3, Brightness: 1},
		{X: -0.2, Y: 0.6, Mass: 2, VX: -0.1, VY: 0.0, Brightness: 1},
		{X: 0.4, Y: -0.9, Mass: 3, VX: 0.2, VY: 0.1, Brightness: 1},
		{X: -0.7, Y: -0.3, Mass: 4, VX: 0.0, VY: -0.2, Brightness: 1},
	}
}

func TestRequestArgs(t *testing.T) {
	req := Request{Particles: 4, Input: "in.gal", Steps: 1, Dt: 1e-5, Threads: 2, Theta: 0.5, K: 1, Flags: []string{"1"}}
	got := strings.Join(req.Args(), " ")
	want := "4 in.gal 1 1e-05 2 0.5 1 1"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSpecRequestDefaults(t *testing.T) {
	req := Spec{Theta: 0.5}.Request(10, "in.gal", 3, 0.01)
	if req.Threads != 1 || req.K != 1 {
		t.Errorf("expected threads and k to default to 1, got %d and %d", req.Threads, req.K)
	}
	if req.Particles != 10 || req.Steps != 3 || req.Theta != 0.5 {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestFileEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cand.gal")
	if err := snapshot.Write(path, fixture(), snapshot.WidthResult); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	e := &File{Path: path}
	snap, err := e.Acquire(context.Background(), Request{Particles: 4})
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if len(snap) != 4 || snap[2].Mass != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if e.Name() != "cand.gal" {
		t.Errorf("expected name from path, got %s", e.Name())
	}

	_, err = (&File{Path: path + ".missing"}).Acquire(context.Background(), Request{Particles: 4})
	if !errors.Is(err, snapshot.ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestDirectZeroSteps(t *testing.T) {
	in := fixture()
	d := &Direct{Softening: 1e-3}
	out, err := d.evolve(context.Background(), in, 0, 1e-3, 1)
	if err != nil {
		t.Fatalf("evolve failed: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("particle %d changed: %+v -> %+v", i, in[i], out[i])
		}
	}
}

func TestDirectConservesMomentum(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.gal")
	if err := snapshot.Write(input, fixture(), snapshot.WidthInput); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	d := &Direct{Softening: 1e-3, Output: filepath.Join(dir, "ref.gal")}
	out, err := d.Acquire(context.Background(), Request{Particles: 4, Input: input, Steps: 200, Dt: 1e-4})
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	before := metrics.Momentum(fixture())
	after := metrics.Momentum(out)
	if drift := after.Sub(before).Norm(); drift > 1e-10 {
		t.Errorf("momentum drifted by %g", drift)
	}

	written, err := snapshot.Read(d.Output, 4, snapshot.WidthResult)
	if err != nil {
		t.Fatalf("read output failed: %v", err)
	}
	if written[0].X != out[0].X || written[3].VY != out[3].VY {
		t.Error("written output differs from returned snapshot")
	}
}

func TestDirectUnknownIntegrator(t *testing.T) {
	d := &Direct{Integrator: "nope"}
	if _, err := d.evolve(context.Background(), fixture(), 1, 1e-3, 1); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestDirectEnergyBound(t *testing.T) {
	d := &Direct{Integrator: "euler", G: 1, Softening: 1e-3, MaxDrift: 1e-12}
	_, err := d.evolve(context.Background(), fixture(), 10, 1e-3, 1)
	if !errors.Is(err, ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", err)
	}

	d.MaxDrift = 0
	if _, err := d.evolve(context.Background(), fixture(), 10, 1e-3, 1); err != nil {
		t.Fatalf("unbounded run failed: %v", err)
	}
}

func TestDirectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Direct{Softening: 1e-3}).evolve(ctx, fixture(), 10, 1e-3, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestReorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cand.gal")
	if err := snapshot.Write(path, fixture(), snapshot.WidthResult); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	r := &Reorder{Inner: &File{Label: "v4", Path: path}}
	out, err := r.Acquire(context.Background(), Request{Particles: 4})
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if r.Name() != "v4+zorder" {
		t.Errorf("unexpected name %s", r.Name())
	}

	order := snapshot.MortonOrder(out)
	for i, j := range order {
		if i != j {
			t.Fatalf("output not in Z-order: %v", order)
		}
	}

	seen := make(map[float64]bool)
	for _, p := range out {
		seen[p.Mass] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected a permutation of all particles, got %+v", out)
	}
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(dir, "engine.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script failed: %v", err)
	}
	return path
}

func TestExecSuccess(t *testing.T) {
	dir := t.TempDir()
	if err := snapshot.Write(filepath.Join(dir, "fixture.gal"), fixture(), snapshot.WidthResult); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	bin := writeScript(t, dir, `echo "$@" > args.txt
cp fixture.gal result.gal`)

	archive := filepath.Join(dir, "result_v1.gal")
	e := &Exec{Label: "v1", Binary: bin, Dir: dir, Archive: archive}
	req := Request{Particles: 4, Input: "input.gal", Steps: 1, Dt: 1e-5, Threads: 1, Theta: 0, K: 1}

	snap, err := e.Acquire(context.Background(), req)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if len(snap) != 4 || snap[1].Mass != 2 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	if err != nil {
		t.Fatalf("read args failed: %v", err)
	}
	if got := strings.TrimSpace(string(args)); got != strings.Join(req.Args(), " ") {
		t.Errorf("unexpected engine args %q", got)
	}

	if _, err := os.Stat(archive); err != nil {
		t.Errorf("expected archived output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultOutput)); !os.IsNotExist(err) {
		t.Error("expected result.gal to be moved aside")
	}
}

func TestExecFailure(t *testing.T) {
	dir := t.TempDir()
	bin := writeScript(t, dir, `echo "boom" >&2
exit 3`)

	_, err := (&Exec{Binary: bin, Dir: dir}).Acquire(context.Background(), Request{Particles: 4})
	if !errors.Is(err, ErrEngineFailure) {
		t.Fatalf("expected ErrEngineFailure, got %v", err)
	}
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %T", err)
	}
	if runErr.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", runErr.ExitCode)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected stderr in message, got %q", err.Error())
	}
}

func TestExecMissingOutput(t *testing.T) {
	dir := t.TempDir()
	if err := snapshot.Write(filepath.Join(dir, DefaultOutput), fixture(), snapshot.WidthResult); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	bin := writeScript(t, dir, "exit 0")

	_, err := (&Exec{Binary: bin, Dir: dir}).Acquire(context.Background(), Request{Particles: 4})
	if !errors.Is(err, ErrEngineFailure) {
		t.Errorf("expected ErrEngineFailure for a stale output, got %v", err)
	}
}

func TestExecTruncatedOutput(t *testing.T) {
	dir := t.TempDir()
	bin := writeScript(t, dir, "printf 'abc' > result.gal")

	_, err := (&Exec{Binary: bin, Dir: dir}).Acquire(context.Background(), Request{Particles: 4})
	if !errors.Is(err, snapshot.ErrTruncatedRecord) {
		t.Errorf("expected ErrTruncatedRecord, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if got := strings.Join(r.Kinds(), ","); got != "direct,exec,file" {
		t.Errorf("unexpected kinds %s", got)
	}

	e, err := r.Build("v2 theta=0.5", Spec{Kind: "exec", Binary: "./v2", Workdir: "/tmp/run"}, Physics{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	ex, ok := e.(*Exec)
	if !ok {
		t.Fatalf("expected *Exec, got %T", e)
	}
	if ex.Archive != filepath.Join("/tmp/run", "result_v2_theta_0.5.gal") {
		t.Errorf("unexpected archive path %s", ex.Archive)
	}

	e, err = r.Build("v4", Spec{Kind: "direct", Sort: true}, Physics{Softening: 1e-3})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, ok := e.(*Reorder); !ok {
		t.Errorf("expected sort to wrap in Reorder, got %T", e)
	}

	_, err = r.Build("x", Spec{Kind: "gpu"}, Physics{})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "direct, exec, file") {
		t.Errorf("expected available kinds in %q", err)
	}

	r.Register("gpu", func(label string, spec Spec, _ Physics) (Engine, error) {
		return &File{Label: label, Path: "gpu.gal"}, nil
	})
	if e, err := r.Build("x", Spec{Kind: "gpu"}, Physics{}); err != nil || e.Name() != "x" {
		t.Errorf("expected registered kind to build, got %v, %v", e, err)
	}
	if _, err := r.Build("x", Spec{Kind: "exec"}, Physics{}); err == nil {
		t.Error("expected error for exec without binary")
	}
	if _, err := r.Build("x", Spec{Kind: "file"}, Physics{}); err == nil {
		t.Error("expected error for file without path")
	}
}

func TestRunErrorMessage(t *testing.T) {
	err := &RunError{Binary: "v1", ExitCode: 2, Stderr: "bad input\n"}
	if got := err.Error(); got != "v1: exit 2: bad input" {
		t.Errorf("unexpected message %q", got)
	}
	if !errors.Is(err, ErrEngineFailure) {
		t.Error("expected RunError to match ErrEngineFailure")
	}
}

func TestPresort(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.gal")
	out := filepath.Join(dir, "sorted.gal")
	if err := snapshot.Write(in, fixture(), snapshot.WidthInput); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := Presort(in, out, 4, snapshot.WidthInput); err != nil {
		t.Fatalf("presort failed: %v", err)
	}
	sorted, err := snapshot.Read(out, 4, snapshot.WidthInput)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for i, j := range snapshot.MortonOrder(sorted) {
		if i != j {
			t.Fatalf("presorted file not in Z-order")
		}
	}

	if err := Presort(filepath.Join(dir, "nope.gal"), out, 4, snapshot.WidthInput); !errors.Is(err, snapshot.ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestDirectThreadsAgree(t *testing.T) {
	input := filepath.Join(t.TempDir(), "input.gal")
	if err := snapshot.Write(input, fixture(), snapshot.WidthInput); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	d := &Direct{Softening: 1e-3}
	req := Request{Particles: 4, Input: input, Steps: 20, Dt: 1e-4, Threads: 1}
	serial, err := d.Acquire(context.Background(), req)
	if err != nil {
		t.Fatalf("serial acquire failed: %v", err)
	}
	req.Threads = 4
	parallel, err := d.Acquire(context.Background(), req)
	if err != nil {
		t.Fatalf("parallel acquire failed: %v", err)
	}

	rmse, err := metrics.PositionRMSE(serial, parallel)
	if err != nil {
		t.Fatal(err)
	}
	if rmse > 1e-12 {
		t.Errorf("thread count changed the result by %g", rmse)
	}
}
