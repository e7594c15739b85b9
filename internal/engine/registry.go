package engine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Spec describes one engine as it appears in a session file. Width is the
// output record width for exec and file engines and the input width for direct.
type Spec struct {
	Kind       string   `yaml:"kind"`
	Binary     string   `yaml:"binary,omitempty"`
	Workdir    string   `yaml:"workdir,omitempty"`
	Output     string   `yaml:"output,omitempty"`
	Archive    string   `yaml:"archive,omitempty"`
	Path       string   `yaml:"path,omitempty"`
	Width      int      `yaml:"width,omitempty"`
	Integrator string   `yaml:"integrator,omitempty"`
	Theta      float64  `yaml:"theta"`
	Threads    int      `yaml:"threads,omitempty"`
	K          int      `yaml:"k,omitempty"`
	Flags      []string `yaml:"flags,omitempty"`
	Sort       bool     `yaml:"sort,omitempty"`
	MaxDrift   float64  `yaml:"max_drift,omitempty"`
}

// Request fills the engine-specific half of a run request.
func (s Spec) Request(particles int, input string, steps int, dt float64) Request {
	threads := s.Threads
	if threads == 0 {
		threads = 1
	}
	k := s.K
	if k == 0 {
		k = 1
	}
	return Request{
		Particles: particles,
		Input:     input,
		Steps:     steps,
		Dt:        dt,
		Threads:   threads,
		Theta:     s.Theta,
		K:         k,
		Flags:     s.Flags,
	}
}

// Physics holds the constants an in-process engine integrates with.
type Physics struct {
	G         float64
	Softening float64
}

type Builder func(label string, spec Spec, phys Physics) (Engine, error)

type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}

	r.Register("exec", func(label string, spec Spec, _ Physics) (Engine, error) {
		if spec.Binary == "" {
			return nil, fmt.Errorf("engine %s: exec requires binary", label)
		}
		archive := spec.Archive
		if archive == "" && label != "" {
			archive = filepath.Join(spec.Workdir, "result_"+fileSafe(label)+".gal")
		}
		return &Exec{
			Label:   label,
			Binary:  spec.Binary,
			Dir:     spec.Workdir,
			Output:  spec.Output,
			Archive: archive,
			Width:   spec.Width,
		}, nil
	})
	r.Register("direct", func(label string, spec Spec, phys Physics) (Engine, error) {
		return &Direct{
			Label:      label,
			G:          phys.G,
			Softening:  phys.Softening,
			Integrator: spec.Integrator,
			InputWidth: spec.Width,
			Output:     spec.Output,
			MaxDrift:   spec.MaxDrift,
		}, nil
	})
	r.Register("file", func(label string, spec Spec, _ Physics) (Engine, error) {
		if spec.Path == "" {
			return nil, fmt.Errorf("engine %s: file requires path", label)
		}
		return &File{Label: label, Path: spec.Path, Width: spec.Width}, nil
	})

	return r
}

// Register adds or replaces the builder for kind.
func (r *Registry) Register(kind string, b Builder) {
	r.builders[kind] = b
}

// Build constructs the engine for spec, wrapping it in Reorder when spec.Sort is set.
func (r *Registry) Build(label string, spec Spec, phys Physics) (Engine, error) {
	kind := spec.Kind
	if kind == "" {
		kind = "exec"
	}
	fn, ok := r.builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownKind, kind, strings.Join(r.Kinds(), ", "))
	}
	e, err := fn(label, spec, phys)
	if err != nil {
		return nil, err
	}
	if spec.Sort {
		return &Reorder{Inner: e}, nil
	}
	return e, nil
}

func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fileSafe(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, label)
}

// compile-time checks
var (
	_ Engine = (*Exec)(nil)
	_ Engine = (*Direct)(nil)
	_ Engine = (*File)(nil)
	_ Engine = (*Reorder)(nil)
)
