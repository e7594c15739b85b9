package validate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/nbodyval/internal/engine"
	"github.com/san-kum/nbodyval/internal/match"
	"github.com/san-kum/nbodyval/internal/metrics"
	"github.com/san-kum/nbodyval/internal/physics"
	"github.com/san-kum/nbodyval/internal/snapshot"
)

type State int

const (
	StateInit State = iota
	StateRunning
	StateReported
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateReported:
		return "REPORTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Policy carries every constant a session judges with.
type Policy struct {
	Match match.Options
	// G is the gravitational constant for energy; 0 selects physics.ReferenceG(N).
	G         float64
	Softening float64
	// ApproximateTolerant turns RMSE breaches of approximate-regime
	// scenarios into TOLERATED rows instead of FAIL. Exact-regime breaches
	// always fail.
	ApproximateTolerant bool
}

func DefaultPolicy() Policy {
	return Policy{
		Match:     match.DefaultOptions(),
		Softening: physics.DefaultSoftening,
	}
}

type Session struct {
	policy Policy
	solver *match.Solver
	logger *slog.Logger

	state       State
	refLabel    string
	reference   snapshot.Snapshot
	refMomentum metrics.Vec2
	refEnergy   float64
	started     time.Time
	rows        []Row
}

func NewSession(policy Policy, logger *slog.Logger) *Session {
	return &Session{
		policy: policy,
		solver: match.NewSolver(policy.Match),
		logger: logger,
		state:  StateInit,
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *Session) gravity(n int) float64 {
	if s.policy.G != 0 {
		return s.policy.G
	}
	return physics.ReferenceG(n)
}

// Begin installs the reference snapshot and moves the session to RUNNING.
func (s *Session) Begin(label string, ref snapshot.Snapshot) error {
	if s.state != StateInit {
		return fmt.Errorf("%w: begin in %s", ErrBadTransition, s.state)
	}
	if len(ref) == 0 {
		return ErrEmptyReference
	}

	s.refLabel = label
	s.reference = ref.Clone()
	s.refMomentum = metrics.Momentum(s.reference)
	s.refEnergy = metrics.Energy(s.reference, s.gravity(len(ref)), s.policy.Softening).Total
	s.started = time.Now()
	s.state = StateRunning

	s.logger.Debug("reference acquired", "reference", label, "particles", len(ref), "energy", s.refEnergy)
	return nil
}

// AcquireReference runs e and begins the session with its output.
func (s *Session) AcquireReference(ctx context.Context, label string, e engine.Engine, req engine.Request) error {
	if s.state != StateInit {
		return fmt.Errorf("%w: acquire reference in %s", ErrBadTransition, s.state)
	}
	ref, err := e.Acquire(ctx, req)
	if err != nil {
		return fmt.Errorf("reference %s: %w", label, err)
	}
	return s.Begin(label, ref)
}

// Evaluate acquires the scenario's candidate and records its row. The
// returned error only reports a misuse of the session; scenario failures
// are recorded as ERROR rows.
func (s *Session) Evaluate(ctx context.Context, scn Scenario) (Row, error) {
	if s.state != StateRunning {
		return Row{}, fmt.Errorf("%w: evaluate in %s", ErrBadTransition, s.state)
	}

	start := time.Now()
	s.logger.Debug("scenario start", "scenario", scn.Label, "regime", scn.Regime, "reorders", scn.Reorders)

	var row Row
	if scn.Engine == nil {
		row = s.errorRow(scn, ErrNoEngine)
	} else if cand, err := scn.Engine.Acquire(ctx, scn.Request); err != nil {
		row = s.errorRow(scn, err)
	} else {
		row = s.compare(scn, cand)
	}
	row.Elapsed = time.Since(start)

	s.rows = append(s.rows, row)
	s.logger.Debug("scenario finished", "scenario", scn.Label, "outcome", row.Outcome, "elapsed", row.Elapsed)
	return row, nil
}

// Record judges a candidate that was acquired outside the session.
func (s *Session) Record(scn Scenario, cand snapshot.Snapshot) (Row, error) {
	if s.state != StateRunning {
		return Row{}, fmt.Errorf("%w: record in %s", ErrBadTransition, s.state)
	}
	row := s.compare(scn, cand)
	s.rows = append(s.rows, row)
	return row, nil
}

// Finish closes the session. No further scenarios can be recorded.
func (s *Session) Finish() (*Report, error) {
	if s.state != StateRunning {
		return nil, fmt.Errorf("%w: finish in %s", ErrBadTransition, s.state)
	}
	s.state = StateReported

	report := &Report{
		Reference: s.refLabel,
		Particles: len(s.reference),
		Tolerant:  s.policy.ApproximateTolerant,
		Started:   s.started,
		Finished:  time.Now(),
		Rows:      s.Rows(),
		Passed:    true,
	}
	for _, row := range report.Rows {
		if !row.Outcome.Passed() {
			report.Passed = false
		}
	}

	s.logger.Info("session reported", "reference", s.refLabel, "scenarios", len(report.Rows), "passed", report.Passed)
	return report, nil
}

// Run drives a full session. A reference failure aborts it since nothing
// can be judged without one.
func (s *Session) Run(ctx context.Context, refLabel string, ref engine.Engine, refReq engine.Request, scenarios []Scenario) (*Report, error) {
	if err := s.AcquireReference(ctx, refLabel, ref, refReq); err != nil {
		return nil, err
	}
	for _, scn := range scenarios {
		if _, err := s.Evaluate(ctx, scn); err != nil {
			return nil, err
		}
	}
	return s.Finish()
}

func (s *Session) errorRow(scn Scenario, err error) Row {
	s.logger.Warn("scenario error", "scenario", scn.Label, "err", err)
	return Row{
		Label:       scn.Label,
		Outcome:     Error,
		Regime:      scn.Regime,
		Threshold:   scn.threshold(),
		EnergyBound: scn.EnergyBound,
		Message:     err.Error(),
	}
}

func (s *Session) compare(scn Scenario, cand snapshot.Snapshot) Row {
	regime, err := ParseRegime(string(scn.Regime))
	if err != nil {
		return s.errorRow(scn, err)
	}
	scn.Regime = regime

	var corr *match.Correspondence
	if scn.Reorders {
		corr, err = s.solver.Match(s.reference, cand)
	} else {
		corr, err = match.Identity(s.reference, cand)
	}
	if err != nil {
		return s.errorRow(scn, err)
	}
	if corr.Degenerate() {
		s.logger.Warn("reference masses are not distinct, paired by spatial rank",
			"scenario", scn.Label, "err", corr.Warning())
	}

	dev, err := metrics.Deviations(s.reference, corr.Matched)
	if err != nil {
		return s.errorRow(scn, err)
	}

	g := s.gravity(len(cand))
	row := Row{
		Label:         scn.Label,
		Regime:        regime,
		Threshold:     scn.threshold(),
		RMSE:          dev.RMSE,
		MaxDeviation:  dev.Max,
		MeanDeviation: dev.Mean,
		MomentumDrift: metrics.VectorDrift(s.refMomentum, metrics.Momentum(corr.Matched)),
		EnergyDrift:   metrics.DriftRatio(s.refEnergy, metrics.Energy(corr.Matched, g, s.policy.Softening).Total),
		EnergyBound:   scn.EnergyBound,
		Key:           corr.Key,
	}
	row.Outcome = s.judge(row)
	return row
}

func (s *Session) judge(row Row) Outcome {
	if row.EnergyBound > 0 && !(row.EnergyDrift <= row.EnergyBound) {
		s.logger.Warn("energy drift exceeds bound", "scenario", row.Label, "drift", row.EnergyDrift, "bound", row.EnergyBound)
		return Fail
	}
	if !finite(row.RMSE) {
		s.logger.Warn("candidate deviation is not finite", "scenario", row.Label, "deviation", row.RMSE)
		return Fail
	}
	if row.RMSE < row.Threshold {
		return Pass
	}
	if s.policy.ApproximateTolerant && row.Regime == Approximate {
		s.logger.Warn("approximate scenario exceeds threshold, tolerated",
			"scenario", row.Label, "deviation", row.RMSE, "threshold", row.Threshold)
		return Tolerated
	}
	return Fail
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
