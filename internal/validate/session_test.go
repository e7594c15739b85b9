package validate_test

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodyval/internal/engine"
	"github.com/san-kum/nbodyval/internal/logging"
	"github.com/san-kum/nbodyval/internal/match"
	"github.com/san-kum/nbodyval/internal/snapshot"
	"github.com/san-kum/nbodyval/internal/validate"
)

// staticEngine hands out a fixed snapshot or error.
type staticEngine struct {
	snap snapshot.Snapshot
	err  error
}

func (e *staticEngine) Name() string { return "static" }

func (e *staticEngine) Acquire(ctx context.Context, req engine.Request) (snapshot.Snapshot, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.snap.Clone(), nil
}

func fourBody() snapshot.Snapshot {
	return snapshot.Snapshot{
		{X: 0.0, Y: 0.0, Mass: 1, VX: 0.1, VY: 0.0},   // A
		{X: 1.0, Y: 0.5, Mass: 2, VX: 0.0, VY: 0.2},   // B
		{X: -0.5, Y: 1.5, Mass: 3, VX: -0.1, VY: 0.0}, // C
		{X: 2.0, Y: -1.0, Mass: 4, VX: 0.0, VY: -0.1}, // D
	}
}

// reorder returns [D, B, A, C].
func reorder(s snapshot.Snapshot) snapshot.Snapshot {
	return snapshot.Snapshot{s[3], s[1], s[0], s[2]}
}

func shifted(s snapshot.Snapshot, d float64) snapshot.Snapshot {
	out := s.Clone()
	for i := range out {
		out[i].X += d
		out[i].Y += d
	}
	return out
}

var _ = Describe("Session", func() {
	var (
		ctx     context.Context
		policy  validate.Policy
		session *validate.Session
		ref     snapshot.Snapshot
	)

	BeforeEach(func() {
		ctx = context.Background()
		policy = validate.DefaultPolicy()
		ref = fourBody()
	})

	JustBeforeEach(func() {
		session = validate.NewSession(policy, logging.Discard())
		Expect(session.State()).To(Equal(validate.StateInit))
		Expect(session.Begin("v1", ref)).To(Succeed())
		Expect(session.State()).To(Equal(validate.StateRunning))
	})

	Context("with a reordered but identical candidate", func() {
		It("recovers the order and passes the exact threshold", func() {
			row, err := session.Evaluate(ctx, validate.Scenario{
				Label:     "theta=0.0",
				Engine:    &staticEngine{snap: reorder(ref)},
				Regime:    validate.Exact,
				Threshold: 1e-12,
				Reorders:  true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Outcome).To(Equal(validate.Pass))
			Expect(row.RMSE).To(Equal(0.0))
			Expect(row.Key).To(Equal(match.KeyMass))
			Expect(row.MomentumDrift).To(BeNumerically("<", 1e-15))
			Expect(row.Line()).To(Equal("theta=0.0: PASS deviation=0.000e+00 threshold=1e-12"))

			report, err := session.Finish()
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Passed).To(BeTrue())
			Expect(report.Summary()).To(Equal(validate.AllPassed))
			Expect(session.State()).To(Equal(validate.StateReported))
		})

		It("reports momentum drift relative to the reference", func() {
			cand := reorder(ref)
			for i := range cand {
				cand[i].VX *= 2
				cand[i].VY *= 2
			}
			row, _ := session.Evaluate(ctx, validate.Scenario{
				Label:     "fast",
				Engine:    &staticEngine{snap: cand},
				Regime:    validate.Exact,
				Threshold: 1e-12,
				Reorders:  true,
			})
			Expect(row.Outcome).To(Equal(validate.Pass))
			Expect(row.MomentumDrift).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("fails when correspondence is skipped", func() {
			row, _ := session.Evaluate(ctx, validate.Scenario{
				Label:  "unsorted",
				Engine: &staticEngine{snap: reorder(ref)},
				Regime: validate.Exact,
			})
			Expect(row.Outcome).To(Equal(validate.Fail))
			Expect(row.Key).To(Equal(match.KeyIdentity))
			Expect(row.RMSE).To(BeNumerically(">", 0))
		})
	})

	Context("with a shifted candidate", func() {
		var scn validate.Scenario

		BeforeEach(func() {
			scn = validate.Scenario{
				Label:     "theta=0.5",
				Engine:    &staticEngine{snap: shifted(reorder(ref), 1.0)},
				Regime:    validate.Approximate,
				Threshold: 5e-2,
				Reorders:  true,
			}
		})

		It("fails the approximate threshold", func() {
			row, _ := session.Evaluate(ctx, scn)
			Expect(row.Outcome).To(Equal(validate.Fail))
			Expect(row.RMSE).To(BeNumerically("~", math.Sqrt2, 1e-12))
			Expect(row.Line()).To(HavePrefix("theta=0.5: FAIL deviation=1.414e+00 threshold=0.05"))

			report, _ := session.Finish()
			Expect(report.Passed).To(BeFalse())
			Expect(report.Summary()).To(Equal(validate.SomeFailed))
		})

		Context("in approximate-tolerant mode", func() {
			BeforeEach(func() {
				policy.ApproximateTolerant = true
			})

			It("tolerates approximate breaches", func() {
				row, _ := session.Evaluate(ctx, scn)
				Expect(row.Outcome).To(Equal(validate.Tolerated))

				report, _ := session.Finish()
				Expect(report.Passed).To(BeTrue())
				Expect(report.Tolerant).To(BeTrue())
			})

			DescribeTable("fails non-finite deviations",
				func(v float64) {
					cand := fourBody()
					cand[0].X = v
					row, _ := session.Evaluate(ctx, validate.Scenario{
						Label:  "bh",
						Engine: &staticEngine{snap: cand},
						Regime: validate.Approximate,
					})
					Expect(row.Outcome).To(Equal(validate.Fail))

					report, _ := session.Finish()
					Expect(report.Passed).To(BeFalse())
					Expect(report.Summary()).To(Equal(validate.SomeFailed))
				},
				Entry("NaN", math.NaN()),
				Entry("+Inf", math.Inf(1)),
			)

			It("still fails exact breaches", func() {
				scn.Regime = validate.Exact
				scn.Threshold = 0
				row, _ := session.Evaluate(ctx, scn)
				Expect(row.Outcome).To(Equal(validate.Fail))
				Expect(row.Threshold).To(Equal(validate.DefaultExactThreshold))
			})
		})
	})

	Context("when acquisition fails", func() {
		It("records ERROR and carries on", func() {
			failing := validate.Scenario{
				Label:  "v3",
				Engine: &staticEngine{err: fmt.Errorf("v3: %w", engine.ErrEngineFailure)},
			}
			good := validate.Scenario{
				Label:    "v4",
				Engine:   &staticEngine{snap: reorder(ref)},
				Reorders: true,
			}

			row, err := session.Evaluate(ctx, failing)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Outcome).To(Equal(validate.Error))
			Expect(row.Line()).To(Equal("v3: ERROR v3: engine: failure"))

			row, _ = session.Evaluate(ctx, good)
			Expect(row.Outcome).To(Equal(validate.Pass))

			report, _ := session.Finish()
			Expect(report.Rows).To(HaveLen(2))
			Expect(report.Passed).To(BeFalse())
			Expect(report.Counts()).To(Equal(map[validate.Outcome]int{validate.Error: 1, validate.Pass: 1}))
			Expect(report.Lines()).To(Equal([]string{
				"v3: ERROR v3: engine: failure",
				"v4: PASS deviation=0.000e+00 threshold=1e-12",
				"SOME FAILED",
			}))
		})

		It("records ERROR for a size mismatch", func() {
			row, _ := session.Evaluate(ctx, validate.Scenario{
				Label:    "short",
				Engine:   &staticEngine{snap: ref[:3]},
				Reorders: true,
			})
			Expect(row.Outcome).To(Equal(validate.Error))
			Expect(row.Message).To(ContainSubstring("sizes differ"))
		})

		It("records ERROR for a missing engine", func() {
			row, _ := session.Evaluate(ctx, validate.Scenario{Label: "none"})
			Expect(row.Outcome).To(Equal(validate.Error))
		})

		It("records ERROR for an unknown regime", func() {
			row, _ := session.Evaluate(ctx, validate.Scenario{
				Label:  "odd",
				Engine: &staticEngine{snap: ref},
				Regime: "fuzzy",
			})
			Expect(row.Outcome).To(Equal(validate.Error))
			Expect(row.Message).To(ContainSubstring("unknown regime"))
		})
	})

	Context("when reference masses repeat", func() {
		BeforeEach(func() {
			ref = fourBody()
			for i := range ref {
				ref[i].Mass = 1
			}
		})

		It("falls back to spatial ranking and flags it", func() {
			row, _ := session.Evaluate(ctx, validate.Scenario{
				Label:    "equal-mass",
				Engine:   &staticEngine{snap: reorder(ref)},
				Reorders: true,
			})
			Expect(row.Outcome).To(Equal(validate.Pass))
			Expect(row.Key).To(Equal(match.KeySpatial))
			Expect(row.Line()).To(HaveSuffix(" key=spatial"))
		})
	})

	Context("with an energy bound", func() {
		It("fails when energy drifts past the bound", func() {
			cand := reorder(ref)
			for i := range cand {
				cand[i].VX *= 2
			}
			row, _ := session.Evaluate(ctx, validate.Scenario{
				Label:       "hot",
				Engine:      &staticEngine{snap: cand},
				Reorders:    true,
				EnergyBound: 1e-6,
			})
			Expect(row.RMSE).To(Equal(0.0))
			Expect(row.EnergyDrift).To(BeNumerically(">", 1e-6))
			Expect(row.Outcome).To(Equal(validate.Fail))
			Expect(row.Line()).To(ContainSubstring("bound=1e-06"))
		})
	})

	Context("state machine", func() {
		It("rejects a second reference", func() {
			Expect(session.Begin("again", ref)).To(MatchError(validate.ErrBadTransition))
		})

		It("rejects scenarios after reporting", func() {
			_, err := session.Finish()
			Expect(err).NotTo(HaveOccurred())

			_, err = session.Evaluate(ctx, validate.Scenario{Label: "late"})
			Expect(err).To(MatchError(validate.ErrBadTransition))
			_, err = session.Finish()
			Expect(err).To(MatchError(validate.ErrBadTransition))
		})
	})
})

var _ = Describe("Session before a reference", func() {
	It("refuses to evaluate or finish", func() {
		s := validate.NewSession(validate.DefaultPolicy(), logging.Discard())
		_, err := s.Evaluate(context.Background(), validate.Scenario{})
		Expect(err).To(MatchError(validate.ErrBadTransition))
		_, err = s.Finish()
		Expect(err).To(MatchError(validate.ErrBadTransition))
		Expect(s.Begin("empty", nil)).To(MatchError(validate.ErrEmptyReference))
	})
})

var _ = Describe("Run", func() {
	var input string

	BeforeEach(func() {
		input = filepath.Join(GinkgoT().TempDir(), "input.gal")
		Expect(snapshot.Write(input, fourBody(), snapshot.WidthInput)).To(Succeed())
	})

	It("validates a sorting engine against the direct reference", func() {
		req := engine.Request{Particles: 4, Input: input, Steps: 10, Dt: 1e-3}
		ref := &engine.Direct{Softening: 1e-3}
		scenarios := []validate.Scenario{
			{Label: "sorted", Engine: &engine.Reorder{Inner: &engine.Direct{Softening: 1e-3}}, Request: req, Reorders: true},
			{Label: "missing", Engine: &engine.File{Path: input + ".nope"}, Request: req},
		}

		s := validate.NewSession(validate.DefaultPolicy(), logging.Discard())
		report, err := s.Run(context.Background(), "direct", ref, req, scenarios)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Particles).To(Equal(4))
		Expect(report.Rows[0].Outcome).To(Equal(validate.Pass))
		Expect(report.Rows[0].EnergyDrift).To(BeNumerically("<", 1e-12))
		Expect(report.Rows[1].Outcome).To(Equal(validate.Error))
		Expect(report.Rows[1].Message).To(ContainSubstring("missing file"))
		Expect(report.Passed).To(BeFalse())
	})

	It("aborts when the reference cannot be acquired", func() {
		s := validate.NewSession(validate.DefaultPolicy(), logging.Discard())
		_, err := s.Run(context.Background(), "v1", &staticEngine{err: engine.ErrEngineFailure}, engine.Request{}, nil)
		Expect(err).To(MatchError(engine.ErrEngineFailure))
		Expect(s.State()).To(Equal(validate.StateInit))
	})
})

var _ = Describe("Regime", func() {
	DescribeTable("ParseRegime",
		func(in string, want validate.Regime, ok bool) {
			got, err := validate.ParseRegime(in)
			if !ok {
				Expect(err).To(MatchError(validate.ErrUnknownRegime))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("empty is exact", "", validate.Exact, true),
		Entry("exact", "exact", validate.Exact, true),
		Entry("approximate", "approximate", validate.Approximate, true),
		Entry("unknown", "loose", validate.Regime(""), false),
	)

	It("picks thresholds by regime", func() {
		Expect(validate.Exact.DefaultThreshold()).To(Equal(1e-12))
		Expect(validate.Approximate.DefaultThreshold()).To(Equal(5e-2))
	})
})
