package segment

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/arloliu/declinecurve/config"
	"github.com/arloliu/declinecurve/decline"
	"github.com/arloliu/declinecurve/errs"
	"github.com/arloliu/declinecurve/internal/options"
)

// Engine evaluates and edits segment records against a domain.
//
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	dom config.Domain
	log zerolog.Logger
}

// Option configures an Engine.
type Option = options.Option[*Engine]

// WithDomain replaces the default domain bounds.
func WithDomain(d config.Domain) Option {
	return options.New(func(e *Engine) error {
		if err := d.Validate(); err != nil {
			return err
		}
		e.dom = d

		return nil
	})
}

// WithLogger sets the logger edits are traced to. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return options.NoError(func(e *Engine) {
		e.log = l
	})
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{dom: config.Default(), log: zerolog.Nop()}
	if err := options.Apply(e, opts...); err != nil {
		return nil, fmt.Errorf("segment engine: %w", err)
	}

	return e, nil
}

// Domain returns the bounds the engine validates against.
func (e *Engine) Domain() config.Domain {
	return e.dom
}

func (e *Engine) strategy(k Kind) (strategy, error) {
	return strategyFor(k, &e.dom)
}

// Curve returns the analytic model of r in time relative to r.StartIdx.
// Records of an unknown kind produce a zero rate.
func (e *Engine) Curve(r Record) decline.Curve {
	s, err := e.strategy(r.Kind)
	if err != nil {
		return decline.Flat{}
	}

	return s.curve(r)
}

// GenerateSegmentParameter completes a raw record: every missing or invalid
// field is replaced by a kind default and the derived fields are recomputed.
// It never fails; an unknown kind yields an empty segment.
func (e *Engine) GenerateSegmentParameter(raw Record) Record {
	s, err := e.strategy(raw.Kind)
	if err != nil {
		e.log.Debug().Str("kind", string(raw.Kind)).Msg("unknown segment kind, generating empty segment")
		s, _ = e.strategy(KindEmpty)
	}

	r, substituted := s.generate(raw)
	if substituted {
		e.log.Debug().
			Str("kind", string(r.Kind)).
			Float64("start_idx", r.StartIdx).
			Float64("end_idx", r.EndIdx).
			Msg("substituted default segment parameters")
	}

	return r
}

// Predict returns the rate of r at each absolute index. Indices outside the
// segment are extrapolated.
func (e *Engine) Predict(r Record, indices []float64) []float64 {
	c := e.Curve(r)
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = c.Predict(idx - r.StartIdx)
	}

	return out
}

// Integral returns the volume r produces between absolute indices left and right.
func (e *Engine) Integral(r Record, left, right float64) float64 {
	return e.Curve(r).Integral(left-r.StartIdx, right-r.StartIdx)
}

// InverseIntegral returns the absolute index at which r has produced volume
// since left, or +Inf when it never does.
func (e *Engine) InverseIntegral(r Record, volume, left float64) float64 {
	t := e.Curve(r).InverseIntegral(volume, left-r.StartIdx)
	if math.IsInf(t, 1) {
		return t
	}

	return r.StartIdx + t
}

// FirstDerivative returns dq/dt of r at an absolute index.
func (e *Engine) FirstDerivative(r Record, idx float64) float64 {
	return e.Curve(r).FirstDerivative(idx - r.StartIdx)
}

// GetFormCalcRange returns the interval a field may be edited within while
// every other field of r stays in bounds. The range always contains the
// current value of the field.
func (e *Engine) GetFormCalcRange(r Record, f Field) (Range, error) {
	s, err := e.strategy(r.Kind)
	if err != nil {
		return Range{}, err
	}

	return s.formRange(r, f)
}

// edit runs one strategy operation and traces its failure.
func (e *Engine) edit(op string, r Record, fn func(s strategy) (Record, error)) (Record, error) {
	s, err := e.strategy(r.Kind)
	if err != nil {
		return Record{}, err
	}

	out, err := fn(s)
	if err != nil {
		e.log.Debug().Err(err).Str("op", op).Str("kind", string(r.Kind)).Msg("segment edit rejected")
		return Record{}, err
	}

	return out, nil
}

// ChangeQEnd sets the end rate; target names the field that absorbs the change:
// FieldDEff (or FieldK for linear) keeps the span, FieldEndIdx keeps the decline.
func (e *Engine) ChangeQEnd(r Record, qEnd float64, target Field) (Record, error) {
	return e.edit("change q_end", r, func(s strategy) (Record, error) {
		return s.changeQEnd(r, qEnd, target)
	})
}

// ChangeDeff sets the effective decline; target is FieldQEnd or FieldEndIdx.
func (e *Engine) ChangeDeff(r Record, dEff float64, target Field) (Record, error) {
	return e.edit("change D_eff", r, func(s strategy) (Record, error) {
		return s.changeDeff(r, dEff, target)
	})
}

// ChangeB sets the hyperbolic exponent; target is FieldQEnd (keep D_eff) or FieldDEff (keep q_end).
func (e *Engine) ChangeB(r Record, b float64, target Field) (Record, error) {
	return e.edit("change b", r, func(s strategy) (Record, error) {
		return s.changeB(r, b, target)
	})
}

// ChangeK sets the slope of a linear segment; target is FieldQEnd or FieldEndIdx.
func (e *Engine) ChangeK(r Record, k float64, target Field) (Record, error) {
	return e.edit("change k", r, func(s strategy) (Record, error) {
		return s.changeK(r, k, target)
	})
}

// ChangeTargetDEffSw sets the effective decline at which a modified Arps
// segment switches to its exponential tail. The end rate absorbs the change.
func (e *Engine) ChangeTargetDEffSw(r Record, dEffSw float64) (Record, error) {
	return e.edit("change target_D_eff_sw", r, func(s strategy) (Record, error) {
		return s.changeTargetDEffSw(r, dEffSw)
	})
}

// ButtonQFinal ends r where the rate reaches qFinal or at wellLifeIdx,
// whichever comes first.
func (e *Engine) ButtonQFinal(r Record, qFinal, wellLifeIdx float64) (Record, error) {
	return e.edit("q_final", r, func(s strategy) (Record, error) {
		return s.qFinal(r, qFinal, wellLifeIdx)
	})
}

// ButtonAnchorPrev sets the start rate of r to the end rate of prev and
// re-derives the decline so the end rate is kept.
func (e *Engine) ButtonAnchorPrev(r, prev Record) (Record, error) {
	return e.edit("anchor previous", r, func(s strategy) (Record, error) {
		if err := anchorable(prev); err != nil {
			return Record{}, err
		}

		return s.anchorStart(r, prev.QEnd)
	})
}

// ButtonAnchorNext sets the end rate of r to the start rate of next and
// re-derives the decline so the start rate is kept.
func (e *Engine) ButtonAnchorNext(r, next Record) (Record, error) {
	return e.edit("anchor next", r, func(s strategy) (Record, error) {
		if err := anchorable(next); err != nil {
			return Record{}, err
		}

		return s.anchorEnd(r, next.QStart)
	})
}

// ButtonMatchSlope sets the initial slope of r to the final slope of prev.
func (e *Engine) ButtonMatchSlope(r, prev Record) (Record, error) {
	return e.edit("match slope", r, func(s strategy) (Record, error) {
		if err := anchorable(prev); err != nil {
			return Record{}, err
		}

		return s.matchSlope(r, e.FirstDerivative(prev, prev.EndIdx))
	})
}

func anchorable(neighbor Record) error {
	if !neighbor.Kind.Valid() {
		return fmt.Errorf("neighbor segment: %w: %q", errs.ErrInvalidKind, neighbor.Kind)
	}
	if neighbor.Kind == KindEmpty {
		return fmt.Errorf("anchor to empty segment: %w", errs.ErrUnsupportedOperation)
	}

	return nil
}

// CalcQStart solves for the start rate from the end rate, decline and span.
func (e *Engine) CalcQStart(r Record) (Record, error) {
	return e.edit("calc q_start", r, func(s strategy) (Record, error) {
		return s.calcQStart(r)
	})
}

// CalcEndIdx solves for the end index from both rates and the decline.
func (e *Engine) CalcEndIdx(r Record) (Record, error) {
	return e.edit("calc end_idx", r, func(s strategy) (Record, error) {
		return s.calcEndIdx(r)
	})
}

// CalcQEnd recomputes the end rate from the start rate, decline and span.
func (e *Engine) CalcQEnd(r Record) (Record, error) {
	return e.edit("calc q_end", r, func(s strategy) (Record, error) {
		return s.calcQEnd(r)
	})
}

// CalcDeff solves for the decline from both rates and the span.
func (e *Engine) CalcDeff(r Record) (Record, error) {
	return e.edit("calc D_eff", r, func(s strategy) (Record, error) {
		return s.calcDeff(r)
	})
}

// CalcK solves for the slope of a linear segment from both rates and the span.
func (e *Engine) CalcK(r Record) (Record, error) {
	return e.edit("calc k", r, func(s strategy) (Record, error) {
		return s.calcK(r)
	})
}

// Validate reports whether the fields of r lie within the domain bounds of its
// kind. It does not re-derive q_end or the slope sign from the other fields;
// CalcQEnd restores a record whose q_end went stale.
func (e *Engine) Validate(r Record) error {
	s, err := e.strategy(r.Kind)
	if err != nil {
		return err
	}

	return s.check(r)
}
