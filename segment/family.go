package segment

import (
	"fmt"
	"math"

	"github.com/arloliu/declinecurve/decline"
	"github.com/arloliu/declinecurve/errs"
)

// family describes a rate model q(t) = q_start·f(t; D, b) that scales with
// its start rate. Every decline and incline kind except linear is one.
type family struct {
	incline    bool
	usesB      bool
	usesSwitch bool

	toD    func(dEff, b float64) float64
	toDEff func(d, b float64) float64
	// curve builds the model from QStart, D, B and TargetDEffSw.
	curve func(r Record) decline.Curve
	// solveD solves q(t) = qEnd for D, holding QStart and the shape of r.
	solveD func(r Record, qEnd, t float64) float64
	// solveTime returns the relative time the curve of r reaches q.
	solveTime func(r Record, q float64) float64

	// defaults holds QStart, DEff, B and TargetDEffSw of a generated segment.
	defaults Record
}

// declineStrategy implements every family kind on top of its family.
type declineStrategy struct {
	base
	fam family
}

func (s declineStrategy) curve(r Record) decline.Curve {
	return s.fam.curve(r)
}

// dEffBounds returns the admissible effective decline interval.
func (s declineStrategy) dEffBounds() (float64, float64) {
	if s.fam.incline {
		return -s.dom.MaxInclineDEff, -s.dom.MinDEff
	}

	return s.dom.MinDEff, s.dom.DefaultMaxDEff
}

// limitRate is the rate bound the curve moves toward.
func (s declineStrategy) limitRate() float64 {
	if s.fam.incline {
		return s.dom.NumericLarge
	}

	return s.dom.NumericSmall
}

func (s declineStrategy) slope() int {
	if s.fam.incline {
		return 1
	}

	return -1
}

func (s declineStrategy) check(r Record) error {
	if err := s.checkSpan(r); err != nil {
		return err
	}
	if err := s.checkRate("q_start", r.QStart); err != nil {
		return err
	}
	if err := s.checkRate("q_end", r.QEnd); err != nil {
		return err
	}
	lo, hi := s.dEffBounds()
	if err := checkIn("D_eff", r.DEff, lo, hi); err != nil {
		return err
	}
	if s.fam.usesB {
		if err := checkIn("b", r.B, s.dom.MinB, s.dom.MaxB); err != nil {
			return err
		}
	}
	if s.fam.usesSwitch {
		if err := checkIn("target_D_eff_sw", r.TargetDEffSw, s.dom.MinDEff, s.dom.DefaultMaxDEff); err != nil {
			return err
		}
	}

	return nil
}

// fromDEff derives D from DEff, then finishes r.
func (s declineStrategy) fromDEff(r Record) (Record, error) {
	r.D = s.fam.toD(r.DEff, r.B)

	return s.finish(r)
}

// fromD derives DEff from D, then finishes r.
func (s declineStrategy) fromD(r Record) (Record, error) {
	if math.IsNaN(r.D) || math.IsInf(r.D, 0) {
		return Record{}, fmt.Errorf("solve D on %s segment: %w", s.kind, errs.ErrNonFinite)
	}
	r.DEff = s.fam.toDEff(r.D, r.B)

	return s.finish(r)
}

// finish recomputes every derived field from QStart, D, B and the span, then validates.
func (s declineStrategy) finish(r Record) (Record, error) {
	r.Kind = s.kind
	r.K, r.C = 0, 0
	if !s.fam.usesB {
		r.B = 0
	}
	r.SlopeSign = s.slope()

	c := s.fam.curve(r)
	r.QEnd = c.Predict(r.Duration())
	if m, ok := c.(decline.ModifiedArps); ok {
		r.SwIdx = r.StartIdx + m.TSw
		r.RealizedDEffSw = decline.ExpDToDEff(m.DExp)
	} else {
		r.SwIdx, r.TargetDEffSw, r.RealizedDEffSw = 0, 0, 0
	}

	if err := s.check(r); err != nil {
		return Record{}, err
	}

	return r, nil
}

func (s declineStrategy) generate(raw Record) (Record, bool) {
	r, fixed := s.generateSpan(raw)
	def := s.fam.defaults

	if !inRange(r.QStart, s.dom.NumericSmall, s.dom.NumericLarge) {
		r.QStart = def.QStart
		fixed = true
	}
	if s.fam.usesB && !inRange(r.B, s.dom.MinB, s.dom.MaxB) {
		r.B = def.B
		fixed = true
	}
	if s.fam.usesSwitch && !inRange(r.TargetDEffSw, s.dom.MinDEff, s.dom.DefaultMaxDEff) {
		r.TargetDEffSw = def.TargetDEffSw
		fixed = true
	}

	lo, hi := s.dEffBounds()
	if r.DEff == 0 && r.D != 0 {
		r.DEff = s.fam.toDEff(r.D, r.B)
	}
	if !inRange(r.DEff, lo, hi) {
		r.DEff = def.DEff
		fixed = true
	}

	if out, err := s.fromDEff(r); err == nil {
		return out, fixed
	}

	// the raw parameters leave the numeric bounds over the span: fall back to the kind defaults
	def.StartIdx, def.EndIdx = r.StartIdx, r.EndIdx
	if out, err := s.fromDEff(def); err == nil {
		return out, true
	}
	def.EndIdx = def.StartIdx
	out, _ := s.fromDEff(def)

	return out, true
}

// qEndAt returns the end rate of r for an effective decline.
func (s declineStrategy) qEndAt(r Record, dEff float64) float64 {
	r.D = s.fam.toD(dEff, r.B)

	return s.fam.curve(r).Predict(r.Duration())
}

// rateValid reports whether the end rate of r stays within the numeric bounds.
func (s declineStrategy) rateValid(r Record) bool {
	r.D = s.fam.toD(r.DEff, r.B)
	q := s.fam.curve(r).Predict(r.Duration())

	return inRange(q, s.dom.NumericSmall, s.dom.NumericLarge)
}

func (s declineStrategy) formRange(r Record, f Field) (Range, error) {
	t := r.Duration()
	small, large := s.dom.NumericSmall, s.dom.NumericLarge
	lo, hi := s.dEffBounds()

	switch f {
	case FieldStartIdx, FieldEndIdx:
		return s.spanRange(r, f, limitTime(s.fam.solveTime(r, s.limitRate()))), nil

	case FieldQStart:
		ratio := r.QEnd / r.QStart
		rg := Range{Min: math.Max(small, small/ratio), Max: math.Min(large, large/ratio)}

		return s.finishRange(rg, r.QStart, false), nil

	case FieldQEnd:
		if t <= 0 {
			return Range{Min: r.QStart, Max: r.QStart}, nil
		}
		qa, qb := s.qEndAt(r, lo), s.qEndAt(r, hi)
		rg := Range{Min: math.Max(small, math.Min(qa, qb)), Max: math.Min(large, math.Max(qa, qb))}

		return s.finishRange(rg, r.QEnd, false), nil

	case FieldDEff:
		if t > 0 {
			edge := s.fam.toDEff(s.fam.solveD(r, s.limitRate(), t), r.B)
			if !math.IsNaN(edge) {
				if s.fam.incline {
					lo = math.Max(lo, edge)
				} else {
					hi = math.Min(hi, edge)
				}
			}
		}

		return s.finishRange(Range{Min: lo, Max: hi}, r.DEff, false), nil

	case FieldB:
		if !s.fam.usesB {
			return Range{}, s.invalidField(f)
		}
		valid := func(b float64) bool {
			rr := r
			rr.B = b

			return s.rateValid(rr)
		}

		return s.finishRange(clampRange(valid, s.dom.MinB, s.dom.MaxB, r.B), r.B, false), nil

	case FieldTargetDEffSw:
		if !s.fam.usesSwitch {
			return Range{}, s.invalidField(f)
		}
		valid := func(v float64) bool {
			rr := r
			rr.TargetDEffSw = v

			return s.rateValid(rr)
		}
		rg := clampRange(valid, s.dom.MinDEff, s.dom.DefaultMaxDEff, r.TargetDEffSw)

		return s.finishRange(rg, r.TargetDEffSw, false), nil

	default:
		return Range{}, s.invalidField(f)
	}
}

// endFromRate moves the end index to where the curve of r reaches q, rounded to whole days.
func (s declineStrategy) endFromRate(r Record, q float64) (Record, error) {
	t := s.fam.solveTime(r, q)
	switch {
	case math.IsNaN(t):
		return Record{}, fmt.Errorf("solve end_idx on %s segment: %w", s.kind, errs.ErrNonFinite)
	case math.IsInf(t, 1):
		return Record{}, errs.NewTooLarge("end_idx", t, s.dom.DateIdxLarge)
	case t < 0:
		return Record{}, errs.NewTooSmall("end_idx", r.StartIdx+t, r.StartIdx)
	}
	r.EndIdx = r.StartIdx + math.Round(t)

	return s.fromD(r)
}

func (s declineStrategy) requireDuration(op string, r Record) error {
	if r.Duration() <= 0 {
		return fmt.Errorf("%s on zero-length %s segment: %w", op, s.kind, errs.ErrTargetUnreachable)
	}

	return nil
}

func (s declineStrategy) changeQEnd(r Record, v float64, target Field) (Record, error) {
	if err := s.checkRate("q_end", v); err != nil {
		return Record{}, err
	}

	switch target {
	case FieldDEff:
		if err := s.requireDuration("change q_end", r); err != nil {
			return Record{}, err
		}
		r.D = s.fam.solveD(r, v, r.Duration())

		return s.fromD(r)
	case FieldEndIdx:
		return s.endFromRate(r, v)
	default:
		return Record{}, s.invalidTarget("change q_end", target)
	}
}

func (s declineStrategy) changeDeff(r Record, v float64, target Field) (Record, error) {
	lo, hi := s.dEffBounds()
	if err := checkIn("D_eff", v, lo, hi); err != nil {
		return Record{}, err
	}

	switch target {
	case FieldQEnd:
		r.DEff = v

		return s.fromDEff(r)
	case FieldEndIdx:
		qEnd := r.QEnd
		r.DEff = v
		r.D = s.fam.toD(v, r.B)

		return s.endFromRate(r, qEnd)
	default:
		return Record{}, s.invalidTarget("change D_eff", target)
	}
}

func (s declineStrategy) changeB(r Record, v float64, target Field) (Record, error) {
	if !s.fam.usesB {
		return s.base.changeB(r, v, target)
	}
	if err := checkIn("b", v, s.dom.MinB, s.dom.MaxB); err != nil {
		return Record{}, err
	}
	r.B = v

	switch target {
	case FieldQEnd:
		return s.fromDEff(r)
	case FieldDEff:
		if err := s.requireDuration("change b", r); err != nil {
			return Record{}, err
		}
		r.D = s.fam.solveD(r, r.QEnd, r.Duration())

		return s.fromD(r)
	default:
		return Record{}, s.invalidTarget("change b", target)
	}
}

func (s declineStrategy) changeTargetDEffSw(r Record, v float64) (Record, error) {
	if !s.fam.usesSwitch {
		return s.base.changeTargetDEffSw(r, v)
	}
	if err := checkIn("target_D_eff_sw", v, s.dom.MinDEff, s.dom.DefaultMaxDEff); err != nil {
		return Record{}, err
	}
	r.TargetDEffSw = v

	return s.fromDEff(r)
}

func (s declineStrategy) qFinal(r Record, qFinal, wellLifeIdx float64) (Record, error) {
	if err := s.checkRate("q_final", qFinal); err != nil {
		return Record{}, err
	}
	end, err := s.qFinalEnd(r, s.fam.solveTime(r, qFinal), wellLifeIdx)
	if err != nil {
		return Record{}, err
	}
	r.EndIdx = end

	return s.fromD(r)
}

func (s declineStrategy) anchorStart(r Record, q float64) (Record, error) {
	if err := s.checkRate("q_start", q); err != nil {
		return Record{}, err
	}
	r.QStart = q
	if r.Duration() > 0 {
		r.D = s.fam.solveD(r, r.QEnd, r.Duration())
	}

	return s.fromD(r)
}

func (s declineStrategy) anchorEnd(r Record, q float64) (Record, error) {
	if err := s.checkRate("q_end", q); err != nil {
		return Record{}, err
	}
	if r.Duration() <= 0 {
		r.QStart = q

		return s.fromD(r)
	}
	r.D = s.fam.solveD(r, q, r.Duration())

	return s.fromD(r)
}

// matchSlope sets the initial nominal decline so that q'(0) = −D·q_start equals slope.
func (s declineStrategy) matchSlope(r Record, slope float64) (Record, error) {
	r.D = -slope / r.QStart

	return s.fromD(r)
}

func (s declineStrategy) calcQStart(r Record) (Record, error) {
	if err := s.checkRate("q_end", r.QEnd); err != nil {
		return Record{}, err
	}
	unit := r
	unit.QStart = 1
	unit.D = s.fam.toD(r.DEff, r.B)
	r.QStart = r.QEnd / s.fam.curve(unit).Predict(r.Duration())

	return s.fromDEff(r)
}

func (s declineStrategy) calcEndIdx(r Record) (Record, error) {
	if err := s.checkRate("q_end", r.QEnd); err != nil {
		return Record{}, err
	}
	r.D = s.fam.toD(r.DEff, r.B)

	return s.endFromRate(r, r.QEnd)
}

func (s declineStrategy) calcQEnd(r Record) (Record, error) {
	return s.fromDEff(r)
}

func (s declineStrategy) calcDeff(r Record) (Record, error) {
	if err := s.requireDuration("calc D_eff", r); err != nil {
		return Record{}, err
	}
	if err := s.checkRate("q_end", r.QEnd); err != nil {
		return Record{}, err
	}
	r.D = s.fam.solveD(r, r.QEnd, r.Duration())

	return s.fromD(r)
}
