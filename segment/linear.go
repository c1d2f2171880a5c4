package segment

import (
	"fmt"
	"math"

	"github.com/arloliu/declinecurve/config"
	"github.com/arloliu/declinecurve/decline"
	"github.com/arloliu/declinecurve/errs"
)

// linearStrategy governs a segment by q_start and the daily slope k.
// D = −k/q_start and D_eff = D·365.25; the sign of k sets the direction.
type linearStrategy struct {
	base
}

func (s linearStrategy) curve(r Record) decline.Curve {
	return decline.Linear{QStart: r.QStart, K: r.K}
}

func (s linearStrategy) kFromDEff(dEff, qStart float64) float64 {
	return -decline.LinearDEffToD(dEff) * qStart
}

func (s linearStrategy) check(r Record) error {
	if err := s.checkSpan(r); err != nil {
		return err
	}
	if err := s.checkRate("q_start", r.QStart); err != nil {
		return err
	}
	if err := s.checkRate("q_end", r.QEnd); err != nil {
		return err
	}

	return checkIn("D_eff", r.DEff, -s.dom.MaxInclineDEff, s.dom.DefaultMaxDEff)
}

func (s linearStrategy) finish(r Record) (Record, error) {
	if math.IsNaN(r.K) || math.IsInf(r.K, 0) {
		return Record{}, fmt.Errorf("solve k on linear segment: %w", errs.ErrNonFinite)
	}
	r.Kind = s.kind
	r.B, r.C = 0, 0
	r.SwIdx, r.TargetDEffSw, r.RealizedDEffSw = 0, 0, 0
	r.D = -r.K / r.QStart
	r.DEff = decline.LinearDToDEff(r.D)
	r.QEnd = r.QStart + r.K*r.Duration()
	r.SlopeSign = Slope(r.K)

	if err := s.check(r); err != nil {
		return Record{}, err
	}

	return r, nil
}

func (s linearStrategy) generate(raw Record) (Record, bool) {
	r, fixed := s.generateSpan(raw)

	if !inRange(r.QStart, s.dom.NumericSmall, s.dom.NumericLarge) {
		r.QStart = defaultRate
		fixed = true
	}
	if r.K == 0 && r.DEff != 0 {
		r.K = s.kFromDEff(r.DEff, r.QStart)
	}
	dEff := decline.LinearDToDEff(-r.K / r.QStart)
	if !inRange(dEff, -s.dom.MaxInclineDEff, s.dom.DefaultMaxDEff) {
		r.K = 0
		fixed = true
	}

	if out, err := s.finish(r); err == nil {
		return out, fixed
	}
	r.K = 0
	out, _ := s.finish(r)

	return out, true
}

// kRange returns the slopes that keep both the end rate and D_eff in bounds.
func (s linearStrategy) kRange(r Record) (float64, float64) {
	lo := s.kFromDEff(s.dom.DefaultMaxDEff, r.QStart)
	hi := s.kFromDEff(-s.dom.MaxInclineDEff, r.QStart)
	if t := r.Duration(); t > 0 {
		lo = math.Max(lo, (s.dom.NumericSmall-r.QStart)/t)
		hi = math.Min(hi, (s.dom.NumericLarge-r.QStart)/t)
	}

	return lo, hi
}

// maxDuration returns how long the line stays within the rate bounds.
func (s linearStrategy) maxDuration(r Record) float64 {
	switch {
	case r.K < 0:
		return limitTime((s.dom.NumericSmall - r.QStart) / r.K)
	case r.K > 0:
		return limitTime((s.dom.NumericLarge - r.QStart) / r.K)
	default:
		return math.Inf(1)
	}
}

func (s linearStrategy) formRange(r Record, f Field) (Range, error) {
	t := r.Duration()
	small, large := s.dom.NumericSmall, s.dom.NumericLarge

	switch f {
	case FieldStartIdx, FieldEndIdx:
		return s.spanRange(r, f, s.maxDuration(r)), nil

	case FieldQStart:
		lo, hi := small, large
		if r.K < 0 {
			lo = math.Max(lo, small-r.K*t)
			lo = math.Max(lo, -r.K*config.DaysInYear/s.dom.DefaultMaxDEff)
		} else if r.K > 0 {
			hi = math.Min(hi, large-r.K*t)
			lo = math.Max(lo, r.K*config.DaysInYear/s.dom.MaxInclineDEff)
		}

		return s.finishRange(Range{Min: lo, Max: hi}, r.QStart, false), nil

	case FieldK:
		lo, hi := s.kRange(r)

		return s.finishRange(Range{Min: lo, Max: hi}, r.K, false), nil

	case FieldDEff:
		lo, hi := s.kRange(r)
		rg := Range{
			Min: decline.LinearDToDEff(-hi / r.QStart),
			Max: decline.LinearDToDEff(-lo / r.QStart),
		}

		return s.finishRange(rg, r.DEff, false), nil

	case FieldQEnd:
		if t <= 0 {
			return Range{Min: r.QStart, Max: r.QStart}, nil
		}
		lo, hi := s.kRange(r)
		rg := Range{Min: r.QStart + lo*t, Max: r.QStart + hi*t}

		return s.finishRange(rg, r.QEnd, false), nil

	default:
		return Range{}, s.invalidField(f)
	}
}

// endFromRate moves the end index to where the line reaches q.
func (s linearStrategy) endFromRate(r Record, q float64) (Record, error) {
	t := decline.LinearGetTime(r.QStart, q, r.K)
	switch {
	case math.IsInf(t, 1):
		return Record{}, errs.NewTooLarge("end_idx", t, s.dom.DateIdxLarge)
	case t < 0:
		return Record{}, errs.NewTooSmall("end_idx", r.StartIdx+t, r.StartIdx)
	}
	r.EndIdx = r.StartIdx + math.Round(t)

	return s.finish(r)
}

func (s linearStrategy) slopeTo(op string, r Record, qEnd float64) (Record, error) {
	if r.Duration() <= 0 {
		return Record{}, fmt.Errorf("%s on zero-length linear segment: %w", op, errs.ErrTargetUnreachable)
	}
	r.K = decline.LinearGetK(r.QStart, qEnd, r.Duration())

	return s.finish(r)
}

func (s linearStrategy) changeQEnd(r Record, v float64, target Field) (Record, error) {
	if err := s.checkRate("q_end", v); err != nil {
		return Record{}, err
	}

	switch target {
	case FieldK, FieldDEff:
		return s.slopeTo("change q_end", r, v)
	case FieldEndIdx:
		return s.endFromRate(r, v)
	default:
		return Record{}, s.invalidTarget("change q_end", target)
	}
}

func (s linearStrategy) changeDeff(r Record, v float64, target Field) (Record, error) {
	if err := checkIn("D_eff", v, -s.dom.MaxInclineDEff, s.dom.DefaultMaxDEff); err != nil {
		return Record{}, err
	}

	return s.changeK(r, s.kFromDEff(v, r.QStart), target)
}

func (s linearStrategy) changeK(r Record, v float64, target Field) (Record, error) {
	switch target {
	case FieldQEnd:
		r.K = v

		return s.finish(r)
	case FieldEndIdx:
		qEnd := r.QEnd
		r.K = v

		return s.endFromRate(r, qEnd)
	default:
		return Record{}, s.invalidTarget("change k", target)
	}
}

func (s linearStrategy) qFinal(r Record, qFinal, wellLifeIdx float64) (Record, error) {
	if err := s.checkRate("q_final", qFinal); err != nil {
		return Record{}, err
	}
	end, err := s.qFinalEnd(r, decline.LinearGetTime(r.QStart, qFinal, r.K), wellLifeIdx)
	if err != nil {
		return Record{}, err
	}
	r.EndIdx = end

	return s.finish(r)
}

func (s linearStrategy) anchorStart(r Record, q float64) (Record, error) {
	if err := s.checkRate("q_start", q); err != nil {
		return Record{}, err
	}
	qEnd := r.QEnd
	r.QStart = q
	if r.Duration() > 0 {
		r.K = decline.LinearGetK(q, qEnd, r.Duration())
	}

	return s.finish(r)
}

func (s linearStrategy) anchorEnd(r Record, q float64) (Record, error) {
	if err := s.checkRate("q_end", q); err != nil {
		return Record{}, err
	}
	if r.Duration() <= 0 {
		r.QStart = q

		return s.finish(r)
	}

	return s.slopeTo("anchor", r, q)
}

func (s linearStrategy) matchSlope(r Record, slope float64) (Record, error) {
	r.K = slope

	return s.finish(r)
}

func (s linearStrategy) calcQStart(r Record) (Record, error) {
	r.QStart = decline.LinearGetQStart(r.QEnd, r.K, r.Duration())

	return s.finish(r)
}

func (s linearStrategy) calcEndIdx(r Record) (Record, error) {
	return s.endFromRate(r, r.QEnd)
}

func (s linearStrategy) calcQEnd(r Record) (Record, error) {
	return s.finish(r)
}

func (s linearStrategy) calcDeff(r Record) (Record, error) {
	return s.slopeTo("calc D_eff", r, r.QEnd)
}

func (s linearStrategy) calcK(r Record) (Record, error) {
	return s.slopeTo("calc k", r, r.QEnd)
}
