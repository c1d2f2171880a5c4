package segment

import (
	"math"

	"github.com/arloliu/declinecurve/decline"
)

// flatStrategy holds the rate constant at c.
type flatStrategy struct {
	base
}

func (s flatStrategy) curve(r Record) decline.Curve {
	return decline.Flat{C: r.C}
}

func (s flatStrategy) check(r Record) error {
	if err := s.checkSpan(r); err != nil {
		return err
	}

	return s.checkRate("c", r.C)
}

func (s flatStrategy) finish(r Record) (Record, error) {
	r.Kind = s.kind
	r.QStart, r.QEnd = r.C, r.C
	r.D, r.DEff, r.B, r.K = 0, 0, 0, 0
	r.SwIdx, r.TargetDEffSw, r.RealizedDEffSw = 0, 0, 0
	r.SlopeSign = 0

	if err := s.check(r); err != nil {
		return Record{}, err
	}

	return r, nil
}

func (s flatStrategy) generate(raw Record) (Record, bool) {
	r, fixed := s.generateSpan(raw)
	if !inRange(r.C, s.dom.NumericSmall, s.dom.NumericLarge) {
		if inRange(r.QStart, s.dom.NumericSmall, s.dom.NumericLarge) {
			r.C = r.QStart
		} else {
			r.C = defaultRate
			fixed = true
		}
	}
	out, _ := s.finish(r)

	return out, fixed
}

func (s flatStrategy) formRange(r Record, f Field) (Range, error) {
	switch f {
	case FieldStartIdx, FieldEndIdx:
		return s.spanRange(r, f, math.Inf(1)), nil
	case FieldC, FieldQStart, FieldQEnd:
		return s.finishRange(Range{Min: s.dom.NumericSmall, Max: s.dom.NumericLarge}, r.C, false), nil
	default:
		return Range{}, s.invalidField(f)
	}
}

// qFinal ends a flat segment at its start when c is already below the
// terminal rate; otherwise only the well life can end it.
func (s flatStrategy) qFinal(r Record, qFinal, wellLifeIdx float64) (Record, error) {
	if err := s.checkRate("q_final", qFinal); err != nil {
		return Record{}, err
	}
	tq := math.Inf(1)
	if r.C < qFinal {
		tq = 0
	}
	end, err := s.qFinalEnd(r, tq, wellLifeIdx)
	if err != nil {
		return Record{}, err
	}
	r.EndIdx = end

	return s.finish(r)
}

func (s flatStrategy) anchorStart(r Record, q float64) (Record, error) {
	if err := s.checkRate("c", q); err != nil {
		return Record{}, err
	}
	r.C = q

	return s.finish(r)
}

func (s flatStrategy) anchorEnd(r Record, q float64) (Record, error) {
	return s.anchorStart(r, q)
}

func (s flatStrategy) calcQStart(r Record) (Record, error) {
	r.C = r.QEnd

	return s.finish(r)
}

func (s flatStrategy) calcQEnd(r Record) (Record, error) {
	return s.finish(r)
}
