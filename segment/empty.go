package segment

import (
	"math"

	"github.com/arloliu/declinecurve/decline"
)

// emptyStrategy produces a zero rate. Every edit keeps the record as is.
type emptyStrategy struct {
	base
}

func (s emptyStrategy) curve(Record) decline.Curve {
	return decline.Flat{}
}

func (s emptyStrategy) check(r Record) error {
	return s.checkSpan(r)
}

func (s emptyStrategy) finish(r Record) (Record, error) {
	span := r
	r = Record{Kind: s.kind, StartIdx: span.StartIdx, EndIdx: span.EndIdx}
	if err := s.check(r); err != nil {
		return Record{}, err
	}

	return r, nil
}

func (s emptyStrategy) generate(raw Record) (Record, bool) {
	r, fixed := s.generateSpan(raw)
	out, _ := s.finish(r)

	return out, fixed
}

func (s emptyStrategy) formRange(r Record, f Field) (Range, error) {
	switch f {
	case FieldStartIdx, FieldEndIdx:
		return s.spanRange(r, f, math.Inf(1)), nil
	default:
		return Range{}, nil
	}
}

func (s emptyStrategy) changeQEnd(r Record, _ float64, _ Field) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) changeDeff(r Record, _ float64, _ Field) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) changeB(r Record, _ float64, _ Field) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) changeK(r Record, _ float64, _ Field) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) changeTargetDEffSw(r Record, _ float64) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) qFinal(r Record, _, _ float64) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) anchorStart(r Record, _ float64) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) anchorEnd(r Record, _ float64) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) matchSlope(r Record, _ float64) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) calcQStart(r Record) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) calcEndIdx(r Record) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) calcQEnd(r Record) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) calcDeff(r Record) (Record, error) {
	return s.finish(r)
}

func (s emptyStrategy) calcK(r Record) (Record, error) {
	return s.finish(r)
}
