package forecast

import (
	"fmt"

	"github.com/arloliu/declinecurve/decline"
	"github.com/arloliu/declinecurve/errs"
	"github.com/arloliu/declinecurve/segment"
)

// Direction selects the side of a pivot segment ShiftSegmentsIdx moves.
type Direction int

const (
	// Forward shifts the pivot segment and every segment after it.
	Forward Direction = iota
	// Backward shifts the pivot segment and every segment before it.
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Forecaster evaluates segment lists with a segment engine.
type Forecaster struct {
	eng *segment.Engine
}

// New returns a Forecaster backed by eng.
func New(eng *segment.Engine) *Forecaster {
	return &Forecaster{eng: eng}
}

// Engine returns the segment engine.
func (f *Forecaster) Engine() *segment.Engine {
	return f.eng
}

func (f *Forecaster) curves(segs []segment.Record) []decline.Curve {
	out := make([]decline.Curve, len(segs))
	for i, s := range segs {
		out[i] = f.eng.Curve(s)
	}

	return out
}

// Predict returns the rate at each index. Indices not covered by any segment get fill.
func (f *Forecaster) Predict(indices []float64, segs []segment.Record, fill float64) []float64 {
	curves := f.curves(segs)
	out := make([]float64, len(indices))

	j := 0
	for i, idx := range indices {
		for j < len(segs) && idx > segs[j].EndIdx {
			j++
		}
		if j < len(segs) && idx >= segs[j].StartIdx {
			out[i] = curves[j].Predict(idx - segs[j].StartIdx)
		} else {
			out[i] = fill
		}
	}

	return out
}

// ApplyMultiplier returns a copy of segs with every rate scaled by factor.
// Declines and exponents are unchanged.
func ApplyMultiplier(segs []segment.Record, factor float64) []segment.Record {
	out := make([]segment.Record, len(segs))
	for i, s := range segs {
		out[i] = scale(s, factor)
	}

	return out
}

func scale(s segment.Record, factor float64) segment.Record {
	s.QStart *= factor
	s.QEnd *= factor
	s.C *= factor
	s.K *= factor

	return s
}

// ShiftSegmentsIdx returns a copy of segs with the indices of the segments on
// one side of segs[fromIndex], the pivot included, moved by deltaT days.
func ShiftSegmentsIdx(segs []segment.Record, deltaT float64, fromIndex int, dir Direction) []segment.Record {
	out := make([]segment.Record, len(segs))
	copy(out, segs)
	shiftInPlace(out, deltaT, fromIndex, dir)

	return out
}

func shiftInPlace(segs []segment.Record, deltaT float64, fromIndex int, dir Direction) {
	lo, hi := fromIndex, len(segs)
	if dir == Backward {
		lo, hi = 0, fromIndex+1
	}
	lo, hi = max(lo, 0), min(hi, len(segs))

	for i := lo; i < hi; i++ {
		segs[i].StartIdx += deltaT
		segs[i].EndIdx += deltaT
		if segs[i].Kind == segment.KindArpsModified {
			segs[i].SwIdx += deltaT
		}
	}
}

// Validate checks that every segment is consistent, the list is sorted by
// start index and consecutive segments do not overlap.
func (f *Forecaster) Validate(segs []segment.Record) error {
	for i, s := range segs {
		if err := f.eng.Validate(s); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		prev := segs[i-1]
		if s.StartIdx < prev.StartIdx {
			return fmt.Errorf("segment %d starts at %g before %g: %w", i, s.StartIdx, prev.StartIdx, errs.ErrUnsortedSegments)
		}
		if s.StartIdx <= prev.EndIdx {
			return fmt.Errorf("segment %d starts at %g within [%g, %g]: %w",
				i, s.StartIdx, prev.StartIdx, prev.EndIdx, errs.ErrOverlappingSegments)
		}
	}

	return nil
}
