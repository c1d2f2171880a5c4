package forecast

import (
	"slices"

	"github.com/arloliu/declinecurve/segment"
)

// MultiSegment owns a segment list and edits it in place.
//
// A MultiSegment is not safe for concurrent mutation.
type MultiSegment struct {
	f        *Forecaster
	Segments []segment.Record
}

// NewMultiSegment returns a MultiSegment holding a copy of segs.
func (f *Forecaster) NewMultiSegment(segs []segment.Record) *MultiSegment {
	return &MultiSegment{f: f, Segments: slices.Clone(segs)}
}

// PredictSelf is Predict over the held segments.
func (m *MultiSegment) PredictSelf(indices []float64, fill float64) []float64 {
	return m.f.Predict(indices, m.Segments, fill)
}

// ApplyMultiplierSelf scales the held segments in place.
func (m *MultiSegment) ApplyMultiplierSelf(factor float64) {
	for i := range m.Segments {
		m.Segments[i] = scale(m.Segments[i], factor)
	}
}

// ShiftSegmentsIdxSelf shifts the held segments in place.
func (m *MultiSegment) ShiftSegmentsIdxSelf(deltaT float64, fromIndex int, dir Direction) {
	shiftInPlace(m.Segments, deltaT, fromIndex, dir)
}

// RateEurSelf is RateEur over the held segments, except that segments of
// zero slope contribute their constant rate times the number of days. For a
// constant rate that rectangle equals the offset sum RateEur uses, so both
// return the same volume.
func (m *MultiSegment) RateEurSelf(cum, lastHistIdx, left, right float64) float64 {
	return m.f.rateEur(cum, lastHistIdx, left, right, m.Segments, true)
}

// Validate checks the held segments.
func (m *MultiSegment) Validate() error {
	return m.f.Validate(m.Segments)
}
