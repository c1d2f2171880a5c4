package forecast

import (
	"math"

	"github.com/arloliu/declinecurve/decline"
	"github.com/arloliu/declinecurve/segment"
)

// RateEur adds to cum the volume the segments produce over
// [max(lastHistIdx+1, left), right], each day sampled once.
//
// Each overlap [l, r] of a segment contributes q(l) + q(r) plus the integral
// over [l+0.5, r−0.5], which matches a daily sum for a smooth rate.
func (f *Forecaster) RateEur(cum, lastHistIdx, left, right float64, segs []segment.Record) float64 {
	return f.rateEur(cum, lastHistIdx, left, right, segs, false)
}

// Eur integrates the segments after the last historical index up to the well
// life, or up to the domain default when wellLifeIdx is not positive.
func (f *Forecaster) Eur(cum, lastHistIdx float64, segs []segment.Record, wellLifeIdx float64) float64 {
	if wellLifeIdx <= 0 {
		wellLifeIdx = f.eng.Domain().DefaultWellLifeIdx
	}

	return f.RateEur(cum, lastHistIdx, math.Inf(-1), wellLifeIdx, segs)
}

// rateEur sums the overlaps. With constantRect set, segments of zero slope use
// the rectangle q·days instead of the offset integral; the two agree for a
// constant rate, q+q+q·(days−2) being q·days.
func (f *Forecaster) rateEur(cum, lastHistIdx, left, right float64, segs []segment.Record, constantRect bool) float64 {
	l := math.Max(lastHistIdx+1, left)
	total := cum
	for _, s := range segs {
		sl, sr := math.Max(l, s.StartIdx), math.Min(right, s.EndIdx)
		if sl > sr {
			continue
		}
		c := f.eng.Curve(s)
		t0, t1 := sl-s.StartIdx, sr-s.StartIdx
		if constantRect && s.SlopeSign == 0 {
			total += c.Predict(t0) * (t1 - t0 + 1)
			continue
		}
		total += offsetVolume(c, t0, t1)
	}

	return total
}

func offsetVolume(c decline.Curve, t0, t1 float64) float64 {
	if t1 == t0 {
		return c.Predict(t0)
	}

	return c.Predict(t0) + c.Predict(t1) + c.Integral(t0+0.5, t1-0.5)
}

// CumFromT returns the cumulative volume through each index: the running sum
// of hist while inside its coverage, the forecast integrated on top of the
// historical total beyond it.
func (f *Forecaster) CumFromT(indices []float64, hist History, segs []segment.Record) ([]float64, error) {
	return cumFromT(indices, hist, func(cum, lastIdx, idx float64) float64 {
		return f.RateEur(cum, lastIdx, math.Inf(-1), idx, segs)
	})
}

func cumFromT(indices []float64, hist History, forecastCum func(cum, lastIdx, idx float64) float64) ([]float64, error) {
	if err := hist.Validate(); err != nil {
		return nil, err
	}

	c := hist.cumulative()
	lastIdx, total := c.last()
	out := make([]float64, len(indices))
	for i, idx := range indices {
		if idx > lastIdx {
			out[i] = forecastCum(total, lastIdx, idx)
		} else {
			out[i] = c.at(idx)
		}
	}

	return out, nil
}
