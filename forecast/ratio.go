package forecast

import (
	"math"

	"github.com/arloliu/declinecurve/segment"
)

// DefaultRatioInterval is the bucket width of RatioEurInterval in days.
const DefaultRatioInterval = 30

// PredictTimeRatio returns ratio(idx)·base(idx) at each index. Indices outside
// either forecast produce zero.
func (f *Forecaster) PredictTimeRatio(indices []float64, ratioSegs, baseSegs []segment.Record) []float64 {
	ratio := f.Predict(indices, ratioSegs, 0)
	base := f.Predict(indices, baseSegs, 0)
	for i := range ratio {
		ratio[i] *= base[i]
	}

	return ratio
}

// extent returns the first and last day covered by segs.
func extent(segs []segment.Record) (float64, float64, bool) {
	if len(segs) == 0 {
		return 0, 0, false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range segs {
		lo, hi = math.Min(lo, s.StartIdx), math.Max(hi, s.EndIdx)
	}

	return lo, hi, true
}

// dayRange returns the whole days of [max(lastHistIdx+1, left), right] on
// which both forecasts are defined. Unbounded ends are cut to that overlap.
func dayRange(lastHistIdx, left, right float64, ratioSegs, baseSegs []segment.Record) (float64, float64, bool) {
	rl, rr, ok := extent(ratioSegs)
	if !ok {
		return 0, 0, false
	}
	bl, br, ok := extent(baseSegs)
	if !ok {
		return 0, 0, false
	}

	l := math.Ceil(math.Max(math.Max(lastHistIdx+1, left), math.Max(rl, bl)))
	r := math.Floor(math.Min(right, math.Min(rr, br)))

	return l, r, l <= r && !math.IsInf(l, 0) && !math.IsInf(r, 0)
}

// RatioEur adds to cum the daily sum of the ratio forecast times the base
// forecast over [max(lastHistIdx+1, left), right].
func (f *Forecaster) RatioEur(cum, lastHistIdx, left, right float64, ratioSegs, baseSegs []segment.Record) float64 {
	l, r, ok := dayRange(lastHistIdx, left, right, ratioSegs, baseSegs)
	if !ok {
		return cum
	}

	days := make([]float64, int(r-l)+1)
	for i := range days {
		days[i] = l + float64(i)
	}
	for _, v := range f.PredictTimeRatio(days, ratioSegs, baseSegs) {
		cum += v
	}

	return cum
}

// RatioEurInterval approximates RatioEur by sampling every interval days and
// integrating the samples with the trapezoid rule. The last bucket is cut
// short at right. An interval of one day or less falls back to RatioEur.
func (f *Forecaster) RatioEurInterval(cum, lastHistIdx, left, right float64, ratioSegs, baseSegs []segment.Record, interval float64) float64 {
	if interval <= 1 {
		return f.RatioEur(cum, lastHistIdx, left, right, ratioSegs, baseSegs)
	}
	l, r, ok := dayRange(lastHistIdx, left, right, ratioSegs, baseSegs)
	if !ok {
		return cum
	}

	points := make([]float64, 0, int((r-l)/interval)+2)
	for p := l; p < r; p += interval {
		points = append(points, p)
	}
	points = append(points, r)

	v := f.PredictTimeRatio(points, ratioSegs, baseSegs)
	area := 0.0
	for i := 1; i < len(points); i++ {
		area += 0.5 * (v[i-1] + v[i]) * (points[i] - points[i-1])
	}

	// the trapezoid covers [l, r]; half of each end sample completes the daily sum
	return cum + area + 0.5*(v[0]+v[len(v)-1])
}

// CumFromTRatio is CumFromT for a ratio forecast: beyond the history the
// product of the ratio and base forecasts is summed daily.
func (f *Forecaster) CumFromTRatio(indices []float64, hist History, ratioSegs, baseSegs []segment.Record) ([]float64, error) {
	return cumFromT(indices, hist, func(cum, lastIdx, idx float64) float64 {
		return f.RatioEur(cum, lastIdx, math.Inf(-1), idx, ratioSegs, baseSegs)
	})
}
