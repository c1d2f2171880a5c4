package segment

import (
	"fmt"
	"math"

	"github.com/arloliu/declinecurve/config"
	"github.com/arloliu/declinecurve/decline"
	"github.com/arloliu/declinecurve/errs"
)

// defaultSegmentDays is the length given to a generated segment whose end index is unusable.
const defaultSegmentDays = 365

// defaultRate is the start rate of a generated segment whose rate is unusable.
const defaultRate = 100

// strategy implements the per-kind behavior of a segment.
//
// Every method takes a record of the strategy's kind and returns a new,
// fully consistent record; the input is never modified.
type strategy interface {
	curve(r Record) decline.Curve
	// generate fills in missing or invalid fields. The bool reports whether defaults were substituted.
	generate(raw Record) (Record, bool)
	check(r Record) error
	formRange(r Record, f Field) (Range, error)

	changeQEnd(r Record, v float64, target Field) (Record, error)
	changeDeff(r Record, v float64, target Field) (Record, error)
	changeB(r Record, v float64, target Field) (Record, error)
	changeK(r Record, v float64, target Field) (Record, error)
	changeTargetDEffSw(r Record, v float64) (Record, error)

	qFinal(r Record, qFinal, wellLifeIdx float64) (Record, error)
	anchorStart(r Record, q float64) (Record, error)
	anchorEnd(r Record, q float64) (Record, error)
	matchSlope(r Record, slope float64) (Record, error)

	calcQStart(r Record) (Record, error)
	calcEndIdx(r Record) (Record, error)
	calcQEnd(r Record) (Record, error)
	calcDeff(r Record) (Record, error)
	calcK(r Record) (Record, error)
}

// strategyFor resolves the strategy of a kind.
func strategyFor(k Kind, dom *config.Domain) (strategy, error) {
	b := base{dom: dom, kind: k}
	switch k {
	case KindArps:
		return declineStrategy{base: b, fam: arpsFamily}, nil
	case KindArpsInc:
		return declineStrategy{base: b, fam: arpsIncFamily}, nil
	case KindArpsModified:
		return declineStrategy{base: b, fam: modifiedFamily}, nil
	case KindExpDec:
		return declineStrategy{base: b, fam: expDecFamily}, nil
	case KindExpInc:
		return declineStrategy{base: b, fam: expIncFamily}, nil
	case KindLinear:
		return linearStrategy{base: b}, nil
	case KindFlat:
		return flatStrategy{base: b}, nil
	case KindEmpty:
		return emptyStrategy{base: b}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidKind, k)
	}
}

// base carries the domain and supplies the unsupported defaults every strategy overrides selectively.
type base struct {
	dom  *config.Domain
	kind Kind
}

func (b base) unsupported(op string) error {
	return fmt.Errorf("%s on %s segment: %w", op, b.kind, errs.ErrUnsupportedOperation)
}

func (b base) invalidTarget(op string, target Field) error {
	return fmt.Errorf("%s on %s segment absorbing %q: %w", op, b.kind, target, errs.ErrInvalidTarget)
}

func (b base) invalidField(f Field) error {
	return fmt.Errorf("range of %q on %s segment: %w", f, b.kind, errs.ErrInvalidField)
}

func (b base) changeQEnd(Record, float64, Field) (Record, error) {
	return Record{}, b.unsupported("change q_end")
}

func (b base) changeDeff(Record, float64, Field) (Record, error) {
	return Record{}, b.unsupported("change D_eff")
}

func (b base) changeB(Record, float64, Field) (Record, error) {
	return Record{}, b.unsupported("change b")
}

func (b base) changeK(Record, float64, Field) (Record, error) {
	return Record{}, b.unsupported("change k")
}

func (b base) changeTargetDEffSw(Record, float64) (Record, error) {
	return Record{}, b.unsupported("change target_D_eff_sw")
}

func (b base) matchSlope(Record, float64) (Record, error) {
	return Record{}, b.unsupported("match slope")
}

func (b base) calcQStart(Record) (Record, error) {
	return Record{}, b.unsupported("calc q_start")
}

func (b base) calcEndIdx(Record) (Record, error) {
	return Record{}, b.unsupported("calc end_idx")
}

func (b base) calcDeff(Record) (Record, error) {
	return Record{}, b.unsupported("calc D_eff")
}

func (b base) calcK(Record) (Record, error) {
	return Record{}, b.unsupported("calc k")
}

// checkSpan validates the index pair of r.
func (b base) checkSpan(r Record) error {
	if math.IsNaN(r.StartIdx) || math.IsNaN(r.EndIdx) {
		return fmt.Errorf("segment span: %w", errs.ErrNonFinite)
	}
	if r.StartIdx < b.dom.DateIdxSmall {
		return errs.NewTooSmall("start_idx", r.StartIdx, b.dom.DateIdxSmall)
	}
	if r.EndIdx > b.dom.DateIdxLarge {
		return errs.NewTooLarge("end_idx", r.EndIdx, b.dom.DateIdxLarge)
	}
	if r.EndIdx < r.StartIdx {
		return errs.NewTooSmall("end_idx", r.EndIdx, r.StartIdx)
	}

	return nil
}

// checkRate validates a rate against the numeric bounds.
func (b base) checkRate(field string, q float64) error {
	return checkIn(field, q, b.dom.NumericSmall, b.dom.NumericLarge)
}

func checkIn(field string, v, lo, hi float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%s: %w", field, errs.ErrNonFinite)
	}
	if v < lo {
		return errs.NewTooSmall(field, v, lo)
	}
	if v > hi {
		return errs.NewTooLarge(field, v, hi)
	}

	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

// generateSpan repairs the indices of a raw record. Indices are whole days.
func (b base) generateSpan(raw Record) (Record, bool) {
	r := raw
	r.Kind = b.kind
	fixed := false

	start := math.Round(raw.StartIdx)
	if !inRange(start, b.dom.DateIdxSmall, b.dom.DateIdxLarge) {
		start = b.dom.DateIdxSmall
		fixed = true
	}
	end := math.Round(raw.EndIdx)
	if !inRange(end, start, b.dom.DateIdxLarge) {
		end = math.Min(start+defaultSegmentDays, b.dom.DateIdxLarge)
		fixed = true
	}
	r.StartIdx, r.EndIdx = start, end

	return r, fixed
}

// qFinalEnd returns the end index at which a segment must stop for the given
// terminal rate and well life. tq is the relative time the rate takes to reach
// qFinal: negative when the rate is already past it, +Inf when it never gets there.
func (b base) qFinalEnd(r Record, tq, wellLifeIdx float64) (float64, error) {
	endQ := math.Inf(1)
	switch {
	case math.IsNaN(tq) || math.IsInf(tq, 1):
	case tq <= 0:
		endQ = r.StartIdx
	default:
		endQ = r.StartIdx + math.Floor(tq)
	}

	end := math.Min(endQ, wellLifeIdx)
	if math.IsInf(end, 1) || math.IsNaN(end) {
		return 0, fmt.Errorf("q_final on %s segment: %w", b.kind, errs.ErrTargetUnreachable)
	}
	if end < r.StartIdx {
		return 0, fmt.Errorf("q_final on %s segment: well life %g before start %g: %w",
			b.kind, wellLifeIdx, r.StartIdx, errs.ErrTargetUnreachable)
	}
	if end > b.dom.DateIdxLarge {
		return 0, fmt.Errorf("q_final on %s segment: %w",
			b.kind, errs.NewTooLarge("end_idx", end, b.dom.DateIdxLarge))
	}

	return end, nil
}

// limitTime converts the relative time a rate takes to leave the numeric
// bounds into a whole number of days; non-positive times mean the bound is
// already touched.
func limitTime(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}

	return math.Floor(t)
}

// spanRange returns the start or end index range given the longest duration
// the rate stays within bounds.
func (b base) spanRange(r Record, f Field, maxDuration float64) Range {
	if f == FieldStartIdx {
		lo := b.dom.DateIdxSmall
		if !math.IsInf(maxDuration, 1) {
			lo = math.Max(lo, r.EndIdx-maxDuration)
		}

		return b.finishRange(Range{Min: lo, Max: r.EndIdx}, r.StartIdx, true)
	}

	hi := b.dom.DateIdxLarge
	if !math.IsInf(maxDuration, 1) {
		hi = math.Min(hi, r.StartIdx+maxDuration)
	}

	return b.finishRange(Range{Min: r.StartIdx, Max: hi}, r.EndIdx, true)
}

// finishRange shrinks a computed range by the relative epsilon, or to whole
// days for index fields, and widens it to contain the current value.
func (b base) finishRange(rg Range, current float64, integral bool) Range {
	if integral {
		rg.Min, rg.Max = math.Ceil(rg.Min), math.Floor(rg.Max)
	} else {
		eps := b.dom.RangeEpsilon
		rg.Min += math.Abs(rg.Min) * eps
		rg.Max -= math.Abs(rg.Max) * eps
	}
	if !math.IsNaN(current) {
		rg.Min = math.Min(rg.Min, current)
		rg.Max = math.Max(rg.Max, current)
	}

	return rg
}

// bisectBoundary narrows toward the last value at which valid still holds,
// moving from good (valid) to bad (invalid).
func bisectBoundary(valid func(float64) bool, good, bad float64) float64 {
	for iter := 0; iter < 100; iter++ {
		mid := 0.5 * (good + bad)
		if mid == good || mid == bad {
			break
		}
		if valid(mid) {
			good = mid
		} else {
			bad = mid
		}
	}

	return good
}

// clampRange bisects each end of [lo, hi] toward current until valid holds there.
func clampRange(valid func(float64) bool, lo, hi, current float64) Range {
	if !valid(current) {
		return Range{Min: lo, Max: hi}
	}
	if !valid(lo) {
		lo = bisectBoundary(valid, current, lo)
	}
	if !valid(hi) {
		hi = bisectBoundary(valid, current, hi)
	}

	return Range{Min: lo, Max: hi}
}
