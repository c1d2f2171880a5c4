package segment

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/declinecurve/config"
	"github.com/arloliu/declinecurve/errs"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := New(opts...)
	require.NoError(t, err)

	return eng
}

// referenceArps is the hyperbolic segment the edit scenarios start from.
func referenceArps(t *testing.T, eng *Engine) Record {
	t.Helper()
	r := eng.GenerateSegmentParameter(Record{
		Kind:     KindArps,
		StartIdx: 40502,
		EndIdx:   42327,
		QStart:   1105.4215017407485,
		DEff:     0.5,
		B:        0.9,
	})
	require.InEpsilon(t, 0.002634621592740482, r.D, 1e-12)
	require.InEpsilon(t, 172.3025724018102, r.QEnd, 1e-12)

	return r
}

// requireConsistent checks that the derived fields of r follow from its governing ones.
func requireConsistent(t *testing.T, eng *Engine, r Record) {
	t.Helper()
	require.NoError(t, eng.Validate(r))
	q := eng.Predict(r, []float64{r.EndIdx})[0]
	require.InDelta(t, q, r.QEnd, 1e-9*math.Abs(q)+1e-12)
	require.InDelta(t, r.QStart, eng.Predict(r, []float64{r.StartIdx})[0], 1e-9*math.Abs(r.QStart))
}

func TestNew(t *testing.T) {
	eng := newEngine(t)
	require.Equal(t, config.Default(), eng.Domain())

	dom := config.Default()
	dom.MinDEff = 0.01
	eng = newEngine(t, WithDomain(dom))
	require.Equal(t, 0.01, eng.Domain().MinDEff)

	dom.MaxB = -1
	_, err := New(WithDomain(dom))
	require.Error(t, err)
}

func TestChangeScenarios(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)

	t.Run("change q_end absorbed by D_eff", func(t *testing.T) {
		r, err := eng.ChangeQEnd(ref, 500, FieldDEff)
		require.NoError(t, err)
		require.InEpsilon(t, 0.0006345315453652729, r.D, 1e-10)
		require.InEpsilon(t, 0.1898222028795894, r.DEff, 1e-10)
		require.InEpsilon(t, 500.0, r.QEnd, 1e-10)
		require.Equal(t, ref.EndIdx, r.EndIdx)
		requireConsistent(t, eng, r)
	})

	t.Run("change D_eff absorbed by q_end", func(t *testing.T) {
		r, err := eng.ChangeDeff(ref, 0.3, FieldQEnd)
		require.NoError(t, err)
		require.InEpsilon(t, 0.0011514665759256766, r.D, 1e-10)
		require.InEpsilon(t, 339.78552513, r.QEnd, 1e-9)
		require.Equal(t, 0.3, r.DEff)
		requireConsistent(t, eng, r)
	})

	t.Run("change b keeps D_eff", func(t *testing.T) {
		r, err := eng.ChangeB(ref, 1.1, FieldQEnd)
		require.NoError(t, err)
		require.InEpsilon(t, 0.002846237135393158, r.D, 1e-10)
		require.InEpsilon(t, 195.76597681, r.QEnd, 1e-9)
		require.Equal(t, 0.5, r.DEff)
		requireConsistent(t, eng, r)
	})

	t.Run("anchor to previous segment", func(t *testing.T) {
		next, err := eng.CalcDeff(Record{
			Kind:     KindArps,
			StartIdx: 42328,
			EndIdx:   44153,
			QStart:   1052.6412320166744,
			QEnd:     164.07568679193344,
			B:        0.9,
		})
		require.NoError(t, err)

		r, err := eng.ButtonAnchorPrev(next, ref)
		require.NoError(t, err)
		require.Equal(t, ref.QEnd, r.QStart)
		require.InEpsilon(t, 2.7406763575548234e-5, r.D, 1e-8)
		require.InEpsilon(t, 164.07568679193344, r.QEnd, 1e-9)
		requireConsistent(t, eng, r)

		// the anchored decline sits below a stricter minimum D_eff
		dom := config.Default()
		dom.MinDEff = 0.01
		strict := newEngine(t, WithDomain(dom))
		_, err = strict.ButtonAnchorPrev(next, ref)
		require.ErrorIs(t, err, errs.ErrValueTooSmall)
	})

	t.Run("input is not modified", func(t *testing.T) {
		before := ref
		_, err := eng.ChangeQEnd(ref, 500, FieldDEff)
		require.NoError(t, err)
		require.Equal(t, before, ref)
	})
}

func TestChangeErrors(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)

	tests := []struct {
		name string
		fn   func() (Record, error)
		want error
	}{
		{"D_eff above max", func() (Record, error) { return eng.ChangeDeff(ref, 1.2, FieldQEnd) }, errs.ErrValueTooLarge},
		{"D_eff below min", func() (Record, error) { return eng.ChangeDeff(ref, 1e-5, FieldQEnd) }, errs.ErrValueTooSmall},
		{"q_end above q_start", func() (Record, error) { return eng.ChangeQEnd(ref, 2000, FieldDEff) }, errs.ErrValueTooSmall},
		{"q_end non-positive", func() (Record, error) { return eng.ChangeQEnd(ref, 0, FieldDEff) }, errs.ErrValueTooSmall},
		{"b above max", func() (Record, error) { return eng.ChangeB(ref, 11, FieldQEnd) }, errs.ErrValueTooLarge},
		{"unknown target", func() (Record, error) { return eng.ChangeQEnd(ref, 500, FieldC) }, errs.ErrInvalidTarget},
		{"k on arps", func() (Record, error) { return eng.ChangeK(ref, 1, FieldQEnd) }, errs.ErrUnsupportedOperation},
		{"switch on arps", func() (Record, error) { return eng.ChangeTargetDEffSw(ref, 0.1) }, errs.ErrUnsupportedOperation},
		{"calc k on arps", func() (Record, error) { return eng.CalcK(ref) }, errs.ErrUnsupportedOperation},
		{"unknown kind", func() (Record, error) { return eng.CalcQEnd(Record{Kind: "cubic"}) }, errs.ErrInvalidKind},
		{"end past domain", func() (Record, error) { return eng.ChangeQEnd(ref, 1e-9, FieldEndIdx) }, errs.ErrValueTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.fn()
			require.ErrorIs(t, err, tt.want)
			require.Equal(t, Record{}, r)
		})
	}

	t.Run("b on models without one", func(t *testing.T) {
		for _, k := range []Kind{KindExpDec, KindExpInc, KindLinear, KindFlat} {
			r := eng.GenerateSegmentParameter(Record{Kind: k, StartIdx: 100, EndIdx: 500})
			_, err := eng.ChangeB(r, 1, FieldQEnd)
			require.ErrorIs(t, err, errs.ErrUnsupportedOperation, k)
		}
	})

	t.Run("zero length", func(t *testing.T) {
		r := ref
		r.EndIdx = r.StartIdx
		r, err := eng.CalcQEnd(r)
		require.NoError(t, err)
		require.Equal(t, r.QStart, r.QEnd)

		_, err = eng.ChangeQEnd(r, 100, FieldDEff)
		require.ErrorIs(t, err, errs.ErrTargetUnreachable)
		_, err = eng.CalcDeff(r)
		require.ErrorIs(t, err, errs.ErrTargetUnreachable)
	})
}

func TestChangeQEndToEndIdx(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)

	r, err := eng.ChangeQEnd(ref, 300, FieldEndIdx)
	require.NoError(t, err)
	require.Equal(t, ref.D, r.D)
	require.Less(t, r.EndIdx, ref.EndIdx)
	require.Equal(t, math.Round(r.EndIdx), r.EndIdx)
	require.InEpsilon(t, 300.0, r.QEnd, 1e-3)
	requireConsistent(t, eng, r)

	r, err = eng.ChangeDeff(ref, 0.3, FieldEndIdx)
	require.NoError(t, err)
	require.Greater(t, r.EndIdx, ref.EndIdx)
	require.InEpsilon(t, ref.QEnd, r.QEnd, 1e-3)
	requireConsistent(t, eng, r)
}

func TestChangeBKeepsQEnd(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)

	r, err := eng.ChangeB(ref, 1.5, FieldDEff)
	require.NoError(t, err)
	require.Equal(t, 1.5, r.B)
	require.InEpsilon(t, ref.QEnd, r.QEnd, 1e-10)
	require.NotEqual(t, ref.DEff, r.DEff)
	requireConsistent(t, eng, r)
}

func TestCalc(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)

	t.Run("q_start", func(t *testing.T) {
		r := ref
		r.QStart = 1
		r, err := eng.CalcQStart(r)
		require.NoError(t, err)
		require.InEpsilon(t, ref.QStart, r.QStart, 1e-10)
		requireConsistent(t, eng, r)
	})

	t.Run("end_idx", func(t *testing.T) {
		r := ref
		r.EndIdx += 100
		r, err := eng.CalcEndIdx(r)
		require.NoError(t, err)
		require.Equal(t, ref.EndIdx, r.EndIdx)
	})

	t.Run("q_end", func(t *testing.T) {
		r := ref
		r.QEnd = 0
		r, err := eng.CalcQEnd(r)
		require.NoError(t, err)
		require.InEpsilon(t, ref.QEnd, r.QEnd, 1e-12)
	})

	t.Run("D_eff", func(t *testing.T) {
		r := ref
		r.DEff, r.D = 0.1, 0
		r, err := eng.CalcDeff(r)
		require.NoError(t, err)
		require.InEpsilon(t, 0.5, r.DEff, 1e-10)
	})

	t.Run("k", func(t *testing.T) {
		r := eng.GenerateSegmentParameter(Record{Kind: KindLinear, StartIdx: 0, EndIdx: 1000, QStart: 200})
		r.QEnd = 100
		r, err := eng.CalcK(r)
		require.NoError(t, err)
		require.InEpsilon(t, -0.1, r.K, 1e-12)
		require.Equal(t, -1, r.SlopeSign)
		require.InEpsilon(t, 0.1/200*365.25, r.DEff, 1e-12)
	})

	t.Run("q_end too small", func(t *testing.T) {
		r := eng.GenerateSegmentParameter(Record{Kind: KindExpDec, StartIdx: 0, EndIdx: 5000, QStart: 10, DEff: 0.3})
		_, err := eng.ChangeDeff(r, 0.99, FieldQEnd)
		require.ErrorIs(t, err, errs.ErrValueTooSmall)
	})
}

func TestButtonQFinal(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)

	t.Run("terminal rate", func(t *testing.T) {
		r, err := eng.ButtonQFinal(ref, 300, eng.Domain().DefaultWellLifeIdx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, r.QEnd, 300.0)
		require.Less(t, eng.Predict(r, []float64{r.EndIdx + 1})[0], 300.0)
		requireConsistent(t, eng, r)
	})

	t.Run("extends", func(t *testing.T) {
		r, err := eng.ButtonQFinal(ref, 50, eng.Domain().DefaultWellLifeIdx)
		require.NoError(t, err)
		require.Greater(t, r.EndIdx, ref.EndIdx)
		require.GreaterOrEqual(t, r.QEnd, 50.0)
	})

	t.Run("well life first", func(t *testing.T) {
		r, err := eng.ButtonQFinal(ref, 10, ref.StartIdx+100)
		require.NoError(t, err)
		require.Equal(t, ref.StartIdx+100, r.EndIdx)
	})

	t.Run("already below", func(t *testing.T) {
		r, err := eng.ButtonQFinal(ref, 2000, eng.Domain().DefaultWellLifeIdx)
		require.NoError(t, err)
		require.Equal(t, ref.StartIdx, r.EndIdx)
	})

	t.Run("well life before start", func(t *testing.T) {
		_, err := eng.ButtonQFinal(ref, 10, ref.StartIdx-1)
		require.ErrorIs(t, err, errs.ErrTargetUnreachable)
	})

	t.Run("flat never reaches", func(t *testing.T) {
		flat := eng.GenerateSegmentParameter(Record{Kind: KindFlat, StartIdx: 0, EndIdx: 10, C: 40})
		_, err := eng.ButtonQFinal(flat, 10, math.Inf(1))
		require.ErrorIs(t, err, errs.ErrTargetUnreachable)

		r, err := eng.ButtonQFinal(flat, 10, 3000)
		require.NoError(t, err)
		require.Equal(t, 3000.0, r.EndIdx)
	})

	t.Run("incline", func(t *testing.T) {
		inc := eng.GenerateSegmentParameter(Record{Kind: KindExpInc, StartIdx: 0, EndIdx: 10, QStart: 40, DEff: -0.5})
		r, err := eng.ButtonQFinal(inc, 80, eng.Domain().DefaultWellLifeIdx)
		require.NoError(t, err)
		require.LessOrEqual(t, r.QEnd, 80.0)
		require.Greater(t, eng.Predict(r, []float64{r.EndIdx + 1})[0], 80.0)
	})

	t.Run("past domain", func(t *testing.T) {
		_, err := eng.ButtonQFinal(ref, 1e-9, math.Inf(1))
		require.ErrorIs(t, err, errs.ErrValueTooLarge)
	})
}

func TestButtonAnchorNextAndMatchSlope(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)
	next := eng.GenerateSegmentParameter(Record{Kind: KindExpDec, StartIdx: 42328, EndIdx: 44153, QStart: 150, DEff: 0.1})

	r, err := eng.ButtonAnchorNext(ref, next)
	require.NoError(t, err)
	require.InEpsilon(t, next.QStart, r.QEnd, 1e-10)
	require.Equal(t, ref.QStart, r.QStart)
	requireConsistent(t, eng, r)

	matched, err := eng.ButtonMatchSlope(next, ref)
	require.NoError(t, err)
	require.InEpsilon(t, eng.FirstDerivative(ref, ref.EndIdx), eng.FirstDerivative(matched, matched.StartIdx), 1e-10)
	requireConsistent(t, eng, matched)

	lin := eng.GenerateSegmentParameter(Record{Kind: KindLinear, StartIdx: 42328, EndIdx: 43000, QStart: 172})
	matched, err = eng.ButtonMatchSlope(lin, ref)
	require.NoError(t, err)
	require.InEpsilon(t, eng.FirstDerivative(ref, ref.EndIdx), matched.K, 1e-12)

	flat := eng.GenerateSegmentParameter(Record{Kind: KindFlat, StartIdx: 42328, EndIdx: 43000, C: 10})
	_, err = eng.ButtonMatchSlope(flat, ref)
	require.ErrorIs(t, err, errs.ErrUnsupportedOperation)

	anchored, err := eng.ButtonAnchorPrev(flat, ref)
	require.NoError(t, err)
	require.Equal(t, ref.QEnd, anchored.C)
	require.Equal(t, ref.QEnd, anchored.QEnd)

	empty := eng.GenerateSegmentParameter(Record{Kind: KindEmpty, StartIdx: 0, EndIdx: 40000})
	_, err = eng.ButtonAnchorPrev(ref, empty)
	require.ErrorIs(t, err, errs.ErrUnsupportedOperation)
}

func TestEmptyIsNoOp(t *testing.T) {
	eng := newEngine(t)
	r := eng.GenerateSegmentParameter(Record{Kind: KindEmpty, StartIdx: 10, EndIdx: 20, QStart: 5})
	require.Equal(t, Record{Kind: KindEmpty, StartIdx: 10, EndIdx: 20}, r)

	out, err := eng.ChangeQEnd(r, 3, FieldDEff)
	require.NoError(t, err)
	require.Equal(t, r, out)
	out, err = eng.ButtonQFinal(r, 3, 15)
	require.NoError(t, err)
	require.Equal(t, r, out)
	out, err = eng.CalcK(r)
	require.NoError(t, err)
	require.Equal(t, r, out)

	require.Equal(t, []float64{0, 0}, eng.Predict(r, []float64{10, 15}))
	require.Zero(t, eng.Integral(r, 10, 20))
	require.True(t, math.IsInf(eng.InverseIntegral(r, 1, 10), 1))
}

func TestEvaluationUsesAbsoluteIndices(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)

	vol := eng.Integral(ref, ref.StartIdx+10, ref.StartIdx+400)
	require.Greater(t, vol, 0.0)
	require.InEpsilon(t, ref.StartIdx+400, eng.InverseIntegral(ref, vol, ref.StartIdx+10), 1e-10)
	require.Less(t, eng.FirstDerivative(ref, ref.StartIdx), 0.0)
	require.InEpsilon(t, -ref.D*ref.QStart, eng.FirstDerivative(ref, ref.StartIdx), 1e-12)
}

func TestEditLogging(t *testing.T) {
	var buf bytes.Buffer
	eng := newEngine(t, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	ref := referenceArps(t, eng)

	_, err := eng.ChangeDeff(ref, 2, FieldQEnd)
	require.Error(t, err)
	require.Contains(t, buf.String(), "segment edit rejected")
	require.Contains(t, buf.String(), `"op":"change D_eff"`)
}

func TestValidateChecksBounds(t *testing.T) {
	eng := newEngine(t)
	ref := referenceArps(t, eng)

	stale := ref
	stale.QEnd = ref.QEnd * 2
	require.NoError(t, eng.Validate(stale))
	fixed, err := eng.CalcQEnd(stale)
	require.NoError(t, err)
	requireConsistent(t, eng, fixed)
	require.InEpsilon(t, ref.QEnd, fixed.QEnd, 1e-12)

	steep := ref
	steep.DEff = 1.2
	require.ErrorIs(t, eng.Validate(steep), errs.ErrValueTooLarge)

	bent := ref
	bent.B = eng.Domain().MaxB + 1
	require.ErrorIs(t, eng.Validate(bent), errs.ErrValueTooLarge)

	require.ErrorIs(t, eng.Validate(Record{Kind: "cubic"}), errs.ErrInvalidKind)
}
