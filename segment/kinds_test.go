package segment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/declinecurve/decline"
	"github.com/arloliu/declinecurve/errs"
)

// sampleRecords returns one raw record per kind.
func sampleRecords() map[Kind]Record {
	return map[Kind]Record{
		KindArps:         {Kind: KindArps, StartIdx: 1000, EndIdx: 2825, QStart: 1000, DEff: 0.4, B: 1.1},
		KindArpsInc:      {Kind: KindArpsInc, StartIdx: 1000, EndIdx: 2825, QStart: 50, DEff: -0.2, B: 0.6},
		KindArpsModified: {Kind: KindArpsModified, StartIdx: 1000, EndIdx: 2825, QStart: 800, DEff: 0.6, B: 1.3, TargetDEffSw: 0.15},
		KindExpDec:       {Kind: KindExpDec, StartIdx: 1000, EndIdx: 2825, QStart: 300, DEff: 0.25},
		KindExpInc:       {Kind: KindExpInc, StartIdx: 1000, EndIdx: 2825, QStart: 30, DEff: -0.15},
		KindLinear:       {Kind: KindLinear, StartIdx: 1000, EndIdx: 2825, QStart: 200, K: -0.05},
		KindFlat:         {Kind: KindFlat, StartIdx: 1000, EndIdx: 2825, C: 42},
		KindEmpty:        {Kind: KindEmpty, StartIdx: 1000, EndIdx: 2825},
	}
}

func TestKinds(t *testing.T) {
	require.Len(t, Kinds(), 8)
	for _, k := range Kinds() {
		require.True(t, k.Valid())
		s, err := strategyFor(k, nil)
		require.NoError(t, err)
		require.NotNil(t, s)

		parsed, err := ParseKind(" " + string(k) + " ")
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	_, err := ParseKind("harmonic")
	require.ErrorIs(t, err, errs.ErrInvalidKind)
	require.False(t, Kind("").Valid())
}

func TestGenerateKeepsValidParameters(t *testing.T) {
	eng := newEngine(t)
	for k, raw := range sampleRecords() {
		t.Run(string(k), func(t *testing.T) {
			r := eng.GenerateSegmentParameter(raw)
			require.Equal(t, k, r.Kind)
			require.Equal(t, raw.StartIdx, r.StartIdx)
			require.Equal(t, raw.EndIdx, r.EndIdx)
			requireConsistent(t, eng, r)

			switch k {
			case KindLinear:
				require.Equal(t, raw.K, r.K)
				require.Equal(t, -1, r.SlopeSign)
			case KindFlat:
				require.Equal(t, raw.C, r.QStart)
				require.Zero(t, r.SlopeSign)
			case KindEmpty:
				require.Zero(t, r.QStart)
			default:
				require.Equal(t, raw.QStart, r.QStart)
				require.Equal(t, raw.DEff, r.DEff)
				require.Equal(t, raw.B, r.B)
			}
		})
	}
}

func TestGenerateSubstitutesDefaults(t *testing.T) {
	eng := newEngine(t)

	t.Run("invalid fields", func(t *testing.T) {
		r := eng.GenerateSegmentParameter(Record{
			Kind:     KindArps,
			StartIdx: 100,
			EndIdx:   50,
			QStart:   math.NaN(),
			DEff:     1.5,
			B:        50,
		})
		require.Equal(t, 100.0, r.StartIdx)
		require.Equal(t, 100.0+defaultSegmentDays, r.EndIdx)
		require.Equal(t, arpsFamily.defaults.QStart, r.QStart)
		require.Equal(t, arpsFamily.defaults.DEff, r.DEff)
		require.Equal(t, arpsFamily.defaults.B, r.B)
		requireConsistent(t, eng, r)
	})

	t.Run("nominal decline only", func(t *testing.T) {
		r := eng.GenerateSegmentParameter(Record{Kind: KindExpDec, StartIdx: 0, EndIdx: 100, QStart: 10, D: 0.001})
		require.InEpsilon(t, decline.ExpDToDEff(0.001), r.DEff, 1e-12)
		require.InEpsilon(t, 0.001, r.D, 1e-12)
	})

	t.Run("whole record replaced", func(t *testing.T) {
		r := eng.GenerateSegmentParameter(Record{Kind: KindExpInc, StartIdx: 0, EndIdx: 36500, QStart: 1e9, DEff: -10})
		require.Equal(t, expIncFamily.defaults.QStart, r.QStart)
		require.Equal(t, expIncFamily.defaults.DEff, r.DEff)
		require.Equal(t, 36500.0, r.EndIdx)
		requireConsistent(t, eng, r)
	})

	t.Run("unknown kind", func(t *testing.T) {
		r := eng.GenerateSegmentParameter(Record{Kind: "cubic", StartIdx: 5, EndIdx: 9, QStart: 3})
		require.Equal(t, Record{Kind: KindEmpty, StartIdx: 5, EndIdx: 9}, r)
	})

	t.Run("every kind from a bare span", func(t *testing.T) {
		for _, k := range Kinds() {
			r := eng.GenerateSegmentParameter(Record{Kind: k, StartIdx: 1000, EndIdx: 2000})
			require.NoError(t, eng.Validate(r), k)
		}
	})
}

func TestEditsStayConsistent(t *testing.T) {
	eng := newEngine(t)
	for k, raw := range sampleRecords() {
		if k == KindFlat || k == KindEmpty {
			continue
		}
		r := eng.GenerateSegmentParameter(raw)

		t.Run(string(k), func(t *testing.T) {
			factor := 0.8
			if r.SlopeSign > 0 {
				factor = 1.2
			}

			target := FieldDEff
			if k == KindLinear {
				target = FieldK
			}

			out, err := eng.ChangeQEnd(r, r.QEnd*factor, target)
			require.NoError(t, err)
			require.InEpsilon(t, r.QEnd*factor, out.QEnd, 1e-8)
			requireConsistent(t, eng, out)

			out, err = eng.ChangeQEnd(r, r.QEnd*factor, FieldEndIdx)
			require.NoError(t, err)
			require.Equal(t, r.QStart, out.QStart)
			requireConsistent(t, eng, out)

			out, err = eng.ChangeDeff(r, r.DEff*1.1, FieldQEnd)
			require.NoError(t, err)
			require.InEpsilon(t, r.DEff*1.1, out.DEff, 1e-12)
			requireConsistent(t, eng, out)

			out, err = eng.CalcQEnd(r)
			require.NoError(t, err)
			require.InEpsilon(t, r.QEnd, out.QEnd, 1e-12)

			out, err = eng.CalcDeff(r)
			require.NoError(t, err)
			require.InEpsilon(t, r.DEff, out.DEff, 1e-6)

			out, err = eng.CalcQStart(r)
			require.NoError(t, err)
			require.InEpsilon(t, r.QStart, out.QStart, 1e-9)
		})
	}
}

func TestModifiedArpsSwitch(t *testing.T) {
	eng := newEngine(t)
	r := eng.GenerateSegmentParameter(sampleRecords()[KindArpsModified])

	require.Greater(t, r.SwIdx, r.StartIdx)
	require.Less(t, r.SwIdx, r.EndIdx)
	require.InEpsilon(t, 0.15, r.RealizedDEffSw, 1e-12)

	// past the switch the rate declines exponentially at the target decline
	dSw := decline.ExpDEffToD(0.15)
	q := eng.Predict(r, []float64{r.SwIdx + 10, r.SwIdx + 110})
	require.InEpsilon(t, math.Exp(-dSw*100), q[1]/q[0], 1e-10)

	later, err := eng.ChangeTargetDEffSw(r, 0.08)
	require.NoError(t, err)
	require.Greater(t, later.SwIdx, r.SwIdx)
	require.Greater(t, later.QEnd, r.QEnd)
	requireConsistent(t, eng, later)

	_, err = eng.ChangeTargetDEffSw(r, 0)
	require.ErrorIs(t, err, errs.ErrValueTooSmall)

	// an initial decline below the switch decline is exponential throughout
	flatTail, err := eng.ChangeTargetDEffSw(r, 0.9)
	require.NoError(t, err)
	require.Equal(t, flatTail.StartIdx, flatTail.SwIdx)
	q = eng.Predict(flatTail, []float64{flatTail.StartIdx, flatTail.StartIdx + 100})
	require.InEpsilon(t, math.Exp(-flatTail.D*100), q[1]/q[0], 1e-10)
}

func TestArpsInclineMirror(t *testing.T) {
	eng := newEngine(t)
	r := eng.GenerateSegmentParameter(sampleRecords()[KindArpsInc])

	require.Greater(t, r.B, 0.0)
	require.Less(t, r.D, 0.0)
	require.Equal(t, 1, r.SlopeSign)
	require.Greater(t, r.QEnd, r.QStart)
	require.Greater(t, eng.FirstDerivative(r, r.StartIdx+100), 0.0)

	out, err := eng.ChangeB(r, 1.2, FieldQEnd)
	require.NoError(t, err)
	require.Equal(t, r.DEff, out.DEff)
	requireConsistent(t, eng, out)

	_, err = eng.ChangeDeff(r, 0.1, FieldQEnd)
	require.ErrorIs(t, err, errs.ErrValueTooLarge)
}

func TestLinear(t *testing.T) {
	eng := newEngine(t)
	r := eng.GenerateSegmentParameter(sampleRecords()[KindLinear])
	require.InEpsilon(t, 200-0.05*1825, r.QEnd, 1e-12)
	require.InEpsilon(t, 0.05/200, r.D, 1e-12)

	out, err := eng.ChangeK(r, 0.02, FieldQEnd)
	require.NoError(t, err)
	require.Equal(t, 1, out.SlopeSign)
	require.Less(t, out.DEff, 0.0)
	requireConsistent(t, eng, out)

	out, err = eng.ChangeK(r, -0.1, FieldEndIdx)
	require.NoError(t, err)
	require.InDelta(t, r.QEnd, out.QEnd, 0.06)
	require.Equal(t, r.StartIdx+math.Round((r.QEnd-200)/-0.1), out.EndIdx)

	out, err = eng.ChangeDeff(r, 0, FieldQEnd)
	require.NoError(t, err)
	require.Zero(t, out.K)
	require.Zero(t, out.SlopeSign)

	// a flat line never reaches a different rate
	_, err = eng.ChangeQEnd(out, 10, FieldEndIdx)
	require.ErrorIs(t, err, errs.ErrValueTooLarge)

	_, err = eng.ChangeK(r, -1, FieldQEnd)
	require.ErrorIs(t, err, errs.ErrValueTooSmall)
}
