package segment

import (
	"math"

	"github.com/arloliu/declinecurve/decline"
)

var arpsFamily = family{
	usesB:  true,
	toD:    decline.ArpsDEffToD,
	toDEff: decline.ArpsDToDEff,
	curve: func(r Record) decline.Curve {
		return decline.Arps{QStart: r.QStart, D: r.D, B: r.B}
	},
	solveD: func(r Record, qEnd, t float64) float64 {
		return decline.ArpsGetD(r.QStart, qEnd, t, r.B)
	},
	solveTime: func(r Record, q float64) float64 {
		return decline.ArpsGetTime(r.QStart, q, r.D, r.B)
	},
	defaults: Record{QStart: defaultRate, DEff: 0.3, B: 0.9},
}

// arpsIncFamily stores a positive b and a negative D and evaluates the
// hyperbolic model mirrored through b → −b.
var arpsIncFamily = family{
	incline: true,
	usesB:   true,
	toD: func(dEff, b float64) float64 {
		return decline.ArpsDEffToD(dEff, -b)
	},
	toDEff: func(d, b float64) float64 {
		return decline.ArpsDToDEff(d, -b)
	},
	curve: func(r Record) decline.Curve {
		return decline.Arps{QStart: r.QStart, D: r.D, B: -r.B}
	},
	solveD: func(r Record, qEnd, t float64) float64 {
		return decline.ArpsGetD(r.QStart, qEnd, t, -r.B)
	},
	solveTime: func(r Record, q float64) float64 {
		return decline.ArpsGetTime(r.QStart, q, r.D, -r.B)
	},
	defaults: Record{QStart: defaultRate, DEff: -0.1, B: 0.5},
}

var expDecFamily = family{
	toD:    func(dEff, _ float64) float64 { return decline.ExpDEffToD(dEff) },
	toDEff: func(d, _ float64) float64 { return decline.ExpDToDEff(d) },
	curve: func(r Record) decline.Curve {
		return decline.Exponential{QStart: r.QStart, D: r.D}
	},
	solveD: func(r Record, qEnd, t float64) float64 {
		return decline.ExpGetD(r.QStart, qEnd, t)
	},
	solveTime: func(r Record, q float64) float64 {
		return decline.ExpGetTime(r.QStart, q, r.D)
	},
	defaults: Record{QStart: defaultRate, DEff: 0.3},
}

var expIncFamily = family{
	incline:   true,
	toD:       expDecFamily.toD,
	toDEff:    expDecFamily.toDEff,
	curve:     expDecFamily.curve,
	solveD:    expDecFamily.solveD,
	solveTime: expDecFamily.solveTime,
	defaults:  Record{QStart: defaultRate, DEff: -0.1},
}

// modifiedFamily quotes D_eff for the initial hyperbolic decline and
// target_D_eff_sw for the exponential tail.
var modifiedFamily = family{
	usesB:      true,
	usesSwitch: true,
	toD:        decline.ArpsDEffToD,
	toDEff:     decline.ArpsDToDEff,
	curve: func(r Record) decline.Curve {
		return modifiedCurve(r)
	},
	solveD:    modifiedSolveD,
	solveTime: func(r Record, q float64) float64 {
		return modifiedCurve(r).GetTime(q)
	},
	defaults: Record{QStart: defaultRate, DEff: 0.3, B: 1.2, TargetDEffSw: 0.06},
}

func modifiedCurve(r Record) decline.ModifiedArps {
	return decline.NewModifiedArps(r.QStart, r.D, r.B, decline.ExpDEffToD(r.TargetDEffSw))
}

// Nominal daily declines bracketing every effective decline below 1.
const (
	minNominalD = 1e-12
	maxNominalD = 1e3
)

// modifiedSolveD finds the initial decline whose piecewise curve reaches
// qEnd at t. The rate at t falls monotonically with D, so the solve bisects
// log D; results outside the bracket are returned as the bracket edge.
func modifiedSolveD(r Record, qEnd, t float64) float64 {
	dSw := decline.ExpDEffToD(r.TargetDEffSw)
	target := qEnd / r.QStart
	ratio := func(d float64) float64 {
		return decline.NewModifiedArps(1, d, r.B, dSw).Predict(t)
	}

	lo, hi := math.Log(minNominalD), math.Log(maxNominalD)
	if ratio(math.Exp(lo)) <= target {
		return math.Exp(lo)
	}
	if ratio(math.Exp(hi)) >= target {
		return math.Exp(hi)
	}
	for iter := 0; iter < 200; iter++ {
		mid := 0.5 * (lo + hi)
		if mid == lo || mid == hi {
			break
		}
		if ratio(math.Exp(mid)) > target {
			lo = mid
		} else {
			hi = mid
		}
	}

	return math.Exp(0.5 * (lo + hi))
}
