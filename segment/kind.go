package segment

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/declinecurve/errs"
)

// Kind tags the analytic model of a segment.
type Kind string

const (
	// KindArps is a hyperbolic decline.
	KindArps Kind = "arps"
	// KindArpsInc is a hyperbolic incline.
	KindArpsInc Kind = "arps_inc"
	// KindArpsModified is a hyperbolic decline with an exponential tail.
	KindArpsModified Kind = "arps_modified"
	// KindExpDec is an exponential decline.
	KindExpDec Kind = "exp_dec"
	// KindExpInc is an exponential incline.
	KindExpInc Kind = "exp_inc"
	// KindLinear is a straight line.
	KindLinear Kind = "linear"
	// KindFlat is a constant rate.
	KindFlat Kind = "flat"
	// KindEmpty produces nothing.
	KindEmpty Kind = "empty"
)

var allKinds = []Kind{
	KindArps,
	KindArpsInc,
	KindArpsModified,
	KindExpDec,
	KindExpInc,
	KindLinear,
	KindFlat,
	KindEmpty,
}

// Kinds returns every supported kind.
func Kinds() []Kind {
	return slices.Clone(allKinds)
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	return slices.Contains(allKinds, k)
}

// String returns the kind tag.
func (k Kind) String() string {
	return string(k)
}

// ParseKind returns the Kind for a case-insensitive tag.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidKind, s)
	}

	return k, nil
}

// Field names a record parameter that can be edited or solved for.
type Field string

const (
	FieldStartIdx     Field = "start_idx"
	FieldEndIdx       Field = "end_idx"
	FieldQStart       Field = "q_start"
	FieldQEnd         Field = "q_end"
	FieldDEff         Field = "D_eff"
	FieldB            Field = "b"
	FieldK            Field = "k"
	FieldC            Field = "c"
	FieldTargetDEffSw Field = "target_D_eff_sw"
)

// Range is a closed interval of valid values for a field.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Slope returns the sign of v as -1, 0 or 1.
func Slope(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
