package segment

// Record is the flat parameter set of one segment.
//
// Indices are absolute day indices. Which fields are governing depends on
// the kind: the others are derived and kept consistent by the engine.
type Record struct {
	Kind     Kind    `json:"name" yaml:"name"`
	StartIdx float64 `json:"start_idx" yaml:"start_idx"`
	EndIdx   float64 `json:"end_idx" yaml:"end_idx"`
	QStart   float64 `json:"q_start" yaml:"q_start"`
	QEnd     float64 `json:"q_end" yaml:"q_end"`

	// D is the nominal daily decline, DEff the effective annual decline.
	D    float64 `json:"D" yaml:"D"`
	DEff float64 `json:"D_eff" yaml:"D_eff"`
	B    float64 `json:"b" yaml:"b"`

	// K is the daily slope of a linear segment.
	K float64 `json:"k" yaml:"k"`
	// C is the rate of a flat segment.
	C float64 `json:"c" yaml:"c"`

	// SlopeSign is the direction of the rate: -1, 0 or 1.
	SlopeSign int `json:"slope" yaml:"slope"`

	// Modified Arps switch parameters.
	SwIdx          float64 `json:"sw_idx,omitempty" yaml:"sw_idx,omitempty"`
	TargetDEffSw   float64 `json:"target_D_eff_sw,omitempty" yaml:"target_D_eff_sw,omitempty"`
	RealizedDEffSw float64 `json:"realized_D_eff_sw,omitempty" yaml:"realized_D_eff_sw,omitempty"`
}

// Duration returns EndIdx − StartIdx.
func (r Record) Duration() float64 {
	return r.EndIdx - r.StartIdx
}

// Covers reports whether idx lies within [StartIdx, EndIdx].
func (r Record) Covers(idx float64) bool {
	return idx >= r.StartIdx && idx <= r.EndIdx
}
