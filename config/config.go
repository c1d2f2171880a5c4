// Package config holds the domain constants every bounds check depends on.
//
// A Domain is plain data: the segment engine receives one at construction and
// never reads package-level state, so tenants can run engines with different
// bounds side by side.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DaysInYear converts effective annual declines to nominal daily ones.
const DaysInYear = 365.25

// Domain holds rate, time and decline bounds.
type Domain struct {
	// NumericSmall and NumericLarge bound every rate.
	NumericSmall float64 `yaml:"numeric_small" default:"1e-10" validate:"gt=0,ltfield=NumericLarge"`
	NumericLarge float64 `yaml:"numeric_large" default:"1e10" validate:"gt=0"`

	// DateIdxSmall and DateIdxLarge bound every day index (days since 1900-01-01).
	DateIdxSmall float64 `yaml:"date_idx_small" default:"0" validate:"gte=0,ltfield=DateIdxLarge"`
	DateIdxLarge float64 `yaml:"date_idx_large" default:"109572" validate:"gt=0"`

	// MinDEff is the smallest magnitude of an effective decline or incline.
	MinDEff float64 `yaml:"min_d_eff" default:"0.001" validate:"gt=0,ltfield=DefaultMaxDEff"`
	// DefaultMaxDEff is the largest effective decline.
	DefaultMaxDEff float64 `yaml:"default_max_d_eff" default:"0.99" validate:"gt=0,lt=1"`
	// MaxInclineDEff is the largest magnitude of a negative effective decline.
	MaxInclineDEff float64 `yaml:"max_incline_d_eff" default:"10" validate:"gt=0"`

	MinB float64 `yaml:"min_b" default:"0.001" validate:"gt=0,ltfield=MaxB"`
	MaxB float64 `yaml:"max_b" default:"10" validate:"gt=0"`

	// DefaultWellLifeIdx is the absolute day index a forecast ends at when
	// the caller supplies no well life.
	DefaultWellLifeIdx float64 `yaml:"default_well_life_idx" default:"109572" validate:"gt=0"`

	// RangeEpsilon is the relative nudge applied to computed form ranges.
	RangeEpsilon float64 `yaml:"range_epsilon" default:"1e-6" validate:"gte=0,lt=0.01"`
}

var validate = validator.New()

// Default returns the built-in domain.
func Default() Domain {
	var d Domain
	if err := defaults.Set(&d); err != nil {
		// tags are constant; a failure here is a programming error
		panic(fmt.Sprintf("config: apply defaults: %v", err))
	}

	return d
}

// Validate checks the domain for internal consistency.
func (d Domain) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("validate domain: %w", err)
	}
	if d.DefaultWellLifeIdx > d.DateIdxLarge {
		return fmt.Errorf("validate domain: default_well_life_idx %g beyond date_idx_large %g",
			d.DefaultWellLifeIdx, d.DateIdxLarge)
	}

	return nil
}

// Parse decodes a YAML document into a Domain. Missing keys keep their defaults.
func Parse(b []byte) (Domain, error) {
	d := Default()
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Domain{}, fmt.Errorf("parse domain: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Domain{}, err
	}

	return d, nil
}

// Load reads and parses a YAML domain file.
func Load(path string) (Domain, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Domain{}, fmt.Errorf("read domain: %w", err)
	}

	return Parse(b)
}
