package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/arloliu/declinecurve/errs"
)

// Frequency is the sampling of historical production.
type Frequency string

const (
	// Daily rows hold the volume of one day.
	Daily Frequency = "daily"
	// Monthly rows hold the average daily rate of one calendar month.
	Monthly Frequency = "monthly"
)

// History is the historical production of one phase. Index is ascending.
type History struct {
	Index     []float64 `json:"index" yaml:"index"`
	Rate      []float64 `json:"rate" yaml:"rate"`
	Frequency Frequency `json:"frequency" yaml:"frequency"`
}

// Validate checks the shape of h.
func (h History) Validate() error {
	if len(h.Index) != len(h.Rate) {
		return fmt.Errorf("history has %d indices and %d rates: %w", len(h.Index), len(h.Rate), errs.ErrMismatchedLength)
	}
	if h.Frequency != Daily && h.Frequency != Monthly {
		return fmt.Errorf("history frequency %q: %w", h.Frequency, errs.ErrInvalidFrequency)
	}
	for i := 1; i < len(h.Index); i++ {
		if h.Index[i] <= h.Index[i-1] {
			return fmt.Errorf("history index %d (%g) not after %g: %w", i, h.Index[i], h.Index[i-1], errs.ErrUnsortedSegments)
		}
	}

	return nil
}

// Last returns the last day h covers and the volume produced through it. A
// monthly row covers its whole calendar month. Without rows it returns -Inf
// and 0, which lets a forecast start anywhere.
func (h History) Last() (float64, float64) {
	return h.cumulative().last()
}

var epoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// IndexToDate returns the calendar day of a day index.
func IndexToDate(idx float64) time.Time {
	return epoch.AddDate(0, 0, int(math.Floor(idx)))
}

// DateToIndex returns the day index of a calendar day.
func DateToIndex(t time.Time) float64 {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	return float64((day.Unix() - epoch.Unix()) / 86400)
}

// monthSpan returns the first day index and the length of the month containing idx.
func monthSpan(idx float64) (float64, float64) {
	d := IndexToDate(idx)
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := DateToIndex(first)

	return start, DateToIndex(first.AddDate(0, 1, 0)) - start
}

// cumulative is the running volume of a history.
type cumulative struct {
	start  []float64 // first day covered by each row
	end    []float64 // last day covered by each row
	volume []float64
	total  []float64 // running volume through each row
}

func (h History) cumulative() cumulative {
	n := len(h.Index)
	c := cumulative{
		start:  make([]float64, n),
		end:    make([]float64, n),
		volume: make([]float64, n),
		total:  make([]float64, n),
	}

	run := 0.0
	for i, idx := range h.Index {
		if h.Frequency == Monthly {
			start, days := monthSpan(idx)
			c.start[i], c.end[i] = start, start+days-1
			c.volume[i] = h.Rate[i] * days
		} else {
			c.start[i], c.end[i] = idx, idx
			c.volume[i] = h.Rate[i]
		}
		run += c.volume[i]
		c.total[i] = run
	}

	return c
}

// last returns the last covered day and the total volume, or -Inf and 0 without rows.
func (c cumulative) last() (float64, float64) {
	n := len(c.total)
	if n == 0 {
		return math.Inf(-1), 0
	}

	return c.end[n-1], c.total[n-1]
}

// at returns the volume produced through idx. Inside a month the volume grows linearly by day.
func (c cumulative) at(idx float64) float64 {
	k := sort.Search(len(c.start), func(i int) bool { return c.start[i] > idx }) - 1
	if k < 0 {
		return 0
	}
	if idx >= c.end[k] {
		return c.total[k]
	}

	days := c.end[k] - c.start[k] + 1
	frac := (math.Floor(idx) - c.start[k] + 1) / days

	return c.total[k] - c.volume[k] + c.volume[k]*frac
}
