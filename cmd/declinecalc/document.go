package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/declinecurve/config"
	"github.com/arloliu/declinecurve/forecast"
	"github.com/arloliu/declinecurve/segment"
)

// document is the YAML input of every subcommand.
type document struct {
	Domain   config.Domain     `yaml:"domain"`
	Segments []segment.Record  `yaml:"segments"`
	History  *forecast.History `yaml:"history"`
}

// well is a loaded document: completed segments and the forecaster evaluating them.
type well struct {
	f        *forecast.Forecaster
	segments []segment.Record
	history  forecast.History
}

func loadDocument(path string) (*well, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc := document{Domain: config.Default()}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}

	eng, err := segment.New(segment.WithDomain(doc.Domain), segment.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	w := &well{
		f:        forecast.New(eng),
		segments: make([]segment.Record, len(doc.Segments)),
		history:  forecast.History{Frequency: forecast.Daily},
	}
	for i, raw := range doc.Segments {
		kind, err := segment.ParseKind(string(raw.Kind))
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		raw.Kind = kind
		w.segments[i] = eng.GenerateSegmentParameter(raw)
	}
	if err := w.f.Validate(w.segments); err != nil {
		return nil, err
	}
	if doc.History != nil {
		w.history = *doc.History
		if err := w.history.Validate(); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Str("path", path).
		Int("segments", len(w.segments)).
		Int("history", len(w.history.Index)).
		Msg("document loaded")

	return w, nil
}

// span returns [from, to] with zero bounds replaced by the forecast extent.
func (w *well) span(from, to float64) (float64, float64) {
	if len(w.segments) == 0 {
		return from, to
	}
	if from == 0 {
		from = w.segments[0].StartIdx
	}
	if to == 0 {
		to = w.segments[len(w.segments)-1].EndIdx
	}

	return from, to
}

func steps(from, to, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step %g must be positive", step)
	}
	if to < from {
		return nil, fmt.Errorf("range [%g, %g] is empty", from, to)
	}

	out := make([]float64, 0, int((to-from)/step)+1)
	for v := from; v <= to; v += step {
		out = append(out, v)
	}

	return out, nil
}
