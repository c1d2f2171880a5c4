// Package logging builds the zerolog loggers used by the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// Config selects the level, encoding and destination of log output.
type Config struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	// Output is stdout, stderr or a file path.
	Output string `yaml:"output" default:"stderr" validate:"required"`
}

// New returns a logger for cfg. Empty fields take their defaults. The returned
// closer releases the log file, if any.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	if err := defaults.Set(&cfg); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("apply log defaults: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level: %w", err)
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	return build(out, cfg.Format, level), closer, nil
}

func build(out io.Writer, format string, level zerolog.Level) zerolog.Logger {
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
