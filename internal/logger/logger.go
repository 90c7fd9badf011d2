// Package logger builds zerolog loggers from configuration. Loggers are
// passed to components explicitly and narrowed with fields; nothing here
// touches the zerolog global logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field names shared across components.
const (
	FieldComponent = "component"
	FieldQueryID   = "query_id"
	FieldFragment  = "fragment"
	FieldOperator  = "operator"
)

// Config contains logging configuration.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{"json", "console"}
	if !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	return nil
}

// New creates a logger writing to the configured output. The returned
// closer releases the output file, if any.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	cfg.ApplyDefaults()
	w, err := outputWriter(cfg.Output)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return NewWithWriter(cfg, w), w, nil
}

// NewWithWriter creates a logger writing to w; Output is ignored.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	cfg.ApplyDefaults()
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if strings.ToLower(cfg.Format) == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Nop returns a disabled logger, for tests and embedding.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func outputWriter(output string) (io.WriteCloser, error) {
	switch output {
	case "stdout":
		return nopCloser{os.Stdout}, nil
	case "stderr", "":
		return nopCloser{os.Stderr}, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log output: %w", err)
		}
		return f, nil
	}
}
