package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/LeJamon/goLPLockd/internal/events"
)

// EventsConfig represents the [events] section
// Committed lock events are published to a NATS JetStream stream
type EventsConfig struct {
	Enabled        bool          `toml:"enabled" mapstructure:"enabled"`
	URL            string        `toml:"url" mapstructure:"url"`
	Stream         string        `toml:"stream" mapstructure:"stream"`
	SubjectRoot    string        `toml:"subject_root" mapstructure:"subject_root"`
	PublishTimeout time.Duration `toml:"publish_timeout" mapstructure:"publish_timeout"`
}

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`

	// Output is "stderr", "stdout" or a file path
	Output string `toml:"output" mapstructure:"output"`
}

// NATS returns the publisher configuration.
func (e *EventsConfig) NATS() events.NATSConfig {
	return events.NATSConfig{
		URL:            e.URL,
		Stream:         e.Stream,
		SubjectRoot:    e.SubjectRoot,
		PublishTimeout: e.PublishTimeout,
	}
}

// Validate performs validation on the events configuration
func (e *EventsConfig) Validate() error {
	if !e.Enabled {
		return nil
	}
	return e.NATS().Validate()
}

// Validate performs validation on the log configuration
func (l *LogConfig) Validate() error {
	if _, err := l.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (valid options: text, json)", l.Format)
	}
	if l.Output == "" {
		return fmt.Errorf("log output is required")
	}
	return nil
}

// SlogLevel parses the configured level.
func (l *LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level: %s", l.Level)
	}
	return level, nil
}

// NewLogger builds the logger. The returned closer releases a log file and
// is a no-op for the standard streams.
func (l *LogConfig) NewLogger() (*slog.Logger, io.Closer, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	switch l.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(l.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	return slog.New(l.Handler(w, level)), closer, nil
}

// Handler returns the slog handler writing to w.
func (l *LogConfig) Handler(w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
