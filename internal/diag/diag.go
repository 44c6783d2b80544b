// Package diag builds the process logger from an explicit verbosity setting.
package diag

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Verbosity is passed to components at construction instead of global debug flags.
type Verbosity struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// TraceExtraction logs per-paragraph extraction decisions at debug level.
	TraceExtraction bool `mapstructure:"trace_extraction"`
}

func DefaultVerbosity() Verbosity {
	return Verbosity{Level: "info", Format: "console"}
}

func (v Verbosity) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(v.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", v.Level)
	}
}

func (v Verbosity) Validate() error {
	if _, err := v.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(v.Format) {
	case "console", "json", "":
		return nil
	default:
		return fmt.Errorf("invalid log format: %s", v.Format)
	}
}

// NewLogger returns a text or JSON logger writing to w. Tracing forces debug level.
func NewLogger(w io.Writer, v Verbosity) (*slog.Logger, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	level, _ := v.SlogLevel()
	if v.TraceExtraction {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(v.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// Discard is the logger components fall back to when given nil.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
