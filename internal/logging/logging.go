// Package logging builds the zerolog logger used by the resolver and CLI.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bashhack/otpimport/internal/config"
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Options configures the logger
type Options struct {
	Level     string
	Format    string
	Component string
	Writer    io.Writer
}

// FromConfig maps loaded settings onto Options
func FromConfig(cfg *config.Config) Options {
	return Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
}

// New builds a logger. Output goes to stderr unless a writer is given, so
// stdout stays reserved for command results.
func New(opt Options) Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: opt.Writer != nil}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
	if opt.Component != "" {
		ctx = ctx.Str("component", opt.Component)
	}
	return ctx.Logger()
}

// Nop returns a logger that discards everything
func Nop() Logger {
	return zerolog.Nop()
}

// ParseLevel maps a level name to zerolog; unknown names fall back to warn
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// WithContext stores l in ctx
func WithContext(ctx context.Context, l Logger) context.Context {
	return l.WithContext(ctx)
}

// C returns the logger stored in ctx, or a disabled one
func C(ctx context.Context) *Logger {
	return zerolog.Ctx(ctx)
}
