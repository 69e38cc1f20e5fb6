// Package logging builds the zerolog logger shared by wiregen commands.
//
// Logs go to stderr so generated code on stdout stays clean. Every line
// carries the run_id of the invocation that wrote it.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EnvLevel overrides the configured log level.
const EnvLevel = "WIREGEN_LOG_LEVEL"

// RunIDSource produces the ID attached to each invocation's log lines.
type RunIDSource interface {
	NewRunID() string
}

// UUIDRunID produces random UUIDv4 run IDs.
type UUIDRunID struct{}

// NewRunID returns a fresh UUID.
func (UUIDRunID) NewRunID() string {
	return uuid.New().String()
}

// Options configures New.
type Options struct {
	// Level is the configured level name. Empty means warn.
	Level string

	// Verbose forces debug level and human-readable output.
	Verbose bool

	// Out defaults to os.Stderr.
	Out io.Writer

	// RunIDs defaults to UUIDRunID.
	RunIDs RunIDSource

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// New builds a logger. The level is taken from, in order: Verbose, the
// WIREGEN_LOG_LEVEL environment variable, Options.Level, then warn.
// Unparseable levels fall through to the next source.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	ids := opts.RunIDs
	if ids == nil {
		ids = UUIDRunID{}
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	level := resolveLevel(opts.Verbose, getenv(EnvLevel), opts.Level)
	if opts.Verbose {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run_id", ids.NewRunID()).
		Logger()
}

func resolveLevel(verbose bool, candidates ...string) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if level, err := zerolog.ParseLevel(c); err == nil {
			return level
		}
	}
	return zerolog.WarnLevel
}
