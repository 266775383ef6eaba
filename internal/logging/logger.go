// Package logging provides structured logging for wasteplan using zerolog.
//
// Loggers flow through context.Context: commands install a configured logger
// with WithContext and library code retrieves it with FromContext, so the
// engine and stores never hold logger fields. The package also carries trace
// IDs and the audit logger through the same context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level to emit ("debug", "info", "warn", "error").
	// Unparseable values fall back to info.
	Level string

	// Format selects "console" for human-readable output or "json" for
	// machine-readable output.
	Format string

	// Output selects the destination: "stderr", "stdout", or "file".
	Output string

	// File is the log file path when Output is "file".
	File string

	// Caller adds file:line caller annotations.
	Caller bool
}

// LogPathResult reports where NewLoggerWithPath ended up writing logs, so
// the CLI can tell the user and close the handle on exit.
type LogPathResult struct {
	// Logger is the configured logger.
	Logger zerolog.Logger

	// FilePath is the log file path when UsingFile is true.
	FilePath string

	// UsingFile reports whether logs are going to FilePath.
	UsingFile bool

	// FallbackUsed reports that file output was requested but unavailable,
	// and logs went to stderr instead.
	FallbackUsed bool

	// FallbackReason explains why the fallback was taken.
	FallbackReason string

	file *os.File
}

// Close releases the log file handle, if any.
func (r *LogPathResult) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// New builds a logger from cfg, writing to stderr or stdout. File output
// goes through NewLoggerWithPath so callers learn about fallbacks.
func New(cfg Config) zerolog.Logger {
	out := io.Writer(os.Stderr)
	if cfg.Output == "stdout" {
		out = os.Stdout
	}
	return build(cfg, out)
}

// NewLoggerWithPath builds a logger from cfg, honoring file output. When the
// configured file cannot be opened the logger falls back to stderr and the
// result records the reason; a broken log path must never abort a command.
func NewLoggerWithPath(cfg Config) LogPathResult {
	if cfg.Output != "file" || cfg.File == "" {
		return LogPathResult{Logger: New(cfg)}
	}

	file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		fallback := cfg
		fallback.Output = "stderr"
		return LogPathResult{
			Logger:         New(fallback),
			FallbackUsed:   true,
			FallbackReason: err.Error(),
		}
	}

	return LogPathResult{
		Logger:    build(cfg, file),
		FilePath:  cfg.File,
		UsingFile: true,
		file:      file,
	}
}

func build(cfg Config, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logCtx := zerolog.New(out).Level(lvl).With().Timestamp()
	if cfg.Caller {
		logCtx = logCtx.Caller()
	}
	return logCtx.Logger()
}

// ComponentLogger returns a child logger tagged with a component name so
// log lines can be filtered by subsystem.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger stored in ctx by zerolog's WithContext.
// When no logger is present a disabled logger is returned, which keeps
// library code safe to call from bare contexts.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// PrintLogPathMessage tells the user where logs are being written.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user that file logging was requested but
// logs are going to stderr instead.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: could not open log file (%s), logging to stderr\n", reason)
}
