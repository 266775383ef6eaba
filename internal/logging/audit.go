package logging

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// AuditEntry is one line in the audit log: which command ran, with what
// parameters, and how it ended.
type AuditEntry struct {
	Timestamp   time.Time         `json:"timestamp"`
	Command     string            `json:"command"`
	TraceID     string            `json:"trace_id"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	ResultCount int               `json:"result_count,omitempty"`
	TotalTonnes float64           `json:"total_tonnes,omitempty"`
	DurationMs  int64             `json:"duration_ms"`
}

// NewAuditEntry starts an audit entry for a command invocation.
func NewAuditEntry(command, traceID string) *AuditEntry {
	return &AuditEntry{
		Timestamp: time.Now().UTC(),
		Command:   command,
		TraceID:   traceID,
	}
}

// WithParameters records the command parameters.
func (e *AuditEntry) WithParameters(params map[string]string) *AuditEntry {
	e.Parameters = params
	return e
}

// WithError marks the entry failed with the given message.
func (e *AuditEntry) WithError(msg string) *AuditEntry {
	e.Success = false
	e.Error = msg
	return e
}

// WithSuccess marks the entry successful with the result size and the total
// tonnage it covered.
func (e *AuditEntry) WithSuccess(count int, tonnes float64) *AuditEntry {
	e.Success = true
	e.ResultCount = count
	e.TotalTonnes = tonnes
	return e
}

// WithDuration records elapsed time since start.
func (e *AuditEntry) WithDuration(start time.Time) *AuditEntry {
	e.DurationMs = time.Since(start).Milliseconds()
	return e
}

// AuditLogger records audit entries. Implementations must be safe for
// concurrent use.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditEntry)
	Close() error
}

// AuditLoggerConfig controls audit logger construction.
type AuditLoggerConfig struct {
	// Enabled turns audit logging on.
	Enabled bool

	// File is the audit log path. Entries are appended as JSON lines.
	File string
}

// NewAuditLogger builds an audit logger. When disabled or unconfigured, or
// when the file cannot be opened, it returns a no-op logger: audit trouble
// must never block the command itself.
func NewAuditLogger(cfg AuditLoggerConfig) AuditLogger {
	if !cfg.Enabled || cfg.File == "" {
		return noopAuditLogger{}
	}
	file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return noopAuditLogger{}
	}
	return &fileAuditLogger{file: file}
}

type noopAuditLogger struct{}

func (noopAuditLogger) Log(context.Context, AuditEntry) {}
func (noopAuditLogger) Close() error                    { return nil }

type fileAuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// Log appends the entry as one JSON line. Failures are reported to the
// context logger at warn level and otherwise swallowed.
func (l *fileAuditLogger) Log(ctx context.Context, entry AuditEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		FromContext(ctx).Warn().Err(err).Msg("failed to marshal audit entry")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		FromContext(ctx).Warn().Err(err).Msg("failed to write audit entry")
	}
}

// Close releases the audit file handle.
func (l *fileAuditLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

type auditLoggerKey struct{}

// ContextWithAuditLogger returns a context carrying the audit logger.
func ContextWithAuditLogger(ctx context.Context, logger AuditLogger) context.Context {
	return context.WithValue(ctx, auditLoggerKey{}, logger)
}

// AuditLoggerFromContext returns the audit logger stored in ctx. It never
// returns nil; callers get a no-op logger when none was installed.
func AuditLoggerFromContext(ctx context.Context) AuditLogger {
	if logger, ok := ctx.Value(auditLoggerKey{}).(AuditLogger); ok && logger != nil {
		return logger
	}
	return noopAuditLogger{}
}
