// Package audit records lifecycle events both on the operational log stream
// and in the durable application log store.
package audit

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/userservice/internal/timex"
	"github.com/google/uuid"
)

// MaxMessageLength is the longest message kept in the store; longer ones are
// cut to fit the column.
const MaxMessageLength = 1000

// NewCorrelationID returns a fresh request correlation id.
func NewCorrelationID() string {
	return uuid.NewString()
}

// WithRequestID stores the request correlation id on ctx. Operational log
// lines written with the returned context carry it.
func WithRequestID(ctx context.Context, rqid string) context.Context {
	return logging.ContextWithRequestID(ctx, rqid)
}

// RequestIDFrom returns the correlation id stored by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	return logging.RequestID(ctx)
}

// Logger fans audit entries out to the operational logger and the store.
// It is safe for concurrent use if the store is.
type Logger struct {
	log   logging.Logger
	store auditlogs.Repository
	clock timex.Clock
}

func NewLogger(log logging.Logger, store auditlogs.Repository, clock timex.Clock) *Logger {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &Logger{log: log, store: store, clock: clock}
}

// Component returns a logger whose records carry the given component name.
func (l *Logger) Component(name string) *ComponentLogger {
	return &ComponentLogger{parent: l, name: name, log: l.log.With("component", name)}
}

// ComponentLogger writes audit records on behalf of one component.
type ComponentLogger struct {
	parent *Logger
	name   string
	log    logging.Logger
}

func (c *ComponentLogger) Trace(ctx context.Context, rqid, msg string, args ...any) error {
	return c.Record(ctx, models.LevelTrace, rqid, msg, args...)
}

func (c *ComponentLogger) Debug(ctx context.Context, rqid, msg string, args ...any) error {
	return c.Record(ctx, models.LevelDebug, rqid, msg, args...)
}

func (c *ComponentLogger) Info(ctx context.Context, rqid, msg string, args ...any) error {
	return c.Record(ctx, models.LevelInfo, rqid, msg, args...)
}

func (c *ComponentLogger) Warn(ctx context.Context, rqid, msg string, args ...any) error {
	return c.Record(ctx, models.LevelWarn, rqid, msg, args...)
}

func (c *ComponentLogger) Error(ctx context.Context, rqid, msg string, args ...any) error {
	return c.Record(ctx, models.LevelError, rqid, msg, args...)
}

func (c *ComponentLogger) Fatal(ctx context.Context, rqid, msg string, args ...any) error {
	return c.Record(ctx, models.LevelFatal, rqid, msg, args...)
}

// Record writes one entry. The store write happens before Record returns. A
// failing store is reported on the operational stream and returned; callers
// on an error path are expected to ignore it so the original failure wins.
func (c *ComponentLogger) Record(ctx context.Context, level models.LogLevel, rqid, msg string, args ...any) error {
	kv := append([]any{logging.RequestIDKey, rqid}, args...)

	switch level {
	case models.LevelTrace, models.LevelDebug:
		c.log.Debug(ctx, msg, kv...)
	case models.LevelInfo:
		c.log.Info(ctx, msg, kv...)
	case models.LevelWarn:
		c.log.Warn(ctx, msg, kv...)
	default:
		c.log.Error(ctx, msg, kv...)
	}

	rec := &models.AuditRecord{
		Level:     level,
		Message:   truncate(msg, MaxMessageLength),
		RequestID: rqid,
		Timestamp: c.parent.clock(),
		Component: c.name,
	}
	if err := c.parent.store.Insert(ctx, rec); err != nil {
		c.log.Error(ctx, "audit store write failed", "rqid", rqid, "error", err)
		return fmt.Errorf("audit store: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
