// Package logging defines the structured-logging interface used across the
// service. The server logs through zap, the CLI client through slog.
package logging

import "context"

// Logger is a context-aware, structured logger. args are key-value pairs:
//
//	log.Info(ctx, "account registered", "username", name)
//
// Adapters add an "rqid" field taken from ctx (see ContextWithRequestID)
// unless args already carry one.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// RequestIDKey is the field name used for request correlation ids.
const RequestIDKey = "rqid"

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying rqid.
func ContextWithRequestID(ctx context.Context, rqid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rqid)
}

// RequestID returns the correlation id stored on ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	rqid, _ := ctx.Value(requestIDKey{}).(string)
	return rqid
}

func withRequestID(ctx context.Context, args []any) []any {
	rqid := RequestID(ctx)
	if rqid == "" {
		return args
	}
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok && k == RequestIDKey {
			return args
		}
	}
	return append([]any{RequestIDKey, rqid}, args...)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
