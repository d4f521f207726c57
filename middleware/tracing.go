package middleware

import (
	"context"

	"github.com/shrek82/namedsql/core"
	"github.com/shrek82/namedsql/logger"
)

// ContextKey is the type of the context keys TracingMiddleware reads.
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserIPKey    ContextKey = "user_ip"
	TraceIDKey   ContextKey = "trace_id"
)

// TracingMiddleware writes one line per statement to Logger, tagged with
// the request information found in the context.
type TracingMiddleware struct {
	Logger logger.Logger
}

func NewTracing(l logger.Logger) *TracingMiddleware {
	return &TracingMiddleware{Logger: l}
}

func (m *TracingMiddleware) Name() string {
	return "Tracing"
}

func (m *TracingMiddleware) Process(ctx context.Context, req core.Request, next core.ExecFunc) core.Outcome {
	fields := map[string]any{"connection": req.Connection}
	for _, key := range []ContextKey{RequestIDKey, UserIPKey, TraceIDKey} {
		if v := ctx.Value(key); v != nil {
			fields[string(key)] = v
		}
	}

	out := next(ctx, req)

	l := m.Logger.WithFields(fields)
	if out.Failed() {
		l.Error("%s failed: %s", req.SQL, out.Message)
	} else {
		l.Info("%s -> %s", req.SQL, out.Kind)
	}
	return out
}
