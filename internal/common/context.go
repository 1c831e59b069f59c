package common

import "context"

type correlationIDContextKey struct{}

// WithCorrelationID returns a new context carrying the request correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey{}, id)
}

// CorrelationIDFromContext extracts the correlation ID, if present.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDContextKey{}).(string)
	return id, ok && id != ""
}

// ForContext returns a logger tagged with the request's correlation ID, or l
// itself when the context carries none.
func (l *Logger) ForContext(ctx context.Context) *Logger {
	if id, ok := CorrelationIDFromContext(ctx); ok {
		return l.WithCorrelationId(id)
	}
	return l
}
