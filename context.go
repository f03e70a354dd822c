package goKeyless

import "context"

type correlationIDContextKey struct{}

// WithCorrelationID attaches a caller-chosen correlation identifier to ctx.
// The engine copies it into every audit event emitted for the operation so
// client logs can be joined with server-side traces.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey{}, id)
}

func correlationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(correlationIDContextKey{}).(string)
	return id
}
