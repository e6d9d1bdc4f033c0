package utils

import "context"

type contextKey string

const (
	correlationIDKey contextKey = "correlationID"
	usernameKey      contextKey = "username"
)

// Gin context keys
const (
	GinCorrelationIDKey = "correlationID"
	GinUsernameKey      = "username"
)

// CorrelationIDHeader carries the request correlation ID
const CorrelationIDHeader = "X-Correlation-ID"

// WithCorrelationID returns a context carrying the correlation ID
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation ID stored in ctx, if any
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// WithUsername returns a context carrying the authenticated user name
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromContext returns the authenticated user name stored in ctx, if any
func UsernameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(usernameKey).(string)
	return name
}
