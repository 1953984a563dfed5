// Package ctxkeys holds the typed context keys shared between middleware
// and handlers.
package ctxkeys

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	callerIDKey  contextKey = "caller_id"
)

// WithRequestID stores the per-request correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the correlation ID set by the request-ID middleware.
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithCallerID stores the authenticated caller identity.
func WithCallerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerIDKey, id)
}

// CallerID returns the caller identity set by the auth middleware. The
// second return is false for unauthenticated requests.
func CallerID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(callerIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
