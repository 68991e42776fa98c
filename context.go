package oaikit

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const contextKeyRequestID contextKey = "oaikit_request_id"

// WithRequestID attaches a request ID to the context.
//
// The client uses it for the X-Client-Request-Id header, log lines and
// callback events instead of generating one.
//
// Example:
//
//	ctx = oaikit.WithRequestID(ctx, "req-123")
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestIDFromContext retrieves the request ID from the context.
//
// Returns an empty string if no request ID is found.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithGeneratedRequestID attaches a freshly generated request ID.
//
// Example:
//
//	ctx = oaikit.WithGeneratedRequestID(ctx)
//	requestID := oaikit.RequestIDFromContext(ctx)
func WithGeneratedRequestID(ctx context.Context) context.Context {
	return WithRequestID(ctx, generateRequestID())
}

// generateRequestID returns "req_" followed by a random UUID.
func generateRequestID() string {
	return "req_" + uuid.NewString()
}

// requestID returns the ID carried by ctx or a new one.
func requestID(ctx context.Context) string {
	if id := RequestIDFromContext(ctx); id != "" {
		return id
	}
	return generateRequestID()
}
