package contextkeys

import "context"

// contextKey is an unexported type to prevent collisions with context keys
// defined in other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "familyhub context key " + string(c)
}

// UserIDKey is the key for the verified user id in context.Context
const UserIDKey = contextKey("userID")

// FamilyIDKey is the key for the family id in context.Context
const FamilyIDKey = contextKey("familyID")

// RequestIDKey is the key for the request id in context.Context
const RequestIDKey = contextKey("requestID")

// ComponentKey is the key for the emitting component in context.Context
const ComponentKey = contextKey("component")

// WithUserID returns a context carrying the verified user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext extracts the verified user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext extracts the request id, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok && id != ""
}
