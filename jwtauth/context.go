package jwtauth

import "context"

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const (
	requestIDContextKey contextKey = "github.com/Wang-tianhao/vibrant-jwt-privilege/jwtauth:request_id"
)

// privilegeKey is distinct for every privilege type
type privilegeKey[T any] struct{}

// WithPrivilege stores the value an Authorizer produced in the context.
func WithPrivilege[T any](ctx context.Context, value T) context.Context {
	return context.WithValue(ctx, privilegeKey[T]{}, value)
}

// PrivilegeFrom retrieves the privilege value of type T from the context.
// Returns the zero value and false if none was stored.
func PrivilegeFrom[T any](ctx context.Context) (T, bool) {
	value, ok := ctx.Value(privilegeKey[T]{}).(T)
	return value, ok
}

// MustPrivilege retrieves the privilege value and panics if not present.
// Use only behind one of the authorization middlewares.
func MustPrivilege[T any](ctx context.Context) T {
	value, ok := PrivilegeFrom[T](ctx)
	if !ok {
		panic("jwtauth: privilege not found in context")
	}
	return value
}

// WithRequestID stores a request ID in context for correlation
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
