package logger

import "context"

// contextKey is the private key type for values this package stores in
// a request context
type contextKey string

const (
	// RequestIDKey carries the HTTP request ID
	RequestIDKey contextKey = "request_id"
	// UserIDKey carries the authenticated user ID
	UserIDKey contextKey = "user_id"
)

// WithRequestID stores the request ID in the context. The gorm logger
// picks it up so SQL lines can be correlated with their HTTP request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID returns the request ID stored in the context, if any
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithUserID stores the authenticated user ID in the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID returns the user ID stored in the context, if any
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}
