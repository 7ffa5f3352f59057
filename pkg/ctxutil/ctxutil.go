// Package ctxutil carries request-scoped identifiers through a context so
// that logs written deep in a call can name the request and its caller.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// key is a typed context key; the zero value of T counts as absent.
type key[T comparable] struct{ name string }

func (k key[T]) with(ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, k, v)
}

func (k key[T]) from(ctx context.Context) (T, bool) {
	var zero T
	v, ok := ctx.Value(k).(T)
	if !ok || v == zero {
		return zero, false
	}
	return v, true
}

var (
	userIDKey        = key[uuid.UUID]{"user_id"}
	applicationIDKey = key[uuid.UUID]{"application_id"}
	requestIDKey     = key[string]{"request_id"}
)

// WithUserID records the authenticated user.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return userIDKey.with(ctx, id)
}

// UserIDFromCtx returns the authenticated user, if any.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	return userIDKey.from(ctx)
}

// WithApplicationID records the calling integration application.
func WithApplicationID(ctx context.Context, id uuid.UUID) context.Context {
	return applicationIDKey.with(ctx, id)
}

// ApplicationIDFromCtx returns the calling application, if any.
func ApplicationIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	return applicationIDKey.from(ctx)
}

// WithRequestID records the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return requestIDKey.with(ctx, id)
}

// RequestIDFromCtx returns the request id or "".
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := requestIDKey.from(ctx)
	return id
}

// LogAttrs returns the identifiers present in ctx as log attributes.
func LogAttrs(ctx context.Context) []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	if id, ok := requestIDKey.from(ctx); ok {
		attrs = append(attrs, slog.String(requestIDKey.name, id))
	}
	if id, ok := userIDKey.from(ctx); ok {
		attrs = append(attrs, slog.String(userIDKey.name, id.String()))
	}
	if id, ok := applicationIDKey.from(ctx); ok {
		attrs = append(attrs, slog.String(applicationIDKey.name, id.String()))
	}
	return attrs
}
