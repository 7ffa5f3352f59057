// Package errpresenter maps domain errors to the wire codes and HTTP
// statuses shared by the update channel and the integration API.
package errpresenter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/engine"
	"github.com/heartmarshall/streamlog-backend/pkg/ctxutil"
)

// Wire error codes.
const (
	CodeAuthenticationFailure = "AUTHENTICATION_FAILURE"
	CodePermissionDenied      = "PERMISSION_DENIED"
	CodeNotFound              = "NOT_FOUND"
	CodeValidation            = "VALIDATION_ERROR"
	CodeConflict              = "CONFLICT"
	CodeTransient             = "TRANSIENT_STORE_FAILURE"
	CodeRateLimited           = "RATE_LIMITED"
	CodeInternal              = "INTERNAL"
)

// Error is the client-facing form of an error.
type Error struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Fields    []domain.FieldError `json:"fields,omitempty"`
	Retryable bool                `json:"retryable"`
}

// Envelope is the body of a failed HTTP request.
type Envelope struct {
	Error Error `json:"error"`
}

// Write sends e in an Envelope with the given status.
func Write(w http.ResponseWriter, status int, e Error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Error: e})
}

// Present maps err to a client error and the matching HTTP status.
// Unexpected errors are logged and reported as INTERNAL without detail.
func Present(ctx context.Context, log *slog.Logger, err error) (Error, int) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return Error{Code: CodeAuthenticationFailure, Message: "authentication required"}, http.StatusUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return Error{Code: CodePermissionDenied, Message: "permission denied"}, http.StatusForbidden

	case errors.Is(err, domain.ErrNotFound):
		return Error{Code: CodeNotFound, Message: "not found"}, http.StatusNotFound

	case errors.Is(err, domain.ErrValidation):
		e := Error{Code: CodeValidation, Message: "validation failed"}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			e.Fields = ve.Errors
			e.Message = ve.Error()
		}
		return e, http.StatusBadRequest

	case errors.Is(err, domain.ErrConflict):
		return Error{Code: CodeConflict, Message: "conflict"}, http.StatusConflict

	case errors.Is(err, domain.ErrCommitUncertain):
		log.LogAttrs(ctx, slog.LevelWarn, "commit outcome unknown",
			append(ctxutil.LogAttrs(ctx), slog.String("error", err.Error()))...)
		return Error{Code: CodeTransient, Message: "commit outcome unknown, reload before retrying"}, http.StatusServiceUnavailable

	case errors.Is(err, engine.ErrEventHalted):
		return Error{Code: CodeTransient, Message: "event temporarily unavailable", Retryable: true}, http.StatusServiceUnavailable

	case errors.Is(err, domain.ErrTransient), errors.Is(err, engine.ErrStopped):
		return Error{Code: CodeTransient, Message: "temporarily unavailable", Retryable: true}, http.StatusServiceUnavailable

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Error{Code: CodeTransient, Message: "request cancelled", Retryable: true}, http.StatusServiceUnavailable

	default:
		log.LogAttrs(ctx, slog.LevelError, "unexpected error",
			append(ctxutil.LogAttrs(ctx), slog.String("error", err.Error()))...)
		return Error{Code: CodeInternal, Message: "internal error"}, http.StatusInternalServerError
	}
}
