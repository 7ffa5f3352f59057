package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/heartmarshall/streamlog-backend/internal/transport/errpresenter"
	"github.com/heartmarshall/streamlog-backend/pkg/ctxutil"
)

// Recovery returns middleware that recovers from panics, logs them with a
// stack trace and answers with an INTERNAL error. http.ErrAbortHandler is
// re-raised so the server drops the connection as intended.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}
				attrs := append(ctxutil.LogAttrs(r.Context()),
					slog.Any("error", err),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)
				errpresenter.Write(w, http.StatusInternalServerError, errpresenter.Error{
					Code:    errpresenter.CodeInternal,
					Message: "internal error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
