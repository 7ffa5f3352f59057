package middleware

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/heartmarshall/streamlog-backend/pkg/ctxutil"
)

// probePaths are logged at debug level so that orchestrator polling does
// not drown the request log.
var probePaths = map[string]bool{"/live": true, "/ready": true, "/health": true}

// Logger writes one "http.request" record per request. Caller ids noted by
// the authentication middleware and the trace id, when sampled, are
// attached.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			ids := &callerIDs{}

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), callerIDsKey{}, ids)))

			attrs := make([]slog.Attr, 0, 9)
			attrs = append(attrs,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Int64("bytes", sw.written),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			)
			if ids.user != uuid.Nil {
				attrs = append(attrs, slog.String("user_id", ids.user.String()))
			}
			if ids.app != uuid.Nil {
				attrs = append(attrs, slog.String("application_id", ids.app.String()))
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsSampled() {
				attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
			}

			logger.LogAttrs(r.Context(), requestLevel(r.URL.Path, sw.status), "http.request", attrs...)
		})
	}
}

func requestLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400 && status != http.StatusTooManyRequests:
		return slog.LevelWarn
	case probePaths[path]:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// callerIDs is filled in by the authentication middleware running inside
// Logger, whose own request context never sees their values.
type callerIDs struct {
	user uuid.UUID
	app  uuid.UUID
}

type callerIDsKey struct{}

func noteUser(ctx context.Context, id uuid.UUID) {
	if ids, ok := ctx.Value(callerIDsKey{}).(*callerIDs); ok {
		ids.user = id
	}
}

func noteApplication(ctx context.Context, id uuid.UUID) {
	if ids, ok := ctx.Value(callerIDsKey{}).(*callerIDs); ok {
		ids.app = id
	}
}

// statusWriter records the status and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the update channel take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	w.wroteHeader = true
	return h.Hijack()
}

// Flush forwards to the underlying writer when it supports flushing.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
