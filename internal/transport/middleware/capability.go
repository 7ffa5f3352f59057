package middleware

import (
	"net/http"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/transport/errpresenter"
)

// RequireAppCapability rejects applications that lack the capability
// reported by has. It must run after AppKeyAuth.
func RequireAppCapability(has func(domain.Application) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			app, ok := ApplicationFromCtx(r.Context())
			if !ok {
				unauthorized(w, "application key required")
				return
			}
			if !has(app) {
				errpresenter.Write(w, http.StatusForbidden, errpresenter.Error{
					Code:    errpresenter.CodePermissionDenied,
					Message: "application lacks this capability",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CanReadLog reports whether app holds the read_log capability.
func CanReadLog(app domain.Application) bool { return app.ReadLog }

// CanWriteLinks reports whether app holds the write_links capability.
func CanWriteLinks(app domain.Application) bool { return app.WriteLinks }
