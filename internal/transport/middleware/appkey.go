package middleware

import (
	"context"
	"net/http"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/pkg/ctxutil"
)

type appAuthenticator interface {
	Authenticate(ctx context.Context, rawKey string) (domain.Application, error)
}

type appCtxKey struct{}

// AppKeyAuth requires an integration application key in the Authorization
// header. The key is checked on every request so that a revoked key stops
// working immediately.
func AppKeyAuth(apps appAuthenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractBearerToken(r)
			if key == "" {
				unauthorized(w, "application key required")
				return
			}
			app, err := apps.Authenticate(r.Context(), key)
			if err != nil {
				authFailed(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithApplication(r.Context(), app)))
		})
	}
}

// WithApplication stores the authenticated application in the context.
func WithApplication(ctx context.Context, app domain.Application) context.Context {
	ctx = ctxutil.WithApplicationID(ctx, app.ID)
	noteApplication(ctx, app.ID)
	return context.WithValue(ctx, appCtxKey{}, app)
}

// ApplicationFromCtx returns the application stored by AppKeyAuth.
func ApplicationFromCtx(ctx context.Context) (domain.Application, bool) {
	app, ok := ctx.Value(appCtxKey{}).(domain.Application)
	return app, ok
}
