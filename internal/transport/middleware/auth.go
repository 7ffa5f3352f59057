package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/transport/errpresenter"
	"github.com/heartmarshall/streamlog-backend/pkg/ctxutil"
)

type userAuthenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

type userCtxKey struct{}

// Auth resolves the identity token carried in the Authorization header or
// the session cookie. Requests without a token pass through anonymously so
// that the update channel can authenticate with its first frame instead.
func Auth(users userAuthenticator, cookie string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				token = cookieToken(r, cookie)
			}
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			u, err := users.Authenticate(r.Context(), token)
			if err != nil {
				authFailed(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u domain.User) context.Context {
	ctx = ctxutil.WithUserID(ctx, u.ID)
	noteUser(ctx, u.ID)
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromCtx returns the user stored by Auth.
func UserFromCtx(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(domain.User)
	return u, ok
}

func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func cookieToken(r *http.Request, name string) string {
	if name == "" {
		return ""
	}
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func unauthorized(w http.ResponseWriter, msg string) {
	errpresenter.Write(w, http.StatusUnauthorized, errpresenter.Error{
		Code:    errpresenter.CodeAuthenticationFailure,
		Message: msg,
	})
}

// authFailed answers a failed credential check. Anything other than a
// rejected credential means the store could not be asked.
func authFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		unauthorized(w, "invalid credentials")
		return
	}
	errpresenter.Write(w, http.StatusServiceUnavailable, errpresenter.Error{
		Code:      errpresenter.CodeTransient,
		Message:   "authentication temporarily unavailable",
		Retryable: true,
	})
}
