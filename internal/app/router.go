package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/streamlog-backend/internal/config"
	"github.com/heartmarshall/streamlog-backend/internal/transport/middleware"
	"github.com/heartmarshall/streamlog-backend/internal/transport/rest"
	"github.com/heartmarshall/streamlog-backend/internal/transport/ws"
)

// routes groups the handlers mounted on the HTTP server.
type routes struct {
	ws        *ws.Handler
	api       *rest.APIHandler
	health    *rest.HealthHandler
	users     userAuthenticator
	apps      appAuthenticator
	rateLimit middleware.Middleware
}

// newRouter builds the server's handler tree:
//
//	GET /ws          update channel (user token from header, cookie or first frame)
//	    /api/v1/...  integration API (application key)
//	GET /live, /ready, /health
func newRouter(logger *slog.Logger, cfg config.Config, r routes) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /ws", middleware.Auth(r.users, cfg.Auth.SessionCookie)(r.ws))
	r.api.Register(mux, r.apps, r.rateLimit)
	r.health.RegisterHealth(mux)

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(mux)
}
