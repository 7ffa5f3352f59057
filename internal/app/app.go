package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	apprepo "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/application"
	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/entry"
	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/event"
	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/history"
	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/notify"
	permrepo "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/permission"
	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/section"
	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/tag"
	userrepo "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/user"
	"github.com/heartmarshall/streamlog-backend/internal/auth"
	"github.com/heartmarshall/streamlog-backend/internal/config"
	"github.com/heartmarshall/streamlog-backend/internal/domain"
	"github.com/heartmarshall/streamlog-backend/internal/engine"
	"github.com/heartmarshall/streamlog-backend/internal/platform/tracing"
	appsvc "github.com/heartmarshall/streamlog-backend/internal/service/application"
	"github.com/heartmarshall/streamlog-backend/internal/service/journal"
	permsvc "github.com/heartmarshall/streamlog-backend/internal/service/permission"
	usersvc "github.com/heartmarshall/streamlog-backend/internal/service/user"
	"github.com/heartmarshall/streamlog-backend/internal/transport/middleware"
	"github.com/heartmarshall/streamlog-backend/internal/transport/rest"
	"github.com/heartmarshall/streamlog-backend/internal/transport/ws"
)

type userAuthenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

type appAuthenticator interface {
	Authenticate(ctx context.Context, rawKey string) (domain.Application, error)
}

// Run is the application entry point. It loads configuration, connects to
// the database, starts the engine, the permission listener and the HTTP
// server, and blocks until ctx is cancelled or one of them fails.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", slog.String("error", err.Error()))
		}
	}()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Infrastructure.
	txm := postgres.NewTxManager(pool)
	notifier := notify.NewNotifier(pool)
	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.DevTokenTTL)

	// Repositories.
	users := userrepo.New(pool)
	apps := apprepo.New(pool)
	perms := permrepo.New(pool)
	events := event.New(pool)

	// Services.
	userService := usersvc.NewService(logger, users, jwt, notifier, txm)
	appService := appsvc.NewService(logger, apps, txm)
	journalService := journal.NewService(logger,
		entry.New(pool), history.New(pool), tag.New(pool), section.New(pool), events, txm,
		journal.RetryPolicy{
			Attempts:  cfg.Sync.RetryAttempts,
			BaseDelay: cfg.Sync.RetryBaseDelay,
			MaxDelay:  cfg.Sync.RetryMaxDelay,
		},
	)

	resolver := permsvc.NewResolver(perms, events)
	eng := engine.New(logger, engine.Config{
		IdleTimeout:    cfg.Sync.IdleTimeout,
		HaltCooldown:   cfg.Sync.HaltCooldown,
		MaxCreateCount: cfg.Sync.MaxCreateCount,
	}, journalService, resolver)

	listener := notify.NewListener(pool, notify.ChannelPermissions, func(ctx context.Context, payload string) {
		if err := eng.RefreshPermissions(ctx, notify.ParseEventPayload(payload)); err != nil {
			logger.WarnContext(ctx, "refresh permissions",
				slog.String("payload", payload),
				slog.String("error", err.Error()),
			)
		}
	}, logger).WithMaxBackoff(cfg.Sync.NotifyReconnect)

	// Transport.
	wsHandler := ws.NewHandler(logger, ws.Config{
		OutboundQueue: cfg.Sync.OutboundQueue,
		PingInterval:  cfg.Sync.PingInterval,
		PongTimeout:   cfg.Sync.PongTimeout,
		AuthTimeout:   cfg.Sync.AuthTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		MaxFrameBytes: cfg.Sync.MaxFrameBytes,
		Origins:       cfg.Sync.Origins(),
	}, eng, userService, resolver)

	limiter := middleware.NewRateLimiter(cfg.API.RateLimitCleanup)
	defer limiter.Stop()

	handler := newRouter(logger, *cfg, routes{
		ws:        wsHandler,
		api:       rest.NewAPIHandler(logger, journalService, eng),
		health:    rest.NewHealthHandler(pool, eng, wsHandler, BuildVersion()).WithListener(listener),
		users:     userService,
		apps:      appService,
		rateLimit: limiter.Limit(cfg.API.RateLimitPerMinute),
	})

	srv := &http.Server{
		Addr:        net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:     handler,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
		// WriteTimeout is applied per frame on update channel connections;
		// a server-wide deadline would cut long-lived sockets.
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return listener.Run(gctx) })
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		// Hijacked connections are invisible to Shutdown.
		wsHandler.CloseAll()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
