// Command streamlogctl administers a streamlog deployment: integration
// applications, permission groups, event default roles and admin users.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	apprepo "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/application"
	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/event"
	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/notify"
	permrepo "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/permission"
	userrepo "github.com/heartmarshall/streamlog-backend/internal/adapter/postgres/user"
	"github.com/heartmarshall/streamlog-backend/internal/app"
	"github.com/heartmarshall/streamlog-backend/internal/auth"
	"github.com/heartmarshall/streamlog-backend/internal/cli"
	"github.com/heartmarshall/streamlog-backend/internal/config"
	appsvc "github.com/heartmarshall/streamlog-backend/internal/service/application"
	permsvc "github.com/heartmarshall/streamlog-backend/internal/service/permission"
	usersvc "github.com/heartmarshall/streamlog-backend/internal/service/user"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func open(ctx context.Context, configPath string) (*cli.Services, func(), error) {
	load := config.Load
	if configPath != "" {
		load = func() (*config.Config, error) { return config.LoadFile(configPath) }
	}
	cfg, err := load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg.Log)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	txm := postgres.NewTxManager(pool)
	notifier := notify.NewNotifier(pool)
	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.DevTokenTTL)
	users := userrepo.New(pool)

	return &cli.Services{
		Apps:   appsvc.NewService(logger, apprepo.New(pool), txm),
		Perms:  permsvc.NewService(logger, permrepo.New(pool), users, event.New(pool), notifier, txm),
		Users:  usersvc.NewService(logger, users, jwt, notifier, txm),
		Tokens: jwt,
	}, pool.Close, nil
}
