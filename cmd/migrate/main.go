// Command migrate applies or inspects the embedded database migrations.
//
// Usage:
//
//	migrate [up|down|status]
//
// The default is up. Connection settings come from the server config.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/streamlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/streamlog-backend/internal/app"
	"github.com/heartmarshall/streamlog-backend/internal/config"
)

func main() {
	flag.Parse()
	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.OpenDB(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	provider, err := postgres.NewMigrator(db)
	if err != nil {
		logger.Error("create migrator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	switch action {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			logger.Error("migrate up", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.Int("count", len(results)))
	case "down":
		res, err := provider.Down(ctx)
		if err != nil {
			logger.Error("migrate down", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migration rolled back", slog.Int64("version", res.Source.Version))
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			logger.Error("migration status", slog.String("error", err.Error()))
			os.Exit(1)
		}
		for _, s := range statuses {
			fmt.Printf("%-8d %-10s %s\n", s.Source.Version, s.State, s.Source.Path)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown action %q: want up, down or status\n", action)
		os.Exit(2)
	}
}
