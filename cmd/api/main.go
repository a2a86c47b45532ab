// Package main is the entry point for the StreamShare API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/streamshare/backend/config"
	"github.com/streamshare/backend/internal/application/usecase/auth"
	"github.com/streamshare/backend/internal/infra/db"
	"github.com/streamshare/backend/internal/infra/dependency"
	"github.com/streamshare/backend/internal/infra/logging"
	infraredis "github.com/streamshare/backend/internal/infra/redis"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.Server.Environment, cfg.Server.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	slog.Info("Starting StreamShare API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewPostgresConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.Migrate(); err != nil {
		return err
	}
	slog.Info("Database migrations completed successfully")

	var redisClient goredis.Cmdable
	client, err := infraredis.NewClient(ctx, &cfg.Redis)
	switch {
	case err != nil:
		slog.Warn("Redis unavailable, notification counts will not be cached", "error", err)
	case client == nil:
		slog.Info("REDIS_URL not set, notification counts will not be cached")
	default:
		redisClient = client
		defer func() { _ = client.Close() }()
	}

	injector, err := dependency.NewInjector(cfg, database.DB(), redisClient)
	if err != nil {
		return err
	}

	admin, err := injector.EnsureAdmin.Execute(ctx, auth.EnsureAdminInput{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	if admin == nil {
		slog.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, no administrator was created")
	}

	if cfg.Email.WorkerEnabled {
		go injector.EmailWorker.Start(ctx)
	}

	engine := injector.Router.Setup(cfg.Server.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exited properly")
	return nil
}
