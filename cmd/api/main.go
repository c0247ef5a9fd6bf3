package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ampnm-backend/config"
	"ampnm-backend/internal/repository"
	"ampnm-backend/internal/routes"
	"ampnm-backend/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.LogLevel)
	slog.Info("ampnm api starting", "version", config.Version)

	db, err := config.ConnectDB(cfg.DB, config.AppModels...)
	if err != nil {
		slog.Error("database open failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	installationID, err := repository.NewSettingRepository(db).EnsureInstallationID(ctx)
	cancel()
	if err != nil {
		slog.Error("installation id init failed", "error", err)
		os.Exit(1)
	}
	slog.Info("installation ready", "installation_id", installationID)

	sessions, err := session.Open(cfg.Session.Backend, db, cfg.Session.BoltPath)
	if err != nil {
		slog.Error("session store open failed", "backend", cfg.Session.Backend, "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	if n, err := sessions.Purge(ctx); err != nil {
		slog.Warn("expired session purge failed", "error", err)
	} else if n > 0 {
		slog.Info("expired sessions purged", "count", n)
	}
	cancel()

	app := routes.NewApp("ampnm-api")
	if err := routes.SetupAppRoutes(app, db, cfg, sessions); err != nil {
		slog.Error("route setup failed", "error", err)
		os.Exit(1)
	}

	go func() {
		slog.Info("server listening", "addr", cfg.ListenAddr)
		if err := app.Listen(cfg.ListenAddr); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down", "signal", sig.String())

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("stopped")
}
