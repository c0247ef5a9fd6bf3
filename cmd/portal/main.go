package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ampnm-backend/config"
	"ampnm-backend/internal/mailer"
	"ampnm-backend/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.LogLevel)
	slog.Info("ampnm portal starting", "version", config.Version)

	db, err := config.ConnectDB(cfg.PortalDB, config.PortalModels...)
	if err != nil {
		slog.Error("database open failed", "error", err)
		os.Exit(1)
	}

	if cfg.SMTP.Host == "" {
		slog.Info("smtp not configured, demo license mails disabled")
	}

	app := routes.NewApp("ampnm-portal")
	if err := routes.SetupPortalRoutes(app, db, cfg, mailer.New(cfg.SMTP)); err != nil {
		slog.Error("route setup failed", "error", err)
		os.Exit(1)
	}

	go func() {
		slog.Info("server listening", "addr", cfg.PortalListenAddr)
		if err := app.Listen(cfg.PortalListenAddr); err != nil {
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
