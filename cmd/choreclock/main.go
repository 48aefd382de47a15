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

	"github.com/dukerupert/choreclock/internal/config"
	"github.com/dukerupert/choreclock/internal/database"
	"github.com/dukerupert/choreclock/internal/logging"
	"github.com/dukerupert/choreclock/internal/maintenance"
	"github.com/dukerupert/choreclock/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Sign-in and household membership live outside this service; operators
	// manage them with subcommands.
	if len(os.Args) > 1 {
		if err := runCommand(db, cfg.SessionTTL, os.Stdout, os.Args[1:]); err != nil {
			slog.Error("command failed", "command", os.Args[1], "error", err)
			os.Exit(1)
		}
		return
	}

	srv := server.New(db, cfg.Location, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	cleaner := maintenance.NewCleaner(srv.SessionStore(), srv.RateLimiter(), logger.With("component", "maintenance"))
	if err := cleaner.Start(); err != nil {
		logger.Error("start maintenance", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("choreclock listening", "port", cfg.Port, "timezone", cfg.Location.String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	<-cleaner.Stop().Done()
}
