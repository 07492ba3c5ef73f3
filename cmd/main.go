/*
Package main is the entry point for the FocusRoom server.

It loads configuration, initializes logging, picks the account store, starts the room
timer driver and the HTTP server, and shuts everything down on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"focusroom/internal/app/db"
	"focusroom/internal/app/hub"
	"focusroom/internal/app/room"
	"focusroom/internal/app/session"
	"focusroom/internal/app/user"
	"focusroom/internal/configs"
	"focusroom/internal/handler"
	"focusroom/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("room_deletion_grace", cfg.RoomDeletionGrace).
		Dur("timer_tick_interval", cfg.TimerTickInterval).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var users user.Store
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to connect to database")
		}
		defer pool.Close()

		users = db.NewUserRepository(pool)
		logx.Info("Using PostgreSQL user store")
	} else {
		users = user.NewMemoryStore()
		logx.Warn("DATABASE_URL not set, using in-memory user store")
	}

	clock := clockwork.NewRealClock()
	rooms := room.NewManager(clock)
	coordinator := session.NewCoordinator(rooms, hub.New(), clock, session.Options{
		DeletionGrace: cfg.RoomDeletionGrace,
		Defaults:      cfg.DefaultSettings,
	})

	go coordinator.RunTimers(ctx, cfg.TimerTickInterval)

	deps := &handler.AppDeps{
		Coordinator: coordinator,
		Users:       users,
		Config:      cfg,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("FocusRoom server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	rooms.Shutdown()

	logx.Info("Server gracefully stopped.")
}
