// Package main is the entry point for the ledger-chat server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/kyawswar/ledger-chat/internal/auth"
	"gitlab.com/kyawswar/ledger-chat/internal/chat"
	"gitlab.com/kyawswar/ledger-chat/internal/config"
	"gitlab.com/kyawswar/ledger-chat/internal/database"
	"gitlab.com/kyawswar/ledger-chat/internal/logger"
	"gitlab.com/kyawswar/ledger-chat/internal/repository"
	"gitlab.com/kyawswar/ledger-chat/internal/web"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Log.Info().Msg("Database initialized successfully")

	users := repository.NewUserRepository(pool)
	sessions := repository.NewSessionRepository(pool)
	expenses := repository.NewExpenseRepository(pool)
	messages := repository.NewMessageRepository(pool)

	authSvc := auth.NewService(users, sessions, cfg.SessionTTL)

	// Expired sessions pile up otherwise; sweep them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := sessions.DeleteExpired(ctx); err != nil {
					logger.Log.Error().Err(err).Msg("Session cleanup failed")
				} else if n > 0 {
					logger.Log.Info().Int("deleted", n).Msg("Expired sessions cleaned up")
				}
			}
		}
	}()

	hub := chat.NewHub(ctx, messages, chat.ClaimedIdentity{}, chat.LogReporter{})
	go hub.Run()

	srv, err := web.NewServer(authSvc, expenses, hub, cfg.SessionTTL, cfg.CookieSecure)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create server")
	}

	mux := http.NewServeMux()
	srv.Routes(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.Logging(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Server shutdown failed")
		}
		hub.Stop()
		cancel()
	}()

	logger.Log.Info().Str("addr", cfg.Addr).Msg("Listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal().Err(err).Msg("Server failed")
	}
}
