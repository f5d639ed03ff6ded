// Package main is the entrypoint for the AuraMed orchestration server.
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

	"github.com/Abhi-200412/AuraMed-sub000/internal/api"
	"github.com/Abhi-200412/AuraMed-sub000/internal/api/handler"
	mw "github.com/Abhi-200412/AuraMed-sub000/internal/api/middleware"
	"github.com/Abhi-200412/AuraMed-sub000/internal/cache"
	"github.com/Abhi-200412/AuraMed-sub000/internal/chat"
	"github.com/Abhi-200412/AuraMed-sub000/internal/chat/gemini"
	"github.com/Abhi-200412/AuraMed-sub000/internal/chat/offline"
	"github.com/Abhi-200412/AuraMed-sub000/internal/chat/ollama"
	"github.com/Abhi-200412/AuraMed-sub000/internal/config"
	"github.com/Abhi-200412/AuraMed-sub000/internal/engine"
	"github.com/Abhi-200412/AuraMed-sub000/internal/events"
	"github.com/Abhi-200412/AuraMed-sub000/internal/jobs"
	"github.com/Abhi-200412/AuraMed-sub000/internal/notify"
	"github.com/Abhi-200412/AuraMed-sub000/internal/store"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "engine", cfg.Engine.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Analysis engine client
	engineClient := engine.NewHTTPClient(cfg.Engine.BaseURL, cfg.Engine.Timeout)

	// 6. Chat provider chain: local first, cloud if a key is present, offline
	// floor always.
	local := ollama.NewProvider(cfg.Chat.Ollama)
	var cloud models.ChatProvider
	if cfg.Chat.Gemini.APIKey != "" {
		cloud = gemini.NewProvider(cfg.Chat.Gemini)
		slog.Info("cloud chat provider enabled", "model", cfg.Chat.Gemini.Model)
	} else {
		slog.Info("cloud chat provider disabled, no credential")
	}
	chain := chat.NewChain(local, cloud, offline.NewResponder(), cfg.Chat.HistoryWindow)

	// 7. Stores, events, job service
	pgStore := store.NewPostgresStore(pool)

	hub := events.NewHub()
	hub.Start()

	router := notify.NewRouter(notify.LogNotifier{})
	jobService := jobs.NewService(engineClient, pgStore, redisCache, hub, router,
		cfg.Jobs.PollInterval, cfg.Jobs.PollMaxWait)

	// 8. Build router with dependencies
	rateLimit := mw.NewRateLimit(redisCache, 60)

	deps := api.Dependencies{
		RateLimit: rateLimit,

		HealthHandler:  handler.NewHealthHandler(pgStore, redisCache, engineClient),
		SubmitScan:     handler.NewSubmitScanHandler(jobService),
		PollJobHandler: handler.NewPollJobHandler(jobService),
		ListAnomalies:  handler.NewListAnomaliesHandler(pgStore),
		GetAnomaly:     handler.NewGetAnomalyHandler(pgStore),
		ChatHandler:    handler.NewChatHandler(chain),
		EventsHandler:  handler.NewEventsHandler(hub),
	}

	httpHandler := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
