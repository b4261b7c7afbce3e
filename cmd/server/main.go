package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shapeflow/shapeflow/backend-go/internal/asset"
	"github.com/shapeflow/shapeflow/backend-go/internal/auth"
	"github.com/shapeflow/shapeflow/backend-go/internal/catalog"
	"github.com/shapeflow/shapeflow/backend-go/internal/collab"
	"github.com/shapeflow/shapeflow/backend-go/internal/config"
	"github.com/shapeflow/shapeflow/backend-go/internal/db"
	"github.com/shapeflow/shapeflow/backend-go/internal/progress"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openStore(ctx, cfg.DatabaseURL)
	defer closeStore()

	authService := auth.NewService(store, cfg.JWTSecret)

	progressService := progress.NewService(store, cfg.ShareMilestone)

	hub := collab.NewHub(progressService)
	go hub.Run()

	handler := newRouter(routes{
		auth:     authService,
		progress: progressService,
		collab:   collab.NewHandler(hub, progressService, authService, cfg.OriginHosts()),
		catalog:  catalog.New(),
		assets:   asset.NewHandler(cfg.AssetDir, store),
		origins:  cfg.Origins(),
		limit:    cfg.LeaderboardLimit,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop the hub first so pending completions are recorded
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects to Postgres, falling back to the in-memory store when no
// database is configured or it cannot be reached.
func openStore(ctx context.Context, databaseURL string) (db.Store, func()) {
	if databaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		return db.NewMemory(), func() {}
	}

	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		slog.Warn("connect to database, using in-memory store", "error", err)
		return db.NewMemory(), func() {}
	}

	if err := db.Migrate(ctx, pool); err != nil {
		slog.Error("migrate database", "error", err)
		pool.Close()
		os.Exit(1)
	}

	return db.New(pool), pool.Close
}
