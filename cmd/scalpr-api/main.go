package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scalpr/internal/api"
	"scalpr/internal/config"
	"scalpr/internal/leaderboard"
	"scalpr/internal/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadAPIFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	obs.Init()

	var scores leaderboard.Store
	sqlStore, err := leaderboard.OpenFromEnv(logger)
	if err != nil {
		logger.Error("leaderboard open failed", "err", err)
		os.Exit(1)
	}
	if sqlStore != nil {
		defer sqlStore.Close()
		scores = sqlStore
	} else {
		logger.Info("leaderboard using in-memory store")
		scores = leaderboard.NewMemoryStore()
	}

	sessions := api.NewManager(logger, cfg.SessionTTL)
	go sessions.Run(ctx, cfg.SelloutTickEvery)

	server := api.New(cfg, logger, sessions, scores)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("scalpr api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
