package main

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sabordacasa/pos-api/internal/config"
	"github.com/sabordacasa/pos-api/internal/delivery"
	"github.com/sabordacasa/pos-api/internal/router"
	"github.com/sabordacasa/pos-api/internal/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}

	hub := ws.NewHub()
	go hub.Run()

	provider := delivery.NewGoogleMapsProvider(cfg.GoogleMapsAPIKey)

	r := router.New(cfg, pool, hub, provider, logger)

	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
