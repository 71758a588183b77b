// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/procurehq/replenish/internal/api"
	"github.com/procurehq/replenish/internal/cache"
	"github.com/procurehq/replenish/internal/config"
	"github.com/procurehq/replenish/internal/forecast"
	"github.com/procurehq/replenish/internal/harmonizer"
	"github.com/procurehq/replenish/internal/inference"
	"github.com/procurehq/replenish/internal/inventory"
	"github.com/procurehq/replenish/internal/replenish"
	"github.com/procurehq/replenish/internal/stock"
	"github.com/procurehq/replenish/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	inferer, err := inference.NewOpenAIService(cfg.Inference)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize inference service")
	}

	recCache, err := cache.NewRecommendationCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("recommendation cache unavailable, running without cache")
		recCache = cache.NewNoopRecommendationCache()
	}

	repo := inventory.NewRepository(cfg.Data.InventoryPath)
	monitor := stock.NewMonitor(repo)
	service := replenish.NewService(
		cfg,
		harmonizer.New(inferer, cfg.Forecast.PreviewRows),
		forecast.New(cfg.Forecast.MinMonths),
		repo,
		monitor,
		replenish.NewCalculator(cfg.Replenish, cfg.Forecast.HorizonDays),
		inferer,
		recCache,
	)

	router := api.NewRouter(&api.Services{
		Replenish: service,
		Stock:     monitor,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}
