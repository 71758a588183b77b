// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/procurehq/replenish/internal/api/handlers"
	"github.com/procurehq/replenish/internal/api/middleware"
	"github.com/procurehq/replenish/internal/replenish"
	"github.com/procurehq/replenish/internal/stock"
)

type Services struct {
	Replenish *replenish.Service
	Stock     *stock.Monitor
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Replenish != nil {
			forecastHandler := handlers.NewForecastHandler(services.Replenish)
			apiGroup.GET("/forecast/:item_code", forecastHandler.GetForecast)

			replenishHandler := handlers.NewReplenishHandler(services.Replenish)
			replenishGroup := apiGroup.Group("/replenishment")
			{
				replenishGroup.GET("/priority", replenishHandler.PriorityOrders)
				replenishGroup.POST("/batch", replenishHandler.BatchRecommendations)
				replenishGroup.DELETE("/cache", replenishHandler.InvalidateCache)
				replenishGroup.DELETE("/cache/:item_code", replenishHandler.InvalidateCache)
				replenishGroup.GET("/:item_code", replenishHandler.GetRecommendation)
			}
		}

		if services.Stock != nil {
			stockHandler := handlers.NewStockHandler(services.Stock)
			stockGroup := apiGroup.Group("/stock")
			{
				stockGroup.GET("/summary", stockHandler.GetSummary)
				stockGroup.GET("/low", stockHandler.GetLowStock)
				stockGroup.GET("/:item_code", stockHandler.GetStatus)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
