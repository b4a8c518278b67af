package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MayurUbarhande0/recommendations-api/internal/rest"
)

func SetupRecommendationRoutes(e *echo.Echo, handler *rest.RecommendationHandler) {
	e.GET("/recommend/:user_id", handler.Recommend)
	e.GET("/batch-recommend", handler.BatchRecommend)
	e.POST("/invalidate-cache/:user_id", handler.InvalidateCache)
}

func SetupHealthRoutes(e *echo.Echo, handler *rest.HealthHandler) {
	e.GET("/health", handler.Health)
}

func SetupMetricsRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
