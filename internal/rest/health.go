package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	PoolSize string `json:"pool_size"`
}

// HealthHandler reports dependency liveness for the load balancer. The
// service itself never routes on this; a degraded redis only means
// compute-on-miss.
type HealthHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	poolSize string
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, poolMin, poolMax int) *HealthHandler {
	return &HealthHandler{
		db:       db,
		redis:    redisClient,
		poolSize: fmt.Sprintf("%d-%d", poolMin, poolMax),
	}
}

// GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	if h.db == nil {
		database = "disconnected"
	} else if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		database = "disconnected"
	}

	redisStatus := "connected"
	if h.redis == nil || h.redis.Ping(ctx).Err() != nil {
		redisStatus = "not_available"
	}

	status := "healthy"
	if database == "disconnected" {
		status = "degraded"
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:   status,
		Database: database,
		Redis:    redisStatus,
		PoolSize: h.poolSize,
	})
}
