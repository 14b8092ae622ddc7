package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/boletos-tracker/internal/idempotency"
)

// RouterConfig carries everything the HTTP API needs.
type RouterConfig struct {
	Bills          *BillsHandler
	Health         *HealthHandler
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewRouter builds the gin engine for the bills API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(RequestID(logger), AccessLog(logger), Recovery(logger))

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Check)
	}

	api := r.Group("/api/boletos")
	{
		api.GET("", cfg.Bills.List)
		api.GET("/export.xlsx", cfg.Bills.ExportXLSX)
		api.GET("/:id", cfg.Bills.Get)

		create := []gin.HandlerFunc{cfg.Bills.Create}
		if cfg.Idempotency != nil {
			create = append([]gin.HandlerFunc{idempotency.Middleware(cfg.Idempotency, cfg.IdempotencyTTL, logger)}, create...)
		}
		api.POST("", create...)

		api.PUT("/:id", cfg.Bills.UpdateStatus)
		api.DELETE("/:id", cfg.Bills.Delete)
	}
	return r
}
