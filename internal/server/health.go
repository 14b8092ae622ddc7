package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/boletos-tracker/internal/repository"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports store reachability and the per-status bill counts.
type HealthHandler struct {
	store  repository.BillStore
	logger *slog.Logger
}

func NewHealthHandler(store repository.BillStore, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{store: store, logger: logger}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
		return
	}
	counts, err := h.store.Count(ctx)
	if err != nil {
		h.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "pendentes": counts.Pending, "pagos": counts.Paid})
}

// GRPCHealth serves grpc.health.v1.Health next to the HTTP API.
type GRPCHealth struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewGRPCHealth(logger *slog.Logger) *GRPCHealth {
	if logger == nil {
		logger = slog.Default()
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	// empty service name is the overall server health
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return &GRPCHealth{server: grpcServer, health: healthServer, logger: logger}
}

// Serve blocks until the listener fails or Stop is called.
func (g *GRPCHealth) Serve(lis net.Listener) error {
	g.logger.Info("grpc health listening", "addr", lis.Addr().String())
	return g.server.Serve(lis)
}

// Stop flips every service to NOT_SERVING and drains the server.
func (g *GRPCHealth) Stop() {
	g.health.Shutdown()
	g.server.GracefulStop()
}

// Status returns the current overall serving status.
func (g *GRPCHealth) Status(ctx context.Context) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	resp, err := g.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
