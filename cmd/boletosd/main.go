package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/boletos-tracker/internal/boletos"
	"github.com/joseph-ayodele/boletos-tracker/internal/common"
	"github.com/joseph-ayodele/boletos-tracker/internal/export"
	"github.com/joseph-ayodele/boletos-tracker/internal/idempotency"
	repo "github.com/joseph-ayodele/boletos-tracker/internal/repository"
	"github.com/joseph-ayodele/boletos-tracker/internal/server"
)

func main() {
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drv, pool, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer repo.Close(drv, pool, logger)

	if err := repo.HealthCheck(ctx, drv, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	store := repo.NewBillStore(drv, logger)
	if err := store.Initialize(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	var opts []boletos.Option
	if cfg.Bills.Transitions == common.TransitionsPermissive {
		opts = append(opts, boletos.WithPermissiveTransitions())
	}
	billService := boletos.NewService(store, logger, opts...)
	exportService := export.NewService(store, logger)

	var replay idempotency.Store = idempotency.NewMemoryStore()
	var rdb *redis.Client
	if cfg.Idempotency.RedisAddr != "" {
		rdb, err = idempotency.ConnectRedis(ctx, cfg.Idempotency.RedisAddr)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err, "addr", cfg.Idempotency.RedisAddr)
			os.Exit(1)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close redis client", "error", err)
			}
		}()
		replay = idempotency.NewRedisStore(rdb)
		logger.Info("idempotency cache backed by redis", "addr", cfg.Idempotency.RedisAddr)
	}

	gin.SetMode(cfg.Server.GinMode)
	router := server.NewRouter(server.RouterConfig{
		Bills:          server.NewBillsHandler(billService, exportService, logger),
		Health:         server.NewHealthHandler(store, logger),
		Idempotency:    replay,
		IdempotencyTTL: cfg.Idempotency.TTL,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcHealth *server.GRPCHealth
	if cfg.Server.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCHealthAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCHealthAddr, "error", err)
			os.Exit(1)
		}
		grpcHealth = server.NewGRPCHealth(logger)
		go func() {
			if err := grpcHealth.Serve(lis); err != nil {
				logger.Error("grpc health serve error", "error", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("boletos-tracker listening", "addr", httpServer.Addr, "driver", cfg.Database.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("http serve error", "error", err)
		}
	}

	logger.Info("shutting down")
	if grpcHealth != nil {
		grpcHealth.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
