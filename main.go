package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"investment-service/internal/config"
	"investment-service/internal/database"
	grpcServer "investment-service/internal/grpc"
	"investment-service/internal/handlers"
	"investment-service/internal/logging"
	"investment-service/internal/middleware"
	"investment-service/internal/services"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.InitLogger(cfg.Server.Env == "production"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logging.Sync()
	logger := logging.Logger

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	// Initialize Database
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	svc := services.New(db, cfg, logger)

	// Redis/Asynq Client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr})
	defer asynqClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start gRPC health server
	health := grpcServer.NewHealthReporter(db, logger)
	go health.Run(ctx, 15*time.Second)
	go func() {
		if err := grpcServer.StartGRPCServer(ctx, cfg.Server.GRPCPort, health); err != nil {
			logger.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger), middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.New(svc, cfg, asynqClient, logger).Routes(r)

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: r}
	go func() {
		logger.Info("HTTP Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
}
