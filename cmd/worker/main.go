package main

import (
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"investment-service/internal/config"
	"investment-service/internal/database"
	"investment-service/internal/logging"
	"investment-service/internal/services"
	"investment-service/internal/worker"
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

	// Connect DB
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	svc := services.New(db, cfg, logger)

	// Redis
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr}
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	loc := cfg.Investment.Location
	scheduler, err := worker.StartScheduler(cfg.Worker.SweepSchedule, loc, client, logger)
	if err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	logger.Info("Starting Asynq Worker...")
	if err := worker.StartWorker(redisOpt, cfg.Worker.Concurrency, worker.NewWorker(svc.Accrual, loc, logger)); err != nil {
		logger.Fatal("Worker stopped", zap.Error(err))
	}
}
