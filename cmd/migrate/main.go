package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"investment-service/internal/config"
	"investment-service/internal/database"
	"investment-service/internal/logging"
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

	// Initialize Database
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run Migrations
	logger.Info("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	logger.Info("Migrations completed successfully!")

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		return
	}
	svc := services.New(db, cfg, logger)
	admin, created, err := svc.Auth.EnsureAdmin(context.Background(), services.AdminDTO{
		Name:     os.Getenv("ADMIN_NAME"),
		Email:    email,
		Phone:    os.Getenv("ADMIN_PHONE"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	})
	if err != nil {
		logger.Fatal("Failed to seed admin", zap.Error(err))
	}
	logger.Info("Admin account ready",
		zap.Bool("created", created),
		zap.Uint("user_id", admin.ID),
		zap.String("referral_code", admin.ReferralCode))
}
