package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"investment-service/internal/config"
	"investment-service/internal/models"
)

var DB *gorm.DB

// Connect opens the ledger store. Duplicate-key failures are translated to
// gorm.ErrDuplicatedKey so services can treat them as idempotent no-ops.
//
// The sqlite driver is meant for local runs and tests; DB_NAME is the file
// path, or ":memory:". Row locking clauses are ignored there and the pool is
// pinned to one connection.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.Name)
	default:
		return nil, fmt.Errorf("database: unknown driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	DB = db
	log.Info("Database connection established",
		zap.String("driver", dialector.Name()),
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name))
	return db, nil
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Client{},
		&models.Referral{},
		&models.Wallet{},
		&models.Investment{},
		&models.Earning{},
		&models.CommissionPayout{},
		&models.Transaction{},
		&models.Withdrawal{},
		&models.Notification{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
