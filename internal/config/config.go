package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"investment-service/internal/ladder"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Commission CommissionConfig
	Investment InvestmentConfig
	Withdrawal WithdrawalConfig
	Referral   ReferralConfig
	Worker     WorkerConfig
}

type ServerConfig struct {
	Port     string
	GRPCPort string
	GinMode  string
	Env      string
}

type DatabaseConfig struct {
	Driver          string // mysql or sqlite
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Addr string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// Commission policies.
const (
	TriggerAccrual    = "accrual"
	TriggerInvestment = "investment"

	BasePrincipal = "principal"
	BaseEarning   = "earning"

	VolumeSelf     = "self"
	VolumeDownline = "downline"
)

type CommissionConfig struct {
	Ladder   *ladder.Ladder
	MaxLevel int
	Trigger  string
	Base     string
	Volume   string
	// DownlineDepth bounds the subtree walked when Volume is "downline".
	DownlineDepth int
}

type Plan struct {
	Name         string          `yaml:"name"`
	InterestRate decimal.Decimal `yaml:"interest_rate"`
	LockInMonths int             `yaml:"lock_in_months"`
}

type InvestmentConfig struct {
	PeriodBasis               decimal.Decimal
	LockInMonths              int
	EarlyWithdrawalPenalty    decimal.Decimal
	MinInvestment             decimal.Decimal
	MaxInvestment             decimal.Decimal
	ReturnPrincipalOnMaturity bool
	Location                  *time.Location
	Plans                     []Plan
}

// FindPlan returns the plan with the given name.
func (c InvestmentConfig) FindPlan(name string) (Plan, bool) {
	for _, p := range c.Plans {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

type WithdrawalConfig struct {
	MinimumAmount decimal.Decimal
	RequireKYC    bool
}

type ReferralConfig struct {
	RequireActiveSponsor bool
	TreeDepth            int
}

type WorkerConfig struct {
	SweepSchedule    string
	SweepConcurrency int
	Concurrency      int
}

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "change-me-in-production"

// catalogFile is the YAML shape of COMMISSION_LADDER_FILE.
type catalogFile struct {
	Tiers []ladder.Tier `yaml:"tiers"`
	Plans []Plan        `yaml:"plans"`
}

// LoadEnv loads .env files the same way every binary does.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}
}

func Load() (*Config, error) {
	loc, err := time.LoadLocation(getEnv("ACCRUAL_TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("config: ACCRUAL_TIMEZONE: %w", err)
	}

	lad := ladder.Default()
	plans := DefaultPlans()
	if path := os.Getenv("COMMISSION_LADDER_FILE"); path != "" {
		lad, plans, err = loadCatalog(path, plans)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			GRPCPort: getEnv("GRPC_PORT", "50051"),
			GinMode:  os.Getenv("GIN_MODE"),
			Env:      getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "3306"),
			User:            getEnv("DB_USER", "root"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            getEnv("DB_NAME", "investment_platform"),
			MaxIdleConns:    cast.ToInt(getEnv("DB_MAX_IDLE_CONNS", "10")),
			MaxOpenConns:    cast.ToInt(getEnv("DB_MAX_OPEN_CONNS", "100")),
			ConnMaxLifetime: cast.ToDuration(getEnv("DB_CONN_MAX_LIFETIME", "1h")),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_URL", "localhost:6379"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", DefaultJWTSecret),
			Expiry: cast.ToDuration(getEnv("JWT_EXPIRY", "30m")),
			Issuer: getEnv("JWT_ISSUER", "investment-service"),
		},
		Commission: CommissionConfig{
			Ladder:        lad,
			MaxLevel:      cast.ToInt(getEnv("COMMISSION_MAX_LEVEL", cast.ToString(lad.Depth()))),
			Trigger:       getEnv("COMMISSION_TRIGGER", TriggerAccrual),
			Base:          getEnv("COMMISSION_BASE", BasePrincipal),
			Volume:        getEnv("VOLUME_POLICY", VolumeSelf),
			DownlineDepth: cast.ToInt(getEnv("VOLUME_DOWNLINE_DEPTH", "12")),
		},
		Investment: InvestmentConfig{
			PeriodBasis:               getDecimal("ACCRUAL_PERIOD_BASIS", "100"),
			LockInMonths:              cast.ToInt(getEnv("LOCK_IN_PERIOD_MONTHS", "11")),
			EarlyWithdrawalPenalty:    getDecimal("EARLY_WITHDRAWAL_PENALTY_PERCENT", "3"),
			MinInvestment:             getDecimal("MIN_INVESTMENT", "0"),
			MaxInvestment:             getDecimal("MAX_INVESTMENT", "0"),
			ReturnPrincipalOnMaturity: cast.ToBool(getEnv("RETURN_PRINCIPAL_ON_MATURITY", "true")),
			Location:                  loc,
			Plans:                     plans,
		},
		Withdrawal: WithdrawalConfig{
			MinimumAmount: getDecimal("WITHDRAWAL_MINIMUM", "500"),
			RequireKYC:    cast.ToBool(getEnv("WITHDRAWAL_REQUIRE_KYC", "true")),
		},
		Referral: ReferralConfig{
			RequireActiveSponsor: cast.ToBool(getEnv("REFERRAL_REQUIRE_ACTIVE_SPONSOR", "true")),
			TreeDepth:            cast.ToInt(getEnv("REFERRAL_TREE_DEPTH", "5")),
		},
		Worker: WorkerConfig{
			SweepSchedule:    getEnv("ACCRUAL_SWEEP_SCHEDULE", "5 0 * * *"),
			SweepConcurrency: cast.ToInt(getEnv("ACCRUAL_SWEEP_CONCURRENCY", "4")),
			Concurrency:      cast.ToInt(getEnv("WORKER_CONCURRENCY", "10")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Env == "production" && (c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret) {
		return fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	switch c.Commission.Trigger {
	case TriggerAccrual, TriggerInvestment:
	default:
		return fmt.Errorf("config: unknown COMMISSION_TRIGGER %q", c.Commission.Trigger)
	}
	switch c.Commission.Base {
	case BasePrincipal, BaseEarning:
	default:
		return fmt.Errorf("config: unknown COMMISSION_BASE %q", c.Commission.Base)
	}
	switch c.Commission.Volume {
	case VolumeSelf, VolumeDownline:
	default:
		return fmt.Errorf("config: unknown VOLUME_POLICY %q", c.Commission.Volume)
	}
	if c.Commission.MaxLevel < 1 {
		return fmt.Errorf("config: COMMISSION_MAX_LEVEL must be positive")
	}
	if !c.Investment.PeriodBasis.IsPositive() {
		return fmt.Errorf("config: ACCRUAL_PERIOD_BASIS must be positive")
	}
	if len(c.Investment.Plans) == 0 {
		return fmt.Errorf("config: no investment plans configured")
	}
	return nil
}

// DefaultPlans is the plan catalogue used when no file overrides it.
func DefaultPlans() []Plan {
	return []Plan{
		{Name: "standard", InterestRate: decimal.RequireFromString("0.15"), LockInMonths: 11},
	}
}

func loadCatalog(path string, fallbackPlans []Plan) (*ladder.Ladder, []Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	lad, err := ladder.New(file.Tiers)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %s: %w", path, err)
	}
	plans := file.Plans
	if len(plans) == 0 {
		plans = fallbackPlans
	}
	return lad, plans, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	v, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		log.Printf("Invalid decimal for %s, using %s", key, fallback)
		return decimal.RequireFromString(fallback)
	}
	return v
}
