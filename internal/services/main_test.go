package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"investment-service/internal/config"
	"investment-service/internal/database"
	"investment-service/internal/ladder"
	"investment-service/internal/models"
	"investment-service/pkg/common"
)

// Tests run against an in-memory SQLite database unless DATABASE_URL points
// at a MySQL instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		require.NoError(t, err)
		require.NoError(t, db.Migrator().DropTable(database.Models()...))
		require.NoError(t, database.Migrate(db))
		return db
	}

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "test"},
		Commission: config.CommissionConfig{
			Ladder:        ladder.Default(),
			MaxLevel:      12,
			Trigger:       config.TriggerAccrual,
			Base:          config.BasePrincipal,
			Volume:        config.VolumeSelf,
			DownlineDepth: 12,
		},
		Investment: config.InvestmentConfig{
			PeriodBasis:               dec("100"),
			LockInMonths:              11,
			EarlyWithdrawalPenalty:    dec("3"),
			MinInvestment:             dec("1000"),
			ReturnPrincipalOnMaturity: true,
			Location:                  time.UTC,
			Plans: []config.Plan{
				{Name: "standard", InterestRate: dec("1"), LockInMonths: 11},
				{Name: "short", InterestRate: dec("0.5"), LockInMonths: 1},
			},
		},
		Withdrawal: config.WithdrawalConfig{MinimumAmount: dec("500"), RequireKYC: true},
		Referral:   config.ReferralConfig{RequireActiveSponsor: true, TreeDepth: 5},
		Worker:     config.WorkerConfig{SweepConcurrency: 1},
	}
}

var testNow = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db  *gorm.DB
	cfg *config.Config
	*Services
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, testConfig())
}

func newFixtureWith(t *testing.T, cfg *config.Config) *fixture {
	db := newTestDB(t)
	svc := New(db, cfg, zap.NewNop())
	clock := func() time.Time { return testNow }
	svc.Accrual.Now = clock
	svc.Investment.Now = clock
	svc.Withdrawal.Now = clock
	svc.KYC.Now = clock
	svc.Dashboard.Now = clock
	svc.Summary.Now = clock
	return &fixture{db: db, cfg: cfg, Services: svc}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	d, err := common.ParseDate(s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d.Add(12 * time.Hour)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

var userSeq int

// user inserts a user with wallet and client profile. parent may be nil.
func (f *fixture) user(t *testing.T, parent *models.User) models.User {
	t.Helper()
	userSeq++
	u := models.User{
		Name:         fmt.Sprintf("user%d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		Phone:        fmt.Sprintf("9%09d", userSeq),
		PasswordHash: "x",
		Role:         models.RoleClient,
		Status:       models.StatusActive,
		ReferralCode: common.ReferralToken(),
	}
	if parent != nil {
		u.ParentID = &parent.ID
		u.Level = parent.Level + 1
	}
	require.NoError(t, f.db.Create(&u).Error)
	require.NoError(t, f.db.Create(&models.Wallet{UserID: u.ID, Balance: decimal.Zero, LockedAmount: decimal.Zero}).Error)
	require.NoError(t, f.db.Create(&models.Client{UserID: u.ID, ClientCode: common.GenerateCode("T"), KYCStatus: models.KYCNotSubmitted}).Error)
	if parent != nil {
		require.NoError(t, f.db.Create(&models.Referral{ReferrerID: parent.ID, ReferredID: u.ID, Level: 1, CommissionRate: decimal.Zero}).Error)
	}
	return u
}

func (f *fixture) admin(t *testing.T) models.User {
	t.Helper()
	u := f.user(t, nil)
	require.NoError(t, f.db.Model(&u).Update("role", models.RoleAdmin).Error)
	u.Role = models.RoleAdmin
	return u
}

func (f *fixture) fund(t *testing.T, userID uint, amount string) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Wallet{}).Where("user_id = ?", userID).Update("balance", dec(amount)).Error)
}

func (f *fixture) wallet(t *testing.T, userID uint) models.Wallet {
	t.Helper()
	var w models.Wallet
	require.NoError(t, f.db.Where("user_id = ?", userID).First(&w).Error)
	return w
}

// investment inserts an active investment directly, bypassing the wallet.
func (f *fixture) investment(t *testing.T, userID uint, amount, rate string) models.Investment {
	t.Helper()
	inv := models.Investment{
		UserID:       userID,
		Plan:         "standard",
		Amount:       dec(amount),
		InterestRate: dec(rate),
		Status:       models.InvestmentActive,
		StartDate:    "2026-01-01",
		MaturityDate: "2026-12-01",
		TotalEarned:  decimal.Zero,
	}
	require.NoError(t, f.db.Create(&inv).Error)
	return inv
}

func actorOf(u models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
