package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"investment-service/internal/config"
	"investment-service/internal/database"
	"investment-service/internal/ladder"
	"investment-service/internal/models"
	"investment-service/internal/services"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: TypeAccrualSweep, Type: task.Type(), Payload: task.Payload()}, nil
}

func TestNewAccrualSweepTask(t *testing.T) {
	task, err := NewAccrualSweepTask("2026-01-02")
	require.NoError(t, err)
	assert.Equal(t, TypeAccrualSweep, task.Type())

	var p AccrualSweepPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "2026-01-02", p.Date)
}

func TestEnqueueSweep(t *testing.T) {
	q := &fakeEnqueuer{}
	info, err := EnqueueSweep(q, "2026-01-02")
	require.NoError(t, err)
	assert.Equal(t, TypeAccrualSweep, info.Type)
	require.Len(t, q.tasks, 1)

	q.err = asynq.ErrTaskIDConflict
	_, err = EnqueueSweep(q, "2026-01-02")
	assert.ErrorIs(t, err, ErrSweepQueued)

	q.err = errors.New("redis down")
	_, err = EnqueueSweep(q, "2026-01-02")
	assert.EqualError(t, err, "redis down")
}

func newTestWorker(t *testing.T) (*Worker, *services.Services) {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		Commission: config.CommissionConfig{
			Ladder: ladder.Default(), MaxLevel: 12,
			Trigger: config.TriggerAccrual, Base: config.BasePrincipal, Volume: config.VolumeSelf,
		},
		Investment: config.InvestmentConfig{
			PeriodBasis: decimal.NewFromInt(100),
			Location:    time.UTC,
			Plans:       config.DefaultPlans(),
		},
		Worker: config.WorkerConfig{SweepConcurrency: 1},
	}
	svc := services.New(db, cfg, zap.NewNop())
	return NewWorker(svc.Accrual, time.UTC, zap.NewNop()), svc
}

func TestHandleAccrualSweepBadPayload(t *testing.T) {
	w, _ := newTestWorker(t)

	err := w.HandleAccrualSweep(context.Background(), asynq.NewTask(TypeAccrualSweep, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewAccrualSweepTask("02/01/2026")
	require.NoError(t, err)
	err = w.HandleAccrualSweep(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleAccrualSweep(t *testing.T) {
	w, svc := newTestWorker(t)
	db := svc.Wallet.DB

	user := models.User{Name: "a", Email: "a@example.com", Phone: "9000000001", PasswordHash: "x",
		Role: models.RoleClient, Status: models.StatusActive, ReferralCode: "code-a"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Wallet{UserID: user.ID}).Error)
	inv := models.Investment{UserID: user.ID, Plan: "standard", Amount: decimal.NewFromInt(10000),
		InterestRate: decimal.RequireFromString("0.15"), Status: models.InvestmentActive,
		StartDate: "2026-01-01", MaturityDate: "2026-12-01"}
	require.NoError(t, db.Create(&inv).Error)

	task, err := NewAccrualSweepTask("2026-01-02")
	require.NoError(t, err)
	require.NoError(t, w.HandleAccrualSweep(context.Background(), task))

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&wallet).Error)
	assert.True(t, decimal.NewFromInt(15).Equal(wallet.Balance), wallet.Balance.String())

	// a retry of the same day is harmless
	require.NoError(t, w.HandleAccrualSweep(context.Background(), task))
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&wallet).Error)
	assert.True(t, decimal.NewFromInt(15).Equal(wallet.Balance))
}

func TestHandleAccrualSweepReportsFailures(t *testing.T) {
	w, svc := newTestWorker(t)
	db := svc.Wallet.DB

	// no wallet for this user
	inv := models.Investment{UserID: 77, Plan: "standard", Amount: decimal.NewFromInt(10000),
		InterestRate: decimal.RequireFromString("0.15"), Status: models.InvestmentActive,
		StartDate: "2026-01-01", MaturityDate: "2026-12-01"}
	require.NoError(t, db.Create(&inv).Error)

	task, err := NewAccrualSweepTask("2026-01-02")
	require.NoError(t, err)
	err = w.HandleAccrualSweep(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
