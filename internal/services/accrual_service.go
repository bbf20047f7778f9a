package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investment-service/internal/config"
	"investment-service/internal/metrics"
	"investment-service/internal/models"
	"investment-service/pkg/common"
)

// AccrualService runs the per-investment state machine: daily accrual while
// active, then maturity or early close.
type AccrualService struct {
	DB         *gorm.DB
	Wallet     *WalletService
	Commission *CommissionService
	Notifier   *NotificationService
	Config     config.InvestmentConfig
	Trigger    string
	// SweepConcurrency bounds parallel investments in Sweep.
	SweepConcurrency int
	Log              *zap.Logger
	Now              func() time.Time
}

func NewAccrualService(db *gorm.DB, wallet *WalletService, commission *CommissionService, notifier *NotificationService, cfg *config.Config, log *zap.Logger) *AccrualService {
	return &AccrualService{
		DB:               db,
		Wallet:           wallet,
		Commission:       commission,
		Notifier:         notifier,
		Config:           cfg.Investment,
		Trigger:          cfg.Commission.Trigger,
		SweepConcurrency: cfg.Worker.SweepConcurrency,
		Log:              log,
		Now:              time.Now,
	}
}

// DailyEarning is amount * rate / basis, rounded to cents.
func DailyEarning(amount, rate, basis decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(basis).Round(2)
}

type AccrualResult struct {
	Earning models.Earning            `json:"earning"`
	Payouts []models.CommissionPayout `json:"payouts"`
}

// AccrueDay credits one day's earning for an investment. A second call for
// the same day returns ErrAlreadyAccrued and changes nothing. The earning,
// the investor credit and every commission payout commit or roll back
// together.
func (s *AccrualService) AccrueDay(ctx context.Context, investmentID uint, date time.Time) (AccrualResult, error) {
	day := common.FormatDate(date, s.Config.Location)
	var result AccrualResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Investment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, investmentID).Error; err != nil {
			return notFoundOr("lock investment", fmt.Sprintf("investment %d", investmentID), err)
		}
		if inv.Status != models.InvestmentActive {
			return ErrInvestmentNotActive
		}
		if day < inv.StartDate {
			return NewValidationError("date", fmt.Sprintf("%s is before the investment start %s", day, inv.StartDate))
		}
		if day >= inv.MaturityDate {
			return NewValidationError("date", fmt.Sprintf("%s is on or after maturity %s", day, inv.MaturityDate))
		}

		var existing int64
		if err := tx.Model(&models.Earning{}).
			Where("investment_id = ? AND date = ?", inv.ID, day).
			Count(&existing).Error; err != nil {
			return asStorage("check earning", err)
		}
		if existing > 0 {
			return ErrAlreadyAccrued
		}

		amount := DailyEarning(inv.Amount, inv.InterestRate, s.Config.PeriodBasis)
		if !amount.IsPositive() {
			return NewValidationError("interest_rate", "daily earning rounds to zero")
		}

		earning := models.Earning{
			UserID:       inv.UserID,
			InvestmentID: inv.ID,
			Amount:       amount,
			Date:         day,
		}
		if err := tx.Create(&earning).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyAccrued
			}
			return asStorage("insert earning", err)
		}

		if _, err := s.Wallet.Credit(tx, MovementDTO{
			UserID:      inv.UserID,
			Amount:      amount,
			Subject:     "Investment Earning",
			Description: fmt.Sprintf("Daily earning on %s investment for %s", inv.Plan, day),
			Reference:   fmt.Sprintf("earning:%d", earning.ID),
		}); err != nil {
			return err
		}

		if err := tx.Model(&models.Investment{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
			"total_earned":    inv.TotalEarned.Add(amount),
			"last_accrued_on": day,
		}).Error; err != nil {
			return asStorage("update investment", err)
		}

		result.Earning = earning
		if s.Trigger != config.TriggerAccrual {
			return nil
		}
		payouts, err := s.Commission.Distribute(tx, Source{
			Type:         models.SourceEarning,
			ID:           earning.ID,
			UserID:       inv.UserID,
			InvestmentID: inv.ID,
			EarningID:    &earning.ID,
			Principal:    inv.Amount,
			Amount:       amount,
			Date:         day,
		})
		if err != nil {
			return err
		}
		result.Payouts = payouts
		return nil
	})
	if err != nil {
		metrics.AccrualsTotal.WithLabelValues(accrualLabel(err)).Inc()
		return AccrualResult{}, asStorage("accrue day", err)
	}

	metrics.AccrualsTotal.WithLabelValues("accrued").Inc()
	RecordMetrics(result.Payouts)
	s.Notifier.NotifyPayouts(result.Payouts)
	return result, nil
}

func accrualLabel(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyAccrued):
		return "already_accrued"
	case errors.Is(err, ErrInvestmentNotActive):
		return "not_active"
	default:
		return "failed"
	}
}

// Mature moves an investment from active to matured once date has reached
// its maturity day and returns the principal. The conditional status update
// guarantees the principal is paid once.
func (s *AccrualService) Mature(ctx context.Context, investmentID uint, date time.Time) (models.Investment, error) {
	day := common.FormatDate(date, s.Config.Location)
	var inv models.Investment

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, investmentID).Error; err != nil {
			return notFoundOr("lock investment", fmt.Sprintf("investment %d", investmentID), err)
		}
		if inv.Status != models.InvestmentActive {
			return ErrInvestmentNotActive
		}
		if day < inv.MaturityDate {
			return NewValidationError("date", fmt.Sprintf("investment matures on %s", inv.MaturityDate))
		}

		now := s.Now()
		res := tx.Model(&models.Investment{}).
			Where("id = ? AND status = ?", inv.ID, models.InvestmentActive).
			Updates(map[string]interface{}{
				"status":     models.InvestmentMatured,
				"matured_at": now,
			})
		if res.Error != nil {
			return asStorage("mature investment", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvestmentNotActive
		}
		inv.Status = models.InvestmentMatured
		inv.MaturedAt = &now

		if !s.Config.ReturnPrincipalOnMaturity {
			return nil
		}
		_, err := s.Wallet.Credit(tx, MovementDTO{
			UserID:      inv.UserID,
			Amount:      inv.Amount,
			Subject:     "Investment Matured",
			Description: fmt.Sprintf("Principal returned for %s investment #%d", inv.Plan, inv.ID),
			Reference:   fmt.Sprintf("investment:%d", inv.ID),
		})
		return err
	})
	if err != nil {
		return inv, asStorage("mature", err)
	}

	s.Notifier.Notify(inv.UserID, "Investment Matured",
		fmt.Sprintf("Your %s investment of %s has matured.", inv.Plan, inv.Amount.StringFixed(2)),
		models.NotifySuccess)
	return inv, nil
}

type CloseResult struct {
	Investment models.Investment `json:"investment"`
	Penalty    decimal.Decimal   `json:"penalty"`
	Refund     decimal.Decimal   `json:"refund"`
}

// CloseEarly ends an active investment before maturity, refunding the
// principal less the early withdrawal penalty.
func (s *AccrualService) CloseEarly(ctx context.Context, actor Actor, investmentID uint) (CloseResult, error) {
	var result CloseResult
	day := common.FormatDate(s.Now(), s.Config.Location)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Investment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, investmentID).Error; err != nil {
			return notFoundOr("lock investment", fmt.Sprintf("investment %d", investmentID), err)
		}
		if err := requireAccess(actor, inv.UserID); err != nil {
			return err
		}
		var owner models.User
		if err := tx.First(&owner, inv.UserID).Error; err != nil {
			return notFoundOr("load investor", fmt.Sprintf("user %d", inv.UserID), err)
		}
		if !owner.IsActive() {
			return NewValidationError("user", "account is "+owner.Status)
		}
		if inv.Status != models.InvestmentActive {
			return ErrInvestmentNotActive
		}
		if day >= inv.MaturityDate {
			return NewValidationError("investment", "investment has reached maturity and cannot be closed early")
		}

		penalty := inv.Amount.Mul(s.Config.EarlyWithdrawalPenalty).Div(decimal.NewFromInt(100)).Round(2)
		refund := inv.Amount.Sub(penalty)
		now := s.Now()

		res := tx.Model(&models.Investment{}).
			Where("id = ? AND status = ?", inv.ID, models.InvestmentActive).
			Updates(map[string]interface{}{
				"status":         models.InvestmentClosed,
				"penalty_amount": penalty,
				"closed_at":      now,
			})
		if res.Error != nil {
			return asStorage("close investment", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvestmentNotActive
		}

		if refund.IsPositive() {
			if _, err := s.Wallet.Credit(tx, MovementDTO{
				UserID:      inv.UserID,
				Amount:      refund,
				Subject:     "Investment Closed",
				Description: fmt.Sprintf("Early close of investment #%d, penalty %s", inv.ID, penalty.StringFixed(2)),
				Reference:   fmt.Sprintf("investment:%d", inv.ID),
			}); err != nil {
				return err
			}
		}

		inv.Status = models.InvestmentClosed
		inv.PenaltyAmount = penalty
		inv.ClosedAt = &now
		result = CloseResult{Investment: inv, Penalty: penalty, Refund: refund}
		return nil
	})
	if err != nil {
		return CloseResult{}, asStorage("close early", err)
	}

	s.Notifier.Notify(result.Investment.UserID, "Investment Closed",
		fmt.Sprintf("Your investment was closed early. %s refunded after a %s penalty.",
			result.Refund.StringFixed(2), result.Penalty.StringFixed(2)),
		models.NotifyWarning)
	return result, nil
}

type SweepReport struct {
	Date     string `json:"date"`
	Total    int    `json:"total"`
	Accrued  int    `json:"accrued"`
	Matured  int    `json:"matured"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration"`
}

// Sweep processes every active investment for date: investments at or past
// maturity are matured, the rest accrue. Each investment runs in its own
// transaction; a failure is logged and collected without stopping the rest.
func (s *AccrualService) Sweep(ctx context.Context, date time.Time) (SweepReport, error) {
	start := time.Now()
	day := common.FormatDate(date, s.Config.Location)
	report := SweepReport{Date: day}

	var investments []models.Investment
	if err := s.DB.WithContext(ctx).
		Select("id", "maturity_date").
		Where("status = ?", models.InvestmentActive).
		Order("id").
		Find(&investments).Error; err != nil {
		return report, asStorage("list active investments", err)
	}
	report.Total = len(investments)

	var (
		mu    sync.Mutex
		errs  *multierror.Error
		limit = s.SweepConcurrency
		group errgroup.Group
	)
	if limit < 1 {
		limit = 1
	}
	group.SetLimit(limit)

	for _, inv := range investments {
		group.Go(func() error {
			matured := day >= inv.MaturityDate
			var err error
			if matured {
				_, err = s.Mature(ctx, inv.ID, date)
			} else {
				_, err = s.AccrueDay(ctx, inv.ID, date)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && matured:
				report.Matured++
			case err == nil:
				report.Accrued++
			case errors.Is(err, ErrAlreadyAccrued), errors.Is(err, ErrInvestmentNotActive):
				report.Skipped++
			default:
				report.Failed++
				errs = multierror.Append(errs, fmt.Errorf("investment %d: %w", inv.ID, err))
				s.Log.Error("Accrual failed", zap.Uint("investment_id", inv.ID), zap.String("date", day), zap.Error(err))
			}
			return nil
		})
	}
	_ = group.Wait()

	elapsed := time.Since(start)
	metrics.SweepDuration.Observe(elapsed.Seconds())
	report.Duration = elapsed.String()
	s.Log.Info("Accrual sweep finished",
		zap.String("date", day),
		zap.Int("total", report.Total),
		zap.Int("accrued", report.Accrued),
		zap.Int("matured", report.Matured),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, errs.ErrorOrNil()
}
