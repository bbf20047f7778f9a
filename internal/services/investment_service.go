package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investment-service/internal/config"
	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type InvestmentService struct {
	DB         *gorm.DB
	Wallet     *WalletService
	Commission *CommissionService
	Notifier   *NotificationService
	Config     config.InvestmentConfig
	Trigger    string
	Log        *zap.Logger
	Now        func() time.Time
}

func NewInvestmentService(db *gorm.DB, wallet *WalletService, commission *CommissionService, notifier *NotificationService, cfg *config.Config, log *zap.Logger) *InvestmentService {
	return &InvestmentService{
		DB:         db,
		Wallet:     wallet,
		Commission: commission,
		Notifier:   notifier,
		Config:     cfg.Investment,
		Trigger:    cfg.Commission.Trigger,
		Log:        log,
		Now:        time.Now,
	}
}

type CreateInvestmentDTO struct {
	UserID uint
	Plan   string
	Amount decimal.Decimal
}

func (s *InvestmentService) validate(data CreateInvestmentDTO) (config.Plan, error) {
	plan, ok := s.Config.FindPlan(data.Plan)
	if !ok {
		return plan, NewValidationError("plan", fmt.Sprintf("unknown plan %q", data.Plan))
	}
	if !data.Amount.IsPositive() {
		return plan, NewValidationError("amount", "must be greater than zero")
	}
	if data.Amount.LessThan(s.Config.MinInvestment) {
		return plan, NewValidationError("amount", "minimum investment is "+s.Config.MinInvestment.StringFixed(2))
	}
	if s.Config.MaxInvestment.IsPositive() && data.Amount.GreaterThan(s.Config.MaxInvestment) {
		return plan, NewValidationError("amount", "maximum investment is "+s.Config.MaxInvestment.StringFixed(2))
	}
	if !plan.InterestRate.IsPositive() {
		return plan, NewValidationError("plan", "plan has no interest rate")
	}
	return plan, nil
}

// Create debits the wallet and opens an investment that matures after the
// plan's lock-in period. Under the investment trigger, commissions are paid
// in the same transaction.
func (s *InvestmentService) Create(ctx context.Context, actor Actor, data CreateInvestmentDTO) (models.Investment, error) {
	var inv models.Investment
	if err := requireAccess(actor, data.UserID); err != nil {
		return inv, err
	}
	plan, err := s.validate(data)
	if err != nil {
		return inv, err
	}

	lockIn := plan.LockInMonths
	if lockIn <= 0 {
		lockIn = s.Config.LockInMonths
	}
	start := s.Now().In(s.Config.Location)
	amount := data.Amount.Round(2)

	var payouts []models.CommissionPayout
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&user, data.UserID).Error; err != nil {
			return notFoundOr("load investor", fmt.Sprintf("user %d", data.UserID), err)
		}
		if !user.IsActive() {
			return NewValidationError("user", "account is "+user.Status)
		}

		inv = models.Investment{
			UserID:       user.ID,
			Plan:         plan.Name,
			Amount:       amount,
			InterestRate: plan.InterestRate,
			Status:       models.InvestmentActive,
			StartDate:    common.FormatDate(start, s.Config.Location),
			MaturityDate: common.FormatDate(start.AddDate(0, lockIn, 0), s.Config.Location),
			TotalEarned:  decimal.Zero,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return asStorage("create investment", err)
		}

		if _, err := s.Wallet.Debit(tx, MovementDTO{
			UserID:      user.ID,
			Amount:      amount,
			Subject:     "Investment",
			Description: fmt.Sprintf("%s plan investment #%d", plan.Name, inv.ID),
			Reference:   fmt.Sprintf("investment:%d", inv.ID),
		}); err != nil {
			return err
		}

		if s.Trigger != config.TriggerInvestment {
			return nil
		}
		payouts, err = s.Commission.Distribute(tx, Source{
			Type:         models.SourceInvestment,
			ID:           inv.ID,
			UserID:       user.ID,
			InvestmentID: inv.ID,
			Principal:    amount,
			Amount:       amount,
			Date:         inv.StartDate,
		})
		return err
	})
	if err != nil {
		return models.Investment{}, asStorage("create investment", err)
	}

	s.Log.Info("Investment created",
		zap.Uint("investment_id", inv.ID),
		zap.Uint("user_id", inv.UserID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("maturity_date", inv.MaturityDate))
	RecordMetrics(payouts)
	s.Notifier.Notify(inv.UserID, "Investment Created",
		fmt.Sprintf("Your investment of %s in the %s plan is active until %s.", amount.StringFixed(2), plan.Name, inv.MaturityDate),
		models.NotifySuccess)
	s.Notifier.NotifyPayouts(payouts)
	return inv, nil
}

func (s *InvestmentService) Get(ctx context.Context, actor Actor, id uint) (models.Investment, error) {
	var inv models.Investment
	if err := s.DB.WithContext(ctx).First(&inv, id).Error; err != nil {
		return inv, notFoundOr("get investment", fmt.Sprintf("investment %d", id), err)
	}
	if err := requireAccess(actor, inv.UserID); err != nil {
		return models.Investment{}, err
	}
	return inv, nil
}

type ListInvestmentsDTO struct {
	UserID uint // 0 lists every user's, admin only
	Status string
	Page   int
	Limit  int
}

func (s *InvestmentService) List(ctx context.Context, actor Actor, data ListInvestmentsDTO) (common.PaginationResult, error) {
	if data.UserID == 0 {
		if err := requireAdmin(actor); err != nil {
			return common.PaginationResult{}, err
		}
	} else if err := requireAccess(actor, data.UserID); err != nil {
		return common.PaginationResult{}, err
	}
	page, limit, offset := common.Paging(data.Page, data.Limit)

	query := s.DB.WithContext(ctx).Model(&models.Investment{})
	if data.UserID != 0 {
		query = query.Where("user_id = ?", data.UserID)
	}
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, asStorage("count investments", err)
	}
	var items []models.Investment
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return common.PaginationResult{}, asStorage("list investments", err)
	}
	return common.PaginateResponse(items, total, page, limit, "Investments fetched"), nil
}

// Plans returns the configured plan catalogue.
func (s *InvestmentService) Plans() []config.Plan {
	return s.Config.Plans
}
