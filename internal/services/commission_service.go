package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"investment-service/internal/config"
	"investment-service/internal/metrics"
	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type CommissionService struct {
	DB       *gorm.DB
	Wallet   *WalletService
	Referral *ReferralService
	Config   config.CommissionConfig
	Log      *zap.Logger
}

func NewCommissionService(db *gorm.DB, wallet *WalletService, referral *ReferralService, cfg config.CommissionConfig, log *zap.Logger) *CommissionService {
	return &CommissionService{DB: db, Wallet: wallet, Referral: referral, Config: cfg, Log: log}
}

// Source is the event commissions are paid on: an accrued earning or, under
// the investment trigger, a newly placed investment.
type Source struct {
	Type         string
	ID           uint
	UserID       uint
	InvestmentID uint
	EarningID    *uint
	Principal    decimal.Decimal
	Amount       decimal.Decimal
	Date         string
}

func (src Source) base(policy string) decimal.Decimal {
	if policy == config.BaseEarning && src.Type == models.SourceEarning {
		return src.Amount
	}
	return src.Principal
}

// Distribute pays each ancestor of the source user base * rate / 100, where
// rate comes from the ancestor's own current tier. The walk stops at the first
// ancestor with a zero rate. Inactive ancestors are passed over, and
// ancestors already paid for this source are skipped, so re-running is a
// no-op. Must be called inside the transaction that created the source.
func (s *CommissionService) Distribute(tx *gorm.DB, src Source) ([]models.CommissionPayout, error) {
	ancestors, err := s.Referral.AncestorsOf(tx, src.UserID, s.Config.MaxLevel)
	if err != nil {
		return nil, err
	}
	if len(ancestors) == 0 {
		return nil, nil
	}

	var paidIDs []uint
	if err := tx.Model(&models.CommissionPayout{}).
		Where("source_type = ? AND source_id = ?", src.Type, src.ID).
		Pluck("beneficiary_id", &paidIDs).Error; err != nil {
		return nil, asStorage("load existing payouts", err)
	}
	paid := make(map[uint]bool, len(paidIDs))
	for _, id := range paidIDs {
		paid[id] = true
	}

	base := src.base(s.Config.Base)
	var payouts []models.CommissionPayout
	for i, ancestor := range ancestors {
		distance := i + 1
		if !ancestor.IsActive() {
			continue
		}

		tier, err := s.Referral.TierOf(tx, ancestor)
		if err != nil {
			return nil, err
		}
		if tier.Rate.IsZero() {
			break
		}
		if paid[ancestor.ID] {
			continue
		}

		amount := base.Mul(tier.Rate).Div(decimal.NewFromInt(100)).Round(2)
		if !amount.IsPositive() {
			continue
		}

		payout := models.CommissionPayout{
			BeneficiaryID:      ancestor.ID,
			SourceType:         src.Type,
			SourceID:           src.ID,
			SourceInvestmentID: src.InvestmentID,
			SourceEarningID:    src.EarningID,
			SourceUserID:       src.UserID,
			LevelDistance:      distance,
			TierIndex:          tier.Index,
			RateApplied:        tier.Rate,
			BaseAmount:         base,
			Amount:             amount,
			Date:               src.Date,
		}
		if err := tx.Create(&payout).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, asStorage("insert commission payout", err)
		}

		if _, err := s.Wallet.Credit(tx, MovementDTO{
			UserID:      ancestor.ID,
			Amount:      amount,
			Subject:     "Commission",
			Description: "Level " + strconv.Itoa(distance) + " commission (" + tier.Name + ")",
			Reference:   src.Type + ":" + strconv.FormatUint(uint64(src.ID), 10),
		}); err != nil {
			return nil, err
		}
		payouts = append(payouts, payout)
	}

	if len(payouts) > 0 {
		s.Log.Debug("Commission distributed",
			zap.String("source_type", src.Type),
			zap.Uint("source_id", src.ID),
			zap.Int("payouts", len(payouts)))
	}
	return payouts, nil
}

// RecordMetrics counts committed payouts.
func RecordMetrics(payouts []models.CommissionPayout) {
	for _, p := range payouts {
		metrics.CommissionPayoutsTotal.WithLabelValues(strconv.Itoa(p.LevelDistance)).Inc()
	}
}

type ListPayoutsDTO struct {
	UserID uint
	From   string
	To     string
	Page   int
	Limit  int
}

func (s *CommissionService) ListPayouts(ctx context.Context, actor Actor, data ListPayoutsDTO) (common.PaginationResult, error) {
	if err := requireAccess(actor, data.UserID); err != nil {
		return common.PaginationResult{}, err
	}
	page, limit, offset := common.Paging(data.Page, data.Limit)

	query := s.DB.WithContext(ctx).Model(&models.CommissionPayout{}).Where("beneficiary_id = ?", data.UserID)
	if data.From != "" {
		query = query.Where("date >= ?", data.From)
	}
	if data.To != "" {
		query = query.Where("date <= ?", data.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, asStorage("count payouts", err)
	}
	var payouts []models.CommissionPayout
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&payouts).Error; err != nil {
		return common.PaginationResult{}, asStorage("list payouts", err)
	}
	return common.PaginateResponse(payouts, total, page, limit, "Commissions fetched"), nil
}

// TotalEarned sums all commission paid to userID.
func (s *CommissionService) TotalEarned(tx *gorm.DB, userID uint) (decimal.Decimal, error) {
	total, err := sumColumn(tx.Model(&models.CommissionPayout{}).Where("beneficiary_id = ?", userID), "amount")
	return total, asStorage("sum commission", err)
}
