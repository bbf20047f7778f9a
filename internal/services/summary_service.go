package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investment-service/internal/config"
	"investment-service/internal/models"
)

type SummaryService struct {
	DB       *gorm.DB
	Referral *ReferralService
	Config   config.InvestmentConfig
	Now      func() time.Time
}

func NewSummaryService(db *gorm.DB, referral *ReferralService, cfg config.InvestmentConfig) *SummaryService {
	return &SummaryService{DB: db, Referral: referral, Config: cfg, Now: time.Now}
}

type InvestmentSummary struct {
	ActiveCount   int64           `json:"active_count"`
	MaturedCount  int64           `json:"matured_count"`
	ClosedCount   int64           `json:"closed_count"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	ActiveAmount  decimal.Decimal `json:"active_amount"`
	TotalEarned   decimal.Decimal `json:"total_earned"`
}

type ClientSummary struct {
	Wallet          models.Wallet     `json:"wallet"`
	KYCStatus       string            `json:"kyc_status"`
	ClientCode      string            `json:"client_code"`
	Investments     InvestmentSummary `json:"investments"`
	TodayEarnings   decimal.Decimal   `json:"today_earnings"`
	MonthEarnings   decimal.Decimal   `json:"month_earnings"`
	TotalCommission decimal.Decimal   `json:"total_commission"`
	MonthCommission decimal.Decimal   `json:"month_commission"`
	ReferralCount   int64             `json:"referral_count"`
	Tier            TierInfo          `json:"tier"`
}

// Client assembles the figures shown on a client's dashboard.
func (s *SummaryService) Client(ctx context.Context, actor Actor, userID uint) (ClientSummary, error) {
	var out ClientSummary
	if err := requireAccess(actor, userID); err != nil {
		return out, err
	}
	db := s.DB.WithContext(ctx)
	today, _ := getDateRange("day", s.Now(), s.Config.Location)
	monthStart, monthEnd := getDateRange("month", s.Now(), s.Config.Location)

	if err := db.Where("user_id = ?", userID).First(&out.Wallet).Error; err != nil {
		return out, notFoundOr("load wallet", fmt.Sprintf("wallet for user %d", userID), err)
	}
	var client models.Client
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&client).Error; err != nil {
		return out, asStorage("load client", err)
	}
	out.KYCStatus, out.ClientCode = client.KYCStatus, client.ClientCode

	var rows []struct {
		Status string
		Count  int64
		Amount decimal.Decimal
		Earned decimal.Decimal
	}
	if err := db.Model(&models.Investment{}).
		Select("status, COUNT(*) AS count, "+sumExpr(db, "amount")+" AS amount, "+sumExpr(db, "total_earned")+" AS earned").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return out, asStorage("summarise investments", err)
	}
	inv := InvestmentSummary{TotalInvested: decimal.Zero, ActiveAmount: decimal.Zero, TotalEarned: decimal.Zero}
	for _, r := range rows {
		inv.TotalInvested = inv.TotalInvested.Add(r.Amount)
		inv.TotalEarned = inv.TotalEarned.Add(r.Earned)
		switch r.Status {
		case models.InvestmentActive:
			inv.ActiveCount = r.Count
			inv.ActiveAmount = r.Amount
		case models.InvestmentMatured:
			inv.MaturedCount = r.Count
		case models.InvestmentClosed:
			inv.ClosedCount = r.Count
		}
	}
	out.Investments = inv

	var err error
	if out.TodayEarnings, err = sumColumn(db.Model(&models.Earning{}).Where("user_id = ? AND date = ?", userID, today), "amount"); err != nil {
		return out, asStorage("sum today earnings", err)
	}
	if out.MonthEarnings, err = sumColumn(db.Model(&models.Earning{}).Where("user_id = ? AND date >= ? AND date <= ?", userID, monthStart, monthEnd), "amount"); err != nil {
		return out, asStorage("sum month earnings", err)
	}
	if out.TotalCommission, err = sumColumn(db.Model(&models.CommissionPayout{}).Where("beneficiary_id = ?", userID), "amount"); err != nil {
		return out, asStorage("sum commission", err)
	}
	if out.MonthCommission, err = sumColumn(db.Model(&models.CommissionPayout{}).Where("beneficiary_id = ? AND date >= ? AND date <= ?", userID, monthStart, monthEnd), "amount"); err != nil {
		return out, asStorage("sum month commission", err)
	}
	if out.ReferralCount, err = s.Referral.ReferralCount(db, userID); err != nil {
		return out, err
	}
	if out.Tier, err = s.Referral.CurrentTier(ctx, actor, userID); err != nil {
		return out, err
	}
	return out, nil
}
