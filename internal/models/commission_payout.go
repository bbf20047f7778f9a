package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourceEarning    = "earning"
	SourceInvestment = "investment"
)

// CommissionPayout records one upward credit. A beneficiary is paid at most
// once per source.
type CommissionPayout struct {
	ID                 uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	BeneficiaryID      uint            `gorm:"column:beneficiary_id;not null;uniqueIndex:idx_payout_source" json:"beneficiary_id"`
	SourceType         string          `gorm:"column:source_type;size:20;not null;uniqueIndex:idx_payout_source" json:"source_type"`
	SourceID           uint            `gorm:"column:source_id;not null;uniqueIndex:idx_payout_source" json:"source_id"`
	SourceInvestmentID uint            `gorm:"column:source_investment_id;not null;index" json:"source_investment_id"`
	SourceEarningID    *uint           `gorm:"column:source_earning_id" json:"source_earning_id"`
	SourceUserID       uint            `gorm:"column:source_user_id;not null" json:"source_user_id"`
	LevelDistance      int             `gorm:"column:level_distance;not null" json:"level_distance"`
	TierIndex          int             `gorm:"column:tier_index;not null" json:"tier_index"`
	RateApplied        decimal.Decimal `gorm:"column:rate_applied;type:decimal(10,4);not null" json:"rate_applied"`
	BaseAmount         decimal.Decimal `gorm:"column:base_amount;type:decimal(20,2);not null" json:"base_amount"`
	Amount             decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Date               string          `gorm:"column:date;size:10;not null;index" json:"date"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CommissionPayout) TableName() string {
	return "commission_payouts"
}
