package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvestmentActive  = "active"
	InvestmentMatured = "matured"
	InvestmentClosed  = "closed"
)

// Investment dates are calendar days (YYYY-MM-DD) in the accrual time zone.
// Amount and InterestRate never change after creation.
type Investment struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint            `gorm:"column:user_id;not null;index:idx_investment_user_status" json:"user_id"`
	Plan          string          `gorm:"column:plan;size:100;not null" json:"plan"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	InterestRate  decimal.Decimal `gorm:"column:interest_rate;type:decimal(10,4);not null" json:"interest_rate"`
	Status        string          `gorm:"column:status;size:20;not null;default:active;index:idx_investment_user_status" json:"status"`
	StartDate     string          `gorm:"column:start_date;size:10;not null" json:"start_date"`
	MaturityDate  string          `gorm:"column:maturity_date;size:10;not null" json:"maturity_date"`
	LastAccruedOn string          `gorm:"column:last_accrued_on;size:10" json:"last_accrued_on"`
	TotalEarned   decimal.Decimal `gorm:"column:total_earned;type:decimal(20,2);not null;default:0.00" json:"total_earned"`
	PenaltyAmount decimal.Decimal `gorm:"column:penalty_amount;type:decimal(20,2);not null;default:0.00" json:"penalty_amount"`
	MaturedAt     *time.Time      `gorm:"column:matured_at" json:"matured_at"`
	ClosedAt      *time.Time      `gorm:"column:closed_at" json:"closed_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}
