package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Earning is one accrual of one investment on one day. Never updated.
type Earning struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	InvestmentID uint            `gorm:"column:investment_id;not null;uniqueIndex:idx_earning_investment_date" json:"investment_id"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Date         string          `gorm:"column:date;size:10;not null;uniqueIndex:idx_earning_investment_date;index" json:"date"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Earning) TableName() string {
	return "earnings"
}
