package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint            `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	Balance      decimal.Decimal `gorm:"column:balance;type:decimal(20,2);not null;default:0.00" json:"balance"`
	LockedAmount decimal.Decimal `gorm:"column:locked_amount;type:decimal(20,2);not null;default:0.00" json:"locked_amount"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
