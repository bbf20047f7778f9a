package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

type Withdrawal struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint            `gorm:"column:user_id;not null;index:idx_withdrawal_user" json:"user_id"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	WithdrawalCode string          `gorm:"column:withdrawal_code;size:40;not null;index" json:"withdrawal_code"`
	Status         string          `gorm:"column:status;size:20;not null;default:pending;index" json:"status"`
	Comment        string          `gorm:"column:comment;type:text" json:"comment"`
	ProcessedBy    *uint           `gorm:"column:processed_by" json:"processed_by"`
	ProcessedAt    *time.Time      `gorm:"column:processed_at" json:"processed_at"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawal_requests"
}
