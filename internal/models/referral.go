package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Referral is the direct sponsor edge written once at registration.
type Referral struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ReferrerID     uint            `gorm:"column:referrer_id;not null;index" json:"referrer_id"`
	ReferredID     uint            `gorm:"column:referred_id;not null;uniqueIndex" json:"referred_id"`
	Level          int             `gorm:"column:level;not null;default:1" json:"level"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:decimal(10,4);not null" json:"commission_rate"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Referral) TableName() string {
	return "referrals"
}
