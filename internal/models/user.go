package models

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"

	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusBanned    = "banned"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;size:150;not null" json:"name"`
	Email        string    `gorm:"column:email;size:191;not null;uniqueIndex" json:"email"`
	Phone        string    `gorm:"column:phone;size:20;not null;uniqueIndex" json:"phone"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	Role         string    `gorm:"column:role;size:20;not null;default:client" json:"role"`
	ParentID     *uint     `gorm:"column:parent_id;index" json:"parent_id"`
	Level        int       `gorm:"column:level;not null;default:0" json:"level"`
	Status       string    `gorm:"column:status;size:20;not null;default:active;index" json:"status"`
	ReferralCode string    `gorm:"column:referral_code;size:64;not null;uniqueIndex" json:"referral_code"`
	ManualTier   int       `gorm:"column:manual_tier;not null;default:0" json:"manual_tier"` // 0: none
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u User) IsActive() bool {
	return u.Status == StatusActive
}
