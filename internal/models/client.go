package models

import (
	"time"
)

const (
	KYCNotSubmitted = "not_submitted"
	KYCPending      = "pending"
	KYCVerified     = "verified"
	KYCRejected     = "rejected"
)

// Client is the investor profile created alongside every client user.
type Client struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint       `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	ClientCode    string     `gorm:"column:client_code;size:32;not null;uniqueIndex" json:"client_code"`
	KYCStatus     string     `gorm:"column:kyc_status;size:20;not null;default:not_submitted;index" json:"kyc_status"`
	KYCDocument   string     `gorm:"column:kyc_document_ref;size:255" json:"kyc_document_ref"`
	KYCNote       string     `gorm:"column:kyc_note;type:text" json:"kyc_note"`
	KYCReviewedBy *uint      `gorm:"column:kyc_reviewed_by" json:"kyc_reviewed_by"`
	KYCReviewedAt *time.Time `gorm:"column:kyc_reviewed_at" json:"kyc_reviewed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}
