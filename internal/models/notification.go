package models

import (
	"time"
)

const (
	NotifyInfo    = "info"
	NotifySuccess = "success"
	NotifyWarning = "warning"
)

type Notification struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Title      string    `gorm:"column:title;size:255;not null" json:"title"`
	Message    string    `gorm:"column:message;type:text;not null" json:"message"`
	Type       string    `gorm:"column:type;size:20;not null;default:info" json:"type"`
	ReadStatus bool      `gorm:"column:read_status;not null;default:false" json:"read_status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
