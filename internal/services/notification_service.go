package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"investment-service/internal/models"
	"investment-service/pkg/common"
)

// NotificationService writes best-effort user notifications. It is always
// called after the financial transaction has committed.
type NotificationService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewNotificationService(db *gorm.DB, log *zap.Logger) *NotificationService {
	return &NotificationService{DB: db, Log: log}
}

// Notify never returns an error; failures are logged and dropped.
func (s *NotificationService) Notify(userID uint, title, message, kind string) {
	if s == nil {
		return
	}
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
	}
	if err := s.DB.Create(&n).Error; err != nil {
		s.Log.Warn("Failed to store notification",
			zap.Uint("user_id", userID),
			zap.String("title", title),
			zap.Error(err))
	}
}

func (s *NotificationService) NotifyPayouts(payouts []models.CommissionPayout) {
	for _, p := range payouts {
		s.Notify(p.BeneficiaryID, "Commission Received",
			fmt.Sprintf("You earned %s commission from your level %d referral.", p.Amount.StringFixed(2), p.LevelDistance),
			models.NotifySuccess)
	}
}

type ListNotificationsDTO struct {
	UserID     uint
	UnreadOnly bool
	Page       int
	Limit      int
}

func (s *NotificationService) List(ctx context.Context, actor Actor, data ListNotificationsDTO) (common.PaginationResult, error) {
	if err := requireAccess(actor, data.UserID); err != nil {
		return common.PaginationResult{}, err
	}
	page, limit, offset := common.Paging(data.Page, data.Limit)

	query := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", data.UserID)
	if data.UnreadOnly {
		query = query.Where("read_status = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, asStorage("count notifications", err)
	}
	var items []models.Notification
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return common.PaginationResult{}, asStorage("list notifications", err)
	}
	return common.PaginateResponse(items, total, page, limit, "Notifications fetched"), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor, userID uint) (int64, error) {
	if err := requireAccess(actor, userID); err != nil {
		return 0, err
	}
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Count(&count).Error
	return count, asStorage("count unread notifications", err)
}

// MarkRead marks one notification read; id 0 marks all of the actor's.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uint) error {
	query := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", actor.UserID)
	if id != 0 {
		query = query.Where("id = ?", id)
	}
	res := query.Update("read_status", true)
	if res.Error != nil {
		return asStorage("mark notification read", res.Error)
	}
	if id != 0 && res.RowsAffected == 0 {
		var n models.Notification
		if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, actor.UserID).First(&n).Error; err != nil {
			return notFoundOr("find notification", fmt.Sprintf("notification %d", id), err)
		}
	}
	return nil
}
