package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"investment-service/internal/ladder"
	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type UserAdminService struct {
	DB       *gorm.DB
	Ladder   *ladder.Ladder
	Notifier *NotificationService
	Log      *zap.Logger
}

func NewUserAdminService(db *gorm.DB, lad *ladder.Ladder, notifier *NotificationService, log *zap.Logger) *UserAdminService {
	return &UserAdminService{DB: db, Ladder: lad, Notifier: notifier, Log: log}
}

func (s *UserAdminService) SetStatus(ctx context.Context, actor Actor, userID uint, status string) (models.User, error) {
	var user models.User
	if err := requireAdmin(actor); err != nil {
		return user, err
	}
	switch status {
	case models.StatusActive, models.StatusSuspended, models.StatusBanned:
	default:
		return user, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	if userID == actor.UserID {
		return user, NewValidationError("user", "admins cannot change their own status")
	}

	db := s.DB.WithContext(ctx)
	if err := db.First(&user, userID).Error; err != nil {
		return user, notFoundOr("load user", fmt.Sprintf("user %d", userID), err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("status", status).Error; err != nil {
		return user, asStorage("update status", err)
	}
	user.Status = status

	s.Log.Info("User status changed", zap.Uint("user_id", userID), zap.String("status", status), zap.Uint("admin_id", actor.UserID))
	s.Notifier.Notify(userID, "Account Status Updated", "Your account is now "+status+".", models.NotifyInfo)
	return user, nil
}

// SetManualTier grants an administrative tier. Index 0 removes the grant.
func (s *UserAdminService) SetManualTier(ctx context.Context, actor Actor, userID uint, index int) (models.User, error) {
	var user models.User
	if err := requireAdmin(actor); err != nil {
		return user, err
	}
	var tier ladder.Tier
	if index != 0 {
		t, ok := s.Ladder.Tier(index)
		if !ok {
			return user, NewValidationError("tier", fmt.Sprintf("unknown tier %d", index))
		}
		tier = t
	}

	db := s.DB.WithContext(ctx)
	if err := db.First(&user, userID).Error; err != nil {
		return user, notFoundOr("load user", fmt.Sprintf("user %d", userID), err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("manual_tier", index).Error; err != nil {
		return user, asStorage("update manual tier", err)
	}
	user.ManualTier = index

	s.Log.Info("Manual tier set", zap.Uint("user_id", userID), zap.Int("tier", index), zap.Uint("admin_id", actor.UserID))
	if index != 0 {
		s.Notifier.Notify(userID, "Rank Promotion", "You have been promoted to "+tier.Name+".", models.NotifySuccess)
	}
	return user, nil
}

type ListUsersDTO struct {
	Search string
	Status string
	Page   int
	Limit  int
}

func (s *UserAdminService) ListUsers(ctx context.Context, actor Actor, data ListUsersDTO) (common.PaginationResult, error) {
	if err := requireAdmin(actor); err != nil {
		return common.PaginationResult{}, err
	}
	page, limit, offset := common.Paging(data.Page, data.Limit)

	query := s.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleClient)
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}
	if data.Search != "" {
		like := "%" + data.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, asStorage("count users", err)
	}
	var users []models.User
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return common.PaginationResult{}, asStorage("list users", err)
	}
	return common.PaginateResponse(users, total, page, limit, "Users fetched"), nil
}
