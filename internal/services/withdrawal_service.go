package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investment-service/internal/config"
	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type WithdrawalService struct {
	DB       *gorm.DB
	Wallet   *WalletService
	Notifier *NotificationService
	Config   config.WithdrawalConfig
	Log      *zap.Logger
	Now      func() time.Time
}

func NewWithdrawalService(db *gorm.DB, wallet *WalletService, notifier *NotificationService, cfg config.WithdrawalConfig, log *zap.Logger) *WithdrawalService {
	return &WithdrawalService{DB: db, Wallet: wallet, Notifier: notifier, Config: cfg, Log: log, Now: time.Now}
}

type WithdrawRequestDTO struct {
	UserID uint
	Amount decimal.Decimal
}

// RequestWithdrawal locks the amount in the wallet and opens a pending
// request for an admin to settle or reject.
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, actor Actor, data WithdrawRequestDTO) (models.Withdrawal, error) {
	var w models.Withdrawal
	if err := requireAccess(actor, data.UserID); err != nil {
		return w, err
	}
	if !data.Amount.IsPositive() {
		return w, NewValidationError("amount", "must be greater than zero")
	}
	if data.Amount.LessThan(s.Config.MinimumAmount) {
		return w, NewValidationError("amount", "minimum withdrawable amount is "+s.Config.MinimumAmount.StringFixed(2))
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, data.UserID).Error; err != nil {
			return notFoundOr("load user", fmt.Sprintf("user %d", data.UserID), err)
		}
		if !user.IsActive() {
			return NewValidationError("user", "account is "+user.Status)
		}
		if s.Config.RequireKYC && user.Role == models.RoleClient {
			var client models.Client
			if err := tx.Where("user_id = ?", user.ID).First(&client).Error; err != nil {
				return notFoundOr("load client", fmt.Sprintf("client profile for user %d", user.ID), err)
			}
			if client.KYCStatus != models.KYCVerified {
				return NewValidationError("kyc", "KYC verification is required before withdrawing")
			}
		}

		w = models.Withdrawal{
			UserID:         user.ID,
			Amount:         data.Amount.Round(2),
			WithdrawalCode: common.GenerateTrxNo(),
			Status:         models.WithdrawalPending,
		}
		if err := tx.Create(&w).Error; err != nil {
			return asStorage("create withdrawal", err)
		}

		_, err := s.Wallet.Lock(tx, MovementDTO{
			UserID:      user.ID,
			Amount:      w.Amount,
			Subject:     "Withdrawal Request",
			Description: "Funds held for withdrawal " + w.WithdrawalCode,
			Reference:   fmt.Sprintf("withdrawal:%d", w.ID),
		})
		return err
	})
	if err != nil {
		return models.Withdrawal{}, asStorage("request withdrawal", err)
	}

	s.Log.Info("Withdrawal requested", zap.Uint("user_id", w.UserID), zap.String("code", w.WithdrawalCode))
	s.Notifier.Notify(w.UserID, "Withdrawal Requested",
		fmt.Sprintf("Your withdrawal of %s is pending approval.", w.Amount.StringFixed(2)), models.NotifyInfo)
	return w, nil
}

type ProcessWithdrawalDTO struct {
	ID      uint
	Comment string
}

// Approve settles the locked funds.
func (s *WithdrawalService) Approve(ctx context.Context, actor Actor, data ProcessWithdrawalDTO) (models.Withdrawal, error) {
	return s.process(ctx, actor, data, models.WithdrawalApproved)
}

// Reject returns the locked funds to the spendable balance.
func (s *WithdrawalService) Reject(ctx context.Context, actor Actor, data ProcessWithdrawalDTO) (models.Withdrawal, error) {
	return s.process(ctx, actor, data, models.WithdrawalRejected)
}

func (s *WithdrawalService) process(ctx context.Context, actor Actor, data ProcessWithdrawalDTO, status string) (models.Withdrawal, error) {
	var w models.Withdrawal
	if err := requireAdmin(actor); err != nil {
		return w, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, data.ID).Error; err != nil {
			return notFoundOr("lock withdrawal", fmt.Sprintf("withdrawal %d", data.ID), err)
		}
		if w.Status != models.WithdrawalPending {
			return NewValidationError("status", "withdrawal is already "+w.Status)
		}

		move := MovementDTO{
			UserID:    w.UserID,
			Amount:    w.Amount,
			Reference: fmt.Sprintf("withdrawal:%d", w.ID),
		}
		var err error
		if status == models.WithdrawalApproved {
			move.Subject = "Withdrawal"
			move.Description = "Withdrawal " + w.WithdrawalCode + " paid out"
			_, err = s.Wallet.Settle(tx, move)
		} else {
			move.Subject = "Withdrawal Rejected"
			move.Description = "Withdrawal " + w.WithdrawalCode + " rejected, funds released"
			_, err = s.Wallet.Unlock(tx, move)
		}
		if err != nil {
			return err
		}

		now := s.Now()
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", w.ID, models.WithdrawalPending).
			Updates(map[string]interface{}{
				"status":       status,
				"comment":      data.Comment,
				"processed_by": actor.UserID,
				"processed_at": now,
			})
		if res.Error != nil {
			return asStorage("update withdrawal", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewValidationError("status", "withdrawal was processed concurrently")
		}
		w.Status = status
		w.Comment = data.Comment
		w.ProcessedBy = &actor.UserID
		w.ProcessedAt = &now
		return nil
	})
	if err != nil {
		return models.Withdrawal{}, asStorage("process withdrawal", err)
	}

	if status == models.WithdrawalApproved {
		s.Notifier.Notify(w.UserID, "Withdrawal Approved",
			fmt.Sprintf("Your withdrawal of %s has been approved.", w.Amount.StringFixed(2)), models.NotifySuccess)
	} else {
		s.Notifier.Notify(w.UserID, "Withdrawal Rejected",
			fmt.Sprintf("Your withdrawal of %s was rejected. %s", w.Amount.StringFixed(2), data.Comment), models.NotifyWarning)
	}
	return w, nil
}

type ListWithdrawalRequestsDTO struct {
	UserID uint // 0 lists all, admin only
	Status string
	Page   int
	Limit  int
}

func (s *WithdrawalService) ListWithdrawals(ctx context.Context, actor Actor, data ListWithdrawalRequestsDTO) (common.PaginationResult, error) {
	if data.UserID == 0 {
		if err := requireAdmin(actor); err != nil {
			return common.PaginationResult{}, err
		}
	} else if err := requireAccess(actor, data.UserID); err != nil {
		return common.PaginationResult{}, err
	}
	page, limit, offset := common.Paging(data.Page, data.Limit)

	query := s.DB.WithContext(ctx).Model(&models.Withdrawal{})
	if data.UserID != 0 {
		query = query.Where("user_id = ?", data.UserID)
	}
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, asStorage("count withdrawals", err)
	}
	var items []models.Withdrawal
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return common.PaginationResult{}, asStorage("list withdrawals", err)
	}
	return common.PaginateResponse(items, total, page, limit, "Withdrawals fetched"), nil
}
