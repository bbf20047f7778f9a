package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type WalletService struct {
	DB       *gorm.DB
	Helper   *HelperService
	Notifier *NotificationService
	Log      *zap.Logger
}

func NewWalletService(db *gorm.DB, helper *HelperService, notifier *NotificationService, log *zap.Logger) *WalletService {
	return &WalletService{DB: db, Helper: helper, Notifier: notifier, Log: log}
}

// MovementDTO describes one wallet mutation and its journal line.
type MovementDTO struct {
	UserID      uint
	Amount      decimal.Decimal
	Subject     string
	Description string
	Reference   string
}

func (s *WalletService) CreateWallet(tx *gorm.DB, userID uint) (models.Wallet, error) {
	wallet := models.Wallet{
		UserID:       userID,
		Balance:      decimal.Zero,
		LockedAmount: decimal.Zero,
	}
	if err := tx.Create(&wallet).Error; err != nil {
		return wallet, asStorage("create wallet", err)
	}
	return wallet, nil
}

// Credit adds to the spendable balance.
func (s *WalletService) Credit(tx *gorm.DB, data MovementDTO) (models.Wallet, error) {
	return s.apply(tx, models.TrxCredit, data)
}

// Debit removes from the spendable balance; ErrInsufficientFunds leaves the
// wallet untouched.
func (s *WalletService) Debit(tx *gorm.DB, data MovementDTO) (models.Wallet, error) {
	return s.apply(tx, models.TrxDebit, data)
}

// Lock moves funds from balance into locked_amount.
func (s *WalletService) Lock(tx *gorm.DB, data MovementDTO) (models.Wallet, error) {
	return s.apply(tx, models.TrxLock, data)
}

// Unlock returns locked funds to balance.
func (s *WalletService) Unlock(tx *gorm.DB, data MovementDTO) (models.Wallet, error) {
	return s.apply(tx, models.TrxUnlock, data)
}

// Settle removes locked funds for good, e.g. a paid-out withdrawal.
func (s *WalletService) Settle(tx *gorm.DB, data MovementDTO) (models.Wallet, error) {
	return s.apply(tx, models.TrxSettle, data)
}

func (s *WalletService) apply(tx *gorm.DB, kind string, data MovementDTO) (models.Wallet, error) {
	if !data.Amount.IsPositive() {
		return models.Wallet{}, NewValidationError("amount", "must be greater than zero")
	}
	amount := data.Amount.Round(2)

	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", data.UserID).
		First(&wallet).Error; err != nil {
		return wallet, notFoundOr("lock wallet", fmt.Sprintf("wallet for user %d", data.UserID), err)
	}

	balance, locked := wallet.Balance, wallet.LockedAmount
	switch kind {
	case models.TrxCredit:
		balance = balance.Add(amount)
	case models.TrxDebit:
		if balance.LessThan(amount) {
			return wallet, ErrInsufficientFunds
		}
		balance = balance.Sub(amount)
	case models.TrxLock:
		if balance.LessThan(amount) {
			return wallet, ErrInsufficientFunds
		}
		balance = balance.Sub(amount)
		locked = locked.Add(amount)
	case models.TrxUnlock:
		if locked.LessThan(amount) {
			return wallet, ErrInsufficientFunds
		}
		locked = locked.Sub(amount)
		balance = balance.Add(amount)
	case models.TrxSettle:
		if locked.LessThan(amount) {
			return wallet, ErrInsufficientFunds
		}
		locked = locked.Sub(amount)
	default:
		return wallet, fmt.Errorf("unknown wallet movement %q", kind)
	}

	res := tx.Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance":       balance,
			"locked_amount": locked,
		})
	if res.Error != nil {
		return wallet, asStorage("update wallet", res.Error)
	}
	wallet.Balance, wallet.LockedAmount = balance, locked

	if _, err := s.Helper.SaveTransaction(tx, TransactionData{
		UserID:        data.UserID,
		WalletID:      wallet.ID,
		TrxType:       kind,
		Subject:       data.Subject,
		Description:   data.Description,
		Reference:     data.Reference,
		Amount:        amount,
		Balance:       balance,
		LockedBalance: locked,
	}); err != nil {
		return wallet, err
	}
	return wallet, nil
}

func (s *WalletService) GetWallet(ctx context.Context, actor Actor, userID uint) (models.Wallet, error) {
	var wallet models.Wallet
	if err := requireAccess(actor, userID); err != nil {
		return wallet, err
	}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return wallet, notFoundOr("get wallet", fmt.Sprintf("wallet for user %d", userID), err)
	}
	return wallet, nil
}

type DepositDTO struct {
	UserID      uint
	Amount      decimal.Decimal
	Description string
	Reference   string
}

// Deposit is an admin-recorded credit for funds received off-platform.
func (s *WalletService) Deposit(ctx context.Context, actor Actor, data DepositDTO) (models.Wallet, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Wallet{}, err
	}
	desc := data.Description
	if desc == "" {
		desc = "Deposit recorded by admin"
	}

	var wallet models.Wallet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, err = s.Credit(tx, MovementDTO{
			UserID:      data.UserID,
			Amount:      data.Amount,
			Subject:     "Deposit",
			Description: desc,
			Reference:   data.Reference,
		})
		return err
	})
	if err != nil {
		return wallet, asStorage("deposit", err)
	}

	s.Log.Info("Deposit recorded",
		zap.Uint("user_id", data.UserID),
		zap.String("amount", data.Amount.StringFixed(2)),
		zap.Uint("admin_id", actor.UserID))
	s.Notifier.Notify(data.UserID, "Deposit Received",
		fmt.Sprintf("%s has been credited to your wallet.", data.Amount.StringFixed(2)), models.NotifySuccess)
	return wallet, nil
}

type ListTransactionsDTO struct {
	UserID  uint
	Subject string
	TrxType string
	Page    int
	Limit   int
}

func (s *WalletService) ListTransactions(ctx context.Context, actor Actor, data ListTransactionsDTO) (common.PaginationResult, error) {
	if err := requireAccess(actor, data.UserID); err != nil {
		return common.PaginationResult{}, err
	}
	page, limit, offset := common.Paging(data.Page, data.Limit)

	query := s.DB.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", data.UserID)
	if data.Subject != "" {
		query = query.Where("subject = ?", data.Subject)
	}
	if data.TrxType != "" {
		query = query.Where("transaction_type = ?", data.TrxType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, asStorage("count transactions", err)
	}

	var transactions []models.Transaction
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		return common.PaginationResult{}, asStorage("list transactions", err)
	}
	return common.PaginateResponse(transactions, total, page, limit, "Transactions fetched"), nil
}
