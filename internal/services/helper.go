package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investment-service/internal/models"
	"investment-service/pkg/common"
)

type HelperService struct {
	DB *gorm.DB
}

func NewHelperService(db *gorm.DB) *HelperService {
	return &HelperService{DB: db}
}

type TransactionData struct {
	UserID        uint
	WalletID      uint
	TrxType       string
	Subject       string
	Description   string
	Reference     string
	Amount        decimal.Decimal
	Balance       decimal.Decimal
	LockedBalance decimal.Decimal
}

// SaveTransaction appends a journal row inside the caller's transaction.
func (s *HelperService) SaveTransaction(tx *gorm.DB, data TransactionData) (models.Transaction, error) {
	t := models.Transaction{
		UserID:        data.UserID,
		WalletID:      data.WalletID,
		TransactionNo: common.GenerateTrxNo(),
		TrxType:       data.TrxType,
		Subject:       data.Subject,
		Amount:        data.Amount,
		Balance:       data.Balance,
		LockedBalance: data.LockedBalance,
		Description:   data.Description,
		Reference:     data.Reference,
	}
	if err := tx.Create(&t).Error; err != nil {
		return t, asStorage("save transaction", err)
	}
	return t, nil
}
