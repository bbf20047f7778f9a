package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal entry types.
const (
	TrxCredit = "credit"
	TrxDebit  = "debit"
	TrxLock   = "lock"
	TrxUnlock = "unlock"
	TrxSettle = "settle"
)

// Transaction is the append-only wallet journal.
type Transaction struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	WalletID      uint            `gorm:"column:wallet_id;not null" json:"wallet_id"`
	TransactionNo string          `gorm:"column:transaction_no;size:32;not null;index" json:"transaction_no"`
	TrxType       string          `gorm:"column:transaction_type;size:20;not null" json:"transaction_type"`
	Subject       string          `gorm:"column:subject;size:100;not null;index" json:"subject"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Balance       decimal.Decimal `gorm:"column:balance;type:decimal(20,2);not null" json:"balance"`
	LockedBalance decimal.Decimal `gorm:"column:locked_balance;type:decimal(20,2);not null" json:"locked_balance"`
	Description   string          `gorm:"column:description;type:text" json:"description"`
	Reference     string          `gorm:"column:reference;size:100" json:"reference"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
