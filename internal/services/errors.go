package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAlreadyAccrued      = errors.New("investment already accrued for this date")
	ErrInvestmentNotActive = errors.New("investment is not active")
	ErrInvalidReferral     = errors.New("invalid referral")
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("forbidden")
)

// ValidationError is bad, user-correctable input. Message is safe to show.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IntegrityError means the stored referral graph is corrupt: a cycle or a
// parent pointer to a missing user.
type IntegrityError struct {
	UserID uint
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("referral integrity violation at user %d: %s", e.UserID, e.Reason)
}

// StorageError wraps a failure of the ledger store itself.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// asStorage passes domain errors through and wraps everything else.
func asStorage(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	var ve *ValidationError
	var ie *IntegrityError
	var se *StorageError
	switch {
	case errors.As(err, &ve), errors.As(err, &ie), errors.As(err, &se):
		return true
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrAlreadyAccrued),
		errors.Is(err, ErrInvestmentNotActive),
		errors.Is(err, ErrInvalidReferral),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrForbidden):
		return true
	}
	return false
}

// notFoundOr maps gorm.ErrRecordNotFound to a wrapped ErrNotFound.
func notFoundOr(op, what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return asStorage(op, err)
}
