// services/ledger_service.go
package services

import (
	"errors"

	"cryptopay-platform/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrNonPositiveDelta = errors.New("amount must be positive")
)

// LedgerService is the only code path allowed to write the users.balance
// column. Every mutation is an atomic SQL increment paired with exactly one
// Transaction row carrying the same signed amount; both run on the caller's
// tx so they commit or roll back together.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// Credit adds amount to the user's balance and logs a positive ledger entry.
func (s *LedgerService) Credit(tx *gorm.DB, userID string, amount decimal.Decimal, txnType, description string) error {
	if amount.Sign() <= 0 {
		return ErrNonPositiveDelta
	}
	return s.apply(tx, userID, amount, txnType, description)
}

// Debit subtracts amount from the user's balance and logs a negative ledger
// entry. Sufficiency is the caller's responsibility — the withdrawal workflow
// validates before it debits.
func (s *LedgerService) Debit(tx *gorm.DB, userID string, amount decimal.Decimal, txnType, description string) error {
	if amount.Sign() <= 0 {
		return ErrNonPositiveDelta
	}
	return s.apply(tx, userID, amount.Neg(), txnType, description)
}

func (s *LedgerService) apply(tx *gorm.DB, userID string, delta decimal.Decimal, txnType, description string) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	entry := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txnType,
		Amount:      delta,
		Description: description,
	}
	return tx.Create(entry).Error
}
