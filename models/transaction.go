package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeInvestment     = "investment"
	TransactionTypeWithdrawal     = "withdrawal"
	TransactionTypeTaskReward     = "task_reward"
	TransactionTypeReferralReward = "referral_reward"
)

// Transaction is the append-only ledger entry. Every balance delta has exactly
// one Transaction row carrying the same signed amount; rows are never updated
// or deleted.
type Transaction struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string          `gorm:"index;not null" json:"user_id"`
	Type        string          `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"` // negative for withdrawals
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
