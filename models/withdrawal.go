package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus is a one-way state: pending -> approved | rejected.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a payout request awaiting manual approval.
type Withdrawal struct {
	ID           string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string           `gorm:"index;not null" json:"user_id"`
	FullName     string           `gorm:"not null" json:"full_name"`
	WalletNumber string           `gorm:"not null" json:"wallet_number"`
	Amount       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status       WithdrawalStatus `gorm:"not null;index" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
