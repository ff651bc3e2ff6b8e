package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus is a one-way state: pending -> approved | rejected.
type InvestmentStatus string

const (
	InvestmentStatusPending  InvestmentStatus = "pending"
	InvestmentStatusApproved InvestmentStatus = "approved"
	InvestmentStatusRejected InvestmentStatus = "rejected"
)

// Investment is a deposit request awaiting manual approval. Only the approval
// workflow mutates it after creation.
type Investment struct {
	ID             string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string           `gorm:"index;not null" json:"user_id"`
	FullName       string           `gorm:"not null" json:"full_name"`
	WalletNumber   string           `gorm:"not null" json:"wallet_number"`
	Amount         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod  string           `gorm:"not null" json:"payment_method"`
	ScreenshotURL  string           `json:"screenshot_url,omitempty"`
	Status         InvestmentStatus `gorm:"not null;index" json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
