package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks a JazzCash payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// JazzCashPayment is one outbound gateway payment attempt. The row is created
// before the gateway call and mutated once when the gateway responds or the
// callback arrives. RawResponse keeps the gateway payload for disputes.
type JazzCashPayment struct {
	ID                    string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID                string          `gorm:"index;not null" json:"user_id"`
	InvestmentID          *string         `gorm:"index" json:"investment_id,omitempty"` // set when the gateway accepts
	TransactionID         string          `json:"transaction_id,omitempty"` // gateway-side reference, set on response
	MerchantTransactionID string          `gorm:"uniqueIndex;not null" json:"merchant_transaction_id"`
	Amount                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Phone                 string          `gorm:"not null" json:"phone"`
	Email                 string          `gorm:"not null" json:"email"`
	FullName              string          `gorm:"not null" json:"full_name"`
	Status                PaymentStatus   `gorm:"not null;index" json:"status"`
	RawResponse           string          `gorm:"type:text" json:"raw_response,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`

	User       User        `json:"-" gorm:"foreignKey:UserID"`
	Investment *Investment `json:"-" gorm:"foreignKey:InvestmentID"`
}
