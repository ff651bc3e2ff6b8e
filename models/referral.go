package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Referral records one commission paid to a referrer when a user they are
// up-line of had an investment approved. Immutable once created; only the
// referral propagation engine writes these rows.
type Referral struct {
	ID         string          `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID string          `gorm:"index;not null" json:"referrer_id"`
	ReferredID string          `gorm:"index;not null" json:"referred_id"`
	Level      int             `gorm:"not null" json:"level"` // 1, 2, or 3
	Reward     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"reward"`
	RewardPaid bool            `gorm:"not null" json:"reward_paid"`
	CreatedAt  time.Time       `json:"created_at"`

	Referrer User `json:"-" gorm:"foreignKey:ReferrerID"`
	Referred User `json:"-" gorm:"foreignKey:ReferredID"`
}
