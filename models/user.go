package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// User is the platform account. Balance is only ever written through the
// ledger service; TrialBalance is a promotional credit fixed at signup.
type User struct {
	ID               string          `gorm:"primaryKey" json:"id"` // opaque gateway principal id, not necessarily a UUID
	Email            string          `gorm:"uniqueIndex" json:"email"`
	FirstName        string          `json:"first_name,omitempty"`
	LastName         string          `json:"last_name,omitempty"`
	ProfileImageURL  string          `json:"profile_image_url,omitempty"`
	Balance          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"balance"`
	TrialBalance     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"trial_balance"`
	TrialStartDate   time.Time       `json:"trial_start_date"`
	TrialEndDate     time.Time       `json:"trial_end_date"`
	IsInvestor       bool            `gorm:"not null" json:"is_investor"`
	InvestmentAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"investment_amount"`
	ReferralCode     string          `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferredBy       string          `gorm:"index" json:"referred_by,omitempty"` // referrer's user ID, set at most once
	IsAdmin          bool            `gorm:"not null" json:"is_admin"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TrialDuration is the promotional window granted at signup.
const TrialDuration = 3 * 24 * time.Hour

// IsTrialActive reports whether the trial window is still open at now.
func (u *User) IsTrialActive(now time.Time) bool {
	return now.Before(u.TrialEndDate)
}

// TrialDaysLeft returns whole days remaining in the trial, never negative.
func (u *User) TrialDaysLeft(now time.Time) int {
	if !now.Before(u.TrialEndDate) {
		return 0
	}
	left := u.TrialEndDate.Sub(now).Hours() / 24
	return int(math.Ceil(left))
}
