// services/user_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"cryptopay-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var initialTrialBalance = decimal.NewFromInt(100)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

const referralCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateReferralCode returns a CRP-xxxxxx-XXX code: last six digits of the
// current unix-ms clock plus three random base36 characters.
func GenerateReferralCode() string {
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = referralCodeAlphabet[rand.Intn(len(referralCodeAlphabet))]
	}
	return fmt.Sprintf("CRP-%s-%s", ts, suffix)
}

// EnsureUser returns the user row for the authenticated principal, creating
// it on first sight with the signup grants: zero balance, the promotional
// trial credit with its 3-day window, and a fresh referral code.
func (s *UserService) EnsureUser(id, email, firstName, lastName string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user = models.User{
		ID:               id,
		Email:            email,
		FirstName:        firstName,
		LastName:         lastName,
		Balance:          decimal.Zero,
		TrialBalance:     initialTrialBalance,
		TrialStartDate:   now,
		TrialEndDate:     now.Add(models.TrialDuration),
		InvestmentAmount: decimal.Zero,
		ReferralCode:     GenerateReferralCode(),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserStats is the dashboard summary block.
type UserStats struct {
	TotalBalance     string `json:"totalBalance"`
	TrialBalance     string `json:"trialBalance"`
	InvestmentAmount string `json:"investmentAmount"`
	ReferralCount    int64  `json:"referralCount"`
	IsTrialActive    bool   `json:"isTrialActive"`
	DaysLeft         int    `json:"daysLeft"`
}

// Stats assembles the dashboard summary for a user.
func (s *UserService) Stats(userID string, now time.Time) (*UserStats, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var referralCount int64
	if err := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ?", userID).
		Count(&referralCount).Error; err != nil {
		return nil, err
	}

	return &UserStats{
		TotalBalance:     user.Balance.StringFixed(2),
		TrialBalance:     user.TrialBalance.StringFixed(2),
		InvestmentAmount: user.InvestmentAmount.StringFixed(2),
		ReferralCount:    referralCount,
		IsTrialActive:    user.IsTrialActive(now),
		DaysLeft:         user.TrialDaysLeft(now),
	}, nil
}

// --- Handlers ---

// GetCurrentUser handles GET /auth/user: upsert-on-first-auth plus stats.
func (s *UserService) GetCurrentUser(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	email, _ := c.Locals("user_email").(string)
	name, _ := c.Locals("user_name").(string)

	firstName, lastName := splitName(name)
	user, err := s.EnsureUser(userID, email, firstName, lastName)
	if err != nil {
		log.Printf("DB Error ensuring user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	stats, err := s.Stats(userID, time.Now())
	if err != nil {
		log.Printf("DB Error fetching stats for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	return c.JSON(fiber.Map{"user": user, "stats": stats})
}

// GetDashboardStats handles GET /dashboard/stats.
func (s *UserService) GetDashboardStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	stats, err := s.Stats(userID, time.Now())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("DB Error fetching dashboard stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}
	return c.JSON(stats)
}

// GetTransactions handles GET /transactions: the user's ledger history.
func (s *UserService) GetTransactions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var transactions []models.Transaction
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		log.Printf("DB Error fetching transactions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}
	return c.JSON(transactions)
}

// GetAdminStats handles GET /admin/stats.
func (s *UserService) GetAdminStats(c *fiber.Ctx) error {
	var totalUsers, pendingInvestments, pendingWithdrawals int64

	if err := s.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("DB Error counting users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch admin stats"})
	}
	if err := s.DB.Model(&models.Investment{}).
		Where("status = ?", models.InvestmentStatusPending).
		Count(&pendingInvestments).Error; err != nil {
		log.Printf("DB Error counting investments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch admin stats"})
	}
	if err := s.DB.Model(&models.Withdrawal{}).
		Where("status = ?", models.WithdrawalStatusPending).
		Count(&pendingWithdrawals).Error; err != nil {
		log.Printf("DB Error counting withdrawals: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch admin stats"})
	}

	var totalInvested decimal.NullDecimal
	if err := s.DB.Model(&models.Investment{}).
		Where("status = ?", models.InvestmentStatusApproved).
		Select("SUM(amount)").
		Scan(&totalInvested).Error; err != nil {
		log.Printf("DB Error summing investments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch admin stats"})
	}

	invested := decimal.Zero
	if totalInvested.Valid {
		invested = totalInvested.Decimal
	}

	return c.JSON(fiber.Map{
		"totalUsers":         totalUsers,
		"pendingInvestments": pendingInvestments,
		"pendingWithdrawals": pendingWithdrawals,
		"totalInvested":      invested.StringFixed(2),
	})
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
