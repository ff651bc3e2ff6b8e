// services/withdrawal_service.go
package services

import (
	"errors"
	"log"
	"strings"

	"cryptopay-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var minWithdrawalAmount = decimal.NewFromInt(100)

type WithdrawalService struct {
	DB *gorm.DB
}

func NewWithdrawalService(db *gorm.DB) *WithdrawalService {
	return &WithdrawalService{DB: db}
}

// SubmitWithdrawal validates eligibility and creates a pending withdrawal.
// Violations reject with zero rows created: the caller must be an investor,
// hold at least the minimum balance, and not request more than they hold.
func (s *WithdrawalService) SubmitWithdrawal(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		FullName     string `json:"fullName"`
		WalletNumber string `json:"walletNumber"`
		Amount       string `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.WalletNumber = strings.TrimSpace(req.WalletNumber)
	if req.FullName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Full name is required"})
	}
	if !walletNumberPattern.MatchString(req.WalletNumber) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid wallet number"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThan(minWithdrawalAmount) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Minimum withdrawal is $100"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("DB Error fetching user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create withdrawal request"})
	}

	if !user.IsInvestor {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Investment required before withdrawal"})
	}
	if user.Balance.LessThan(minWithdrawalAmount) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Minimum balance of $100 required for withdrawal"})
	}
	if amount.GreaterThan(user.Balance) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient balance"})
	}

	withdrawal := &models.Withdrawal{
		ID:           uuid.NewString(),
		UserID:       userID,
		FullName:     req.FullName,
		WalletNumber: req.WalletNumber,
		Amount:       amount,
		Status:       models.WithdrawalStatusPending,
	}
	if err := s.DB.Create(withdrawal).Error; err != nil {
		log.Printf("DB Error creating withdrawal: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create withdrawal request"})
	}

	return c.JSON(fiber.Map{
		"message":    "Withdrawal request submitted successfully. Manual approval within 10 working days.",
		"withdrawal": withdrawal,
	})
}

// GetWithdrawals lists the authenticated user's withdrawal requests.
func (s *WithdrawalService) GetWithdrawals(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var withdrawals []models.Withdrawal
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&withdrawals).Error; err != nil {
		log.Printf("DB Error fetching withdrawals: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch withdrawals"})
	}
	return c.JSON(withdrawals)
}

// GetAllWithdrawals lists every withdrawal request (admin).
func (s *WithdrawalService) GetAllWithdrawals(c *fiber.Ctx) error {
	var withdrawals []models.Withdrawal
	if err := s.DB.Order("created_at DESC").Find(&withdrawals).Error; err != nil {
		log.Printf("DB Error fetching all withdrawals: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch withdrawals"})
	}
	return c.JSON(withdrawals)
}
