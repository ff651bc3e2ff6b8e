// services/referral_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"cryptopay-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fixed commissions per chain level, flat regardless of investment size.
var referralLevelRewards = []decimal.Decimal{
	decimal.NewFromFloat(5.00), // level 1, the direct referrer
	decimal.NewFromFloat(2.00), // level 2
	decimal.NewFromFloat(1.00), // level 3
}

var ErrReferralAlreadyLinked = errors.New("user already has a referrer")

type ReferralService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewReferralService(db *gorm.DB, ledger *LedgerService) *ReferralService {
	return &ReferralService{DB: db, Ledger: ledger}
}

// PayInvestmentRewards walks the up-line referral chain of the investor and
// pays the fixed commission for each existing level. The walk is a bounded
// loop, never recursion: at most three hops, stopping early when an ancestor
// has no referrer. Runs on the caller's tx — the approval workflow calls it
// inside the same transaction that credits the investor.
func (s *ReferralService) PayInvestmentRewards(tx *gorm.DB, investorID string) error {
	var investor models.User
	if err := tx.First(&investor, "id = ?", investorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	currentID := investor.ReferredBy
	for level := 1; level <= len(referralLevelRewards); level++ {
		if currentID == "" {
			break
		}

		var referrer models.User
		if err := tx.First(&referrer, "id = ?", currentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// dangling back-reference; stop the walk rather than fail the approval
				log.Printf("[REFERRAL] referrer %s not found at level %d, stopping walk", currentID, level)
				break
			}
			return err
		}

		reward := referralLevelRewards[level-1]
		referral := &models.Referral{
			ID:         uuid.NewString(),
			ReferrerID: referrer.ID,
			ReferredID: investorID,
			Level:      level,
			Reward:     reward,
			RewardPaid: true,
		}
		if err := tx.Create(referral).Error; err != nil {
			return err
		}

		desc := fmt.Sprintf("Level %d referral reward", level)
		if err := s.Ledger.Credit(tx, referrer.ID, reward, models.TransactionTypeReferralReward, desc); err != nil {
			return err
		}

		currentID = referrer.ReferredBy
	}

	return nil
}

// Link resolves a referral code to its owner and sets referred_by on the
// joining user. The back-reference is set at most once and never overwritten.
func (s *ReferralService) Link(userID, referralCode string) error {
	var referrer models.User
	if err := s.DB.First(&referrer, "referral_code = ?", referralCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if referrer.ID == userID {
		return ErrReferralAlreadyLinked
	}

	res := s.DB.Model(&models.User{}).
		Where("id = ? AND (referred_by IS NULL OR referred_by = '')", userID).
		Update("referred_by", referrer.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReferralAlreadyLinked
	}
	return nil
}

// --- Handlers ---

// GetReferralStats returns per-level referral counts and total paid earnings
// for the authenticated user.
func (s *ReferralService) GetReferralStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	counts := make([]int64, len(referralLevelRewards))
	for i := range counts {
		if err := s.DB.Model(&models.Referral{}).
			Where("referrer_id = ? AND level = ?", userID, i+1).
			Count(&counts[i]).Error; err != nil {
			log.Printf("DB Error counting referrals: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch referral stats"})
		}
	}

	var totalEarnings decimal.NullDecimal
	if err := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ? AND reward_paid = ?", userID, true).
		Select("SUM(reward)").
		Scan(&totalEarnings).Error; err != nil {
		log.Printf("DB Error summing referral earnings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch referral stats"})
	}

	earnings := decimal.Zero
	if totalEarnings.Valid {
		earnings = totalEarnings.Decimal
	}

	return c.JSON(fiber.Map{
		"level1Count":   counts[0],
		"level2Count":   counts[1],
		"level3Count":   counts[2],
		"totalEarnings": earnings.StringFixed(2),
	})
}

// JoinReferral links the authenticated user to the owner of the supplied
// referral code.
func (s *ReferralService) JoinReferral(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		ReferralCode string `json:"referralCode"`
	}
	if err := c.BodyParser(&req); err != nil || req.ReferralCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Referral code required"})
	}

	if err := s.Link(userID, req.ReferralCode); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invalid referral code"})
		case errors.Is(err, ErrReferralAlreadyLinked):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User already has a referrer"})
		}
		log.Printf("DB Error linking referral: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join referral"})
	}

	return c.JSON(fiber.Map{"message": "Referral link established"})
}
