// services/approval_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"cryptopay-platform/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRequestNotFound     = errors.New("request not found")
	ErrAlreadyProcessed    = errors.New("request already processed")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ApprovalService owns the pending -> approved/rejected transitions for
// investments and withdrawals, and all side effects those transitions carry.
// Each transition runs in a single transaction and is claimed with a
// conditional status update, so the side-effect sequence can never run twice
// for the same request.
type ApprovalService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Referral *ReferralService
}

func NewApprovalService(db *gorm.DB, ledger *LedgerService, referral *ReferralService) *ApprovalService {
	return &ApprovalService{DB: db, Ledger: ledger, Referral: referral}
}

// ApproveInvestment flips the investment to approved and, atomically with the
// flip: marks the owner an investor, adds the amount to their cumulative
// investment, credits their balance, and pays the referral chain.
func (s *ApprovalService) ApproveInvestment(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var inv models.Investment
		if err := tx.First(&inv, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if err := claimInvestment(tx, id, models.InvestmentStatusApproved); err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", inv.UserID).
			Updates(map[string]interface{}{
				"is_investor":       true,
				"investment_amount": gorm.Expr("investment_amount + ?", inv.Amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		desc := fmt.Sprintf("Investment approved - %s", inv.PaymentMethod)
		if err := s.Ledger.Credit(tx, inv.UserID, inv.Amount, models.TransactionTypeInvestment, desc); err != nil {
			return err
		}

		return s.Referral.PayInvestmentRewards(tx, inv.UserID)
	})
}

// RejectInvestment flips the investment to rejected. No balance side effect.
func (s *ApprovalService) RejectInvestment(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return claimInvestment(tx, id, models.InvestmentStatusRejected)
	})
}

// ApproveWithdrawal flips the withdrawal to approved and debits the owner's
// balance. Sufficiency is re-validated here under a row lock: the balance may
// have drifted since submission.
func (s *ApprovalService) ApproveWithdrawal(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var wd models.Withdrawal
		if err := tx.First(&wd, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		if err := claimWithdrawal(tx, id, models.WithdrawalStatusApproved); err != nil {
			return err
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", wd.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.Balance.LessThan(wd.Amount) {
			return ErrInsufficientBalance
		}

		desc := fmt.Sprintf("Withdrawal approved - JazzCash: %s", wd.WalletNumber)
		return s.Ledger.Debit(tx, wd.UserID, wd.Amount, models.TransactionTypeWithdrawal, desc)
	})
}

// RejectWithdrawal flips the withdrawal to rejected. No balance side effect.
func (s *ApprovalService) RejectWithdrawal(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return claimWithdrawal(tx, id, models.WithdrawalStatusRejected)
	})
}

// claimInvestment performs the one-way transition out of pending. Zero rows
// affected means the row is gone or the transition already happened.
func claimInvestment(tx *gorm.DB, id string, to models.InvestmentStatus) error {
	res := tx.Model(&models.Investment{}).
		Where("id = ? AND status = ?", id, models.InvestmentStatusPending).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

func claimWithdrawal(tx *gorm.DB, id string, to models.WithdrawalStatus) error {
	res := tx.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, models.WithdrawalStatusPending).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

// --- Admin handlers ---

// ReviewInvestment handles POST /admin/investments/:id/:action.
func (s *ApprovalService) ReviewInvestment(c *fiber.Ctx) error {
	id := c.Params("id")
	action := c.Params("action")

	var err error
	switch action {
	case "approve":
		err = s.ApproveInvestment(id)
	case "reject":
		err = s.RejectInvestment(id)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid action"})
	}

	if err != nil {
		return reviewError(c, "investment", action, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Investment %sd successfully", action)})
}

// ReviewWithdrawal handles POST /admin/withdrawals/:id/:action.
func (s *ApprovalService) ReviewWithdrawal(c *fiber.Ctx) error {
	id := c.Params("id")
	action := c.Params("action")

	var err error
	switch action {
	case "approve":
		err = s.ApproveWithdrawal(id)
	case "reject":
		err = s.RejectWithdrawal(id)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid action"})
	}

	if err != nil {
		return reviewError(c, "withdrawal", action, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Withdrawal %sd successfully", action)})
}

func reviewError(c *fiber.Ctx, kind, action string, err error) error {
	switch {
	case errors.Is(err, ErrRequestNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("%s not found", kind)})
	case errors.Is(err, ErrAlreadyProcessed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": fmt.Sprintf("%s already processed", kind)})
	case errors.Is(err, ErrInsufficientBalance):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User balance no longer covers this withdrawal"})
	}
	log.Printf("DB Error on %s %s: %v", kind, action, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("Failed to %s %s", action, kind)})
}
