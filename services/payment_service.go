// services/payment_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"cryptopay-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var minInvestmentAmount = decimal.NewFromInt(30)

type PaymentService struct {
	DB       *gorm.DB
	JazzCash *JazzCashClient
}

func NewPaymentService(db *gorm.DB, jazzCash *JazzCashClient) *PaymentService {
	return &PaymentService{DB: db, JazzCash: jazzCash}
}

// InitiatePayment handles POST /payment/jazzcash: records the attempt, calls
// the gateway synchronously, and on success auto-creates a pending investment.
// Gateway success never releases funds by itself — approval stays manual.
func (s *PaymentService) InitiatePayment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		Amount   string `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.FullName == "" || len(req.Phone) < 10 || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Full name, phone and email are required"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThan(minInvestmentAmount) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Minimum amount is $30"})
	}

	merchantTxnID := GenerateMerchantTransactionID()

	payment := &models.JazzCashPayment{
		ID:                    uuid.NewString(),
		UserID:                userID,
		MerchantTransactionID: merchantTxnID,
		Amount:                amount,
		Phone:                 req.Phone,
		Email:                 req.Email,
		FullName:              req.FullName,
		Status:                models.PaymentStatusPending,
	}
	if err := s.DB.Create(payment).Error; err != nil {
		log.Printf("DB Error creating payment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment"})
	}

	result, err := s.JazzCash.DoTransaction(PaymentRequest{
		MerchantTransactionID: merchantTxnID,
		Amount:                amount,
		Phone:                 req.Phone,
		Email:                 req.Email,
		FullName:              req.FullName,
	})
	if err != nil {
		log.Printf("JazzCash request failed for %s: %v", merchantTxnID, err)
		if dbErr := s.markPayment(merchantTxnID, models.PaymentStatusFailed, nil); dbErr != nil {
			log.Printf("DB Error marking payment failed: %v", dbErr)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment processing failed, please try again",
		})
	}

	if !result.Success {
		if dbErr := s.markPayment(merchantTxnID, models.PaymentStatusFailed, result.Raw); dbErr != nil {
			log.Printf("DB Error marking payment failed: %v", dbErr)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment processing failed, please try again",
		})
	}

	// success: record it and open a pending investment for manual approval
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		investment := &models.Investment{
			ID:            uuid.NewString(),
			UserID:        userID,
			FullName:      req.FullName,
			WalletNumber:  req.Phone,
			Amount:        amount,
			PaymentMethod: "jazzcash",
			Status:        models.InvestmentStatusPending,
		}
		if err := tx.Create(investment).Error; err != nil {
			return err
		}

		return s.updatePayment(tx, merchantTxnID, models.PaymentStatusSuccess, result.Raw, map[string]interface{}{
			"transaction_id": result.Raw["pp_TxnRefNo"],
			"investment_id":  investment.ID,
		})
	})
	if err != nil {
		log.Printf("DB Error finalizing payment %s: %v", merchantTxnID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment"})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "Payment processed successfully",
		"transactionId": merchantTxnID,
	})
}

// HandleCallback handles the server-to-server POST from JazzCash. The hash is
// verified before anything else; a mismatch leaves the payment row untouched.
// The response is always a redirect back to the frontend.
func (s *PaymentService) HandleCallback(c *fiber.Ctx) error {
	params := map[string]string{}
	if form, err := c.MultipartForm(); err == nil {
		for k, vs := range form.Value {
			if len(vs) > 0 {
				params[k] = vs[0]
			}
		}
	} else {
		c.Context().PostArgs().VisitAll(func(k, v []byte) {
			params[string(k)] = string(v)
		})
	}

	if !s.JazzCash.VerifyCallback(params) {
		log.Printf("[CALLBACK] hash mismatch for txn %s, ignoring", params["pp_TxnRefNo"])
		return c.Status(fiber.StatusBadRequest).SendString("Invalid signature")
	}

	merchantTxnID := params["pp_TxnRefNo"]
	status := models.PaymentStatusFailed
	if params["pp_ResponseCode"] == "000" {
		status = models.PaymentStatusSuccess
	}

	if err := s.markPayment(merchantTxnID, status, params); err != nil {
		log.Printf("DB Error applying callback for %s: %v", merchantTxnID, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Callback processing failed")
	}

	return c.Redirect(fmt.Sprintf("/?payment=%s&txn=%s", status, merchantTxnID))
}

// GetPayment handles GET /payment/:merchantTransactionId, owner-only.
func (s *PaymentService) GetPayment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	merchantTxnID := c.Params("merchantTransactionId")

	var payment models.JazzCashPayment
	if err := s.DB.First(&payment, "merchant_transaction_id = ?", merchantTxnID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		log.Printf("DB Error fetching payment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payment"})
	}

	if payment.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	return c.JSON(payment)
}

func (s *PaymentService) markPayment(merchantTxnID string, status models.PaymentStatus, raw map[string]string) error {
	return s.updatePayment(s.DB, merchantTxnID, status, raw, nil)
}

func (s *PaymentService) updatePayment(tx *gorm.DB, merchantTxnID string, status models.PaymentStatus, raw map[string]string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": status}
	if raw != nil {
		encoded, err := json.Marshal(raw)
		if err == nil {
			updates["raw_response"] = string(encoded)
		}
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&models.JazzCashPayment{}).
		Where("merchant_transaction_id = ?", merchantTxnID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ExpireStalePayments cancels pending attempts older than the gateway's own
// 30-minute transaction expiry. Called by the scheduler.
func (s *PaymentService) ExpireStalePayments(olderThan time.Time) (int64, error) {
	res := s.DB.Model(&models.JazzCashPayment{}).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, olderThan).
		Update("status", models.PaymentStatusCancelled)
	return res.RowsAffected, res.Error
}
