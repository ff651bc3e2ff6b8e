// services/investment_service.go
package services

import (
	"log"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"cryptopay-platform/models"
	"cryptopay-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pakistani mobile-wallet numbers: 11 digits starting 03.
var walletNumberPattern = regexp.MustCompile(`^03\d{9}$`)

const maxScreenshotSize = 10 * 1024 * 1024 // 10MB

type InvestmentService struct {
	DB *gorm.DB
}

func NewInvestmentService(db *gorm.DB) *InvestmentService {
	return &InvestmentService{DB: db}
}

// SubmitInvestment handles the manual deposit form: multipart with an
// optional payment screenshot. Creates a pending investment; funds move only
// on admin approval.
func (s *InvestmentService) SubmitInvestment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	fullName := strings.TrimSpace(c.FormValue("fullName"))
	walletNumber := strings.TrimSpace(c.FormValue("walletNumber"))
	paymentMethod := strings.TrimSpace(c.FormValue("paymentMethod"))

	if fullName == "" || paymentMethod == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Full name and payment method are required"})
	}
	if !walletNumberPattern.MatchString(walletNumber) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid wallet number"})
	}

	amount, err := decimal.NewFromString(c.FormValue("amount"))
	if err != nil || amount.LessThan(minInvestmentAmount) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Minimum investment is $30"})
	}

	screenshotURL := ""
	if file, err := c.FormFile("screenshot"); err == nil && file.Size > 0 {
		screenshotURL, err = s.storeScreenshot(file, fullName)
		if err != nil {
			if err == errBadScreenshot {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Screenshot must be an image under 10MB"})
			}
			log.Printf("Screenshot upload failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store screenshot"})
		}
	}

	investment := &models.Investment{
		ID:            uuid.NewString(),
		UserID:        userID,
		FullName:      fullName,
		WalletNumber:  walletNumber,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		ScreenshotURL: screenshotURL,
		Status:        models.InvestmentStatusPending,
	}
	if err := s.DB.Create(investment).Error; err != nil {
		log.Printf("DB Error creating investment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create investment request"})
	}

	return c.JSON(fiber.Map{"message": "Investment request submitted successfully", "investment": investment})
}

var errBadScreenshot = fiber.NewError(fiber.StatusBadRequest, "bad screenshot")

func (s *InvestmentService) storeScreenshot(file *multipart.FileHeader, fullName string) (string, error) {
	if file.Size > maxScreenshotSize {
		return "", errBadScreenshot
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return "", errBadScreenshot
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := "screenshots/" + slug.Make(fullName) + "-" + uuid.NewString() + ext

	if utils.R2Enabled() {
		return utils.UploadFileToR2(file, key)
	}

	// local fallback when R2 is not configured
	localPath := utils.GetUploadPath(key)
	if err := utils.SaveFile(file, localPath); err != nil {
		return "", err
	}
	return "/" + localPath, nil
}

// GetInvestments lists the authenticated user's investment requests.
func (s *InvestmentService) GetInvestments(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var investments []models.Investment
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&investments).Error; err != nil {
		log.Printf("DB Error fetching investments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch investments"})
	}
	return c.JSON(investments)
}

// GetAllInvestments lists every investment request (admin).
func (s *InvestmentService) GetAllInvestments(c *fiber.Ctx) error {
	var investments []models.Investment
	if err := s.DB.Order("created_at DESC").Find(&investments).Error; err != nil {
		log.Printf("DB Error fetching all investments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch investments"})
	}
	return c.JSON(investments)
}
