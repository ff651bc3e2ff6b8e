// cryptopay-platform/middleware/admin.go
package middleware

import (
	"errors"
	"log"

	"cryptopay-platform/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminMiddleware gates money-movement approval routes. The is_admin flag is
// elevated out of band; a non-admin caller gets a generic denial.
func AdminMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
			}
			log.Printf("DB Error loading user for admin check: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		if !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
		}

		return c.Next()
	}
}
