// cryptopay-platform/middleware/auth.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the authenticated principal forwarded by the
// gateway. Every business route requires a stable user id; session issuance
// itself lives upstream.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			log.Printf("🚫 [USER_CTX] missing X-User-ID on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("user_email", c.Get("X-User-Email"))
		c.Locals("user_name", c.Get("X-User-Name"))

		return c.Next()
	}
}
