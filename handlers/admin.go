// handlers/admin.go
package handlers

import (
	"cryptopay-platform/middleware"
	"cryptopay-platform/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupAdminRoutes wires the approval-authority endpoints. All of them sit
// behind both the user context and the is_admin check.
func SetupAdminRoutes(
	app *fiber.App,
	db *gorm.DB,
	userService *services.UserService,
	investmentService *services.InvestmentService,
	withdrawalService *services.WithdrawalService,
	approvalService *services.ApprovalService,
) {
	admin := app.Group("/api/admin", middleware.UserContextMiddleware(), middleware.AdminMiddleware(db))

	admin.Get("/stats", userService.GetAdminStats)
	admin.Get("/investments", investmentService.GetAllInvestments)
	admin.Get("/withdrawals", withdrawalService.GetAllWithdrawals)

	admin.Post("/investments/:id/:action", approvalService.ReviewInvestment)
	admin.Post("/withdrawals/:id/:action", approvalService.ReviewWithdrawal)
}
