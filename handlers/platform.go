// handlers/platform.go
package handlers

import (
	"cryptopay-platform/middleware"
	"cryptopay-platform/services"

	"github.com/gofiber/fiber/v2"
)

// SetupPlatformRoutes wires the user-facing business endpoints. Everything
// here requires the gateway-forwarded user context except the JazzCash
// callback, which is server-to-server and authenticated by its hash instead.
func SetupPlatformRoutes(
	app *fiber.App,
	userService *services.UserService,
	investmentService *services.InvestmentService,
	withdrawalService *services.WithdrawalService,
	taskService *services.TaskService,
	referralService *services.ReferralService,
	paymentService *services.PaymentService,
) {
	// 🔓 Gateway callback — verified by secure hash, not user context
	app.Post("/api/payment/callback", paymentService.HandleCallback)

	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Get("/auth/user", userService.GetCurrentUser)
	secured.Get("/dashboard/stats", userService.GetDashboardStats)
	secured.Get("/transactions", userService.GetTransactions)

	secured.Post("/jazzcash/invest", investmentService.SubmitInvestment)
	secured.Get("/investments", investmentService.GetInvestments)

	secured.Post("/jazzcash/withdraw", withdrawalService.SubmitWithdrawal)
	secured.Get("/withdrawals", withdrawalService.GetWithdrawals)

	secured.Get("/daily-tasks", taskService.GetDailyTasks)
	secured.Post("/daily-tasks/:id/complete", taskService.CompleteDailyTask)

	secured.Get("/referrals/stats", referralService.GetReferralStats)
	secured.Post("/referrals/join", referralService.JoinReferral)

	secured.Post("/payment/jazzcash", paymentService.InitiatePayment)
	secured.Get("/payment/:merchantTransactionId", paymentService.GetPayment)
}
