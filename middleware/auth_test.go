package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(UserContextMiddleware())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"email":   c.Locals("user_email"),
		})
	})
	return app
}

func TestUserContextRejectsMissingHeader(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUserContextForwardsPrincipal(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("X-User-Email", "user-1@example.com")
	req.Header.Set("X-User-Name", "Test User")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func adminUserRow(isAdmin bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "first_name", "last_name", "profile_image_url",
		"balance", "trial_balance", "trial_start_date", "trial_end_date",
		"is_investor", "investment_amount", "referral_code", "referred_by",
		"is_admin", "created_at", "updated_at",
	}).AddRow(
		"user-1", "user-1@example.com", "", "", "",
		"0.00", "100.00", now, now.Add(72*time.Hour),
		false, "0.00", "CRP-000000-AAA", "",
		isAdmin, now, now,
	)
}

func newAdminApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	app.Use(UserContextMiddleware())
	app.Use(AdminMiddleware(db))
	app.Get("/admin-only", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAdminMiddlewareAllowsAdmin(t *testing.T) {
	db, mock := newMockDB(t)
	app := newAdminApp(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(adminUserRow(true))

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("X-User-ID", "user-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminMiddlewareRejectsNonAdmin(t *testing.T) {
	db, mock := newMockDB(t)
	app := newAdminApp(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(adminUserRow(false))

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("X-User-ID", "user-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminMiddlewareRejectsUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	app := newAdminApp(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("X-User-ID", "ghost")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
