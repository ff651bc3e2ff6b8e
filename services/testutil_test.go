package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens GORM over a sqlmock connection. Expectations are matched
// as regexps against the generated SQL, in order.
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

var userColumns = []string{
	"id", "email", "first_name", "last_name", "profile_image_url",
	"balance", "trial_balance", "trial_start_date", "trial_end_date",
	"is_investor", "investment_amount", "referral_code", "referred_by",
	"is_admin", "created_at", "updated_at",
}
