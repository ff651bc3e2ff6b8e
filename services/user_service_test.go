package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferralCodeFormat(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Regexp(t, `^CRP-\d{6}-[0-9A-Z]{3}$`, GenerateReferralCode())
	}
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Jane Doe")
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "Doe", last)

	first, last = splitName("Prince")
	assert.Equal(t, "Prince", first)
	assert.Equal(t, "", last)

	first, last = splitName("  Ana de la Cruz ")
	assert.Equal(t, "Ana", first)
	assert.Equal(t, "de la Cruz", last)

	first, last = splitName("")
	assert.Equal(t, "", first)
	assert.Equal(t, "", last)
}

func TestEnsureUserReturnsExistingRow(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow("user-1", "", "50.00"))

	user, err := svc.EnsureUser("user-1", "user-1@example.com", "Test", "User")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "50", user.Balance.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureUserCreatesWithSignupGrants(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	// gateway principal ids are opaque strings, not UUIDs
	principalID := "google-oauth2|103254698745632100258"
	mock.ExpectExec(`INSERT INTO "users"`).
		WithArgs(principalID, "new@example.com", "New", "User", "",
			"0", "100", sqlmock.AnyArg(), sqlmock.AnyArg(),
			false, "0", sqlmock.AnyArg(), "",
			false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := svc.EnsureUser(principalID, "new@example.com", "New", "User")
	require.NoError(t, err)
	assert.Equal(t, principalID, user.ID)
	assert.True(t, user.Balance.IsZero())
	assert.Equal(t, "100", user.TrialBalance.String())
	assert.Regexp(t, `^CRP-`, user.ReferralCode)
	assert.Equal(t, 72*time.Hour, user.TrialEndDate.Sub(user.TrialStartDate))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsAssemblesDashboardBlock(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow("user-1", "", "42.50"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "referrals"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	stats, err := svc.Stats("user-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "42.50", stats.TotalBalance)
	assert.Equal(t, "100.00", stats.TrialBalance)
	assert.Equal(t, int64(4), stats.ReferralCount)
	assert.True(t, stats.IsTrialActive)
	assert.Equal(t, 3, stats.DaysLeft)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := svc.Stats("missing", time.Now())
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
