package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func userRow(id, referredBy string, balance string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).AddRow(
		id, id+"@example.com", "", "", "",
		balance, "100.00", now, now.Add(72*time.Hour),
		false, "0.00", "CRP-000000-"+id, referredBy,
		false, now, now,
	)
}

// expectLevelPayout matches one full chain step: referrer lookup, referral
// row, balance credit, ledger entry.
func expectLevelPayout(mock sqlmock.Sqlmock, referrerID, nextReferrer, investorID string, level int, reward string) {
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow(referrerID, nextReferrer, "0.00"))
	mock.ExpectExec(`INSERT INTO "referrals"`).
		WithArgs(sqlmock.AnyArg(), referrerID, investorID, level, reward, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET "balance"=balance \+ \$1`).
		WithArgs(reward, sqlmock.AnyArg(), referrerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "transactions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestPayInvestmentRewardsThreeLevels(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReferralService(db, NewLedgerService(db))

	// chain A <- B <- C <- D; D's investment was approved
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow("D", "C", "0.00"))
	expectLevelPayout(mock, "C", "B", "D", 1, "5")
	expectLevelPayout(mock, "B", "A", "D", 2, "2")
	expectLevelPayout(mock, "A", "", "D", 3, "1")

	require.NoError(t, svc.PayInvestmentRewards(db, "D"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayInvestmentRewardsShortChain(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReferralService(db, NewLedgerService(db))

	// chain B <- C <- D: only two levels exist, nothing is paid for level 3
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow("D", "C", "0.00"))
	expectLevelPayout(mock, "C", "B", "D", 1, "5")
	expectLevelPayout(mock, "B", "", "D", 2, "2")

	require.NoError(t, svc.PayInvestmentRewards(db, "D"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPayInvestmentRewardsNoReferrer(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReferralService(db, NewLedgerService(db))

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow("D", "", "0.00"))

	require.NoError(t, svc.PayInvestmentRewards(db, "D"))
	require.NoError(t, mock.ExpectationsWereMet())
}
