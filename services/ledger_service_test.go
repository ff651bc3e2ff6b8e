package services

import (
	"testing"

	"cryptopay-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditAppliesDeltaAndLogsTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewLedgerService(db)

	mock.ExpectExec(`UPDATE "users" SET "balance"=balance \+ \$1`).
		WithArgs("30", sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "transactions"`).
		WithArgs(sqlmock.AnyArg(), "user-1", models.TransactionTypeInvestment, "30", "Investment approved - easypaisa", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ledger.Credit(db, "user-1", decimal.NewFromInt(30), models.TransactionTypeInvestment, "Investment approved - easypaisa")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitLogsNegativeAmount(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewLedgerService(db)

	mock.ExpectExec(`UPDATE "users" SET "balance"=balance \+ \$1`).
		WithArgs("-100", sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "transactions"`).
		WithArgs(sqlmock.AnyArg(), "user-1", models.TransactionTypeWithdrawal, "-100", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ledger.Debit(db, "user-1", decimal.NewFromInt(100), models.TransactionTypeWithdrawal, "Withdrawal approved - JazzCash: 03001234567")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	ledger := NewLedgerService(db)

	mock.ExpectExec(`UPDATE "users" SET "balance"=balance \+ \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ledger.Credit(db, "nobody", decimal.NewFromInt(5), models.TransactionTypeTaskReward, "reward")
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	db, _ := newMockDB(t)
	ledger := NewLedgerService(db)

	err := ledger.Credit(db, "user-1", decimal.Zero, models.TransactionTypeTaskReward, "zero")
	assert.ErrorIs(t, err, ErrNonPositiveDelta)

	err = ledger.Debit(db, "user-1", decimal.NewFromInt(-5), models.TransactionTypeWithdrawal, "negative")
	assert.ErrorIs(t, err, ErrNonPositiveDelta)
}
