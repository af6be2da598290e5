package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

// unit is one whole currency unit in minor units.
const unit int64 = 1_000_000

var testFees = model.Fees{RegistrationFee: unit / 100, ClaimFee: unit / 200}

// newLedger returns a test database with fees initialized.
func newLedger(t *testing.T) *sql.DB {
	t.Helper()
	database := db.NewTestDB(t)
	_, err := InitFees(context.Background(), database, testFees)
	require.NoError(t, err)
	return database
}

// newFundedUser creates a user whose wallet holds balance.
func newFundedUser(t *testing.T, database *sql.DB, username string, balance int64) *model.User {
	t.Helper()
	ctx := context.Background()

	user, err := CreateUser(ctx, database, username, "hash", model.RoleUser)
	require.NoError(t, err)
	if balance > 0 {
		_, err = Deposit(ctx, database, user.ID, balance)
		require.NoError(t, err)
	}
	return user
}

func balanceOf(t *testing.T, database *sql.DB, userID int64) int64 {
	t.Helper()
	w, err := GetWallet(context.Background(), database, userID)
	require.NoError(t, err)
	return w.Balance
}

func requireAuditClean(t *testing.T, database *sql.DB) {
	t.Helper()
	report, err := Audit(context.Background(), database)
	require.NoError(t, err)
	require.Empty(t, report.Problems)
}
