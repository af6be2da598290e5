package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditCountsChecks(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", unit)
	newFundedUser(t, database, "bob", 0)

	_, err := RegisterItem(ctx, database, alice.ID, "Scarf", "Park", 10, 10+testFees.RegistrationFee)
	require.NoError(t, err)

	report, err := Audit(ctx, database)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 1, report.ItemsChecked)
	assert.Equal(t, 2, report.WalletsChecked)
}

func TestAuditDetectsTampering(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", unit)

	_, err := RegisterItem(ctx, database, alice.ID, "Scarf", "Park", 10, 10+testFees.RegistrationFee)
	require.NoError(t, err)

	_, err = database.ExecContext(ctx, `UPDATE items SET escrow = 5 WHERE id = 1`)
	require.NoError(t, err)
	_, err = database.ExecContext(ctx, `UPDATE wallets SET balance = balance + 1 WHERE user_id = ?`, alice.ID)
	require.NoError(t, err)

	report, err := Audit(ctx, database)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Len(t, report.Problems, 3)
}
