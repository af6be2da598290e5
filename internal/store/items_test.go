package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/model"
)

func TestRegisterAndGetItem(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", 5*unit)

	item, err := RegisterItem(ctx, database, alice.ID, "Black leather wallet", "Central station", unit, unit+testFees.RegistrationFee)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Black leather wallet", got.Description)
	assert.Equal(t, "Central station", got.Location)
	assert.Equal(t, int64(unit), got.Reward)
	assert.Equal(t, int64(unit), got.Escrow)
	assert.Equal(t, model.ItemStatusOpen, got.Status)
	assert.Equal(t, model.NoFinder, got.FinderID)
	assert.Empty(t, got.Finder)
	assert.Equal(t, alice.ID, got.OwnerID)
	assert.Equal(t, "alice", got.Owner)
	assert.False(t, got.CreatedAt.IsZero())

	count, err := ItemCount(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Fee and reward leave the wallet.
	assert.Equal(t, int64(4*unit-testFees.RegistrationFee), balanceOf(t, database, alice.ID))
	requireAuditClean(t, database)
}

func TestRegisterRefundsExcess(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", 5*unit)

	_, err := RegisterItem(ctx, database, alice.ID, "Keys", "Library", unit, 3*unit)
	require.NoError(t, err)

	assert.Equal(t, int64(4*unit-testFees.RegistrationFee), balanceOf(t, database, alice.ID))

	revenue, err := Revenue(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, testFees.RegistrationFee, revenue)

	history, err := GetItemHistory(ctx, database, 1)
	require.NoError(t, err)
	kinds := make([]model.EntryKind, 0, len(history))
	var sum int64
	for _, e := range history {
		kinds = append(kinds, e.Kind)
		sum += e.Delta
	}
	assert.Equal(t, []model.EntryKind{model.EntryPayment, model.EntryFee, model.EntryEscrowHold, model.EntryRefund}, kinds)
	assert.Zero(t, sum)
	requireAuditClean(t, database)
}

func TestRegisterIdsAreDense(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", 10*unit)
	price := unit / 10

	for want := int64(1); want <= 3; want++ {
		item, err := RegisterItem(ctx, database, alice.ID, "Glove", "Park", price, price+testFees.RegistrationFee)
		require.NoError(t, err)
		assert.Equal(t, want, item.ID)

		// A rejected registration must not consume an id.
		_, err = RegisterItem(ctx, database, alice.ID, "", "Park", price, price+testFees.RegistrationFee)
		require.ErrorIs(t, err, model.ErrInvalidInput)
	}

	count, err := ItemCount(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	requireAuditClean(t, database)
}

func TestRegisterRejectionsLeaveNoTrace(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", unit)

	tests := []struct {
		name     string
		desc     string
		location string
		reward   int64
		payment  int64
		want     error
	}{
		{"empty description", "", "Park", 100, 100 + testFees.RegistrationFee, model.ErrInvalidInput},
		{"empty location", "Scarf", " ", 100, 100 + testFees.RegistrationFee, model.ErrInvalidInput},
		{"negative reward", "Scarf", "Park", -5, testFees.RegistrationFee, model.ErrInvalidInput},
		{"fee not covered", "Scarf", "Park", 100, 100, model.ErrInsufficientPayment},
		{"wallet too small", "Scarf", "Park", unit, unit + testFees.RegistrationFee, model.ErrInsufficientPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RegisterItem(ctx, database, alice.ID, tt.desc, tt.location, tt.reward, tt.payment)
			require.ErrorIs(t, err, tt.want)
		})
	}

	count, err := ItemCount(ctx, database)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, int64(unit), balanceOf(t, database, alice.ID))
	requireAuditClean(t, database)
}

func TestRegisterByDeletedUser(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", unit)
	require.NoError(t, DeleteUser(ctx, database, alice.ID))

	_, err := RegisterItem(ctx, database, alice.ID, "Scarf", "Park", 0, testFees.RegistrationFee)
	require.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestGetItemOutOfRange(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", unit)

	_, err := RegisterItem(ctx, database, alice.ID, "Scarf", "Park", 0, testFees.RegistrationFee)
	require.NoError(t, err)

	for _, id := range []int64{-1, 0, 2} {
		_, err := GetItem(ctx, database, id)
		assert.ErrorIs(t, err, model.ErrNotFound, "id %d", id)
	}
}

func TestListItemsByStatus(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", unit)
	bob := newFundedUser(t, database, "bob", unit)

	RegisterItem(ctx, database, alice.ID, "Scarf", "Park", 0, testFees.RegistrationFee)
	RegisterItem(ctx, database, alice.ID, "Hat", "Park", 0, testFees.RegistrationFee)
	_, err := ReportFound(ctx, database, bob.ID, 2, testFees.ClaimFee)
	require.NoError(t, err)

	all, err := ListItems(ctx, database, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)

	open, err := ListItems(ctx, database, model.ItemStatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Scarf", open[0].Description)

	found, err := ListItems(ctx, database, model.ItemStatusFoundReported)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bob", found[0].Finder)

	_, err = ListItems(ctx, database, "lost")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestItemImage(t *testing.T) {
	database := newLedger(t)
	ctx := context.Background()
	alice := newFundedUser(t, database, "alice", unit)
	bob := newFundedUser(t, database, "bob", unit)

	item, err := RegisterItem(ctx, database, alice.ID, "Photo Item", "Park", 0, testFees.RegistrationFee)
	require.NoError(t, err)

	err = SetItemImage(ctx, database, bob.ID, item.ID, []byte("fake image data"), "image/jpeg")
	require.ErrorIs(t, err, model.ErrUnauthorized)

	require.NoError(t, SetItemImage(ctx, database, alice.ID, item.ID, []byte("fake image data"), "image/jpeg"))

	data, mime, err := GetItemImage(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "fake image data", string(data))
	assert.Equal(t, "image/jpeg", mime)

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.True(t, got.HasImage)

	// Photos are frozen once the item leaves the open state.
	_, err = ReportFound(ctx, database, bob.ID, item.ID, testFees.ClaimFee)
	require.NoError(t, err)
	err = SetItemImage(ctx, database, alice.ID, item.ID, []byte("other"), "image/jpeg")
	require.ErrorIs(t, err, model.ErrInvalidState)
}
