package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	// First call should generate a secret.
	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	// Second call should return the same secret.
	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestInitFeesIsWriteOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := GetFees(ctx, database)
	require.Error(t, err, "fees are unset before init")

	fees, err := InitFees(ctx, database, model.Fees{RegistrationFee: 10, ClaimFee: 5})
	require.NoError(t, err)
	assert.Equal(t, model.Fees{RegistrationFee: 10, ClaimFee: 5}, fees)

	fees, err = InitFees(ctx, database, model.Fees{RegistrationFee: 99, ClaimFee: 99})
	require.NoError(t, err)
	assert.Equal(t, model.Fees{RegistrationFee: 10, ClaimFee: 5}, fees)

	stored, err := GetFees(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, fees, stored)
}

func TestInitFeesRejectsNegative(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := InitFees(context.Background(), database, model.Fees{RegistrationFee: -1})
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestItemCountStartsAtZero(t *testing.T) {
	database := db.NewTestDB(t)

	count, err := ItemCount(context.Background(), database)
	require.NoError(t, err)
	assert.Zero(t, count)
}
