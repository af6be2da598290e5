package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
)

// Settings keys.
const (
	settingJWTSecret       = "jwt_secret"
	settingRegistrationFee = "registration_fee"
	settingClaimFee        = "claim_fee"
	settingItemCount       = "item_count"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	if err := setOnce(ctx, db, settingJWTSecret, hex.EncodeToString(buf)); err != nil {
		return "", err
	}
	return getSetting(ctx, db, settingJWTSecret)
}

// InitFees stores the fee schedule if none has been stored yet and returns
// the schedule in effect. Fees are fixed by the first call; later calls with
// different values return the stored schedule unchanged.
func InitFees(ctx context.Context, db *sql.DB, fees model.Fees) (model.Fees, error) {
	if fees.RegistrationFee < 0 || fees.ClaimFee < 0 {
		return model.Fees{}, model.Reject(model.KindInvalidInput, "fees must not be negative")
	}

	err := inTx(ctx, db, func(tx *sql.Tx) error {
		if err := setOnce(ctx, tx, settingRegistrationFee, strconv.FormatInt(fees.RegistrationFee, 10)); err != nil {
			return err
		}
		return setOnce(ctx, tx, settingClaimFee, strconv.FormatInt(fees.ClaimFee, 10))
	})
	if err != nil {
		return model.Fees{}, err
	}

	return GetFees(ctx, db)
}

// GetFees returns the stored fee schedule.
func GetFees(ctx context.Context, db *sql.DB) (model.Fees, error) {
	return getFees(ctx, db)
}

func getFees(ctx context.Context, q querier) (model.Fees, error) {
	var fees model.Fees
	var err error
	if fees.RegistrationFee, err = getIntSetting(ctx, q, settingRegistrationFee); err != nil {
		return model.Fees{}, err
	}
	if fees.ClaimFee, err = getIntSetting(ctx, q, settingClaimFee); err != nil {
		return model.Fees{}, err
	}
	return fees, nil
}

// ItemCount returns the number of items ever registered, which is also the
// highest item id.
func ItemCount(ctx context.Context, db *sql.DB) (int64, error) {
	return getIntSetting(ctx, db, settingItemCount)
}

// nextItemID bumps the item counter and returns the new value.
func nextItemID(ctx context.Context, tx *sql.Tx) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`UPDATE settings SET value = CAST(value AS INTEGER) + 1 WHERE key = ? RETURNING CAST(value AS INTEGER)`,
		settingItemCount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("incrementing item count: %w", err)
	}
	return id, nil
}

func setOnce(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

func getSetting(ctx context.Context, q querier, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %s not initialized", key)
	}
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}
	return value, nil
}

func getIntSetting(ctx context.Context, q querier, key string) (int64, error) {
	value, err := getSetting(ctx, q, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}
