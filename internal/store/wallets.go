package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// GetWallet returns a user's wallet. Users without any wallet activity have a
// zero balance.
func GetWallet(ctx context.Context, db *sql.DB, userID int64) (*model.Wallet, error) {
	w := &model.Wallet{UserID: userID}
	err := db.QueryRowContext(ctx,
		`SELECT balance, updated_at FROM wallets WHERE user_id = ?`, userID,
	).Scan(&w.Balance, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting wallet: %w", err)
	}
	return w, nil
}

// Deposit credits a user's wallet from the treasury.
func Deposit(ctx context.Context, db *sql.DB, userID, amount int64) (*model.Wallet, error) {
	if amount <= 0 {
		return nil, model.Reject(model.KindInvalidInput, "deposit must be positive")
	}

	err := inTx(ctx, db, func(tx *sql.Tx) error {
		active, err := isActiveUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !active {
			return model.Reject(model.KindNotFound, "user %d not found", userID)
		}

		if err := credit(ctx, tx, userID, amount); err != nil {
			return err
		}
		_, err = post(ctx, tx, nil,
			leg{model.AccountTreasury, model.EntryDeposit, -amount},
			leg{model.WalletAccount(userID), model.EntryDeposit, amount},
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return GetWallet(ctx, db, userID)
}

// Withdraw debits a user's wallet back to the treasury.
func Withdraw(ctx context.Context, db *sql.DB, userID, amount int64) (*model.Wallet, error) {
	if amount <= 0 {
		return nil, model.Reject(model.KindInvalidInput, "withdrawal must be positive")
	}

	err := inTx(ctx, db, func(tx *sql.Tx) error {
		if err := debit(ctx, tx, userID, amount); err != nil {
			return err
		}
		_, err := post(ctx, tx, nil,
			leg{model.WalletAccount(userID), model.EntryWithdrawal, -amount},
			leg{model.AccountTreasury, model.EntryWithdrawal, amount},
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return GetWallet(ctx, db, userID)
}

// Revenue returns the fee revenue collected and not yet swept.
func Revenue(ctx context.Context, db *sql.DB) (int64, error) {
	return accountBalance(ctx, db, model.AccountRevenue)
}

// SweepRevenue moves all collected fee revenue into a user's wallet and
// returns the amount moved.
func SweepRevenue(ctx context.Context, db *sql.DB, toUserID int64) (int64, error) {
	var swept int64
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		active, err := isActiveUser(ctx, tx, toUserID)
		if err != nil {
			return err
		}
		if !active {
			return model.Reject(model.KindNotFound, "user %d not found", toUserID)
		}

		swept, err = accountBalance(ctx, tx, model.AccountRevenue)
		if err != nil || swept == 0 {
			return err
		}

		if err := credit(ctx, tx, toUserID, swept); err != nil {
			return err
		}
		_, err = post(ctx, tx, nil,
			leg{model.AccountRevenue, model.EntrySweep, -swept},
			leg{model.WalletAccount(toUserID), model.EntrySweep, swept},
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return swept, nil
}

// debit takes amount from a wallet, refusing to overdraw it.
func debit(ctx context.Context, tx *sql.Tx, userID, amount int64) error {
	if amount == 0 {
		return nil
	}
	result, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND balance >= ?`,
		amount, userID, amount,
	)
	if err != nil {
		return fmt.Errorf("debiting wallet: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("debiting wallet: %w", err)
	}
	if n == 0 {
		return model.Reject(model.KindInsufficientPayment, "wallet balance below %d", amount)
	}
	return nil
}

// credit adds amount to a wallet, creating it if needed.
func credit(ctx context.Context, tx *sql.Tx, userID, amount int64) error {
	if amount == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO wallets (user_id, balance) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP`,
		userID, amount, amount,
	)
	if err != nil {
		return fmt.Errorf("crediting wallet: %w", err)
	}
	return nil
}
