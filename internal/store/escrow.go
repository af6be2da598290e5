package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// ReportFound marks an open item as found by the caller, who pays the claim
// fee from their wallet. Excess payment is refunded.
//
// Of several concurrent reports on the same item exactly one commits; the
// others see the advanced status and are rejected with nothing charged.
func ReportFound(ctx context.Context, db *sql.DB, callerID, id, payment int64) (*model.Item, error) {
	var item *model.Item
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		current, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.Reject(model.KindNotFound, "item %d not found", id)
		}
		if err := requireActive(ctx, tx, callerID); err != nil {
			return err
		}

		fees, err := getFees(ctx, tx)
		if err != nil {
			return err
		}
		if rej := model.CheckReporter(current, callerID, payment, fees); rej != nil {
			return rej
		}

		if err := debit(ctx, tx, callerID, payment); err != nil {
			return err
		}

		if err := advance(ctx, tx, current,
			`finder_id = ?, found_at = CURRENT_TIMESTAMP`, callerID,
		); err != nil {
			return err
		}

		refund := payment - fees.ClaimFee
		if err := credit(ctx, tx, callerID, refund); err != nil {
			return err
		}

		wallet := model.WalletAccount(callerID)
		_, err = post(ctx, tx, &id,
			leg{wallet, model.EntryPayment, -payment},
			leg{model.AccountRevenue, model.EntryFee, fees.ClaimFee},
			leg{wallet, model.EntryRefund, refund},
		)
		if err != nil {
			return err
		}

		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ReleaseReward pays an item's escrowed reward to its finder and resolves the
// item. Only the owner may release, and only after the item was reported
// found.
//
// The payout and the status change commit together. If the finder's wallet
// cannot receive the reward the item stays found_reported with its escrow
// intact.
func ReleaseReward(ctx context.Context, db *sql.DB, callerID, id int64) (*model.Item, error) {
	var item *model.Item
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		current, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.Reject(model.KindNotFound, "item %d not found", id)
		}
		if err := requireActive(ctx, tx, callerID); err != nil {
			return err
		}
		if rej := model.CheckReleaser(current, callerID); rej != nil {
			return rej
		}

		if err := payFinder(ctx, tx, current); err != nil {
			return err
		}

		if err := advance(ctx, tx, current,
			`escrow = 0, resolved_at = CURRENT_TIMESTAMP`,
		); err != nil {
			return err
		}

		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// payFinder moves the item's escrow into the finder's wallet.
func payFinder(ctx context.Context, tx *sql.Tx, item *model.Item) error {
	active, err := isActiveUser(ctx, tx, item.FinderID)
	if err != nil {
		return err
	}
	if !active {
		return model.Reject(model.KindTransferFailed, "finder %q cannot receive funds", item.Finder)
	}

	held, err := accountBalance(ctx, tx, model.EscrowAccount(item.ID))
	if err != nil {
		return err
	}
	if held != item.Escrow || held != item.Reward {
		return fmt.Errorf("item %d escrow mismatch: column %d, journal %d, reward %d", item.ID, item.Escrow, held, item.Reward)
	}

	if err := credit(ctx, tx, item.FinderID, held); err != nil {
		return model.Reject(model.KindTransferFailed, "paying finder: %v", err)
	}
	_, err = post(ctx, tx, &item.ID,
		leg{model.EscrowAccount(item.ID), model.EntryPayout, -held},
		leg{model.WalletAccount(item.FinderID), model.EntryPayout, held},
	)
	return err
}

// advance moves item one step forward, setting the extra columns in the same
// statement. The update only applies if the item is still in the status it
// was read in.
func advance(ctx context.Context, tx *sql.Tx, item *model.Item, set string, args ...any) error {
	next, ok := item.Status.Next()
	if !ok {
		return model.Reject(model.KindInvalidState, "item %d is already %s", item.ID, item.Status)
	}

	args = append([]any{string(next)}, args...)
	args = append(args, item.ID, string(item.Status))
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, `+set+` WHERE id = ? AND status = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("advancing item %d: %w", item.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("advancing item %d: %w", item.ID, err)
	}
	if n == 0 {
		return model.Reject(model.KindInvalidState, "item %d changed concurrently", item.ID)
	}
	return nil
}
