package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// Audit cross-checks stored balances against the journal:
//   - every operation balances to zero
//   - each item's escrow column equals its escrow account, equals the reward
//     until resolution and zero afterwards, with at most one payout
//   - each wallet balance equals its account
//   - the item counter equals the number of items and the highest id
func Audit(ctx context.Context, db *sql.DB) (*model.AuditReport, error) {
	report := &model.AuditReport{Problems: []string{}}

	if err := auditOperations(ctx, db, report); err != nil {
		return nil, err
	}
	if err := auditItems(ctx, db, report); err != nil {
		return nil, err
	}
	if err := auditWallets(ctx, db, report); err != nil {
		return nil, err
	}
	if err := auditCounter(ctx, db, report); err != nil {
		return nil, err
	}
	return report, nil
}

func problem(r *model.AuditReport, format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

func auditOperations(ctx context.Context, db *sql.DB, report *model.AuditReport) error {
	rows, err := db.QueryContext(ctx,
		`SELECT op_id, SUM(delta) FROM ledger_entries GROUP BY op_id HAVING SUM(delta) <> 0`,
	)
	if err != nil {
		return fmt.Errorf("auditing operations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opID string
		var sum int64
		if err := rows.Scan(&opID, &sum); err != nil {
			return fmt.Errorf("scanning operation: %w", err)
		}
		problem(report, "operation %s is unbalanced by %d", opID, sum)
	}
	return rows.Err()
}

func auditItems(ctx context.Context, db *sql.DB, report *model.AuditReport) error {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.reward, i.escrow, i.status,
		        COALESCE((SELECT SUM(delta) FROM ledger_entries e
		                  WHERE e.account = 'escrow:' || i.id), 0),
		        (SELECT COUNT(*) FROM ledger_entries e
		         WHERE e.account = 'escrow:' || i.id AND e.kind = ?)
		 FROM items i ORDER BY i.id`,
		string(model.EntryPayout),
	)
	if err != nil {
		return fmt.Errorf("auditing items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, reward, escrow, held, payouts int64
		var status string
		if err := rows.Scan(&id, &reward, &escrow, &status, &held, &payouts); err != nil {
			return fmt.Errorf("scanning item: %w", err)
		}
		report.ItemsChecked++

		if escrow != held {
			problem(report, "item %d: escrow column %d, journal %d", id, escrow, held)
		}
		if payouts > 1 {
			problem(report, "item %d: paid out %d times", id, payouts)
		}

		resolved := model.ItemStatus(status) == model.ItemStatusResolved
		switch {
		case resolved && escrow != 0:
			problem(report, "item %d: resolved but still holds %d", id, escrow)
		case !resolved && escrow != reward:
			problem(report, "item %d: %s holds %d, reward is %d", id, status, escrow, reward)
		case !resolved && payouts > 0:
			problem(report, "item %d: %s but already paid out", id, status)
		case resolved && reward > 0 && payouts != 1:
			problem(report, "item %d: resolved without payout", id)
		}
	}
	return rows.Err()
}

func auditWallets(ctx context.Context, db *sql.DB, report *model.AuditReport) error {
	rows, err := db.QueryContext(ctx,
		`SELECT w.user_id, w.balance,
		        COALESCE((SELECT SUM(delta) FROM ledger_entries e
		                  WHERE e.account = 'wallet:' || w.user_id), 0)
		 FROM wallets w ORDER BY w.user_id`,
	)
	if err != nil {
		return fmt.Errorf("auditing wallets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, balance, journal int64
		if err := rows.Scan(&userID, &balance, &journal); err != nil {
			return fmt.Errorf("scanning wallet: %w", err)
		}
		report.WalletsChecked++
		if balance != journal {
			problem(report, "wallet %d: balance %d, journal %d", userID, balance, journal)
		}
	}
	return rows.Err()
}

func auditCounter(ctx context.Context, db *sql.DB, report *model.AuditReport) error {
	count, err := ItemCount(ctx, db)
	if err != nil {
		return err
	}

	var rowCount, maxID int64
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(id), 0) FROM items`,
	).Scan(&rowCount, &maxID)
	if err != nil {
		return fmt.Errorf("auditing item counter: %w", err)
	}

	if rowCount != count || maxID != count {
		problem(report, "item counter %d, %d items, highest id %d", count, rowCount, maxID)
	}
	return nil
}
