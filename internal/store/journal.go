package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/model"
)

// leg is one movement within a ledger operation.
type leg struct {
	account string
	kind    model.EntryKind
	delta   int64
}

// post records the legs of one operation under a fresh operation id. Legs
// must balance; zero legs are skipped.
func post(ctx context.Context, tx *sql.Tx, itemID *int64, legs ...leg) (string, error) {
	var sum int64
	for _, l := range legs {
		sum += l.delta
	}
	if sum != 0 {
		return "", fmt.Errorf("unbalanced ledger operation: legs sum to %d", sum)
	}

	opID := uuid.NewString()
	for _, l := range legs {
		if l.delta == 0 {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_entries (op_id, item_id, account, kind, delta) VALUES (?, ?, ?, ?, ?)`,
			opID, itemID, l.account, string(l.kind), l.delta,
		)
		if err != nil {
			return "", fmt.Errorf("recording %s entry: %w", l.kind, err)
		}
	}
	return opID, nil
}

// GetItemHistory returns the journal entries touching an item, oldest first.
func GetItemHistory(ctx context.Context, db *sql.DB, itemID int64) ([]model.LedgerEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, op_id, item_id, account, kind, delta, created_at
		 FROM ledger_entries WHERE item_id = ? ORDER BY id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListAccountEntries returns the journal entries of one account, newest first.
func ListAccountEntries(ctx context.Context, db *sql.DB, account string) ([]model.LedgerEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, op_id, item_id, account, kind, delta, created_at
		 FROM ledger_entries WHERE account = ? ORDER BY id DESC`, account,
	)
	if err != nil {
		return nil, fmt.Errorf("listing account entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var itemID sql.NullInt64
		var kind string
		if err := rows.Scan(&e.ID, &e.OpID, &itemID, &e.Account, &kind, &e.Delta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		if itemID.Valid {
			id := itemID.Int64
			e.ItemID = &id
		}
		e.Kind = model.EntryKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// accountBalance sums an account's journal entries.
func accountBalance(ctx context.Context, q querier, account string) (int64, error) {
	var sum int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM ledger_entries WHERE account = ?`, account,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing %s: %w", account, err)
	}
	return sum, nil
}
