package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const selectItem = `SELECT i.id, i.owner_id, o.username, i.description, i.location, i.reward, i.escrow,
        i.status, COALESCE(i.finder_id, 0), COALESCE(f.username, ''), i.image IS NOT NULL,
        i.created_at, i.found_at, i.resolved_at
 FROM items i
 JOIN users o ON o.id = i.owner_id
 LEFT JOIN users f ON f.id = i.finder_id`

// RegisterItem records a lost item owned by the caller and escrows its
// reward.
//
// payment is drawn from the caller's wallet. The registration fee goes to
// revenue, the reward is held in escrow under the new item, and anything
// above fee plus reward is refunded in the same transaction.
func RegisterItem(ctx context.Context, db *sql.DB, callerID int64, description, location string, reward, payment int64) (*model.Item, error) {
	var item *model.Item
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		if err := requireActive(ctx, tx, callerID); err != nil {
			return err
		}

		fees, err := getFees(ctx, tx)
		if err != nil {
			return err
		}
		if rej := model.ValidateRegistration(description, location, reward, payment, fees); rej != nil {
			return rej
		}

		if err := debit(ctx, tx, callerID, payment); err != nil {
			return err
		}

		id, err := nextItemID(ctx, tx)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (id, owner_id, description, location, reward, escrow, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, callerID, description, location, reward, reward, string(model.ItemStatusOpen),
		)
		if err != nil {
			return fmt.Errorf("creating item: %w", err)
		}

		refund := payment - fees.RegistrationFee - reward
		if err := credit(ctx, tx, callerID, refund); err != nil {
			return err
		}

		wallet := model.WalletAccount(callerID)
		_, err = post(ctx, tx, &id,
			leg{wallet, model.EntryPayment, -payment},
			leg{model.AccountRevenue, model.EntryFee, fees.RegistrationFee},
			leg{model.EscrowAccount(id), model.EntryEscrowHold, reward},
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

// GetItem returns an item by ID, or a not-found rejection for ids outside
// 1..ItemCount.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := getItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.Reject(model.KindNotFound, "item %d not found", id)
	}
	return item, nil
}

// ListItems returns all items in id order, optionally filtered by status.
func ListItems(ctx context.Context, db *sql.DB, status model.ItemStatus) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		if !status.Valid() {
			return nil, model.Reject(model.KindInvalidInput, "unknown status %q", status)
		}
		rows, err = db.QueryContext(ctx, selectItem+` WHERE i.status = ? ORDER BY i.id`, string(status))
	} else {
		rows, err = db.QueryContext(ctx, selectItem+` ORDER BY i.id`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SetItemImage attaches a photo to an open item. Only the owner may.
func SetItemImage(ctx context.Context, db *sql.DB, callerID, id int64, image []byte, mime string) error {
	return inTx(ctx, db, func(tx *sql.Tx) error {
		item, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return model.Reject(model.KindNotFound, "item %d not found", id)
		}
		if rej := model.CheckPhotoEditor(item, callerID); rej != nil {
			return rej
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE items SET image = ?, image_mime = ? WHERE id = ?`,
			image, mime, id,
		)
		if err != nil {
			return fmt.Errorf("setting item image: %w", err)
		}
		return nil
	})
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// getItem returns nil, nil for a missing item.
func getItem(ctx context.Context, q querier, id int64) (*model.Item, error) {
	if id < 1 {
		return nil, nil
	}
	rows, err := q.QueryContext(ctx, selectItem+` WHERE i.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanItem(rows)
}

func scanItem(rows *sql.Rows) (*model.Item, error) {
	item := &model.Item{}
	var status string
	if err := rows.Scan(&item.ID, &item.OwnerID, &item.Owner, &item.Description, &item.Location,
		&item.Reward, &item.Escrow, &status, &item.FinderID, &item.Finder, &item.HasImage,
		&item.CreatedAt, &item.FoundAt, &item.ResolvedAt); err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	item.Status = model.ItemStatus(status)
	return item, nil
}
