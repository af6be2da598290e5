package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const selectUser = `SELECT id, username, password_hash, role, created_at, deleted_at FROM users`

// CreateUser creates a new user with an empty wallet.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, role string) (*model.User, error) {
	var id int64
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
			username, passwordHash, role,
		)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting user id: %w", err)
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO wallets (user_id) VALUES (?)`, id)
		if err != nil {
			return fmt.Errorf("creating wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username, preferring the active
// account when soft-deleted accounts share the name.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		selectUser+` WHERE username = ? ORDER BY deleted_at IS NOT NULL, id DESC LIMIT 1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx, selectUser+` WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's role.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, role string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user. A deleted user's wallet keeps its balance
// but can no longer pay or be paid. Owners with items awaiting release cannot
// be deleted, since only they can release the escrow.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	return inTx(ctx, db, func(tx *sql.Tx) error {
		var pending int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM items WHERE owner_id = ? AND status = ?`,
			id, string(model.ItemStatusFoundReported),
		).Scan(&pending)
		if err != nil {
			return fmt.Errorf("checking pending releases: %w", err)
		}
		if pending > 0 {
			return model.Reject(model.KindInvalidState, "user %d has %d found items awaiting release", id, pending)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
			id,
		)
		if err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		return nil
	})
}

// RestoreUser reactivates a soft-deleted user. It fails if another active
// user has taken the username meanwhile.
func RestoreUser(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("restoring user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("restoring user: %w", err)
	}
	if n == 0 {
		return model.Reject(model.KindNotFound, "no deleted user %d", id)
	}
	return nil
}

func isActiveUser(ctx context.Context, q querier, id int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking user: %w", err)
	}
	return count > 0, nil
}

// requireActive rejects callers whose account is missing or deleted.
func requireActive(ctx context.Context, q querier, id int64) error {
	active, err := isActiveUser(ctx, q, id)
	if err != nil {
		return err
	}
	if !active {
		return model.Reject(model.KindUnauthorized, "caller %d is not an active user", id)
	}
	return nil
}
