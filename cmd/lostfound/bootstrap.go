package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// openDatabase opens the configured database, ensures its schema and fixes
// the fee schedule on first use. Fees already stored win over the config.
func openDatabase(ctx context.Context) (*sql.DB, error) {
	database, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}

	fees, err := store.InitFees(ctx, database, cfg.Fees())
	if err != nil {
		database.Close()
		return nil, err
	}
	if fees != cfg.Fees() {
		slog.Warn("configured fees differ from the deployed schedule; keeping deployed fees",
			"registration_fee", fees.RegistrationFee, "claim_fee", fees.ClaimFee)
	}
	return database, nil
}

// createAdmin creates the admin account with a random password unless an
// account with that name already exists. It returns the password, or "" if
// nothing was created.
func createAdmin(ctx context.Context, database *sql.DB, username string) (string, error) {
	existing, err := store.GetUserByUsername(ctx, database, username)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.DeletedAt == nil {
		return "", nil
	}

	password, err := auth.RandomPassword()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	if _, err := store.CreateUser(ctx, database, username, hash, model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

// initDatabase creates the database file with schema, fees and admin
// account. A half-initialized file is removed again.
func initDatabase(ctx context.Context) (string, error) {
	if _, err := os.Stat(cfg.DB); err == nil {
		return "", fmt.Errorf("database %s already exists", cfg.DB)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	database, err := openDatabase(ctx)
	if err != nil {
		os.Remove(cfg.DB)
		return "", err
	}
	defer database.Close()

	password, err := createAdmin(ctx, database, cfg.AdminUser)
	if err != nil {
		database.Close()
		os.Remove(cfg.DB)
		return "", err
	}
	return password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string, fees model.Fees) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Printf("Fees fixed: registration %d, claim %d (minor units)\n", fees.RegistrationFee, fees.ClaimFee)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}
