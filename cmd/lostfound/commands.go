package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database, fix the fee schedule and create the admin account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := initDatabase(cmd.Context())
		if err != nil {
			return err
		}
		printInitResult(cfg.DB, cfg.AdminUser, password, cfg.Fees())
		return nil
	},
}

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Print the deployed fee schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		fees, err := store.GetFees(cmd.Context(), database)
		if err != nil {
			return err
		}
		fmt.Printf("registration_fee: %d\nclaim_fee: %d\n", fees.RegistrationFee, fees.ClaimFee)
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Cross-check balances and escrow against the journal",
	Long: `Cross-check every wallet and item escrow against the ledger journal and
print the report as JSON. Exits non-zero when problems are found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		report, err := store.Audit(cmd.Context(), database)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if !report.OK() {
			return fmt.Errorf("audit found %d problems", len(report.Problems))
		}
		return nil
	},
}
