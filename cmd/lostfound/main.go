// Command lostfound runs the lost-item registry service and its maintenance
// commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/erazemk/lostfound/internal/config"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// v holds defaults, environment and bound flags until cfg is resolved.
	v = config.New()

	// cfg is resolved before any subcommand runs.
	cfg *config.Config

	closeLog = func() {}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lostfound",
	Short: "Lost-item registry with escrowed finder rewards",
	Long: `lostfound keeps a registry of lost items. Owners register an item with a
reward that is held in escrow; a finder reports it found and the owner
releases the reward to them.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default: ./lostfound.yaml or /etc/lostfound/lostfound.yaml)")
	flags.StringP("db", "d", "", "SQLite database path (default: lostfound.sqlite3)")
	flags.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	flags.StringP("user", "u", "", "admin username created on first run (default: Admin)")
	mustBind(config.KeyDB, flags.Lookup("db"))
	mustBind(config.KeyLog, flags.Lookup("log"))
	mustBind(config.KeyAdminUser, flags.Lookup("user"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(feesCmd)
	rootCmd.AddCommand(auditCmd)
}

// loadConfig resolves the configuration and sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(v, configFile)
	if err != nil {
		return err
	}

	cleanup, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	closeLog = cleanup
	return nil
}

// mustBind lets a flag override a config key when it is set.
func mustBind(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}
