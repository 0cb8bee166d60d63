// Package cli is the command-line adapter. Commands construct the application
// service over the configured store and print results; no business rules live
// here.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"bookkeeper/internal/ai"
	"bookkeeper/internal/app"
	"bookkeeper/internal/bus"
	"bookkeeper/internal/config"
	"bookkeeper/internal/logger"
	"bookkeeper/internal/store"
)

var (
	flagDriver string
	flagDB     string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bookkeeper",
	Short: "Double-entry ledger posting and reconciliation engine",
	Long: "Bookkeeper derives balanced journal entries from invoices and vouchers,\n" +
		"reconciles settlements against invoices and opening balances, and produces\n" +
		"statements and financial reports for a small business.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if flagDriver != "" {
			cfg.Driver = flagDriver
		}
		if flagDB != "" {
			cfg.SQLitePath = flagDB
		}
		return logger.Setup(cfg.LogLevel, cfg.LogFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Store driver (sqlite, postgres, memory)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path")
}

func Execute() error {
	return rootCmd.Execute()
}

// openService builds the application service over the configured store. The
// returned cleanup closes the store.
func openService(ctx context.Context) (app.ApplicationService, func(), error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	var drafter app.EntryDrafter
	if cfg.OpenAIKey != "" {
		drafter = ai.NewDrafter(cfg.OpenAIKey)
	}
	svc := app.NewService(st, bus.New(), drafter)
	return svc, func() { _ = st.Close() }, nil
}
