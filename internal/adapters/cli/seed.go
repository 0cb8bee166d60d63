package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the required chart of accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		accounts, err := svc.SeedChart(cmd.Context())
		if err != nil {
			return err
		}
		for _, a := range accounts {
			fmt.Printf("  %-6s %-24s %s\n", a.Code, a.Name, a.Type)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
