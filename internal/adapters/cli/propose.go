package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var proposeCommit bool

var proposeCmd = &cobra.Command{
	Use:   "propose <event description>",
	Short: "Draft a journal entry from a natural-language event",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		draft, err := svc.DraftEntry(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Printf("\n  DRAFT ENTRY  %s\n", draft.Date)
		fmt.Printf("  %s\n", draft.Description)
		fmt.Printf("  confidence %.2f: %s\n\n", draft.Confidence, draft.Reasoning)
		for _, l := range draft.Lines {
			side := "credit"
			if l.IsDebit {
				side = "debit"
			}
			fmt.Printf("  %-8s %-8s %12s\n", side, l.AccountCode, l.Amount)
		}
		fmt.Println()

		if !proposeCommit {
			fmt.Println("  not posted; rerun with --commit to post this entry")
			return nil
		}
		entry, err := svc.CommitDraft(cmd.Context(), *draft)
		if err != nil {
			return err
		}
		fmt.Printf("  posted as journal entry %d\n", entry.ID)
		return nil
	},
}

func init() {
	proposeCmd.Flags().BoolVar(&proposeCommit, "commit", false, "Post the draft after printing it")
	rootCmd.AddCommand(proposeCmd)
}
