package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookkeeper/internal/core"
)

var (
	stmtFrom       string
	stmtTo         string
	stmtAccountID  int64
	stmtCustomerID int64
	stmtSupplierID int64
	stmtIncludeSub bool
)

var statementCmd = &cobra.Command{
	Use:   "statement",
	Short: "Print an account or entity statement",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseWindow(stmtFrom, stmtTo)
		if err != nil {
			return err
		}
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		var st *core.Statement
		switch {
		case stmtAccountID != 0:
			st, err = svc.AccountStatement(cmd.Context(), stmtAccountID, from, to, stmtIncludeSub)
		case stmtCustomerID != 0:
			st, err = svc.EntityStatement(cmd.Context(), stmtCustomerID, core.EntityCustomer, from, to)
		case stmtSupplierID != 0:
			st, err = svc.EntityStatement(cmd.Context(), stmtSupplierID, core.EntitySupplier, from, to)
		default:
			return fmt.Errorf("one of --account, --customer or --supplier is required")
		}
		if err != nil {
			return err
		}
		printStatement(st)
		return nil
	},
}

func parseWindow(fromRaw, toRaw string) (from, to time.Time, err error) {
	if fromRaw != "" {
		if from, err = time.Parse("2006-01-02", fromRaw); err != nil {
			return from, to, fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if toRaw != "" {
		if to, err = time.Parse("2006-01-02", toRaw); err != nil {
			return from, to, fmt.Errorf("invalid --to date: %w", err)
		}
	}
	return from, to, nil
}

func printStatement(st *core.Statement) {
	fmt.Printf("\n  STATEMENT: %s\n\n", st.Title)
	fmt.Printf("  %-12s %-32s %12s %12s %12s\n", "DATE", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
	fmt.Printf("  %-12s %-32s %12s %12s %12s\n", "----", "-----------", "-----", "------", "-------")
	fmt.Printf("  %-12s %-32s %12s %12s %12s\n", "", "Opening balance", "", "", st.OpeningBalance.StringFixed(2))
	for _, t := range st.Transactions {
		desc := t.Description
		if len(desc) > 30 {
			desc = desc[:28] + ".."
		}
		fmt.Printf("  %-12s %-32s %12s %12s %12s\n",
			t.Date.Format("2006-01-02"), desc,
			amountOrBlank(t.Debit), amountOrBlank(t.Credit), t.Balance.StringFixed(2))
	}
	fmt.Printf("  %-45s %12s %12s %12s\n", "TOTALS",
		st.TotalDebit.StringFixed(2), st.TotalCredit.StringFixed(2), st.ClosingBalance.StringFixed(2))

	if st.Summary != nil {
		fmt.Println("\n  SUMMARY")
		for _, status := range []core.PaymentStatus{core.PaymentPaid, core.PaymentPartial, core.PaymentPending} {
			if n := st.Summary.InvoiceCounts[status]; n > 0 {
				fmt.Printf("  %-10s %3d invoices  %12s\n", status, n, st.Summary.InvoiceTotals[status].StringFixed(2))
			}
		}
		if st.Summary.VoucherCount > 0 {
			fmt.Printf("  %-10s %3d vouchers  %12s\n", "settled", st.Summary.VoucherCount, st.Summary.VoucherTotal.StringFixed(2))
		}
	}
	fmt.Println()
}

func init() {
	statementCmd.Flags().Int64Var(&stmtAccountID, "account", 0, "Account id")
	statementCmd.Flags().Int64Var(&stmtCustomerID, "customer", 0, "Customer id")
	statementCmd.Flags().Int64Var(&stmtSupplierID, "supplier", 0, "Supplier id")
	statementCmd.Flags().StringVar(&stmtFrom, "from", "", "Window start (YYYY-MM-DD)")
	statementCmd.Flags().StringVar(&stmtTo, "to", "", "Window end (YYYY-MM-DD)")
	statementCmd.Flags().BoolVar(&stmtIncludeSub, "include-sub", false, "Roll up sub-accounts")
	rootCmd.AddCommand(statementCmd)
}
