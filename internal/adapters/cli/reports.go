package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"bookkeeper/internal/core"
)

var (
	reportFrom string
	reportTo   string
	reportAsOf string
)

var trialBalanceCmd = &cobra.Command{
	Use:   "trial-balance",
	Short: "Show the trial balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf(reportAsOf)
		if err != nil {
			return err
		}
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		tb, err := svc.TrialBalance(cmd.Context(), asOf)
		if err != nil {
			return err
		}
		fmt.Println("\n  TRIAL BALANCE")
		fmt.Printf("  %-8s %-28s %14s %14s\n", "CODE", "NAME", "DEBIT", "CREDIT")
		for _, row := range tb.Rows {
			fmt.Printf("  %-8s %-28s %14s %14s\n", row.Code, clip(row.Name, 26),
				amountOrBlank(row.Debit), amountOrBlank(row.Credit))
		}
		fmt.Printf("  %s\n", strings.Repeat("-", 68))
		fmt.Printf("  %-37s %14s %14s\n", "TOTALS", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
		printBalancedTag(tb.Balanced)
		return nil
	},
}

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Show the income statement",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseWindow(reportFrom, reportTo)
		if err != nil {
			return err
		}
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := svc.IncomeStatement(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		fmt.Println("\n  INCOME STATEMENT")
		printSection("REVENUE", report.Revenue)
		printSection("EXPENSES", report.Expenses)
		fmt.Printf("  %-36s %14s\n\n", "NET INCOME", report.NetIncome.StringFixed(2))
		return nil
	},
}

var balanceSheetCmd = &cobra.Command{
	Use:   "balance-sheet",
	Short: "Show the balance sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf(reportAsOf)
		if err != nil {
			return err
		}
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := svc.BalanceSheet(cmd.Context(), asOf)
		if err != nil {
			return err
		}
		fmt.Println("\n  BALANCE SHEET")
		printSection("ASSETS", report.Assets)
		fmt.Printf("  %-36s %14s\n", "Total Assets", report.TotalAssets.StringFixed(2))
		printSection("LIABILITIES", report.Liabilities)
		fmt.Printf("  %-36s %14s\n", "Total Liabilities", report.TotalLiabilities.StringFixed(2))
		printSection("EQUITY", report.Equity)
		fmt.Printf("  %-36s %14s\n", "Total Equity", report.TotalEquity.StringFixed(2))
		printBalancedTag(report.Balanced)
		return nil
	},
}

var cashFlowCmd = &cobra.Command{
	Use:   "cash-flow",
	Short: "Show the cash flow report",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseWindow(reportFrom, reportTo)
		if err != nil {
			return err
		}
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := svc.CashFlow(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		fmt.Println("\n  CASH FLOW")
		fmt.Printf("  %-36s %14s\n", "Opening cash", report.OpeningCash.StringFixed(2))
		fmt.Printf("  %-36s %14s\n", "Inflows", report.Inflows.StringFixed(2))
		fmt.Printf("  %-36s %14s\n", "Outflows", report.Outflows.StringFixed(2))
		fmt.Printf("  %-36s %14s\n", "Net change", report.NetChange.StringFixed(2))
		fmt.Printf("  %-36s %14s\n\n", "Closing cash", report.ClosingCash.StringFixed(2))
		return nil
	},
}

func parseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of date: %w", err)
	}
	return asOf, nil
}

func printSection(title string, lines []core.AccountLine) {
	fmt.Printf("\n  %s\n", title)
	for _, l := range lines {
		fmt.Printf("  %-8s %-27s %14s\n", l.Code, clip(l.Name, 25), l.Balance.StringFixed(2))
	}
}

func printBalancedTag(balanced bool) {
	if balanced {
		fmt.Println("\n  [BALANCED]")
	} else {
		fmt.Println("\n  [UNBALANCED!]")
	}
	fmt.Println()
}

func amountOrBlank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max-2] + ".."
	}
	return s
}

func init() {
	trialBalanceCmd.Flags().StringVar(&reportAsOf, "as-of", "", "Report date (YYYY-MM-DD)")
	balanceSheetCmd.Flags().StringVar(&reportAsOf, "as-of", "", "Report date (YYYY-MM-DD)")
	incomeCmd.Flags().StringVar(&reportFrom, "from", "", "Window start (YYYY-MM-DD)")
	incomeCmd.Flags().StringVar(&reportTo, "to", "", "Window end (YYYY-MM-DD)")
	cashFlowCmd.Flags().StringVar(&reportFrom, "from", "", "Window start (YYYY-MM-DD)")
	cashFlowCmd.Flags().StringVar(&reportTo, "to", "", "Window end (YYYY-MM-DD)")
	rootCmd.AddCommand(trialBalanceCmd, incomeCmd, balanceSheetCmd, cashFlowCmd)
}
