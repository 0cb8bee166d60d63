package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// AccountLine is a single account row in a report. Balance is expressed in
// the sign convention of its section: positive means the account's normal
// balance (debit for assets and expenses, credit for the rest).
type AccountLine struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// TrialBalanceRow carries an account's gross debit and credit totals.
type TrialBalanceRow struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// TrialBalance lists per-account totals as of a date. Balanced holds for any
// ledger whose every entry obeys the double-entry law.
type TrialBalance struct {
	AsOf        time.Time         `json:"as_of,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

// IncomeStatement is the revenue/expense report for one period.
type IncomeStatement struct {
	From      time.Time       `json:"from,omitempty"`
	To        time.Time       `json:"to,omitempty"`
	Revenue   []AccountLine   `json:"revenue"`
	Expenses  []AccountLine   `json:"expenses"`
	NetIncome decimal.Decimal `json:"net_income"`
}

// BalanceSheet reports assets against liabilities and equity as of a date.
// Net income to date is folded in as retained earnings so the sheet balances
// without a closing run.
type BalanceSheet struct {
	AsOf             time.Time       `json:"as_of,omitempty"`
	Assets           []AccountLine   `json:"assets"`
	Liabilities      []AccountLine   `json:"liabilities"`
	Equity           []AccountLine   `json:"equity"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	Balanced         bool            `json:"balanced"`
}

// CashFlow reports movement across cash and bank accounts in a window.
type CashFlow struct {
	From        time.Time       `json:"from,omitempty"`
	To          time.Time       `json:"to,omitempty"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
	Inflows     decimal.Decimal `json:"inflows"`
	Outflows    decimal.Decimal `json:"outflows"`
	NetChange   decimal.Decimal `json:"net_change"`
	ClosingCash decimal.Decimal `json:"closing_cash"`
}

// ── Reporter ──────────────────────────────────────────────────────────────────

// Reporter computes financial reports from a snapshot. Sub-accounts inherit
// their parent's type for section placement.
type Reporter struct {
	snap *Snapshot
	reg  *Registry
}

func NewReporter(snap *Snapshot, reg *Registry) *Reporter {
	return &Reporter{snap: snap, reg: reg}
}

// totals sums debit and credit per account over entries within [from, to].
func (r *Reporter) totals(from, to time.Time) map[int64][2]decimal.Decimal {
	out := map[int64][2]decimal.Decimal{}
	for i := range r.snap.Entries {
		entry := &r.snap.Entries[i]
		if !inWindow(entry.Date, from, to) {
			continue
		}
		for _, line := range entry.Lines {
			t := out[line.AccountID]
			t[0] = t[0].Add(line.Debit)
			t[1] = t[1].Add(line.Credit)
			out[line.AccountID] = t
		}
	}
	return out
}

// sortedAccounts returns the snapshot accounts ordered by code.
func (r *Reporter) sortedAccounts() []Account {
	accounts := make([]Account, len(r.snap.Accounts))
	copy(accounts, r.snap.Accounts)
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts
}

// TrialBalance lists every account with activity up to asOf.
func (r *Reporter) TrialBalance(asOf time.Time) *TrialBalance {
	sums := r.totals(time.Time{}, asOf)
	tb := &TrialBalance{AsOf: asOf}
	for _, a := range r.sortedAccounts() {
		t, ok := sums[a.ID]
		if !ok {
			continue
		}
		tb.Rows = append(tb.Rows, TrialBalanceRow{Code: a.Code, Name: a.Name, Debit: t[0], Credit: t[1]})
		tb.TotalDebit = tb.TotalDebit.Add(t[0])
		tb.TotalCredit = tb.TotalCredit.Add(t[1])
	}
	tb.Balanced = withinEpsilon(tb.TotalDebit, tb.TotalCredit)
	return tb
}

// IncomeStatement reports revenue as credit-minus-debit and expenses as
// debit-minus-credit for the given window.
func (r *Reporter) IncomeStatement(from, to time.Time) *IncomeStatement {
	sums := r.totals(from, to)
	report := &IncomeStatement{From: from, To: to}
	var totalRevenue, totalExpenses decimal.Decimal

	for _, a := range r.sortedAccounts() {
		t, ok := sums[a.ID]
		if !ok {
			continue
		}
		switch r.reg.EffectiveType(a) {
		case Revenue:
			bal := t[1].Sub(t[0])
			report.Revenue = append(report.Revenue, AccountLine{Code: a.Code, Name: a.Name, Balance: bal})
			totalRevenue = totalRevenue.Add(bal)
		case Expense:
			bal := t[0].Sub(t[1])
			report.Expenses = append(report.Expenses, AccountLine{Code: a.Code, Name: a.Name, Balance: bal})
			totalExpenses = totalExpenses.Add(bal)
		}
	}
	report.NetIncome = totalRevenue.Sub(totalExpenses)
	return report
}

// BalanceSheet reports net positions as of asOf. Liability and equity
// balances are negated so a normal credit balance reads positive, and the
// period's net income is added to equity as retained earnings.
func (r *Reporter) BalanceSheet(asOf time.Time) *BalanceSheet {
	sums := r.totals(time.Time{}, asOf)
	report := &BalanceSheet{AsOf: asOf}

	for _, a := range r.sortedAccounts() {
		t, ok := sums[a.ID]
		if !ok {
			continue
		}
		net := t[0].Sub(t[1])
		switch r.reg.EffectiveType(a) {
		case Asset, Cash, Bank:
			report.Assets = append(report.Assets, AccountLine{Code: a.Code, Name: a.Name, Balance: net})
			report.TotalAssets = report.TotalAssets.Add(net)
		case Liability:
			bal := net.Neg()
			report.Liabilities = append(report.Liabilities, AccountLine{Code: a.Code, Name: a.Name, Balance: bal})
			report.TotalLiabilities = report.TotalLiabilities.Add(bal)
		case Equity:
			bal := net.Neg()
			report.Equity = append(report.Equity, AccountLine{Code: a.Code, Name: a.Name, Balance: bal})
			report.TotalEquity = report.TotalEquity.Add(bal)
		}
	}

	income := r.IncomeStatement(time.Time{}, asOf)
	if !income.NetIncome.IsZero() {
		report.Equity = append(report.Equity, AccountLine{Name: "Retained Earnings", Balance: income.NetIncome})
		report.TotalEquity = report.TotalEquity.Add(income.NetIncome)
	}

	report.Balanced = withinEpsilon(report.TotalAssets, report.TotalLiabilities.Add(report.TotalEquity))
	return report
}

// CashFlow sums movement on cash and bank typed accounts inside the window,
// with opening and closing positions derived from the surrounding history.
func (r *Reporter) CashFlow(from, to time.Time) *CashFlow {
	cashIDs := map[int64]bool{}
	for _, a := range r.snap.Accounts {
		if r.reg.EffectiveType(a).IsCashLike() {
			cashIDs[a.ID] = true
		}
	}

	report := &CashFlow{From: from, To: to}
	for i := range r.snap.Entries {
		entry := &r.snap.Entries[i]
		for _, line := range entry.Lines {
			if !cashIDs[line.AccountID] {
				continue
			}
			if beforeWindow(entry.Date, from) {
				report.OpeningCash = report.OpeningCash.Add(line.Debit).Sub(line.Credit)
				continue
			}
			if !inWindow(entry.Date, from, to) {
				continue
			}
			report.Inflows = report.Inflows.Add(line.Debit)
			report.Outflows = report.Outflows.Add(line.Credit)
		}
	}
	report.NetChange = report.Inflows.Sub(report.Outflows)
	report.ClosingCash = report.OpeningCash.Add(report.NetChange)
	return report
}
