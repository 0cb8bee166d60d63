package core_test

import (
	"testing"
	"time"

	"bookkeeper/internal/core"
)

// seedTrading posts a small trading history: a part-settled sale and a cash
// purchase.
func seedTrading(t *testing.T, f *fixture) {
	t.Helper()
	f.addCustomer(t, 1, "Acme", "0")
	f.addSupplier(t, 2, "Supplies Inc", "0")

	sale := f.addInvoice(core.Invoice{
		ID: 10, Number: "100", Type: core.SalesInvoice, ClientID: 1,
		Subtotal: dec("1000"), VATAmount: dec("150"), Total: dec("1150"),
		PaymentStatus: core.PaymentPending, Date: day(1),
	})
	f.eng.PostInvoice(sale)
	if _, err := f.rec.SettleVoucher(core.Voucher{Type: core.ReceiptVoucher, EntityID: 1, InvoiceID: 10, Amount: dec("600"), Date: day(2)}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	purchase := f.addInvoice(core.Invoice{
		ID: 11, Number: "P100", Type: core.PurchaseInvoice, ClientID: 2,
		Subtotal: dec("400"), Total: dec("400"),
		PaymentStatus: core.PaymentPaid, PaidAmount: dec("400"), PaymentMethod: core.MethodCash, Date: day(3),
	})
	f.eng.PostInvoice(purchase)
}

func TestTrialBalance(t *testing.T) {
	f := newFixture()
	seedTrading(t, f)

	tb := f.rep.TrialBalance(time.Time{})
	if !tb.Balanced {
		t.Errorf("trial balance unbalanced: %s vs %s", tb.TotalDebit, tb.TotalCredit)
	}
	if len(tb.Rows) == 0 {
		t.Fatal("no rows")
	}
	for i := 1; i < len(tb.Rows); i++ {
		if tb.Rows[i].Code < tb.Rows[i-1].Code {
			t.Fatal("rows not sorted by code")
		}
	}
}

func TestTrialBalance_AsOfExcludesLaterEntries(t *testing.T) {
	f := newFixture()
	seedTrading(t, f)

	early := f.rep.TrialBalance(day(1))
	full := f.rep.TrialBalance(time.Time{})
	if early.TotalDebit.GreaterThanOrEqual(full.TotalDebit) {
		t.Errorf("as-of total %s not below full total %s", early.TotalDebit, full.TotalDebit)
	}
	if !early.Balanced {
		t.Error("as-of trial balance unbalanced")
	}
}

func TestIncomeStatement(t *testing.T) {
	f := newFixture()
	seedTrading(t, f)

	report := f.rep.IncomeStatement(time.Time{}, time.Time{})
	var revenue, expenses string
	for _, l := range report.Revenue {
		if l.Code == core.CodeSales {
			revenue = l.Balance.String()
		}
	}
	for _, l := range report.Expenses {
		if l.Code == core.CodePurchases {
			expenses = l.Balance.String()
		}
	}
	if revenue != "1000" {
		t.Errorf("sales revenue = %s, want 1000", revenue)
	}
	if expenses != "400" {
		t.Errorf("purchases expense = %s, want 400", expenses)
	}
	assertEqual(t, report.NetIncome, dec("600"), "net income")
}

func TestBalanceSheet(t *testing.T) {
	f := newFixture()
	seedTrading(t, f)

	report := f.rep.BalanceSheet(time.Time{})
	if !report.Balanced {
		t.Errorf("balance sheet unbalanced: assets %s, liabilities %s, equity %s",
			report.TotalAssets, report.TotalLiabilities, report.TotalEquity)
	}

	// Retained earnings folds the running net income into equity.
	found := false
	for _, l := range report.Equity {
		if l.Name == "Retained Earnings" {
			found = true
			assertEqual(t, l.Balance, dec("600"), "retained earnings")
		}
	}
	if !found {
		t.Error("missing retained earnings line")
	}
}

func TestCashFlow(t *testing.T) {
	f := newFixture()
	seedTrading(t, f)

	report := f.rep.CashFlow(time.Time{}, time.Time{})
	// 600 received, 400 paid out in cash.
	assertEqual(t, report.Inflows, dec("600"), "inflows")
	assertEqual(t, report.Outflows, dec("400"), "outflows")
	assertEqual(t, report.NetChange, dec("200"), "net change")
	assertEqual(t, report.ClosingCash, report.OpeningCash.Add(report.NetChange), "closing cash")
}

func TestCashFlow_WindowedOpening(t *testing.T) {
	f := newFixture()
	seedTrading(t, f)

	report := f.rep.CashFlow(day(3), time.Time{})
	// The day-2 receipt lands in the opening position.
	assertEqual(t, report.OpeningCash, dec("600"), "opening cash")
	assertEqual(t, report.Outflows, dec("400"), "outflows in window")
}
