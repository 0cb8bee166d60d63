package core_test

import (
	"testing"
	"time"

	"bookkeeper/internal/core"
)

func TestAccountStatement_RunningBalance(t *testing.T) {
	f := newFixture()
	cash, _ := f.reg.Resolve(core.CodeCash)
	sales, _ := f.reg.Resolve(core.CodeSales)

	post := func(d time.Time, debit, credit string) {
		if _, err := f.eng.PostManual(core.JournalEntry{
			Date: d,
			Lines: []core.JournalLine{
				{AccountID: cash.ID, Debit: dec(debit), Credit: dec(credit)},
				{AccountID: sales.ID, Debit: dec(credit), Credit: dec(debit)},
			},
		}); err != nil {
			t.Fatalf("post: %v", err)
		}
	}
	post(day(1), "100", "0")
	post(day(3), "0", "30")
	post(day(2), "50", "0")

	st, err := f.gen.AccountStatement(cash.ID, time.Time{}, time.Time{}, false)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(st.Transactions) != 3 {
		t.Fatalf("transaction count = %d", len(st.Transactions))
	}
	// Sorted by date regardless of posting order.
	for i := 1; i < len(st.Transactions); i++ {
		if st.Transactions[i].Date.Before(st.Transactions[i-1].Date) {
			t.Fatal("transactions out of date order")
		}
	}
	// Each running balance is the previous plus debit minus credit.
	running := st.OpeningBalance
	for _, tx := range st.Transactions {
		running = running.Add(tx.Debit).Sub(tx.Credit)
		assertEqual(t, tx.Balance, running, "running balance")
	}
	assertEqual(t, st.ClosingBalance, dec("120"), "closing balance")
}

func TestAccountStatement_WindowFoldsIntoOpening(t *testing.T) {
	f := newFixture()
	cash, _ := f.reg.Resolve(core.CodeCash)
	sales, _ := f.reg.Resolve(core.CodeSales)

	for _, d := range []int{1, 5, 10} {
		if _, err := f.eng.PostManual(core.JournalEntry{
			Date: day(d),
			Lines: []core.JournalLine{
				{AccountID: cash.ID, Debit: dec("100")},
				{AccountID: sales.ID, Credit: dec("100")},
			},
		}); err != nil {
			t.Fatalf("post: %v", err)
		}
	}

	st, err := f.gen.AccountStatement(cash.ID, day(5), day(10), false)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	assertEqual(t, st.OpeningBalance, dec("100"), "opening balance from pre-window activity")
	// Bounds are inclusive.
	if len(st.Transactions) != 2 {
		t.Fatalf("transaction count = %d, want 2", len(st.Transactions))
	}
	assertEqual(t, st.ClosingBalance, dec("300"), "closing balance")
}

func TestAccountStatement_RollUpWithPseudoTransactions(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")
	f.addCustomer(t, 2, "Globex", "0")

	// Posted invoice for customer 1, deferred (unposted) invoice for customer 2.
	posted := f.addInvoice(core.Invoice{
		ID: 10, Number: "100", Type: core.SalesInvoice, ClientID: 1,
		Subtotal: dec("500"), Total: dec("500"), PaymentStatus: core.PaymentPending, Date: day(1),
	})
	f.eng.PostInvoice(posted)
	f.addInvoice(core.Invoice{
		ID: 11, Number: "101", Type: core.SalesInvoice, ClientID: 2,
		Subtotal: dec("200"), Total: dec("200"), PaymentStatus: core.PaymentPending, Date: day(2),
	})

	parent := f.accountByCode(t, core.CodeCustomers)
	st, err := f.gen.AccountStatement(parent.ID, time.Time{}, time.Time{}, true)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}

	// One journal transaction plus one synthesized pseudo-transaction.
	if len(st.Transactions) != 2 {
		t.Fatalf("transaction count = %d, want 2", len(st.Transactions))
	}
	assertEqual(t, st.ClosingBalance, dec("700"), "rolled-up closing balance")

	// Without roll-up the parent account has no activity of its own.
	flat, err := f.gen.AccountStatement(parent.ID, time.Time{}, time.Time{}, false)
	if err != nil {
		t.Fatalf("flat statement: %v", err)
	}
	if len(flat.Transactions) != 0 {
		t.Errorf("flat transaction count = %d, want 0", len(flat.Transactions))
	}
}

func TestAccountStatement_NoDoubleCountPostedDocuments(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")
	inv := f.addInvoice(core.Invoice{
		ID: 10, Number: "100", Type: core.SalesInvoice, ClientID: 1,
		Subtotal: dec("500"), Total: dec("500"), PaymentStatus: core.PaymentPending, Date: day(1),
	})
	f.eng.PostInvoice(inv)

	parent := f.accountByCode(t, core.CodeCustomers)
	st, err := f.gen.AccountStatement(parent.ID, time.Time{}, time.Time{}, true)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(st.Transactions) != 1 {
		t.Fatalf("posted invoice appears %d times, want 1", len(st.Transactions))
	}
}

func TestAccountStatement_HierarchyCycleTerminates(t *testing.T) {
	f := newFixture()
	// A malformed two-node cycle must not hang the walk.
	f.snap.Accounts = append(f.snap.Accounts,
		core.Account{ID: 901, Code: "A", Name: "A", Type: core.Asset, ParentCode: "B"},
		core.Account{ID: 902, Code: "B", Name: "B", Type: core.Asset, ParentCode: "A"},
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.gen.AccountStatement(901, time.Time{}, time.Time{}, true)
		_ = f.reg.EffectiveType(f.snap.Accounts[0])
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hierarchy cycle did not terminate")
	}
}

func TestEntityStatement_CustomerSigns(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "150")

	inv := f.addInvoice(core.Invoice{
		ID: 10, Number: "100", Type: core.SalesInvoice, ClientID: 1,
		Subtotal: dec("500"), Total: dec("500"), PaymentStatus: core.PaymentPending, Date: day(2),
	})
	f.eng.PostInvoice(inv)
	if _, err := f.rec.SettleVoucher(core.Voucher{Type: core.ReceiptVoucher, EntityID: 1, InvoiceID: 10, Amount: dec("200"), Date: day(3)}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	st, err := f.gen.EntityStatement(1, core.EntityCustomer, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	assertEqual(t, st.OpeningBalance, dec("150"), "opening balance")
	if len(st.Transactions) != 2 {
		t.Fatalf("transaction count = %d, want 2", len(st.Transactions))
	}
	assertEqual(t, st.Transactions[0].Debit, dec("500"), "invoice debit")
	assertEqual(t, st.Transactions[1].Credit, dec("200"), "voucher credit")
	// 150 + 500 - 200
	assertEqual(t, st.ClosingBalance, dec("450"), "closing balance")
}

func TestEntityStatement_SupplierSigns(t *testing.T) {
	f := newFixture()
	f.addSupplier(t, 1, "Supplies Inc", "0")

	inv := f.addInvoice(core.Invoice{
		ID: 10, Number: "P100", Type: core.PurchaseInvoice, ClientID: 1,
		Subtotal: dec("300"), Total: dec("300"), PaymentStatus: core.PaymentPending, Date: day(2),
	})
	f.eng.PostInvoice(inv)
	if _, err := f.rec.SettleVoucher(core.Voucher{Type: core.PaymentVoucher, EntityID: 1, InvoiceID: 10, Amount: dec("100"), Date: day(3)}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	st, err := f.gen.EntityStatement(1, core.EntitySupplier, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	assertEqual(t, st.Transactions[0].Credit, dec("300"), "purchase credit")
	assertEqual(t, st.Transactions[1].Debit, dec("100"), "payment debit")
	assertEqual(t, st.ClosingBalance, dec("-200"), "closing balance")
}

func TestEntityStatement_ExcludesReturns(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	inv := f.addInvoice(core.Invoice{
		ID: 10, Number: "100", Type: core.SalesInvoice, ClientID: 1,
		Subtotal: dec("500"), Total: dec("500"), PaymentStatus: core.PaymentPending, Date: day(1),
	})
	f.eng.PostInvoice(inv)
	ret := f.addInvoice(core.Invoice{
		ID: 11, Number: "R100", Type: core.SalesInvoice, IsReturn: true, ClientID: 1,
		Subtotal: dec("100"), Total: dec("100"), PaymentStatus: core.PaymentPaid, PaidAmount: dec("100"), Date: day(2),
	})
	f.eng.PostInvoice(ret)

	st, err := f.gen.EntityStatement(1, core.EntityCustomer, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(st.Transactions) != 1 {
		t.Fatalf("transaction count = %d, want 1 (return excluded)", len(st.Transactions))
	}
	assertEqual(t, st.ClosingBalance, dec("500"), "closing balance unaffected by return")
}

func TestEntityStatement_Summary(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	paid := f.addInvoice(core.Invoice{
		ID: 10, Number: "100", Type: core.SalesInvoice, ClientID: 1,
		Subtotal: dec("200"), Total: dec("200"), PaymentStatus: core.PaymentPending, Date: day(1),
	})
	f.eng.PostInvoice(paid)
	f.addInvoice(core.Invoice{
		ID: 11, Number: "101", Type: core.SalesInvoice, ClientID: 1,
		Subtotal: dec("300"), Total: dec("300"), PaymentStatus: core.PaymentPending, Date: day(2),
	})
	if _, err := f.rec.SettleVoucher(core.Voucher{Type: core.ReceiptVoucher, EntityID: 1, InvoiceID: 10, Amount: dec("200"), Date: day(3)}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	st, err := f.gen.EntityStatement(1, core.EntityCustomer, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if st.Summary == nil {
		t.Fatal("missing summary")
	}
	if st.Summary.InvoiceCounts[core.PaymentPaid] != 1 {
		t.Errorf("paid count = %d", st.Summary.InvoiceCounts[core.PaymentPaid])
	}
	if st.Summary.InvoiceCounts[core.PaymentPending] != 1 {
		t.Errorf("pending count = %d", st.Summary.InvoiceCounts[core.PaymentPending])
	}
	assertEqual(t, st.Summary.InvoiceTotals[core.PaymentPaid], dec("200"), "paid totals")
	if st.Summary.VoucherCount != 1 {
		t.Errorf("voucher count = %d", st.Summary.VoucherCount)
	}
	assertEqual(t, st.Summary.VoucherTotal, dec("200"), "voucher total")
}

func TestEntityStatement_UnknownEntity(t *testing.T) {
	f := newFixture()
	if _, err := f.gen.EntityStatement(42, core.EntityCustomer, time.Time{}, time.Time{}); err == nil {
		t.Fatal("expected error for unknown customer")
	}
}
