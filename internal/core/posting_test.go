package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"bookkeeper/internal/core"
)

func salesInvoice(id int64, clientID int64) core.Invoice {
	return core.Invoice{
		ID:             id,
		Number:         "100",
		Type:           core.SalesInvoice,
		ClientID:       clientID,
		Subtotal:       dec("1000"),
		DiscountAmount: dec("50"),
		VATAmount:      dec("142.50"), // 15% of 950
		Total:          dec("1092.50"),
		PaymentStatus:  core.PaymentPending,
		Date:           day(1),
	}
}

func TestPostInvoice_SalesUnpaid(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	inv := f.addInvoice(salesInvoice(10, 1))
	entry := f.eng.PostInvoice(inv)
	assertBalanced(t, entry)

	customerAcct, _ := f.reg.FindLinked(core.EntityCustomer, 1)
	assertEqual(t, lineFor(t, entry, customerAcct.ID).Debit, dec("1092.50"), "customer debit")

	sales := f.accountByCode(t, core.CodeSales)
	assertEqual(t, lineFor(t, entry, sales.ID).Credit, dec("1000"), "sales credit")

	vat := f.accountByCode(t, core.CodeVATPayable)
	assertEqual(t, lineFor(t, entry, vat.ID).Credit, dec("142.50"), "vat credit")

	disc := f.accountByCode(t, core.CodeDiscountAllowed)
	assertEqual(t, lineFor(t, entry, disc.ID).Debit, dec("50"), "discount debit")
}

func TestPostInvoice_SalesPaidDebitsCash(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	inv := salesInvoice(10, 1)
	inv.PaymentStatus = core.PaymentPaid
	inv.PaidAmount = inv.Total
	inv.PaymentMethod = core.MethodCash
	entry := f.eng.PostInvoice(f.addInvoice(inv))
	assertBalanced(t, entry)

	cash := f.accountByCode(t, core.CodeCash)
	assertEqual(t, lineFor(t, entry, cash.ID).Debit, dec("1092.50"), "cash debit")
}

func TestPostInvoice_SalesPaidByBank(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	inv := salesInvoice(10, 1)
	inv.PaymentStatus = core.PaymentPaid
	inv.PaidAmount = inv.Total
	inv.PaymentMethod = core.MethodBank
	entry := f.eng.PostInvoice(f.addInvoice(inv))
	assertBalanced(t, entry)

	bank := f.accountByCode(t, core.CodeBank)
	assertEqual(t, lineFor(t, entry, bank.ID).Debit, dec("1092.50"), "bank debit")
}

func TestPostInvoice_Idempotent(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	inv := f.addInvoice(salesInvoice(10, 1))
	first := f.eng.PostInvoice(inv)
	second := f.eng.PostInvoice(inv)

	if first.ID != second.ID {
		t.Errorf("duplicate posting created a second entry: %d vs %d", first.ID, second.ID)
	}
	count := 0
	for _, e := range f.snap.Entries {
		if e.Reference == inv.Reference() {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one entry under %s, got %d", inv.Reference(), count)
	}
}

func TestPostInvoice_RepostAfterReversal(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	inv := f.addInvoice(salesInvoice(10, 1))
	first := f.eng.PostInvoice(inv)
	f.eng.ReverseEntry(first, day(2))

	// The original reference is free again once its entry is reversed.
	third := f.eng.PostInvoice(inv)
	if third.ID == first.ID {
		t.Error("expected a fresh entry after the original was reversed")
	}
	assertBalanced(t, third)
}

func TestPostInvoice_SalesReturn(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	inv := core.Invoice{
		ID:            11,
		Number:        "R100",
		Type:          core.SalesInvoice,
		IsReturn:      true,
		ClientID:      1,
		Subtotal:      dec("200"),
		VATAmount:     dec("30"),
		Total:         dec("230"),
		PaymentStatus: core.PaymentPaid,
		PaidAmount:    dec("230"),
		PaymentMethod: core.MethodCash,
		Date:          day(3),
	}
	entry := f.eng.PostInvoice(f.addInvoice(inv))
	assertBalanced(t, entry)

	sales := f.accountByCode(t, core.CodeSales)
	assertEqual(t, lineFor(t, entry, sales.ID).Debit, dec("200"), "sales debit")
	cash := f.accountByCode(t, core.CodeCash)
	assertEqual(t, lineFor(t, entry, cash.ID).Credit, dec("230"), "cash credit")
	vat := f.accountByCode(t, core.CodeVATPayable)
	assertEqual(t, lineFor(t, entry, vat.ID).Debit, dec("30"), "vat debit")
}

func TestPostInvoice_Purchase(t *testing.T) {
	f := newFixture()
	f.addSupplier(t, 1, "Supplies Inc", "0")

	inv := core.Invoice{
		ID:             12,
		Number:         "P100",
		Type:           core.PurchaseInvoice,
		ClientID:       1,
		Subtotal:       dec("500"),
		DiscountAmount: dec("25"),
		VATAmount:      dec("71.25"),
		Total:          dec("546.25"),
		PaymentStatus:  core.PaymentPending,
		Date:           day(2),
	}
	entry := f.eng.PostInvoice(f.addInvoice(inv))
	assertBalanced(t, entry)

	purchases := f.accountByCode(t, core.CodePurchases)
	assertEqual(t, lineFor(t, entry, purchases.ID).Debit, dec("500"), "purchases debit")
	vat := f.accountByCode(t, core.CodeVATReceivable)
	assertEqual(t, lineFor(t, entry, vat.ID).Debit, dec("71.25"), "vat receivable debit")
	disc := f.accountByCode(t, core.CodeDiscountEarned)
	assertEqual(t, lineFor(t, entry, disc.ID).Credit, dec("25"), "discount earned credit")
	supplierAcct, _ := f.reg.FindLinked(core.EntitySupplier, 1)
	assertEqual(t, lineFor(t, entry, supplierAcct.ID).Credit, dec("546.25"), "supplier credit")
}

func TestPostInvoice_PurchaseReturn(t *testing.T) {
	f := newFixture()
	f.addSupplier(t, 1, "Supplies Inc", "0")

	inv := core.Invoice{
		ID:            13,
		Number:        "PR100",
		Type:          core.PurchaseInvoice,
		IsReturn:      true,
		ClientID:      1,
		Subtotal:      dec("100"),
		VATAmount:     dec("15"),
		Total:         dec("115"),
		PaymentStatus: core.PaymentPaid,
		PaidAmount:    dec("115"),
		PaymentMethod: core.MethodCash,
		Date:          day(4),
	}
	entry := f.eng.PostInvoice(f.addInvoice(inv))
	assertBalanced(t, entry)

	cash := f.accountByCode(t, core.CodeCash)
	assertEqual(t, lineFor(t, entry, cash.ID).Debit, dec("115"), "cash debit")
	purchases := f.accountByCode(t, core.CodePurchases)
	assertEqual(t, lineFor(t, entry, purchases.ID).Credit, dec("100"), "purchases credit")
}

func TestPostInvoice_FailureRecordsDiagnosticEntry(t *testing.T) {
	snap := &core.Snapshot{}
	failing := func(string) (int64, error) { return 0, errFixed }
	ok := core.CounterIDs(1)
	// Accounts cannot be created, so line building fails; the diagnostic
	// entry itself still gets recorded through the working allocator.
	calls := 0
	mixed := core.IDAllocator(func(coll string) (int64, error) {
		calls++
		if coll == "accounts" {
			return failing(coll)
		}
		return ok(coll)
	})
	reg := core.NewRegistry(snap, mixed)
	eng := core.NewPostingEngine(snap, reg, mixed)

	inv := core.Invoice{ID: 1, Number: "X1", Type: core.SalesInvoice, Subtotal: dec("10"), Total: dec("10"), Date: day(1)}
	entry := eng.PostInvoice(&inv)
	if !entry.Failed() {
		t.Fatal("expected a failed entry when account creation is impossible")
	}

	// A failed entry must not satisfy the duplicate guard.
	if got := snap.ActiveEntryByReference(inv.Reference()); got == nil || !got.Failed() {
		t.Fatalf("unexpected active entry state: %+v", got)
	}
	if calls == 0 {
		t.Fatal("allocator never called")
	}
}

var errFixed = errFixedType{}

type errFixedType struct{}

func (errFixedType) Error() string { return "allocator unavailable" }

func TestPostVoucher_ReceiptAndPayment(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")
	f.addSupplier(t, 2, "Supplies Inc", "0")

	receipt := &core.Voucher{ID: 50, Type: core.ReceiptVoucher, EntityID: 1, Amount: dec("300"), Number: "RV-50", Date: day(5)}
	entry := f.eng.PostVoucher(receipt)
	assertBalanced(t, entry)
	cash := f.accountByCode(t, core.CodeCash)
	assertEqual(t, lineFor(t, entry, cash.ID).Debit, dec("300"), "cash debit")
	customerAcct, _ := f.reg.FindLinked(core.EntityCustomer, 1)
	assertEqual(t, lineFor(t, entry, customerAcct.ID).Credit, dec("300"), "customer credit")

	payment := &core.Voucher{ID: 51, Type: core.PaymentVoucher, EntityID: 2, Amount: dec("120"), Number: "PV-51", Date: day(5)}
	entry = f.eng.PostVoucher(payment)
	assertBalanced(t, entry)
	supplierAcct, _ := f.reg.FindLinked(core.EntitySupplier, 2)
	assertEqual(t, lineFor(t, entry, supplierAcct.ID).Debit, dec("120"), "supplier debit")
	assertEqual(t, lineFor(t, entry, cash.ID).Credit, dec("120"), "cash credit")
}

func TestReverseEntry(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")

	inv := f.addInvoice(salesInvoice(10, 1))
	orig := f.eng.PostInvoice(inv)

	rev := f.eng.ReverseEntry(orig, day(6))
	assertBalanced(t, rev)
	if rev.Reference != core.ReversalPrefix+orig.Reference {
		t.Errorf("reversal reference = %s", rev.Reference)
	}
	if rev.OriginalEntryID != orig.ID {
		t.Errorf("reversal original id = %d, want %d", rev.OriginalEntryID, orig.ID)
	}
	for i, l := range rev.Lines {
		if !l.Debit.Equal(orig.Lines[i].Credit) || !l.Credit.Equal(orig.Lines[i].Debit) {
			t.Errorf("line %d not swapped: %+v vs %+v", i, l, orig.Lines[i])
		}
	}

	// Reversing again returns the same reversal, not a new one.
	again := f.eng.ReverseEntry(orig, day(7))
	if again.ID != rev.ID {
		t.Errorf("second reversal created a new entry %d", again.ID)
	}
}

func TestPostManual(t *testing.T) {
	f := newFixture()
	cash, _ := f.reg.Resolve(core.CodeCash)
	sales, _ := f.reg.Resolve(core.CodeSales)

	_, err := f.eng.PostManual(core.JournalEntry{Date: day(1)})
	if err == nil {
		t.Error("expected error for entry without lines")
	}

	_, err = f.eng.PostManual(core.JournalEntry{
		Date: day(1),
		Lines: []core.JournalLine{
			{AccountID: cash.ID, Debit: dec("100")},
			{AccountID: sales.ID, Credit: dec("90")},
		},
	})
	if err == nil {
		t.Error("expected error for imbalanced entry")
	}

	entry, err := f.eng.PostManual(core.JournalEntry{
		Date: day(1),
		Lines: []core.JournalLine{
			{AccountID: cash.ID, Debit: dec("100")},
			{AccountID: sales.ID, Credit: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Type != core.EntryManual {
		t.Errorf("entry type = %s, want manual", entry.Type)
	}
}

func TestEveryPostedEntryBalances(t *testing.T) {
	f := newFixture()
	f.addCustomer(t, 1, "Acme", "0")
	f.addSupplier(t, 2, "Supplies Inc", "0")

	invoices := []core.Invoice{
		salesInvoice(10, 1),
		{ID: 11, Number: "101", Type: core.SalesInvoice, ClientID: 1, Subtotal: dec("80"), Total: dec("80"), PaymentStatus: core.PaymentPaid, PaidAmount: dec("80"), PaymentMethod: core.MethodBank, Date: day(2)},
		{ID: 12, Number: "P1", Type: core.PurchaseInvoice, ClientID: 2, Subtotal: dec("60"), VATAmount: dec("9"), Total: dec("69"), PaymentStatus: core.PaymentPending, Date: day(3)},
		{ID: 13, Number: "R1", Type: core.SalesInvoice, IsReturn: true, ClientID: 1, Subtotal: dec("20"), Total: dec("20"), PaymentStatus: core.PaymentPaid, PaidAmount: dec("20"), Date: day(4)},
	}
	for i := range invoices {
		f.eng.PostInvoice(f.addInvoice(invoices[i]))
	}
	f.eng.PostVoucher(&core.Voucher{ID: 50, Type: core.ReceiptVoucher, EntityID: 1, Amount: dec("40"), Number: "RV-50", Date: day(5)})

	total := decimal.Zero
	for i := range f.snap.Entries {
		e := &f.snap.Entries[i]
		assertBalanced(t, e)
		total = total.Add(e.TotalDebit()).Sub(e.TotalCredit())
	}
	assertEqual(t, total, decimal.Zero, "ledger-wide debit minus credit")
}
