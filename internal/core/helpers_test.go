package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bookkeeper/internal/core"
)

// fixture bundles a fresh snapshot with the engine components wired over it.
type fixture struct {
	snap *core.Snapshot
	reg  *core.Registry
	eng  *core.PostingEngine
	rec  *core.Reconciler
	gen  *core.StatementGenerator
	rep  *core.Reporter
}

func newFixture() *fixture {
	snap := &core.Snapshot{}
	ids := core.CounterIDs(1)
	reg := core.NewRegistry(snap, ids)
	eng := core.NewPostingEngine(snap, reg, ids)
	return &fixture{
		snap: snap,
		reg:  reg,
		eng:  eng,
		rec:  core.NewReconciler(snap, eng),
		gen:  core.NewStatementGenerator(snap, reg),
		rep:  core.NewReporter(snap, reg),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

// addCustomer registers a customer with its dedicated sub-account.
func (f *fixture) addCustomer(t *testing.T, id int64, name, balance string) {
	t.Helper()
	f.snap.Customers = append(f.snap.Customers, core.Customer{ID: id, Name: name, Balance: dec(balance)})
	if _, err := f.reg.EnsureEntityAccount(core.EntityCustomer, id, name); err != nil {
		t.Fatalf("ensure customer account: %v", err)
	}
}

func (f *fixture) addSupplier(t *testing.T, id int64, name, balance string) {
	t.Helper()
	f.snap.Suppliers = append(f.snap.Suppliers, core.Supplier{ID: id, Name: name, Balance: dec(balance)})
	if _, err := f.reg.EnsureEntityAccount(core.EntitySupplier, id, name); err != nil {
		t.Fatalf("ensure supplier account: %v", err)
	}
}

func (f *fixture) addInvoice(inv core.Invoice) *core.Invoice {
	f.snap.Invoices = append(f.snap.Invoices, inv)
	return &f.snap.Invoices[len(f.snap.Invoices)-1]
}

func (f *fixture) accountByCode(t *testing.T, code string) core.Account {
	t.Helper()
	a := f.snap.AccountByCode(code)
	if a == nil {
		t.Fatalf("account %s not found", code)
	}
	return *a
}

func lineFor(t *testing.T, entry *core.JournalEntry, accountID int64) core.JournalLine {
	t.Helper()
	for _, l := range entry.Lines {
		if l.AccountID == accountID {
			return l
		}
	}
	t.Fatalf("no line for account %d in entry %q", accountID, entry.Description)
	return core.JournalLine{}
}

func assertEqual(t *testing.T, got, want decimal.Decimal, what string) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func assertBalanced(t *testing.T, entry *core.JournalEntry) {
	t.Helper()
	if entry.Failed() {
		t.Fatalf("entry failed: %s", entry.Description)
	}
	if !entry.Balanced() {
		t.Errorf("entry %q is unbalanced: debits %s, credits %s",
			entry.Description, entry.TotalDebit(), entry.TotalCredit())
	}
}
