package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// StatementTransaction is one dated movement in a statement. Balance is the
// running balance after this transaction, positive meaning net debit.
type StatementTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// StatementSummary buckets an entity's invoices by payment status.
type StatementSummary struct {
	InvoiceCounts map[PaymentStatus]int             `json:"invoice_counts"`
	InvoiceTotals map[PaymentStatus]decimal.Decimal `json:"invoice_totals"`
	VoucherCount  int                               `json:"voucher_count"`
	VoucherTotal  decimal.Decimal                   `json:"voucher_total"`
}

// Statement is an ordered ledger for one account or one entity: opening
// balance, time-windowed transactions with running balances, and totals.
type Statement struct {
	AccountID      int64                  `json:"account_id,omitempty"`
	EntityID       int64                  `json:"entity_id,omitempty"`
	EntityType     EntityType             `json:"entity_type,omitempty"`
	Title          string                 `json:"title"`
	From           time.Time              `json:"from,omitempty"`
	To             time.Time              `json:"to,omitempty"`
	OpeningBalance decimal.Decimal        `json:"opening_balance"`
	Transactions   []StatementTransaction `json:"transactions"`
	TotalDebit     decimal.Decimal        `json:"total_debit"`
	TotalCredit    decimal.Decimal        `json:"total_credit"`
	ClosingBalance decimal.Decimal        `json:"closing_balance"`
	Summary        *StatementSummary      `json:"summary,omitempty"`
}

// StatementGenerator computes account and entity statements from a snapshot.
type StatementGenerator struct {
	snap *Snapshot
	reg  *Registry
}

func NewStatementGenerator(snap *Snapshot, reg *Registry) *StatementGenerator {
	return &StatementGenerator{snap: snap, reg: reg}
}

// inWindow reports whether d falls inside [from, to], both bounds inclusive
// and either bound optional (zero time).
func inWindow(d, from, to time.Time) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func beforeWindow(d, from time.Time) bool {
	return !from.IsZero() && d.Before(from)
}

// AccountStatement builds the ledger for one account. With includeSub the
// account's full descendant set is rolled up, and for the customers or
// suppliers aggregate account, invoice and voucher activity that never posted
// a journal line (deferred invoices) is synthesized from the documents of
// each descendant entity account.
func (g *StatementGenerator) AccountStatement(accountID int64, from, to time.Time, includeSub bool) (*Statement, error) {
	acct := g.snap.Account(accountID)
	if acct == nil {
		return nil, validationErr("account", "account %d not found", accountID)
	}

	ids := map[int64]bool{acct.ID: true}
	var descendants []Account
	if includeSub {
		descendants = g.reg.Descendants(acct.Code)
		for _, d := range descendants {
			ids[d.ID] = true
		}
	}

	st := &Statement{
		AccountID: acct.ID,
		Title:     acct.Name,
		From:      from,
		To:        to,
	}

	var candidates []StatementTransaction
	for i := range g.snap.Entries {
		entry := &g.snap.Entries[i]
		for _, line := range entry.Lines {
			if !ids[line.AccountID] {
				continue
			}
			if beforeWindow(entry.Date, from) {
				st.OpeningBalance = st.OpeningBalance.Add(line.Debit).Sub(line.Credit)
				continue
			}
			if !inWindow(entry.Date, from, to) {
				continue
			}
			desc := line.Description
			if desc == "" {
				desc = entry.Description
			}
			candidates = append(candidates, StatementTransaction{
				Date:        entry.Date,
				Description: desc,
				Reference:   entry.Reference,
				Debit:       line.Debit,
				Credit:      line.Credit,
			})
		}
	}

	if includeSub {
		candidates = append(candidates, g.synthesizeUnposted(acct, descendants, from, to, st)...)
	}

	finishStatement(st, candidates)
	return st, nil
}

// synthesizeUnposted creates pseudo-transactions for invoices and vouchers of
// the aggregate account's descendant entities when no active journal entry
// exists for them, so deferred activity still shows on the aggregate ledger.
func (g *StatementGenerator) synthesizeUnposted(acct *Account, descendants []Account, from, to time.Time, st *Statement) []StatementTransaction {
	var et EntityType
	switch acct.Code {
	case CodeCustomers:
		et = EntityCustomer
	case CodeSuppliers:
		et = EntitySupplier
	default:
		return nil
	}

	entityIDs := map[int64]bool{}
	for _, d := range descendants {
		if d.LinkedEntityType == et && d.LinkedEntityID != 0 {
			entityIDs[d.LinkedEntityID] = true
		}
	}

	var out []StatementTransaction
	add := func(t StatementTransaction) {
		if beforeWindow(t.Date, from) {
			st.OpeningBalance = st.OpeningBalance.Add(t.Debit).Sub(t.Credit)
			return
		}
		if inWindow(t.Date, from, to) {
			out = append(out, t)
		}
	}

	for i := range g.snap.Invoices {
		inv := &g.snap.Invoices[i]
		if inv.EntityType() != et || !entityIDs[inv.ClientID] {
			continue
		}
		if g.snap.ActiveEntryByReference(inv.Reference()) != nil {
			continue
		}
		add(invoiceTransaction(inv, et))
	}
	for i := range g.snap.Vouchers {
		v := &g.snap.Vouchers[i]
		if v.EntityType() != et || !entityIDs[v.EntityID] {
			continue
		}
		if g.snap.ActiveEntryByReference(v.Reference()) != nil {
			continue
		}
		add(voucherTransaction(v, et))
	}
	return out
}

// EntityStatement builds the ledger for one customer or supplier, seeded with
// the entity's stored opening balance rather than derived journal history.
// Sign convention: customer sales invoices debit, customer receipts credit;
// supplier purchase invoices credit, supplier payments debit. Return invoices
// are excluded: their Total was already adjusted on the original invoice by
// the invoicing layer, and they post only against cash and revenue accounts.
func (g *StatementGenerator) EntityStatement(entityID int64, et EntityType, from, to time.Time) (*Statement, error) {
	st := &Statement{
		EntityID:   entityID,
		EntityType: et,
		From:       from,
		To:         to,
	}
	switch et {
	case EntityCustomer:
		c := g.snap.Customer(entityID)
		if c == nil {
			return nil, validationErr("entity", "customer %d not found", entityID)
		}
		st.Title = c.Name
		st.OpeningBalance = c.Balance
	case EntitySupplier:
		s := g.snap.Supplier(entityID)
		if s == nil {
			return nil, validationErr("entity", "supplier %d not found", entityID)
		}
		st.Title = s.Name
		st.OpeningBalance = s.Balance
	default:
		return nil, validationErr("entity", "unknown entity type %q", et)
	}

	summary := &StatementSummary{
		InvoiceCounts: map[PaymentStatus]int{},
		InvoiceTotals: map[PaymentStatus]decimal.Decimal{},
	}
	st.Summary = summary

	var candidates []StatementTransaction
	add := func(t StatementTransaction) {
		if beforeWindow(t.Date, from) {
			st.OpeningBalance = st.OpeningBalance.Add(t.Debit).Sub(t.Credit)
			return
		}
		if inWindow(t.Date, from, to) {
			candidates = append(candidates, t)
		}
	}

	for i := range g.snap.Invoices {
		inv := &g.snap.Invoices[i]
		if inv.EntityType() != et || inv.ClientID != entityID || inv.IsReturn {
			continue
		}
		if inWindow(inv.Date, from, to) {
			summary.InvoiceCounts[inv.PaymentStatus]++
			summary.InvoiceTotals[inv.PaymentStatus] = summary.InvoiceTotals[inv.PaymentStatus].Add(inv.Total)
		}
		add(invoiceTransaction(inv, et))
	}
	for i := range g.snap.Vouchers {
		v := &g.snap.Vouchers[i]
		if v.EntityType() != et || v.EntityID != entityID {
			continue
		}
		if inWindow(v.Date, from, to) {
			summary.VoucherCount++
			summary.VoucherTotal = summary.VoucherTotal.Add(v.Amount)
		}
		add(voucherTransaction(v, et))
	}

	finishStatement(st, candidates)
	return st, nil
}

// invoiceTransaction maps an invoice onto the entity sign convention.
func invoiceTransaction(inv *Invoice, et EntityType) StatementTransaction {
	t := StatementTransaction{
		Date:        inv.Date,
		Description: invoiceNarration(inv),
		Reference:   inv.Reference(),
	}
	debitSide := et == EntityCustomer
	if inv.IsReturn {
		debitSide = !debitSide
	}
	if debitSide {
		t.Debit = inv.Total
	} else {
		t.Credit = inv.Total
	}
	return t
}

// voucherTransaction maps a voucher onto the entity sign convention:
// receipts credit the customer, payments debit the supplier.
func voucherTransaction(v *Voucher, et EntityType) StatementTransaction {
	t := StatementTransaction{
		Date:        v.Date,
		Description: string(v.Type) + " voucher " + v.Number,
		Reference:   v.Reference(),
	}
	if et == EntityCustomer {
		t.Credit = v.Amount
	} else {
		t.Debit = v.Amount
	}
	return t
}

// finishStatement sorts candidates by date, computes running balances and
// totals, and derives the closing balance.
func finishStatement(st *Statement, candidates []StatementTransaction) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Date.Before(candidates[j].Date)
	})
	running := st.OpeningBalance
	for i := range candidates {
		running = running.Add(candidates[i].Debit).Sub(candidates[i].Credit)
		candidates[i].Balance = running
		st.TotalDebit = st.TotalDebit.Add(candidates[i].Debit)
		st.TotalCredit = st.TotalCredit.Add(candidates[i].Credit)
	}
	st.Transactions = candidates
	st.ClosingBalance = st.OpeningBalance.Add(st.TotalDebit).Sub(st.TotalCredit)
}
