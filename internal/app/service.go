package app

import (
	"context"
	"time"

	"bookkeeper/internal/bus"
	"bookkeeper/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, HTTP) call.
// It decouples presentation from the engine: implementations contain no
// display logic. Mutating operations run one at a time; each reads the full
// store snapshot, runs the engine, writes the updated collections back, and
// publishes exactly one change event after the whole operation (including
// reconciliation) has completed.
type ApplicationService interface {
	// CreateAccount adds an explicit chart-of-accounts entry.
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*core.Account, error)

	// ListAccounts returns the chart of accounts ordered as stored.
	ListAccounts(ctx context.Context) ([]core.Account, error)

	// SeedChart materializes every required account up front.
	SeedChart(ctx context.Context) ([]core.Account, error)

	// CreateCustomer registers a customer with an opening balance and a
	// dedicated sub-account under the shared customers account.
	CreateCustomer(ctx context.Context, req CreateEntityRequest) (*core.Customer, error)

	// CreateSupplier registers a supplier. Opening balances are stored
	// negative (amount owed); a positive input is negated.
	CreateSupplier(ctx context.Context, req CreateEntityRequest) (*core.Supplier, error)

	ListCustomers(ctx context.Context) ([]core.Customer, error)
	ListSuppliers(ctx context.Context) ([]core.Supplier, error)

	// CreateInvoice records an invoice document. Paid invoices post their
	// journal entry immediately; deferred ones post on settlement.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error)

	// PostInvoice derives and records the journal entry for an existing
	// invoice. Safe to repeat: an active entry makes it a no-op.
	PostInvoice(ctx context.Context, invoiceID int64) (*core.JournalEntry, error)

	// SettleVoucher validates and applies a receipt/payment voucher against
	// an invoice or an entity's opening balance.
	SettleVoucher(ctx context.Context, req SettleVoucherRequest) (*core.SettlementResult, error)

	// ReverseVoucher deletes a voucher by reversing its journal entry and
	// recomputing the affected invoice or opening balance.
	ReverseVoucher(ctx context.Context, voucherID int64) (*core.ReversalResult, error)

	ListInvoices(ctx context.Context) ([]core.Invoice, error)
	ListVouchers(ctx context.Context) ([]core.Voucher, error)
	ListEntries(ctx context.Context) ([]core.JournalEntry, error)

	// AccountStatement returns the ordered ledger for one account,
	// optionally rolling up its sub-accounts.
	AccountStatement(ctx context.Context, accountID int64, from, to time.Time, includeSub bool) (*core.Statement, error)

	// EntityStatement returns the ordered ledger for one customer/supplier.
	EntityStatement(ctx context.Context, entityID int64, et core.EntityType, from, to time.Time) (*core.Statement, error)

	TrialBalance(ctx context.Context, asOf time.Time) (*core.TrialBalance, error)
	IncomeStatement(ctx context.Context, from, to time.Time) (*core.IncomeStatement, error)
	BalanceSheet(ctx context.Context, asOf time.Time) (*core.BalanceSheet, error)
	CashFlow(ctx context.Context, from, to time.Time) (*core.CashFlow, error)

	// DraftEntry asks the AI assistant to draft a manual journal entry from
	// a natural-language event description. Nothing is posted.
	DraftEntry(ctx context.Context, text string) (*core.EntryDraft, error)

	// CommitDraft validates a draft and posts it. Must only be called after
	// explicit operator approval.
	CommitDraft(ctx context.Context, draft core.EntryDraft) (*core.JournalEntry, error)

	// Subscribe returns the change notification channel.
	Subscribe() <-chan bus.Event
}
