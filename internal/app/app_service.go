package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bookkeeper/internal/bus"
	"bookkeeper/internal/core"
	"bookkeeper/internal/logger"
	"bookkeeper/internal/store"
)

// EntryDrafter produces manual entry drafts from natural-language text. The
// AI package provides the production implementation; a nil drafter disables
// the feature without affecting the rest of the service.
type EntryDrafter interface {
	DraftEntry(ctx context.Context, text string, chart []core.Account) (*core.EntryDraft, error)
}

// Service is the production ApplicationService. Mutations take the service
// mutex, load the full snapshot, run the engine, write every collection back,
// and publish one change event. Reads load a snapshot without the mutex; the
// store backends are safe for concurrent access.
type Service struct {
	mu      sync.Mutex
	store   store.Store
	bus     *bus.Broadcaster
	drafter EntryDrafter
	log     zerolog.Logger
}

var _ ApplicationService = (*Service)(nil)

func NewService(st store.Store, b *bus.Broadcaster, drafter EntryDrafter) *Service {
	return &Service{
		store:   st,
		bus:     b,
		drafter: drafter,
		log:     logger.WithComponent("app"),
	}
}

// ── Snapshot plumbing ─────────────────────────────────────────────────────────

func loadDocs[T any](ctx context.Context, st store.Store, name string) ([]T, error) {
	docs, err := st.GetCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func saveDocs[T any](ctx context.Context, st store.Store, name string, items []T) error {
	docs := make([][]byte, 0, len(items))
	for i := range items {
		b, err := json.Marshal(items[i])
		if err != nil {
			return fmt.Errorf("encode %s document: %w", name, err)
		}
		docs = append(docs, b)
	}
	if err := st.SaveCollection(ctx, name, docs); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (s *Service) loadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	snap := &core.Snapshot{}
	var err error
	if snap.Accounts, err = loadDocs[core.Account](ctx, s.store, store.Accounts); err != nil {
		return nil, err
	}
	if snap.Entries, err = loadDocs[core.JournalEntry](ctx, s.store, store.JournalEntries); err != nil {
		return nil, err
	}
	if snap.Invoices, err = loadDocs[core.Invoice](ctx, s.store, store.Invoices); err != nil {
		return nil, err
	}
	if snap.Vouchers, err = loadDocs[core.Voucher](ctx, s.store, store.Vouchers); err != nil {
		return nil, err
	}
	if snap.Customers, err = loadDocs[core.Customer](ctx, s.store, store.Customers); err != nil {
		return nil, err
	}
	if snap.Suppliers, err = loadDocs[core.Supplier](ctx, s.store, store.Suppliers); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) saveSnapshot(ctx context.Context, snap *core.Snapshot) error {
	if err := saveDocs(ctx, s.store, store.Accounts, snap.Accounts); err != nil {
		return err
	}
	if err := saveDocs(ctx, s.store, store.JournalEntries, snap.Entries); err != nil {
		return err
	}
	if err := saveDocs(ctx, s.store, store.Invoices, snap.Invoices); err != nil {
		return err
	}
	if err := saveDocs(ctx, s.store, store.Vouchers, snap.Vouchers); err != nil {
		return err
	}
	if err := saveDocs(ctx, s.store, store.Customers, snap.Customers); err != nil {
		return err
	}
	return saveDocs(ctx, s.store, store.Suppliers, snap.Suppliers)
}

func (s *Service) allocator(ctx context.Context) core.IDAllocator {
	return func(collection string) (int64, error) {
		return s.store.NextID(ctx, collection)
	}
}

// mutate serializes a write operation: snapshot in, engine run, snapshot out,
// one event published only after the store write succeeded.
func (s *Service) mutate(ctx context.Context, op string, fn func(snap *core.Snapshot, reg *core.Registry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	reg := core.NewRegistry(snap, s.allocator(ctx))
	if err := fn(snap, reg); err != nil {
		return err
	}
	if err := s.saveSnapshot(ctx, snap); err != nil {
		return err
	}
	s.bus.Publish(op)
	s.log.Debug().Str("op", op).Msg("operation committed")
	return nil
}

// ── Accounts ──────────────────────────────────────────────────────────────────

func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (*core.Account, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("account code is required")
	}
	if req.Name == "" {
		return nil, fmt.Errorf("account name is required")
	}
	var created core.Account
	err := s.mutate(ctx, "account.create", func(snap *core.Snapshot, reg *core.Registry) error {
		if snap.AccountByCode(req.Code) != nil {
			return fmt.Errorf("account code %s already exists", req.Code)
		}
		if req.ParentCode != "" && snap.AccountByCode(req.ParentCode) == nil {
			return fmt.Errorf("parent account %s not found", req.ParentCode)
		}
		id, err := s.store.NextID(ctx, store.Accounts)
		if err != nil {
			return err
		}
		created = core.Account{
			ID:         id,
			Code:       req.Code,
			Name:       req.Name,
			Type:       req.Type,
			ParentCode: req.ParentCode,
		}
		snap.Accounts = append(snap.Accounts, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return loadDocs[core.Account](ctx, s.store, store.Accounts)
}

func (s *Service) SeedChart(ctx context.Context) ([]core.Account, error) {
	var seeded []core.Account
	err := s.mutate(ctx, "chart.seed", func(snap *core.Snapshot, reg *core.Registry) error {
		for _, tmpl := range core.RequiredAccounts {
			a, err := reg.Resolve(tmpl.Code)
			if err != nil {
				return err
			}
			seeded = append(seeded, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}

// ── Entities ──────────────────────────────────────────────────────────────────

func (s *Service) CreateCustomer(ctx context.Context, req CreateEntityRequest) (*core.Customer, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	var created core.Customer
	err := s.mutate(ctx, "customer.create", func(snap *core.Snapshot, reg *core.Registry) error {
		id, err := s.store.NextID(ctx, store.Customers)
		if err != nil {
			return err
		}
		created = core.Customer{ID: id, Name: req.Name, Balance: req.OpeningBalance}
		snap.Customers = append(snap.Customers, created)
		_, err = reg.EnsureEntityAccount(core.EntityCustomer, id, req.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) CreateSupplier(ctx context.Context, req CreateEntityRequest) (*core.Supplier, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("supplier name is required")
	}
	var created core.Supplier
	err := s.mutate(ctx, "supplier.create", func(snap *core.Snapshot, reg *core.Registry) error {
		id, err := s.store.NextID(ctx, store.Suppliers)
		if err != nil {
			return err
		}
		// Amounts we owe are held negative; accept a positive magnitude too.
		balance := req.OpeningBalance
		if balance.IsPositive() {
			balance = balance.Neg()
		}
		created = core.Supplier{ID: id, Name: req.Name, Balance: balance}
		snap.Suppliers = append(snap.Suppliers, created)
		_, err = reg.EnsureEntityAccount(core.EntitySupplier, id, req.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	return loadDocs[core.Customer](ctx, s.store, store.Customers)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	return loadDocs[core.Supplier](ctx, s.store, store.Suppliers)
}

// ── Invoices ──────────────────────────────────────────────────────────────────

func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("invoice needs at least one line")
	}
	if req.Type != core.SalesInvoice && req.Type != core.PurchaseInvoice {
		return nil, fmt.Errorf("unknown invoice type %q", req.Type)
	}

	subtotal := decimal.Zero
	for _, l := range req.Lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
	}
	if req.Discount.IsNegative() || req.Discount.GreaterThan(subtotal) {
		return nil, fmt.Errorf("discount must be between zero and the subtotal")
	}
	vat := subtotal.Sub(req.Discount).Mul(req.VATRate)
	total := subtotal.Sub(req.Discount).Add(vat)

	result := &InvoiceResult{}
	err := s.mutate(ctx, "invoice.create", func(snap *core.Snapshot, reg *core.Registry) error {
		if req.Type == core.SalesInvoice && snap.Customer(req.EntityID) == nil {
			return fmt.Errorf("customer %d not found", req.EntityID)
		}
		if req.Type == core.PurchaseInvoice && snap.Supplier(req.EntityID) == nil {
			return fmt.Errorf("supplier %d not found", req.EntityID)
		}

		id, err := s.store.NextID(ctx, store.Invoices)
		if err != nil {
			return err
		}
		number := req.Number
		if number == "" {
			number = invoiceNumber(req.Type, req.IsReturn, id)
		}
		for i := range snap.Invoices {
			if snap.Invoices[i].Number == number {
				return fmt.Errorf("invoice number %s already exists", number)
			}
		}

		inv := core.Invoice{
			ID:                   id,
			Number:               number,
			Type:                 req.Type,
			IsReturn:             req.IsReturn,
			ClientID:             req.EntityID,
			Subtotal:             subtotal,
			DiscountAmount:       req.Discount,
			VATAmount:            vat,
			Total:                total,
			DirectPaid:           req.DirectPaid,
			PaymentMethod:        req.PaymentMethod,
			PaymentBankAccountID: req.PaymentBankAccountID,
			Date:                 req.Date,
		}
		if inv.Date.IsZero() {
			inv.Date = time.Now()
		}
		applyDirectPayment(&inv)

		snap.Invoices = append(snap.Invoices, inv)
		stored := &snap.Invoices[len(snap.Invoices)-1]
		result.Invoice = stored

		// Deferred invoices post on settlement; everything else posts now.
		if !req.DeferPosting || stored.PaymentStatus == core.PaymentPaid {
			eng := core.NewPostingEngine(snap, reg, s.allocator(ctx))
			result.Entry = eng.PostInvoice(stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyDirectPayment derives the initial payment status from the amount
// settled at creation time. Returns are settled documents by construction.
func applyDirectPayment(inv *core.Invoice) {
	switch {
	case inv.IsReturn:
		inv.DirectPaid = inv.Total
		inv.PaidAmount = inv.Total
		inv.PaymentStatus = core.PaymentPaid
	case inv.DirectPaid.GreaterThanOrEqual(inv.Total):
		inv.DirectPaid = inv.Total
		inv.PaidAmount = inv.Total
		inv.PaymentStatus = core.PaymentPaid
	case inv.DirectPaid.IsPositive():
		inv.PaidAmount = inv.DirectPaid
		inv.PaymentStatus = core.PaymentPartial
	default:
		inv.PaidAmount = decimal.Zero
		inv.PaymentStatus = core.PaymentPending
	}
}

func invoiceNumber(t core.InvoiceType, isReturn bool, id int64) string {
	prefix := "SI"
	switch {
	case t == core.SalesInvoice && isReturn:
		prefix = "SR"
	case t == core.PurchaseInvoice && isReturn:
		prefix = "PR"
	case t == core.PurchaseInvoice:
		prefix = "PI"
	}
	return fmt.Sprintf("%s-%d", prefix, id)
}

func (s *Service) PostInvoice(ctx context.Context, invoiceID int64) (*core.JournalEntry, error) {
	var entry *core.JournalEntry
	err := s.mutate(ctx, "invoice.post", func(snap *core.Snapshot, reg *core.Registry) error {
		inv := snap.Invoice(invoiceID)
		if inv == nil {
			return fmt.Errorf("invoice %d not found", invoiceID)
		}
		eng := core.NewPostingEngine(snap, reg, s.allocator(ctx))
		entry = eng.PostInvoice(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ── Settlement ────────────────────────────────────────────────────────────────

func (s *Service) SettleVoucher(ctx context.Context, req SettleVoucherRequest) (*core.SettlementResult, error) {
	var result *core.SettlementResult
	err := s.mutate(ctx, "voucher.settle", func(snap *core.Snapshot, reg *core.Registry) error {
		v := core.Voucher{
			Type:          req.Type,
			EntityID:      req.EntityID,
			InvoiceID:     req.InvoiceID,
			Amount:        req.Amount,
			Date:          req.Date,
			BankAccountID: req.BankAccountID,
		}
		if v.Date.IsZero() {
			v.Date = time.Now()
		}
		if req.Method == core.MethodBank && v.BankAccountID == 0 {
			bank, err := reg.Resolve(core.CodeBank)
			if err != nil {
				return err
			}
			v.BankAccountID = bank.ID
		}

		eng := core.NewPostingEngine(snap, reg, s.allocator(ctx))
		rec := core.NewReconciler(snap, eng)
		var err error
		result, err = rec.SettleVoucher(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) ReverseVoucher(ctx context.Context, voucherID int64) (*core.ReversalResult, error) {
	var result *core.ReversalResult
	err := s.mutate(ctx, "voucher.reverse", func(snap *core.Snapshot, reg *core.Registry) error {
		eng := core.NewPostingEngine(snap, reg, s.allocator(ctx))
		rec := core.NewReconciler(snap, eng)
		var err error
		result, err = rec.ReverseVoucher(voucherID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ── Listings ──────────────────────────────────────────────────────────────────

func (s *Service) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	return loadDocs[core.Invoice](ctx, s.store, store.Invoices)
}

func (s *Service) ListVouchers(ctx context.Context) ([]core.Voucher, error) {
	return loadDocs[core.Voucher](ctx, s.store, store.Vouchers)
}

func (s *Service) ListEntries(ctx context.Context) ([]core.JournalEntry, error) {
	return loadDocs[core.JournalEntry](ctx, s.store, store.JournalEntries)
}

// ── Statements and reports ────────────────────────────────────────────────────

func (s *Service) AccountStatement(ctx context.Context, accountID int64, from, to time.Time, includeSub bool) (*core.Statement, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	gen := core.NewStatementGenerator(snap, core.NewRegistry(snap, s.allocator(ctx)))
	return gen.AccountStatement(accountID, from, to, includeSub)
}

func (s *Service) EntityStatement(ctx context.Context, entityID int64, et core.EntityType, from, to time.Time) (*core.Statement, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	gen := core.NewStatementGenerator(snap, core.NewRegistry(snap, s.allocator(ctx)))
	return gen.EntityStatement(entityID, et, from, to)
}

func (s *Service) reporter(ctx context.Context) (*core.Reporter, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.NewReporter(snap, core.NewRegistry(snap, s.allocator(ctx))), nil
}

func (s *Service) TrialBalance(ctx context.Context, asOf time.Time) (*core.TrialBalance, error) {
	rep, err := s.reporter(ctx)
	if err != nil {
		return nil, err
	}
	return rep.TrialBalance(asOf), nil
}

func (s *Service) IncomeStatement(ctx context.Context, from, to time.Time) (*core.IncomeStatement, error) {
	rep, err := s.reporter(ctx)
	if err != nil {
		return nil, err
	}
	return rep.IncomeStatement(from, to), nil
}

func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (*core.BalanceSheet, error) {
	rep, err := s.reporter(ctx)
	if err != nil {
		return nil, err
	}
	return rep.BalanceSheet(asOf), nil
}

func (s *Service) CashFlow(ctx context.Context, from, to time.Time) (*core.CashFlow, error) {
	rep, err := s.reporter(ctx)
	if err != nil {
		return nil, err
	}
	return rep.CashFlow(from, to), nil
}

// ── Drafting ──────────────────────────────────────────────────────────────────

func (s *Service) DraftEntry(ctx context.Context, text string) (*core.EntryDraft, error) {
	if s.drafter == nil {
		return nil, fmt.Errorf("entry drafting is not configured")
	}
	chart, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	draft, err := s.drafter.DraftEntry(ctx, text, chart)
	if err != nil {
		return nil, err
	}
	draft.Normalize()
	return draft, nil
}

func (s *Service) CommitDraft(ctx context.Context, draft core.EntryDraft) (*core.JournalEntry, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var posted *core.JournalEntry
	err := s.mutate(ctx, "entry.commit", func(snap *core.Snapshot, reg *core.Registry) error {
		entry, err := draft.Entry(reg)
		if err != nil {
			return err
		}
		eng := core.NewPostingEngine(snap, reg, s.allocator(ctx))
		posted, err = eng.PostManual(entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

func (s *Service) Subscribe() <-chan bus.Event {
	return s.bus.Subscribe()
}
