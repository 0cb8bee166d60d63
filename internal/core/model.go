package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Equity    AccountType = "equity"
	Revenue   AccountType = "revenue"
	Expense   AccountType = "expense"
	Bank      AccountType = "bank"
	Cash      AccountType = "cash"
)

// IsCashLike reports whether balances on this account type represent money
// on hand, which is what the cash flow report aggregates over.
func (t AccountType) IsCashLike() bool {
	return t == Cash || t == Bank
}

type EntityType string

const (
	EntityCustomer EntityType = "customer"
	EntitySupplier EntityType = "supplier"
)

// Account is one chart-of-accounts entry. An account with ParentCode set is a
// sub-account and inherits its parent's type for reporting roll-ups.
// LinkedEntityType/LinkedEntityID tie a sub-account to one customer or supplier.
type Account struct {
	ID               int64       `json:"id"`
	Code             string      `json:"code"`
	Name             string      `json:"name"`
	Type             AccountType `json:"type"`
	ParentCode       string      `json:"parent_code,omitempty"`
	LinkedEntityType EntityType  `json:"linked_entity_type,omitempty"`
	LinkedEntityID   int64       `json:"linked_entity_id,omitempty"`
}

type EntryType string

const (
	EntryInvoice  EntryType = "invoice"
	EntryVoucher  EntryType = "voucher"
	EntryReversal EntryType = "reversal"
	EntryManual   EntryType = "manual"
)

// ReversalPrefix marks the reference of a reversal entry. An entry whose
// reference R has a companion entry with reference ReversalPrefix+R is
// considered reversed and no longer active.
const ReversalPrefix = "REV-"

type JournalLine struct {
	AccountID   int64           `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntry is one balanced set of debit/credit lines. Entries are
// immutable once recorded; corrections go through the reversal path only.
type JournalEntry struct {
	ID               int64         `json:"id"`
	Date             time.Time     `json:"date"`
	Description      string        `json:"description"`
	Reference        string        `json:"reference"`
	Type             EntryType     `json:"type"`
	Lines            []JournalLine `json:"lines"`
	RelatedVoucherID int64         `json:"related_voucher_id,omitempty"`
	OriginalEntryID  int64         `json:"original_entry_id,omitempty"`
}

// Failed reports whether this entry records a posting failure. The posting
// engine never panics on a missing account; it records an entry with no lines
// and a diagnostic description instead, and callers must check before
// treating the result as posted.
func (e *JournalEntry) Failed() bool {
	return len(e.Lines) == 0
}

func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// Balanced reports whether total debits equal total credits within tolerance.
func (e *JournalEntry) Balanced() bool {
	return withinEpsilon(e.TotalDebit(), e.TotalCredit())
}

type InvoiceType string

const (
	SalesInvoice    InvoiceType = "sales"
	PurchaseInvoice InvoiceType = "purchase"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodBank     PaymentMethod = "bank"
	MethodDeferred PaymentMethod = "deferred"
)

// Invoice is a sales or purchase document. DirectPaid is the amount settled
// at creation time outside the voucher flow; PaidAmount is the derived field
// the reconciler maintains as DirectPaid plus the surviving linked vouchers,
// clamped to Total. For a return invoice the original invoice's Total has
// already been reduced by the invoicing layer before this core sees it.
type Invoice struct {
	ID                   int64           `json:"id"`
	Number               string          `json:"number"`
	Type                 InvoiceType     `json:"type"`
	IsReturn             bool            `json:"is_return"`
	ClientID             int64           `json:"client_id"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	VATAmount            decimal.Decimal `json:"vat_amount"`
	Total                decimal.Decimal `json:"total"`
	PaymentStatus        PaymentStatus   `json:"payment_status"`
	DirectPaid           decimal.Decimal `json:"direct_paid"`
	PaidAmount           decimal.Decimal `json:"paid_amount"`
	PaymentMethod        PaymentMethod   `json:"payment_method"`
	PaymentBankAccountID int64           `json:"payment_bank_account_id,omitempty"`
	Date                 time.Time       `json:"date"`
}

// Reference is the journal reference this invoice posts under. The posting
// engine refuses to create a second active entry with the same reference.
func (i *Invoice) Reference() string {
	return "INV-" + i.Number
}

// EntityType returns which side of the ledger the invoice's client sits on.
func (i *Invoice) EntityType() EntityType {
	if i.Type == PurchaseInvoice {
		return EntitySupplier
	}
	return EntityCustomer
}

// Remaining is the net amount still owed on the invoice.
func (i *Invoice) Remaining() decimal.Decimal {
	return i.Total.Sub(i.PaidAmount)
}

type VoucherType string

const (
	ReceiptVoucher VoucherType = "receipt"
	PaymentVoucher VoucherType = "payment"
)

// Voucher settles a specific invoice (InvoiceID set) or draws down an
// entity's opening balance (InvoiceID zero), never both.
type Voucher struct {
	ID            int64           `json:"id"`
	Type          VoucherType     `json:"type"`
	EntityID      int64           `json:"entity_id"`
	InvoiceID     int64           `json:"invoice_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Number        string          `json:"voucher_number"`
	BankAccountID int64           `json:"bank_account_id,omitempty"`
}

// EntityType returns the entity side a voucher of this type settles:
// receipts collect from customers, payments pay suppliers.
func (v *Voucher) EntityType() EntityType {
	if v.Type == PaymentVoucher {
		return EntitySupplier
	}
	return EntityCustomer
}

func (v *Voucher) Reference() string {
	return "VCH-" + v.Number
}

// Customer carries only its opening balance; all posted activity lives in
// journal entries, invoices and vouchers. Positive balance = owed to us.
type Customer struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Supplier opening balances are stored negative: the magnitude is what we
// owe, and paying a supplier moves the balance toward zero.
type Supplier struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}
