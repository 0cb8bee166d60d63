package core

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bookkeeper/internal/logger"
)

// PostingEngine derives balanced journal entries from invoices and vouchers.
// It is the sole enforcement point of the double-entry law: the store layer
// never checks debit == credit itself.
type PostingEngine struct {
	snap  *Snapshot
	reg   *Registry
	newID IDAllocator
	log   zerolog.Logger
}

func NewPostingEngine(snap *Snapshot, reg *Registry, newID IDAllocator) *PostingEngine {
	return &PostingEngine{snap: snap, reg: reg, newID: newID, log: logger.WithComponent("posting")}
}

// PostInvoice records the journal entry for an invoice. If an active,
// successful entry already exists under the invoice's reference the call is
// a benign duplicate: it is logged and the existing entry returned untouched.
// Account resolution failures produce an entry with no lines and a
// diagnostic description; callers must check Failed() before treating the
// result as posted.
func (e *PostingEngine) PostInvoice(inv *Invoice) *JournalEntry {
	if existing := e.snap.ActiveEntryByReference(inv.Reference()); existing != nil && !existing.Failed() {
		e.log.Warn().
			Str("reference", inv.Reference()).
			Msg("invoice already posted, skipping duplicate")
		return existing
	}

	lines, err := e.invoiceLines(inv)
	if err != nil {
		return e.record(JournalEntry{
			Date:        inv.Date,
			Description: fmt.Sprintf("posting failed for %s: %v", inv.Reference(), err),
			Reference:   inv.Reference(),
			Type:        EntryInvoice,
		})
	}

	return e.record(JournalEntry{
		Date:        inv.Date,
		Description: invoiceNarration(inv),
		Reference:   inv.Reference(),
		Type:        EntryInvoice,
		Lines:       lines,
	})
}

func invoiceNarration(inv *Invoice) string {
	switch {
	case inv.Type == SalesInvoice && inv.IsReturn:
		return "Sales return " + inv.Number
	case inv.Type == SalesInvoice:
		return "Sales invoice " + inv.Number
	case inv.IsReturn:
		return "Purchase return " + inv.Number
	default:
		return "Purchase invoice " + inv.Number
	}
}

func (e *PostingEngine) invoiceLines(inv *Invoice) ([]JournalLine, error) {
	switch {
	case inv.Type == SalesInvoice && !inv.IsReturn:
		return e.salesLines(inv)
	case inv.Type == SalesInvoice:
		return e.salesReturnLines(inv)
	case !inv.IsReturn:
		return e.purchaseLines(inv)
	default:
		return e.purchaseReturnLines(inv)
	}
}

// salesLines: debit the customer (or the paying cash/bank account when the
// invoice is already paid) for the total; credit Sales for the subtotal;
// credit VAT payable; debit Discount Allowed. The discount is an expense-side
// debit offsetting the gross Sales credit, so net revenue comes out reduced.
func (e *PostingEngine) salesLines(inv *Invoice) ([]JournalLine, error) {
	debtor, err := e.receivableAccount(inv)
	if err != nil {
		return nil, err
	}
	sales, err := e.reg.Resolve(CodeSales)
	if err != nil {
		return nil, err
	}
	lines := []JournalLine{
		debit(debtor.ID, inv.Total, debtor.Name),
		credit(sales.ID, inv.Subtotal, "Sales"),
	}
	if inv.VATAmount.IsPositive() {
		vat, err := e.reg.Resolve(CodeVATPayable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, credit(vat.ID, inv.VATAmount, "VAT"))
	}
	if inv.DiscountAmount.IsPositive() {
		disc, err := e.reg.Resolve(CodeDiscountAllowed)
		if err != nil {
			return nil, err
		}
		lines = append(lines, debit(disc.ID, inv.DiscountAmount, "Discount allowed"))
	}
	return lines, nil
}

// salesReturnLines reverses a sale: money physically leaves through the
// cash/bank side and gross revenue is backed out. The customer's account is
// deliberately untouched; return invoices are excluded from the customer
// balance calculation, so only cash and revenue accounts move here.
func (e *PostingEngine) salesReturnLines(inv *Invoice) ([]JournalLine, error) {
	cashSide, err := e.settlementAccount(inv)
	if err != nil {
		return nil, err
	}
	sales, err := e.reg.Resolve(CodeSales)
	if err != nil {
		return nil, err
	}
	lines := []JournalLine{
		debit(sales.ID, inv.Subtotal, "Sales return"),
		credit(cashSide.ID, inv.Total, cashSide.Name),
	}
	if inv.VATAmount.IsPositive() {
		vat, err := e.reg.Resolve(CodeVATPayable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, debit(vat.ID, inv.VATAmount, "VAT"))
	}
	if inv.DiscountAmount.IsPositive() {
		disc, err := e.reg.Resolve(CodeDiscountAllowed)
		if err != nil {
			return nil, err
		}
		lines = append(lines, credit(disc.ID, inv.DiscountAmount, "Discount allowed"))
	}
	return lines, nil
}

func (e *PostingEngine) purchaseLines(inv *Invoice) ([]JournalLine, error) {
	purchases, err := e.reg.Resolve(CodePurchases)
	if err != nil {
		return nil, err
	}
	creditor, err := e.payableAccount(inv)
	if err != nil {
		return nil, err
	}
	lines := []JournalLine{
		debit(purchases.ID, inv.Subtotal, "Purchases"),
	}
	if inv.VATAmount.IsPositive() {
		vat, err := e.reg.Resolve(CodeVATReceivable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, debit(vat.ID, inv.VATAmount, "VAT"))
	}
	if inv.DiscountAmount.IsPositive() {
		disc, err := e.reg.Resolve(CodeDiscountEarned)
		if err != nil {
			return nil, err
		}
		lines = append(lines, credit(disc.ID, inv.DiscountAmount, "Discount earned"))
	}
	lines = append(lines, credit(creditor.ID, inv.Total, creditor.Name))
	return lines, nil
}

func (e *PostingEngine) purchaseReturnLines(inv *Invoice) ([]JournalLine, error) {
	cashSide, err := e.settlementAccount(inv)
	if err != nil {
		return nil, err
	}
	purchases, err := e.reg.Resolve(CodePurchases)
	if err != nil {
		return nil, err
	}
	lines := []JournalLine{
		debit(cashSide.ID, inv.Total, cashSide.Name),
		credit(purchases.ID, inv.Subtotal, "Purchase return"),
	}
	if inv.DiscountAmount.IsPositive() {
		disc, err := e.reg.Resolve(CodeDiscountEarned)
		if err != nil {
			return nil, err
		}
		lines = append(lines, debit(disc.ID, inv.DiscountAmount, "Discount earned"))
	}
	if inv.VATAmount.IsPositive() {
		vat, err := e.reg.Resolve(CodeVATReceivable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, credit(vat.ID, inv.VATAmount, "VAT"))
	}
	return lines, nil
}

// receivableAccount picks the debit side of a sales posting: the paying
// cash/bank account for a settled invoice, otherwise the customer's ledger
// account.
func (e *PostingEngine) receivableAccount(inv *Invoice) (Account, error) {
	if inv.PaymentStatus == PaymentPaid {
		return e.settlementAccount(inv)
	}
	return e.entityAccount(inv)
}

// payableAccount picks the credit side of a purchase posting.
func (e *PostingEngine) payableAccount(inv *Invoice) (Account, error) {
	if inv.PaymentStatus == PaymentPaid {
		return e.settlementAccount(inv)
	}
	return e.entityAccount(inv)
}

// settlementAccount is the cash or bank account money actually moved through.
func (e *PostingEngine) settlementAccount(inv *Invoice) (Account, error) {
	if inv.PaymentBankAccountID != 0 {
		if a := e.snap.Account(inv.PaymentBankAccountID); a != nil {
			return *a, nil
		}
	}
	if inv.PaymentMethod == MethodBank {
		return e.reg.Resolve(CodeBank)
	}
	return e.reg.Resolve(CodeCash)
}

// entityAccount is the customer's or supplier's ledger account: the dedicated
// sub-account when one exists, else the shared parent account.
func (e *PostingEngine) entityAccount(inv *Invoice) (Account, error) {
	if a, ok := e.reg.FindLinked(inv.EntityType(), inv.ClientID); ok {
		return a, nil
	}
	return e.reg.Resolve(entityParentCode(inv.EntityType()))
}

// PostVoucher records the two-line settlement entry for a voucher:
// receipt = debit cash/bank, credit the customer's account;
// payment = debit the supplier's account, credit cash/bank.
func (e *PostingEngine) PostVoucher(v *Voucher) *JournalEntry {
	fail := func(err error) *JournalEntry {
		return e.record(JournalEntry{
			Date:             v.Date,
			Description:      fmt.Sprintf("posting failed for %s: %v", v.Reference(), err),
			Reference:        v.Reference(),
			Type:             EntryVoucher,
			RelatedVoucherID: v.ID,
		})
	}

	cashSide, err := e.voucherCashAccount(v)
	if err != nil {
		return fail(err)
	}
	entitySide, err := e.voucherEntityAccount(v)
	if err != nil {
		return fail(err)
	}

	var lines []JournalLine
	var narration string
	if v.Type == ReceiptVoucher {
		narration = "Receipt voucher " + v.Number
		lines = []JournalLine{
			debit(cashSide.ID, v.Amount, cashSide.Name),
			credit(entitySide.ID, v.Amount, entitySide.Name),
		}
	} else {
		narration = "Payment voucher " + v.Number
		lines = []JournalLine{
			debit(entitySide.ID, v.Amount, entitySide.Name),
			credit(cashSide.ID, v.Amount, cashSide.Name),
		}
	}

	return e.record(JournalEntry{
		Date:             v.Date,
		Description:      narration,
		Reference:        v.Reference(),
		Type:             EntryVoucher,
		Lines:            lines,
		RelatedVoucherID: v.ID,
	})
}

func (e *PostingEngine) voucherCashAccount(v *Voucher) (Account, error) {
	if v.BankAccountID != 0 {
		if a := e.snap.Account(v.BankAccountID); a != nil {
			return *a, nil
		}
	}
	return e.reg.Resolve(CodeCash)
}

func (e *PostingEngine) voucherEntityAccount(v *Voucher) (Account, error) {
	if a, ok := e.reg.FindLinked(v.EntityType(), v.EntityID); ok {
		return a, nil
	}
	return e.reg.Resolve(entityParentCode(v.EntityType()))
}

// PostManual records an administration-created entry after checking that it
// carries lines and balances. Manual entries go through the same record path
// as derived ones so the audit trail stays uniform.
func (e *PostingEngine) PostManual(entry JournalEntry) (*JournalEntry, error) {
	if len(entry.Lines) == 0 {
		return nil, validationErr("lines", "entry must have at least one line")
	}
	if !entry.Balanced() {
		return nil, validationErr("lines", "debits %s do not equal credits %s",
			entry.TotalDebit(), entry.TotalCredit())
	}
	if entry.Type == "" {
		entry.Type = EntryManual
	}
	return e.record(entry), nil
}

// ReverseEntry records the controlled reversal of a posted entry: a new
// entry with every line's debit and credit swapped, never a mutation of the
// original. Reversing twice returns the existing reversal.
func (e *PostingEngine) ReverseEntry(orig *JournalEntry, date time.Time) *JournalEntry {
	if existing := e.snap.ReversalOf(orig.ID); existing != nil {
		e.log.Warn().
			Int64("entry_id", orig.ID).
			Msg("entry already reversed, returning existing reversal")
		return existing
	}

	lines := make([]JournalLine, len(orig.Lines))
	for i, l := range orig.Lines {
		lines[i] = JournalLine{
			AccountID:   l.AccountID,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: l.Description,
		}
	}
	return e.record(JournalEntry{
		Date:             date,
		Description:      "Reversal of " + orig.Description,
		Reference:        ReversalPrefix + orig.Reference,
		Type:             EntryReversal,
		Lines:            lines,
		RelatedVoucherID: orig.RelatedVoucherID,
		OriginalEntryID:  orig.ID,
	})
}

// record appends the entry to the snapshot and returns a pointer to the
// stored document. Failure entries are recorded too, so the audit trail is
// never silently empty.
func (e *PostingEngine) record(entry JournalEntry) *JournalEntry {
	id, err := e.newID("journal_entries")
	if err != nil {
		e.log.Error().Err(err).Msg("entry id allocation failed")
	}
	entry.ID = id
	e.snap.Entries = append(e.snap.Entries, entry)
	return &e.snap.Entries[len(e.snap.Entries)-1]
}

func debit(accountID int64, amount decimal.Decimal, desc string) JournalLine {
	return JournalLine{AccountID: accountID, Debit: amount, Description: desc}
}

func credit(accountID int64, amount decimal.Decimal, desc string) JournalLine {
	return JournalLine{AccountID: accountID, Credit: amount, Description: desc}
}
