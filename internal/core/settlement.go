package core

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bookkeeper/internal/logger"
)

// Reconciler applies receipt/payment vouchers against invoices or entity
// opening balances, and unwinds them safely when a voucher is deleted.
type Reconciler struct {
	snap *Snapshot
	eng  *PostingEngine
	log  zerolog.Logger
}

func NewReconciler(snap *Snapshot, eng *PostingEngine) *Reconciler {
	return &Reconciler{snap: snap, eng: eng, log: logger.WithComponent("settlement")}
}

// SettlementResult reports everything one settlement changed.
type SettlementResult struct {
	Voucher     Voucher         `json:"voucher"`
	Entry       *JournalEntry   `json:"entry"`
	Invoice     *Invoice        `json:"invoice,omitempty"`
	Overpayment decimal.Decimal `json:"overpayment"`
	// EntityBalance is the entity's opening balance after an opening-balance
	// settlement; nil when the voucher targeted an invoice.
	EntityBalance *decimal.Decimal `json:"entity_balance,omitempty"`
}

// ReversalResult reports everything a voucher deletion changed.
type ReversalResult struct {
	Entry         *JournalEntry    `json:"entry,omitempty"`
	Invoice       *Invoice         `json:"invoice,omitempty"`
	EntityBalance *decimal.Decimal `json:"entity_balance,omitempty"`
}

// SettleVoucher validates the voucher, posts its two-line journal entry, and
// reconciles either the linked invoice's paid amount and status or the
// entity's opening balance. Validation runs first and returns before any
// snapshot mutation.
func (r *Reconciler) SettleVoucher(v Voucher) (*SettlementResult, error) {
	if err := r.validate(&v); err != nil {
		return nil, err
	}

	if v.ID == 0 {
		id, err := r.eng.newID("vouchers")
		if err != nil {
			return nil, fmt.Errorf("allocate voucher id: %w", err)
		}
		v.ID = id
	}
	if v.Number == "" {
		v.Number = voucherNumber(v.Type, v.ID)
	}

	entry := r.eng.PostVoucher(&v)
	if entry.Failed() {
		// The diagnostic entry stays in the ledger, but the voucher is not
		// saved and no balances move, so the caller can retry cleanly.
		return &SettlementResult{Voucher: v, Entry: entry}, nil
	}

	r.snap.Vouchers = append(r.snap.Vouchers, v)
	result := &SettlementResult{Voucher: v, Entry: entry}

	if v.InvoiceID != 0 {
		inv := r.snap.Invoice(v.InvoiceID)
		result.Overpayment = r.reconcileInvoice(inv, 0)
		result.Invoice = inv
	} else {
		result.EntityBalance = r.drawDownOpeningBalance(&v)
	}
	return result, nil
}

// validate enforces the settlement pre-conditions: the voucher amount must
// not exceed the invoice's net remaining amount, or the magnitude of the
// entity's opening balance for an opening-balance settlement. Violations are
// hard validation errors, never silent clamps.
func (r *Reconciler) validate(v *Voucher) error {
	if v.EntityID == 0 {
		return validationErr("entity", "a customer or supplier is required")
	}
	if !v.Amount.IsPositive() {
		return validationErr("amount", "amount must be greater than zero")
	}

	if v.InvoiceID != 0 {
		inv := r.snap.Invoice(v.InvoiceID)
		if inv == nil {
			return validationErr("invoice", "invoice %d not found", v.InvoiceID)
		}
		if inv.EntityType() != v.EntityType() {
			return validationErr("invoice", "a %s voucher cannot settle a %s invoice", v.Type, inv.Type)
		}
		if exceeds(v.Amount, inv.Remaining()) {
			return validationErr("amount", "amount %s exceeds remaining %s on invoice %s",
				v.Amount, inv.Remaining(), inv.Number)
		}
		return nil
	}

	balance, err := r.openingBalance(v)
	if err != nil {
		return err
	}
	if exceeds(v.Amount, balance.Abs()) {
		return validationErr("amount", "amount %s exceeds opening balance %s", v.Amount, balance.Abs())
	}
	return nil
}

func (r *Reconciler) openingBalance(v *Voucher) (decimal.Decimal, error) {
	if v.EntityType() == EntityCustomer {
		c := r.snap.Customer(v.EntityID)
		if c == nil {
			return decimal.Zero, validationErr("entity", "customer %d not found", v.EntityID)
		}
		return c.Balance, nil
	}
	s := r.snap.Supplier(v.EntityID)
	if s == nil {
		return decimal.Zero, validationErr("entity", "supplier %d not found", v.EntityID)
	}
	return s.Balance, nil
}

// reconcileInvoice recomputes the invoice's paid amount and status from the
// direct payment plus every surviving linked voucher of the matching type,
// skipping excludeVoucherID when a voucher is mid-deletion. It never adjusts
// incrementally, so repeated settlements and reversals cannot drift.
// Returns the overpayment excess, if any.
func (r *Reconciler) reconcileInvoice(inv *Invoice, excludeVoucherID int64) decimal.Decimal {
	totalPaid := inv.DirectPaid.Add(r.voucherTotal(inv, excludeVoucherID))
	wasUnpaid := inv.PaymentStatus != PaymentPaid
	overpayment := decimal.Zero

	switch {
	case atLeast(totalPaid, inv.Total) || !inv.Total.IsPositive():
		if totalPaid.GreaterThan(inv.Total) {
			// The excess is reported to the caller as an entity credit; the
			// invoice's own paid amount is clamped at the net payable.
			overpayment = totalPaid.Sub(inv.Total)
		}
		inv.PaidAmount = inv.Total
		inv.PaymentStatus = PaymentPaid
		if wasUnpaid {
			// A deferred invoice is not posted to cash accounts until it is
			// actually settled; post it now. The idempotence guard makes this
			// a no-op when the invoice was already posted at creation.
			r.eng.PostInvoice(inv)
		}
	case totalPaid.IsPositive():
		inv.PaidAmount = totalPaid
		inv.PaymentStatus = PaymentPartial
	default:
		inv.PaidAmount = decimal.Zero
		inv.PaymentStatus = PaymentPending
	}
	return overpayment
}

// voucherTotal sums the surviving vouchers of the invoice's settlement type.
func (r *Reconciler) voucherTotal(inv *Invoice, excludeVoucherID int64) decimal.Decimal {
	want := ReceiptVoucher
	if inv.Type == PurchaseInvoice {
		want = PaymentVoucher
	}
	total := decimal.Zero
	for i := range r.snap.Vouchers {
		v := &r.snap.Vouchers[i]
		if v.InvoiceID == inv.ID && v.Type == want && v.ID != excludeVoucherID {
			total = total.Add(v.Amount)
		}
	}
	return total
}

// drawDownOpeningBalance applies a voucher with no invoice directly to the
// entity's opening balance: customer receipts decrease the balance, supplier
// payments increase it (supplier balances are stored negative, so paying
// moves the balance toward zero).
func (r *Reconciler) drawDownOpeningBalance(v *Voucher) *decimal.Decimal {
	if v.EntityType() == EntityCustomer {
		c := r.snap.Customer(v.EntityID)
		c.Balance = c.Balance.Sub(v.Amount)
		return &c.Balance
	}
	s := r.snap.Supplier(v.EntityID)
	s.Balance = s.Balance.Add(v.Amount)
	return &s.Balance
}

// ReverseVoucher unwinds a voucher: it posts a reversal of the voucher's
// journal entry, recomputes the linked invoice from the remaining vouchers
// only (or restores the entity's opening balance), and deletes the voucher
// record last so a failure mid-sequence leaves it visible for retry.
func (r *Reconciler) ReverseVoucher(voucherID int64, date time.Time) (*ReversalResult, error) {
	v := r.snap.Voucher(voucherID)
	if v == nil {
		return nil, validationErr("voucher", "voucher %d not found", voucherID)
	}
	voucher := *v

	result := &ReversalResult{}
	if orig := r.snap.EntryByVoucher(voucherID); orig != nil && !orig.Failed() {
		result.Entry = r.eng.ReverseEntry(orig, date)
	} else {
		r.log.Warn().
			Int64("voucher_id", voucherID).
			Msg("no journal entry found for voucher, reversing balances only")
	}

	if voucher.InvoiceID != 0 {
		inv := r.snap.Invoice(voucher.InvoiceID)
		if inv != nil {
			r.reconcileInvoice(inv, voucherID)
			result.Invoice = inv
		}
	} else {
		result.EntityBalance = r.restoreOpeningBalance(&voucher)
	}

	// Delete the voucher record last, once postings and balances are
	// consistent, so a failure above leaves it visible for retry.
	r.snap.DeleteVoucher(voucherID)
	return result, nil
}

func (r *Reconciler) restoreOpeningBalance(v *Voucher) *decimal.Decimal {
	if v.EntityType() == EntityCustomer {
		c := r.snap.Customer(v.EntityID)
		if c == nil {
			return nil
		}
		c.Balance = c.Balance.Add(v.Amount)
		return &c.Balance
	}
	s := r.snap.Supplier(v.EntityID)
	if s == nil {
		return nil
	}
	s.Balance = s.Balance.Sub(v.Amount)
	return &s.Balance
}

func voucherNumber(t VoucherType, id int64) string {
	if t == PaymentVoucher {
		return fmt.Sprintf("PV-%d", id)
	}
	return fmt.Sprintf("RV-%d", id)
}
