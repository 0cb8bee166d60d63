package app

import (
	"time"

	"github.com/shopspring/decimal"

	"bookkeeper/internal/core"
)

// CreateAccountRequest adds an explicit account to the chart.
type CreateAccountRequest struct {
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	Type       core.AccountType `json:"type"`
	ParentCode string           `json:"parent_code,omitempty"`
}

// CreateEntityRequest registers a customer or supplier.
type CreateEntityRequest struct {
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// InvoiceLineRequest is one item line on an invoice.
type InvoiceLineRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest records a sales or purchase invoice.
type CreateInvoiceRequest struct {
	Type                 core.InvoiceType     `json:"type"`
	Number               string               `json:"number"`
	Date                 time.Time            `json:"date"`
	EntityID             int64                `json:"entity_id"`
	Lines                []InvoiceLineRequest `json:"lines"`
	Discount             decimal.Decimal      `json:"discount"`
	VATRate              decimal.Decimal      `json:"vat_rate"`
	IsReturn             bool                 `json:"is_return"`
	DirectPaid           decimal.Decimal      `json:"direct_paid"`
	PaymentMethod        core.PaymentMethod   `json:"payment_method,omitempty"`
	PaymentBankAccountID int64                `json:"payment_bank_account_id,omitempty"`
	DeferPosting         bool                 `json:"defer_posting"`
	Notes                string               `json:"notes,omitempty"`
}

// SettleVoucherRequest applies a receipt or payment voucher.
type SettleVoucherRequest struct {
	Type          core.VoucherType   `json:"type"`
	Date          time.Time          `json:"date"`
	EntityID      int64              `json:"entity_id"`
	InvoiceID     int64              `json:"invoice_id,omitempty"`
	Amount        decimal.Decimal    `json:"amount"`
	Method        core.PaymentMethod `json:"method"`
	BankAccountID int64              `json:"bank_account_id,omitempty"`
	Notes         string             `json:"notes,omitempty"`
}
