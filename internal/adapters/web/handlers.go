// Package web is the HTTP JSON adapter. It translates requests into
// ApplicationService calls and holds no business rules of its own.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookkeeper/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc app.ApplicationService
}

// NewHandler wires the chi router with all routes.
func NewHandler(svc app.ApplicationService) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Chart of accounts ─────────────────────────────────────────────────────
	r.Get("/api/accounts", h.listAccounts)
	r.Post("/api/accounts", h.createAccount)
	r.Post("/api/accounts/seed", h.seedChart)
	r.Get("/api/accounts/{id}/statement", h.accountStatement)

	// ── Entities ──────────────────────────────────────────────────────────────
	r.Get("/api/customers", h.listCustomers)
	r.Post("/api/customers", h.createCustomer)
	r.Get("/api/customers/{id}/statement", h.customerStatement)
	r.Get("/api/suppliers", h.listSuppliers)
	r.Post("/api/suppliers", h.createSupplier)
	r.Get("/api/suppliers/{id}/statement", h.supplierStatement)

	// ── Documents ─────────────────────────────────────────────────────────────
	r.Get("/api/invoices", h.listInvoices)
	r.Post("/api/invoices", h.createInvoice)
	r.Post("/api/invoices/{id}/post", h.postInvoice)
	r.Get("/api/vouchers", h.listVouchers)
	r.Post("/api/vouchers", h.settleVoucher)
	r.Delete("/api/vouchers/{id}", h.reverseVoucher)
	r.Get("/api/entries", h.listEntries)

	// ── Reports ───────────────────────────────────────────────────────────────
	r.Get("/api/reports/trial-balance", h.trialBalance)
	r.Get("/api/reports/income-statement", h.incomeStatement)
	r.Get("/api/reports/balance-sheet", h.balanceSheet)
	r.Get("/api/reports/cash-flow", h.cashFlow)

	// ── AI drafting ───────────────────────────────────────────────────────────
	r.Post("/api/drafts", h.draftEntry)
	r.Post("/api/drafts/commit", h.commitDraft)

	// ── Change events ─────────────────────────────────────────────────────────
	r.Get("/api/events", h.events)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// pathID extracts the {id} URL parameter as an int64, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseInt64(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id in path", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v, writing an appropriate error
// response on failure. HTTP 413 when the body exceeds the middleware limit,
// HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
