package web

import (
	"net/http"

	"bookkeeper/internal/app"
)

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListInvoices(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, invoices)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req app.CreateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateInvoice(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

func (h *Handler) postInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.PostInvoice(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, entry)
}

func (h *Handler) listVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.svc.ListVouchers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, vouchers)
}

func (h *Handler) settleVoucher(w http.ResponseWriter, r *http.Request) {
	var req app.SettleVoucherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.SettleVoucher(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

func (h *Handler) reverseVoucher(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ReverseVoucher(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListEntries(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, entries)
}
