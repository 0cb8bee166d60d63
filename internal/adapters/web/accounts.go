package web

import (
	"net/http"

	"bookkeeper/internal/app"
)

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, accounts)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req app.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.svc.CreateAccount(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, account)
}

func (h *Handler) seedChart(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.SeedChart(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, accounts)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req app.CreateEntityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	customer, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, customer)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, suppliers)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req app.CreateEntityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	supplier, err := h.svc.CreateSupplier(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, supplier)
}
