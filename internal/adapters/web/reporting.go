package web

import (
	"net/http"
	"strconv"
	"time"

	"bookkeeper/internal/core"
)

const dateLayout = "2006-01-02"

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// queryDate parses an optional YYYY-MM-DD query parameter. A missing
// parameter is the zero time, meaning no bound.
func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

// window parses the from/to query parameters shared by statements and reports.
func window(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	var err error
	if from, err = queryDate(r, "from"); err != nil {
		writeError(w, r, "invalid from date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return from, to, false
	}
	if to, err = queryDate(r, "to"); err != nil {
		writeError(w, r, "invalid to date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return from, to, false
	}
	return from, to, true
}

func (h *Handler) accountStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	from, to, ok := window(w, r)
	if !ok {
		return
	}
	includeSub := r.URL.Query().Get("include_sub") == "true"
	st, err := h.svc.AccountStatement(r.Context(), id, from, to, includeSub)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

func (h *Handler) customerStatement(w http.ResponseWriter, r *http.Request) {
	h.entityStatement(w, r, core.EntityCustomer)
}

func (h *Handler) supplierStatement(w http.ResponseWriter, r *http.Request) {
	h.entityStatement(w, r, core.EntitySupplier)
}

func (h *Handler) entityStatement(w http.ResponseWriter, r *http.Request, et core.EntityType) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	from, to, ok := window(w, r)
	if !ok {
		return
	}
	st, err := h.svc.EntityStatement(r.Context(), id, et, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "as_of")
	if err != nil {
		writeError(w, r, "invalid as_of date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	tb, err := h.svc.TrialBalance(r.Context(), asOf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, tb)
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	from, to, ok := window(w, r)
	if !ok {
		return
	}
	report, err := h.svc.IncomeStatement(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "as_of")
	if err != nil {
		writeError(w, r, "invalid as_of date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	report, err := h.svc.BalanceSheet(r.Context(), asOf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) cashFlow(w http.ResponseWriter, r *http.Request) {
	from, to, ok := window(w, r)
	if !ok {
		return
	}
	report, err := h.svc.CashFlow(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}
