package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookkeeper/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps engine errors onto HTTP statuses: validation errors
// become 422 with the offending field, everything else is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     verr.Message,
			Code:      "VALIDATION",
			Field:     verr.Field,
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}
	writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
