package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"bookkeeper/internal/core"
)

type draftRequest struct {
	Text string `json:"text"`
}

func (h *Handler) draftEntry(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	draft, err := h.svc.DraftEntry(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, draft)
}

func (h *Handler) commitDraft(w http.ResponseWriter, r *http.Request) {
	var draft core.EntryDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	entry, err := h.svc.CommitDraft(r.Context(), draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, entry)
}

// events streams change notifications as server-sent events until the client
// disconnects.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming unsupported", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	flusher.Flush()

	ch := h.svc.Subscribe()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
