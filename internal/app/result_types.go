package app

import "bookkeeper/internal/core"

// InvoiceResult pairs a stored invoice with the journal entry produced for
// it, if posting was not deferred.
type InvoiceResult struct {
	Invoice *core.Invoice      `json:"invoice"`
	Entry   *core.JournalEntry `json:"entry,omitempty"`
}
