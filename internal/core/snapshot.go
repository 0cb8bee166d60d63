package core

// Snapshot is the full document state one operation works on. The application
// layer reads every collection from the store into a Snapshot, runs the
// engine against it, and writes the updated collections back in one pass.
// Nothing in this package touches storage directly.
type Snapshot struct {
	Accounts  []Account      `json:"accounts"`
	Entries   []JournalEntry `json:"journal_entries"`
	Invoices  []Invoice      `json:"invoices"`
	Vouchers  []Voucher      `json:"vouchers"`
	Customers []Customer     `json:"customers"`
	Suppliers []Supplier     `json:"suppliers"`
}

// IDAllocator hands out monotonic document ids per collection. The store
// provides the production implementation; tests use CounterIDs.
type IDAllocator func(collection string) (int64, error)

// CounterIDs returns an allocator that numbers documents from start upward,
// sharing one counter across collections.
func CounterIDs(start int64) IDAllocator {
	next := start
	return func(string) (int64, error) {
		id := next
		next++
		return id, nil
	}
}

func (s *Snapshot) Account(id int64) *Account {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i]
		}
	}
	return nil
}

func (s *Snapshot) AccountByCode(code string) *Account {
	for i := range s.Accounts {
		if s.Accounts[i].Code == code {
			return &s.Accounts[i]
		}
	}
	return nil
}

func (s *Snapshot) Invoice(id int64) *Invoice {
	for i := range s.Invoices {
		if s.Invoices[i].ID == id {
			return &s.Invoices[i]
		}
	}
	return nil
}

func (s *Snapshot) Voucher(id int64) *Voucher {
	for i := range s.Vouchers {
		if s.Vouchers[i].ID == id {
			return &s.Vouchers[i]
		}
	}
	return nil
}

func (s *Snapshot) Customer(id int64) *Customer {
	for i := range s.Customers {
		if s.Customers[i].ID == id {
			return &s.Customers[i]
		}
	}
	return nil
}

func (s *Snapshot) Supplier(id int64) *Supplier {
	for i := range s.Suppliers {
		if s.Suppliers[i].ID == id {
			return &s.Suppliers[i]
		}
	}
	return nil
}

// EntryByReference returns the entry with the given reference, or nil.
func (s *Snapshot) EntryByReference(ref string) *JournalEntry {
	for i := range s.Entries {
		if s.Entries[i].Reference == ref {
			return &s.Entries[i]
		}
	}
	return nil
}

// ActiveEntryByReference returns the entry with the given reference unless a
// companion reversal entry exists for it. A reversed entry is not active.
func (s *Snapshot) ActiveEntryByReference(ref string) *JournalEntry {
	entry := s.EntryByReference(ref)
	if entry == nil {
		return nil
	}
	if s.EntryByReference(ReversalPrefix+ref) != nil {
		return nil
	}
	return entry
}

// EntryByVoucher returns the non-reversal entry recorded for a voucher.
func (s *Snapshot) EntryByVoucher(voucherID int64) *JournalEntry {
	for i := range s.Entries {
		if s.Entries[i].RelatedVoucherID == voucherID && s.Entries[i].Type != EntryReversal {
			return &s.Entries[i]
		}
	}
	return nil
}

// ReversalOf returns the reversal entry for the given original entry id, or nil.
func (s *Snapshot) ReversalOf(entryID int64) *JournalEntry {
	for i := range s.Entries {
		if s.Entries[i].OriginalEntryID == entryID && s.Entries[i].Type == EntryReversal {
			return &s.Entries[i]
		}
	}
	return nil
}

// DeleteVoucher removes a voucher document from the snapshot.
func (s *Snapshot) DeleteVoucher(id int64) {
	kept := s.Vouchers[:0]
	for _, v := range s.Vouchers {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	s.Vouchers = kept
}
