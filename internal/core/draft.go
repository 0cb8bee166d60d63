package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DraftLine is a single debit or credit line in a proposed manual entry.
type DraftLine struct {
	AccountCode string `json:"account_code" jsonschema_description:"The exact account code from the provided chart of accounts"`
	IsDebit     bool   `json:"is_debit" jsonschema_description:"True if this line is a debit, false for credit"`
	Amount      string `json:"amount" jsonschema_description:"The exact monetary amount of this line (always positive) as a string"`
}

// EntryDraft is a proposed manual journal entry, produced either by an
// operator or by the AI drafting assistant. A draft must pass Validate
// before it can be committed to the ledger.
type EntryDraft struct {
	Date        string      `json:"date" jsonschema_description:"The entry date in YYYY-MM-DD format"`
	Description string      `json:"description" jsonschema_description:"A brief summary of the business event"`
	Confidence  float64     `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning   string      `json:"reasoning" jsonschema_description:"Explanation for the proposed entry"`
	Lines       []DraftLine `json:"lines" jsonschema_description:"List of debit and credit lines; debits must equal credits"`
}

// Normalize cleans up common formatting issues in operator or model output.
func (d *EntryDraft) Normalize() {
	d.Date = strings.TrimSpace(d.Date)
	d.Description = strings.TrimSpace(d.Description)
	for i := range d.Lines {
		line := &d.Lines[i]
		line.AccountCode = strings.TrimSpace(line.AccountCode)
		if strings.TrimSpace(line.Amount) == "" || strings.EqualFold(line.Amount, "null") {
			line.Amount = "0.00"
		}
	}
}

// Validate enforces the double-entry rules on the draft.
func (d *EntryDraft) Validate() error {
	if d.Date == "" {
		return errors.New("draft must specify a date")
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	if len(d.Lines) < 2 {
		return errors.New("entry must have at least 2 lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range d.Lines {
		if line.AccountCode == "" {
			return errors.New("every line needs an account code")
		}
		amt, err := decimal.NewFromString(line.Amount)
		if err != nil {
			return fmt.Errorf("invalid amount %q for account %s: %v", line.Amount, line.AccountCode, err)
		}
		if amt.IsNegative() {
			return fmt.Errorf("amount cannot be negative for account %s", line.AccountCode)
		}
		if amt.IsZero() {
			return fmt.Errorf("amount must be > 0 for account %s", line.AccountCode)
		}
		if line.IsDebit {
			totalDebit = totalDebit.Add(amt)
		} else {
			totalCredit = totalCredit.Add(amt)
		}
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("imbalance: debits %s != credits %s", totalDebit, totalCredit)
	}
	return nil
}

// Entry converts a validated draft into a journal entry, resolving each
// account code through the registry.
func (d *EntryDraft) Entry(reg *Registry) (JournalEntry, error) {
	date, err := time.Parse("2006-01-02", d.Date)
	if err != nil {
		return JournalEntry{}, fmt.Errorf("invalid date format: %w", err)
	}
	entry := JournalEntry{
		Date:        date,
		Description: d.Description,
		Type:        EntryManual,
	}
	for _, line := range d.Lines {
		acct, err := reg.Resolve(line.AccountCode)
		if err != nil {
			return JournalEntry{}, err
		}
		amt, err := decimal.NewFromString(line.Amount)
		if err != nil {
			return JournalEntry{}, fmt.Errorf("invalid amount %q: %v", line.Amount, err)
		}
		if line.IsDebit {
			entry.Lines = append(entry.Lines, debit(acct.ID, amt, ""))
		} else {
			entry.Lines = append(entry.Lines, credit(acct.ID, amt, ""))
		}
	}
	return entry, nil
}
