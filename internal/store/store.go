// Package store is the persisted document store: named collections of JSON
// documents plus a monotonic id generator. It holds no business rules; the
// engine reads whole collections, computes, and writes whole collections back.
package store

import (
	"context"
	"fmt"

	"bookkeeper/internal/config"
)

// Collection names used by the engine.
const (
	Accounts       = "accounts"
	JournalEntries = "journal_entries"
	Invoices       = "invoices"
	Vouchers       = "vouchers"
	Customers      = "customers"
	Suppliers      = "suppliers"
)

// Collections lists every collection the engine persists.
var Collections = []string{Accounts, JournalEntries, Invoices, Vouchers, Customers, Suppliers}

type Store interface {
	// GetCollection returns every document in a collection, in insertion order.
	// An unknown collection is an empty one, not an error.
	GetCollection(ctx context.Context, name string) ([][]byte, error)
	// SaveCollection replaces a collection's documents wholesale.
	SaveCollection(ctx context.Context, name string, docs [][]byte) error
	// NextID returns the next value of a named monotonic sequence, starting at 1.
	NextID(ctx context.Context, sequence string) (int64, error)
	Close() error
}

// Open builds the store backend selected by the configuration.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return OpenSQLite(cfg.SQLitePath)
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
