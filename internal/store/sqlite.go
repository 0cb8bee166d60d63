package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	body       BLOB    NOT NULL,
	PRIMARY KEY (collection, position)
);
CREATE TABLE IF NOT EXISTS sequences (
	name       TEXT PRIMARY KEY,
	last_value INTEGER NOT NULL
);`

// SQLite is the embedded default backend: a single file, no server to run,
// which suits a small-business tool.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The engine serializes writes itself; a single connection keeps the
	// driver from hitting SQLITE_BUSY on overlapping reads.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) GetCollection(ctx context.Context, name string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM documents WHERE collection = ? ORDER BY position", name)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", name, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, body)
	}
	return docs, rows.Err()
}

func (s *SQLite) SaveCollection(ctx context.Context, name string, docs [][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", name); err != nil {
		return fmt.Errorf("clear collection %s: %w", name, err)
	}
	for i, body := range docs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO documents (collection, position, body) VALUES (?, ?, ?)",
			name, i, body); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) NextID(ctx context.Context, sequence string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sequences (name, last_value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET last_value = last_value + 1
		RETURNING last_value`, sequence).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", sequence, err)
	}
	return id, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
