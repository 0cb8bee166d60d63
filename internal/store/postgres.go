package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	body       JSONB   NOT NULL,
	PRIMARY KEY (collection, position)
);
CREATE TABLE IF NOT EXISTS sequences (
	name       TEXT PRIMARY KEY,
	last_value BIGINT NOT NULL
);`

// Postgres backs the document store with JSONB rows for multi-machine setups.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) GetCollection(ctx context.Context, name string) ([][]byte, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT body FROM documents WHERE collection = $1 ORDER BY position", name)
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

func (p *Postgres) SaveCollection(ctx context.Context, name string, docs [][]byte) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM documents WHERE collection = $1", name); err != nil {
		return fmt.Errorf("clear collection %s: %w", name, err)
	}
	for i, body := range docs {
		if _, err := tx.Exec(ctx,
			"INSERT INTO documents (collection, position, body) VALUES ($1, $2, $3)",
			name, i, body); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) NextID(ctx context.Context, sequence string) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO sequences (name, last_value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET last_value = sequences.last_value + 1
		RETURNING last_value`, sequence).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", sequence, err)
	}
	return id, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
