package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the shared connection pool and creates the tables the
// repositories need. Later calls are no-ops that return the first result.
func InitDB(ctx context.Context, dbURL string) error {
	var err error
	once.Do(func() {
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		p, connErr := pgxpool.NewWithConfig(ctx, config)
		if connErr != nil {
			err = fmt.Errorf("failed to create pool: %w", connErr)
			return
		}
		if pingErr := p.Ping(ctx); pingErr != nil {
			p.Close()
			err = fmt.Errorf("failed to reach database: %w", pingErr)
			return
		}
		if _, execErr := p.Exec(ctx, schemaSQL); execErr != nil {
			p.Close()
			err = fmt.Errorf("failed to create schema: %w", execErr)
			return
		}
		pool = p
	})
	return err
}

// GetPool returns the database connection pool, or nil when InitDB was not
// called or failed.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS creator_reports (
	id          UUID PRIMARY KEY,
	batch_id    TEXT NOT NULL DEFAULT '',
	provider    TEXT NOT NULL DEFAULT '',
	goal        TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	total_notes INTEGER NOT NULL DEFAULT 0,
	result      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS creator_reports_created_at_idx ON creator_reports (created_at DESC);

CREATE TABLE IF NOT EXISTS batch_sheets (
	batch_id   TEXT NOT NULL,
	file_name  TEXT NOT NULL,
	position   INTEGER NOT NULL,
	sheet      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (batch_id, file_name)
);
`
