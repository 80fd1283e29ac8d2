package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"options-sim-lab/internal/storage/postgres"
)

const createPostgresVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// RunPostgresMigrations applies the embedded PostgreSQL migrations that
// are not yet recorded, each in its own transaction.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	migs, err := Load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, createPostgresVersionTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := postgresApplied(ctx, pool)
	if err != nil {
		return err
	}

	for _, m := range migs {
		if applied[m.Version] {
			continue
		}
		err := pool.InTx(ctx, func(tx pgx.Tx) error {
			// No arguments, so pgx uses the simple protocol and accepts several statements.
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}

func postgresApplied(ctx context.Context, pool *postgres.Pool) (map[int]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}

	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[int(v)] = true
	}
	return applied, nil
}
