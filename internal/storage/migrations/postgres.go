package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pair-performance-lab/internal/storage/postgres"
)

const postgresLedger = `CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// RunPostgresMigrations applies the embedded postgres files not yet recorded
// in schema_migrations.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	all, err := Load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, postgresLedger); err != nil {
		return fmt.Errorf("create %s: %w", ledgerTable, err)
	}

	rows, err := pool.Query(ctx, "SELECT version FROM "+ledgerTable)
	if err != nil {
		return fmt.Errorf("read %s: %w", ledgerTable, err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan %s: %w", ledgerTable, err)
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read %s: %w", ledgerTable, err)
	}

	for _, m := range pending(all, applied) {
		if err := applyPostgres(ctx, pool, m); err != nil {
			return err
		}
	}
	return nil
}

func applyPostgres(ctx context.Context, pool *postgres.Pool, m Migration) error {
	return pool.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO "+ledgerTable+" (version) VALUES ($1)", m.Version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		return nil
	})
}
