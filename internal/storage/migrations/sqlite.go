package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

const sqliteLedger = `CREATE TABLE IF NOT EXISTS ` + ledgerTable + ` (
    version    TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`

// RunSQLiteMigrations applies the embedded sqlite files not yet recorded in
// schema_migrations.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	all, err := Load(SQLiteFS, "sqlite")
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, sqliteLedger); err != nil {
		return fmt.Errorf("create %s: %w", ledgerTable, err)
	}

	applied, err := sqliteApplied(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range pending(all, applied) {
		if err := applySQLite(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func sqliteApplied(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM "+ledgerTable)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ledgerTable, err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", ledgerTable, err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func applySQLite(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+ledgerTable+" (version, applied_at) VALUES (?, strftime('%s','now'))", m.Version); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Version, err)
	}
	return tx.Commit()
}
