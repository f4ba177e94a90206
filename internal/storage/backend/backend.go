// Package backend opens the stores selected by the storage configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pair-performance-lab/internal/config"
	"pair-performance-lab/internal/storage"
	"pair-performance-lab/internal/storage/clickhouse"
	"pair-performance-lab/internal/storage/memory"
	"pair-performance-lab/internal/storage/migrations"
	"pair-performance-lab/internal/storage/postgres"
	"pair-performance-lab/internal/storage/sqlite"
)

// Stores is an opened set of stores. Close releases every connection.
type Stores struct {
	Pairs     storage.TradePairStore
	Holdings  storage.HoldingStore
	Summaries storage.SummaryStore

	closers []func() error
}

// Open connects the configured backend and applies its migrations.
// Summaries go to ClickHouse when a DSN is set and stay in memory otherwise.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stores{}

	switch cfg.Backend {
	case config.BackendMemory, "":
		s.Pairs = memory.NewTradePairStore()
		s.Holdings = memory.NewHoldingStore()

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		s.Pairs = sqlite.NewTradePairStore(db)
		s.Holdings = sqlite.NewHoldingStore(db)
		logger.Info("opened sqlite store", "path", cfg.SQLitePath)

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		s.Pairs = postgres.NewTradePairStore(pool)
		s.Holdings = postgres.NewHoldingStore(pool)
		logger.Info("opened postgres store")

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if cfg.ClickhouseDSN == "" {
		s.Summaries = memory.NewSummaryStore()
		return s, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	s.closers = append(s.closers, conn.Close)
	s.Summaries = clickhouse.NewSummaryStore(conn)
	logger.Info("opened clickhouse summary store")

	return s, nil
}

// Close closes the opened connections in reverse order.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
