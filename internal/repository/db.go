// Package repository persists finished matches and their replays in
// PostgreSQL.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/riftbound/duel-server-go/internal/config"
)

// DB wraps the connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB opens a pool against the configured database and verifies the
// connection.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{pool: pool, logger: logger}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Stats exposes pool statistics for startup logging.
func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}

// migrate creates the match tables if they do not exist.
func (db *DB) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS matches (
	id          TEXT PRIMARY KEY,
	player0     TEXT NOT NULL,
	player1     TEXT NOT NULL,
	winner      INT  NOT NULL,
	score0      INT  NOT NULL,
	score1      INT  NOT NULL,
	turns       INT  NOT NULL,
	seed        BIGINT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS match_replays (
	match_id TEXT PRIMARY KEY REFERENCES matches(id) ON DELETE CASCADE,
	actions  JSONB NOT NULL
);`
	if _, err := db.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db.logger.Info("database schema ready")
	return nil
}
