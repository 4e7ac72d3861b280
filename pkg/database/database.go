package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Execer runs schema statements
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS lead_status_changes (
	id          UUID PRIMARY KEY,
	customer_id TEXT NOT NULL,
	lead_id     TEXT NOT NULL,
	lead_email  TEXT NOT NULL DEFAULT '',
	old_status  TEXT NOT NULL,
	new_status  TEXT NOT NULL,
	changed_by  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_lead_status_changes_customer_created
	ON lead_status_changes (customer_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_lead_status_changes_email
	ON lead_status_changes (customer_id, LOWER(lead_email));
`

// NewPool connects to Postgres and verifies the connection
func NewPool(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	if logger != nil {
		logger.Info("database connected",
			zap.String("host", config.ConnConfig.Host),
			zap.String("database", config.ConnConfig.Database),
			zap.Int32("max_conns", config.MaxConns))
	}
	return pool, nil
}

// Migrate creates the audit trail table and its indexes
func Migrate(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
