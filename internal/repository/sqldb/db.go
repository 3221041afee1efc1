// Package sqldb provides the SQL-backed incident history store. It speaks
// PostgreSQL through pgx in production and SQLite through modernc for
// single-node deployments and tests.
package sqldb

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"firescribe/internal/config"
)

func init() {
	// sqlx does not know the modernc driver name.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewDB creates a connection pool for the configured driver.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	if cfg.Driver == "sqlite" {
		db, err := sqlx.Connect("sqlite", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		// SQLite admits one writer at a time; a single connection avoids
		// SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
		return db, nil
	}

	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}

// Schema statements are portable across both drivers: ids and timestamps are
// TEXT (RFC 3339 UTC), extracted fields are a JSON document.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS incidents (
		id TEXT PRIMARY KEY,
		captured_at TEXT NOT NULL,
		source TEXT NOT NULL,
		narrative TEXT NOT NULL,
		audio_key TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		fields TEXT NOT NULL,
		completeness DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_captured_at ON incidents (captured_at)`,
}

// EnsureSchema creates the incidents table when it does not exist yet. The
// sqlite deployment has no separate migration step, so the server calls this
// on boot.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
