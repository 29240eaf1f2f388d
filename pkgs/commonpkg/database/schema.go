package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateEventTables creates the event tables for the connected dialect. The
// embedding column is sized to dim, so the schema follows VECTOR_DIM rather
// than a fixed migration.
func CreateEventTables(db *sqlx.DB, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", dim)
	}

	switch db.DriverName() {
	case DRIVER_POSTGRES:
		if err := execAll(db, postgresSchema(dim)); err != nil {
			return err
		}
		_, err := EnsureVectorIndex(db, dim)
		return err
	case DRIVER_SQLITE:
		return execAll(db, sqliteSchema())
	default:
		return fmt.Errorf("unsupported database driver: %s", db.DriverName())
	}
}

// DropEventTables removes everything CreateEventTables created, the vector
// index included.
func DropEventTables(db *sqlx.DB) error {
	return execAll(db, []string{
		"DROP TABLE IF EXISTS event_mirrors",
		"DROP TABLE IF EXISTS on_chain_events",
	})
}

////////////////////////////////////////////////////////////////////////////////

func postgresSchema(dim int) []string {
	return []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS on_chain_events (
			id BIGSERIAL PRIMARY KEY,
			tx_hash VARCHAR(255) NOT NULL UNIQUE,
			payload TEXT NOT NULL,
			chain VARCHAR(64) NOT NULL,
			from_address VARCHAR(42),
			to_address VARCHAR(42),
			value DOUBLE PRECISION CHECK (value >= 0),
			block_number BIGINT CHECK (block_number >= 0),
			tags TEXT,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, dim),
		`
		CREATE TABLE IF NOT EXISTS event_mirrors (
			id BIGSERIAL PRIMARY KEY,
			tx_hash VARCHAR(255) NOT NULL UNIQUE REFERENCES on_chain_events(tx_hash),
			document_id VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		"CREATE INDEX IF NOT EXISTS idx_on_chain_events_chain ON on_chain_events(chain)",
		"CREATE INDEX IF NOT EXISTS idx_on_chain_events_created_at ON on_chain_events(created_at)",
	}
}

func sqliteSchema() []string {
	return []string{
		`
		CREATE TABLE IF NOT EXISTS on_chain_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tx_hash VARCHAR NOT NULL UNIQUE,
			payload TEXT NOT NULL,
			chain VARCHAR NOT NULL,
			from_address VARCHAR,
			to_address VARCHAR,
			value REAL CHECK (value >= 0),
			block_number INTEGER CHECK (block_number >= 0),
			tags TEXT,
			embedding TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`
		CREATE TABLE IF NOT EXISTS event_mirrors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tx_hash VARCHAR NOT NULL UNIQUE REFERENCES on_chain_events(tx_hash),
			document_id VARCHAR NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		"CREATE INDEX IF NOT EXISTS idx_on_chain_events_chain ON on_chain_events(chain)",
		"CREATE INDEX IF NOT EXISTS idx_on_chain_events_created_at ON on_chain_events(created_at)",
	}
}

func execAll(db *sqlx.DB, queries []string) error {
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
