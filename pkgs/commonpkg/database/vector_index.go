package database

import (
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

const (
	VECTOR_INDEX_NAME = "idx_on_chain_events_embedding"

	// ivfflat cannot index vectors wider than this.
	maxIndexedDim = 2000
	// up to this many rows lists grows linearly, then with the square root
	linearListsRows = 1_000_000
	rowsPerList     = 1000
)

// EnsureVectorIndex builds the ivfflat index once the events table has rows.
// ivfflat picks its list centers from the rows present at build time, so an
// index built over an empty table sends most queries to the wrong lists.
// Until the index exists searches scan every row and are exact. It reports
// whether an index was created.
func EnsureVectorIndex(db *sqlx.DB, dim int) (bool, error) {
	logger := log.WithFields(log.Fields{
		"caller": "EnsureVectorIndex",
		"dim":    dim,
	})

	if db.DriverName() != DRIVER_POSTGRES {
		return false, nil
	}
	if dim > maxIndexedDim {
		logger.Warn("Vector dimension too wide for ivfflat, searches will scan sequentially")
		return false, nil
	}

	var exists bool
	if err := db.Get(&exists, "SELECT to_regclass($1) IS NOT NULL", VECTOR_INDEX_NAME); err != nil {
		return false, fmt.Errorf("failed to look up vector index: %w", err)
	}
	if exists {
		return false, nil
	}

	var rows int
	if err := db.Get(&rows, "SELECT COUNT(*) FROM on_chain_events"); err != nil {
		return false, fmt.Errorf("failed to count events: %w", err)
	}
	if rows == 0 {
		logger.Debug("No events yet, deferring vector index")
		return false, nil
	}

	lists := listsFor(rows)
	query := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON on_chain_events USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d)",
		VECTOR_INDEX_NAME,
		lists,
	)
	if _, err := db.Exec(query); err != nil {
		return false, fmt.Errorf("failed to create vector index: %w", err)
	}

	logger.WithFields(log.Fields{
		"rows":  rows,
		"lists": lists,
	}).Info("Vector index created")
	return true, nil
}

// RebuildVectorIndex drops the vector index and builds it again from the
// current rows, resizing its lists.
func RebuildVectorIndex(db *sqlx.DB, dim int) (bool, error) {
	if db.DriverName() != DRIVER_POSTGRES {
		return false, nil
	}
	if _, err := db.Exec("DROP INDEX IF EXISTS " + VECTOR_INDEX_NAME); err != nil {
		return false, fmt.Errorf("failed to drop vector index: %w", err)
	}
	return EnsureVectorIndex(db, dim)
}

// listsFor follows the pgvector sizing advice: rows/1000 up to a million
// rows, sqrt(rows) beyond.
func listsFor(rows int) int {
	lists := rows / rowsPerList
	if rows > linearListsRows {
		lists = int(math.Sqrt(float64(rows)))
	}
	if lists < 1 {
		lists = 1
	}
	return lists
}
