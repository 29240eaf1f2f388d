package liteeventrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const eventColumns = `id, tx_hash, payload, chain, from_address, to_address, value, block_number,
	COALESCE(tags, '') AS tags, embedding, created_at`

const summaryColumns = `id, tx_hash, payload, chain, from_address, to_address, value, block_number,
	COALESCE(tags, '') AS tags, created_at`

// repo stores events in SQLite. Embeddings are kept as pgvector text
// literals and searched by brute force.
type repo struct {
}

func New() *repo {
	return &repo{}
}

////////////////////////////////////////////////////////////////////////////////

func (r *repo) TotalCount(ctx context.Context, db *sqlx.DB) (int, error) {
	var count int
	err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM on_chain_events")
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}

	return count, nil
}

func (r *repo) CountByChain(ctx context.Context, db *sqlx.DB) (map[string]int, error) {
	var rows []struct {
		Chain string `db:"chain"`
		Count int    `db:"count"`
	}
	err := db.SelectContext(ctx, &rows, "SELECT chain, COUNT(*) AS count FROM on_chain_events GROUP BY chain")
	if err != nil {
		return nil, fmt.Errorf("failed to count events by chain: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Chain] = row.Count
	}
	return counts, nil
}

////////////////////////////////////////////////////////////////////////////////

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
