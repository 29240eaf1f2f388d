package eventrepo

import (
	"context"
	"fmt"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

type hitRow struct {
	model.OnChainEvent
	Distance float64 `db:"distance"`
}

// SearchByVector ranks events by cosine distance to vec. When opts.Probes is
// set, ivfflat.probes is changed with SET LOCAL inside a dedicated
// transaction, so the setting ends with the query.
func (r *repo) SearchByVector(ctx context.Context, db *sqlx.DB, vec []float32, opts model.SearchOptions) ([]model.SearchHit, error) {
	// <=> is NaN against a zero vector; such rows count as unrelated.
	query := `
		SELECT ` + eventColumns + `, COALESCE(NULLIF(embedding <=> $1, 'NaN'::float8), 1) AS distance
		FROM on_chain_events`
	args := []interface{}{pgvector.NewVector(vec), opts.TopK}
	if opts.Chain != "" {
		query += `
		WHERE chain = $3`
		args = append(args, opts.Chain)
	}
	query += `
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	var rows []hitRow
	if opts.Probes > 0 {
		if err := r.searchWithProbes(ctx, db, opts.Probes, &rows, query, args); err != nil {
			return nil, err
		}
	} else {
		if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("failed to search events: %w", err)
		}
	}

	hits := make([]model.SearchHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, model.SearchHit{
			Event:    row.OnChainEvent,
			Distance: row.Distance,
			Score:    1 - row.Distance,
		})
	}
	return hits, nil
}

func (r *repo) searchWithProbes(ctx context.Context, db *sqlx.DB, probes int, dest *[]hitRow, query string, args []interface{}) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// SET does not take bind parameters; probes is an int so formatting is safe.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL ivfflat.probes = %d", probes)); err != nil {
		return fmt.Errorf("failed to set probes: %w", err)
	}

	if err = tx.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("failed to search events: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
