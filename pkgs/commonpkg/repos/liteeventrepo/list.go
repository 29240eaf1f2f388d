package liteeventrepo

import (
	"context"
	"fmt"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
)

func (r *repo) IterateRecent(ctx context.Context, db *sqlx.DB, limit int, fn func(*model.OnChainEvent) error) error {
	query := `
		SELECT ` + summaryColumns + `
		FROM on_chain_events
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryxContext(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("failed to list recent events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var event model.OnChainEvent
		if err := rows.StructScan(&event); err != nil {
			return fmt.Errorf("failed to scan event: %w", err)
		}
		if err := fn(&event); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r *repo) ListNotMirrored(ctx context.Context, db *sqlx.DB, limit int) ([]model.OnChainEvent, error) {
	query := `
		SELECT e.id, e.tx_hash, e.payload, e.chain, e.from_address, e.to_address, e.value, e.block_number,
			   COALESCE(e.tags, '') AS tags, e.embedding, e.created_at
		FROM on_chain_events e
		LEFT JOIN event_mirrors m ON m.tx_hash = e.tx_hash
		WHERE m.tx_hash IS NULL
		ORDER BY e.id ASC
		LIMIT ?
	`

	var events []model.OnChainEvent
	err := db.SelectContext(ctx, &events, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events not mirrored: %w", err)
	}

	return events, nil
}
