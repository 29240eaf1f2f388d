package eventrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
)

// Create inserts a new event. A tx hash that already exists yields an error
// wrapping errs.ErrDuplicateKey; the existing row is left untouched.
func (r *repo) Create(ctx context.Context, db *sqlx.DB, event *model.OnChainEvent) (*model.OnChainEvent, error) {
	query := `
		INSERT INTO on_chain_events (tx_hash, payload, chain, from_address, to_address, value, block_number, tags, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + eventColumns

	created := &model.OnChainEvent{}
	err := db.QueryRowxContext(ctx, query,
		event.TxHash,
		event.Payload,
		event.Chain,
		event.FromAddress,
		event.ToAddress,
		event.Value,
		event.BlockNumber,
		sql.NullString{String: event.Tags, Valid: event.Tags != ""},
		event.Embedding,
		time.Now().UTC(),
	).StructScan(created)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("event %s: %w", event.TxHash, errs.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to save event: %w", err)
	}

	return created, nil
}
