package liteeventrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
)

func (r *repo) Create(ctx context.Context, db *sqlx.DB, event *model.OnChainEvent) (*model.OnChainEvent, error) {
	query := `
		INSERT INTO on_chain_events (tx_hash, payload, chain, from_address, to_address, value, block_number, tags, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query,
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
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("event %s: %w", event.TxHash, errs.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to save event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	// Read back instead of RETURNING: the driver only parses DATETIME for
	// plain column references.
	return r.getByID(ctx, db, id)
}
