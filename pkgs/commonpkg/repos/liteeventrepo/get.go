package liteeventrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
)

func (r *repo) GetByTxHash(ctx context.Context, db *sqlx.DB, txHash string) (*model.OnChainEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM on_chain_events WHERE tx_hash = ?`

	event := &model.OnChainEvent{}
	err := db.GetContext(ctx, event, query, txHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", txHash, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

func (r *repo) getByID(ctx context.Context, db *sqlx.DB, id int64) (*model.OnChainEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM on_chain_events WHERE id = ?`

	event := &model.OnChainEvent{}
	if err := db.GetContext(ctx, event, query, id); err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return event, nil
}
