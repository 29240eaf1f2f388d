package eventrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
)

// GetByTxHash returns the stored event or an error wrapping errs.ErrNotFound.
func (r *repo) GetByTxHash(ctx context.Context, db *sqlx.DB, txHash string) (*model.OnChainEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM on_chain_events
		WHERE tx_hash = $1
	`

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
