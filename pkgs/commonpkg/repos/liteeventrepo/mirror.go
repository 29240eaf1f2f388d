package liteeventrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func (r *repo) BatchMarkMirrored(ctx context.Context, db *sqlx.DB, txHashes []string, documentIDs []string) error {
	if len(txHashes) == 0 || len(documentIDs) == 0 {
		return nil
	}
	if len(txHashes) != len(documentIDs) {
		return fmt.Errorf("txHashes and documentIDs must have the same length")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO event_mirrors (tx_hash, document_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (tx_hash) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, txHash := range txHashes {
		if _, err = stmt.ExecContext(ctx, txHash, documentIDs[i], now); err != nil {
			return fmt.Errorf("failed to mark event %s as mirrored: %w", txHash, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
