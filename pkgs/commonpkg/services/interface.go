package services

import (
	"context"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
)

type EventRepo interface {
	GetByTxHash(ctx context.Context, db *sqlx.DB, txHash string) (*model.OnChainEvent, error)
	Create(ctx context.Context, db *sqlx.DB, event *model.OnChainEvent) (*model.OnChainEvent, error)
	SearchByVector(ctx context.Context, db *sqlx.DB, vec []float32, opts model.SearchOptions) ([]model.SearchHit, error)
	IterateRecent(ctx context.Context, db *sqlx.DB, limit int, fn func(*model.OnChainEvent) error) error
	TotalCount(ctx context.Context, db *sqlx.DB) (int, error)
	CountByChain(ctx context.Context, db *sqlx.DB) (map[string]int, error)
}

type MirrorRepo interface {
	ListNotMirrored(ctx context.Context, db *sqlx.DB, limit int) ([]model.OnChainEvent, error)
	BatchMarkMirrored(ctx context.Context, db *sqlx.DB, txHashes []string, documentIDs []string) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dim() int
}

type ChromaEventClient interface {
	GetCollectionCount(ctx context.Context) (int, error)
	BatchUpsertEvents(ctx context.Context, events []model.OnChainEvent) ([]string, error)
}
