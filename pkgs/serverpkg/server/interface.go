package server

import (
	"context"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/WangWilly/xChain/pkgs/commonpkg/services"
)

type EventService interface {
	Ingest(ctx context.Context, req services.IngestRequest) (*model.OnChainEvent, error)
	Search(ctx context.Context, req services.SearchRequest) ([]model.SearchHit, error)
	SearchByVector(ctx context.Context, vec []float32, opts model.SearchOptions) ([]model.SearchHit, error)
	Insights(ctx context.Context, limit int) (*model.Insights, error)
	Stats(ctx context.Context) (*model.Stats, error)
}
