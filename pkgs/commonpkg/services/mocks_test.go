package services

import (
	"context"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) GetByTxHash(ctx context.Context, db *sqlx.DB, txHash string) (*model.OnChainEvent, error) {
	args := m.Called(ctx, db, txHash)
	event, _ := args.Get(0).(*model.OnChainEvent)
	return event, args.Error(1)
}

func (m *mockEventRepo) Create(ctx context.Context, db *sqlx.DB, event *model.OnChainEvent) (*model.OnChainEvent, error) {
	args := m.Called(ctx, db, event)
	created, _ := args.Get(0).(*model.OnChainEvent)
	return created, args.Error(1)
}

func (m *mockEventRepo) SearchByVector(ctx context.Context, db *sqlx.DB, vec []float32, opts model.SearchOptions) ([]model.SearchHit, error) {
	args := m.Called(ctx, db, vec, opts)
	hits, _ := args.Get(0).([]model.SearchHit)
	return hits, args.Error(1)
}

func (m *mockEventRepo) IterateRecent(ctx context.Context, db *sqlx.DB, limit int, fn func(*model.OnChainEvent) error) error {
	args := m.Called(ctx, db, limit, fn)
	return args.Error(0)
}

func (m *mockEventRepo) TotalCount(ctx context.Context, db *sqlx.DB) (int, error) {
	args := m.Called(ctx, db)
	return args.Int(0), args.Error(1)
}

func (m *mockEventRepo) CountByChain(ctx context.Context, db *sqlx.DB) (map[string]int, error) {
	args := m.Called(ctx, db)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

////////////////////////////////////////////////////////////////////////////////

type mockMirrorRepo struct {
	mock.Mock
}

func (m *mockMirrorRepo) ListNotMirrored(ctx context.Context, db *sqlx.DB, limit int) ([]model.OnChainEvent, error) {
	args := m.Called(ctx, db, limit)
	events, _ := args.Get(0).([]model.OnChainEvent)
	return events, args.Error(1)
}

func (m *mockMirrorRepo) BatchMarkMirrored(ctx context.Context, db *sqlx.DB, txHashes []string, documentIDs []string) error {
	args := m.Called(ctx, db, txHashes, documentIDs)
	return args.Error(0)
}

////////////////////////////////////////////////////////////////////////////////

type mockChromaClient struct {
	mock.Mock
}

func (m *mockChromaClient) GetCollectionCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockChromaClient) BatchUpsertEvents(ctx context.Context, events []model.OnChainEvent) ([]string, error) {
	args := m.Called(ctx, events)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}
