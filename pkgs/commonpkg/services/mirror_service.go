package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

const DEFAULT_MIRROR_BATCH_SIZE = 50

// MirrorService copies stored events, embeddings included, into a Chroma
// collection. Ingestion never waits on it.
type MirrorService struct {
	db *sqlx.DB

	repo         MirrorRepo
	chromaClient ChromaEventClient
	logger       *log.Entry
}

func NewMirrorService(db *sqlx.DB, repo MirrorRepo, chromaClient ChromaEventClient) *MirrorService {
	return &MirrorService{
		db:           db,
		repo:         repo,
		chromaClient: chromaClient,
		logger:       log.WithField("service", "mirror_service"),
	}
}

// Sync mirrors pending events batch by batch until none are left and returns
// how many were mirrored. The first failing batch ends the run.
func (s *MirrorService) Sync(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DEFAULT_MIRROR_BATCH_SIZE
	}

	mirrored := 0
	for {
		if err := ctx.Err(); err != nil {
			return mirrored, err
		}

		events, err := s.repo.ListNotMirrored(ctx, s.db, batchSize)
		if err != nil {
			return mirrored, fmt.Errorf("failed to get events not mirrored: %w", err)
		}
		if len(events) == 0 {
			break
		}

		docIDs, err := s.chromaClient.BatchUpsertEvents(ctx, events)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to upsert event batch to Chroma")
			return mirrored, err
		}

		txHashes := make([]string, len(events))
		for i, event := range events {
			txHashes[i] = event.TxHash
		}
		if err := s.repo.BatchMarkMirrored(ctx, s.db, txHashes, docIDs); err != nil {
			s.logger.WithError(err).Warn("Failed to mark event batch as mirrored")
			return mirrored, err
		}

		mirrored += len(events)
		s.logger.Infof("Mirrored %d events", mirrored)

		if len(events) < batchSize {
			break
		}
	}

	if count, err := s.chromaClient.GetCollectionCount(ctx); err == nil {
		s.logger.WithField("collection_count", count).Info("Mirror sync finished")
	}
	return mirrored, nil
}
