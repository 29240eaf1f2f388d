package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/metadata"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DEFAULT_CHAIN          = "bnb"
	DEFAULT_TOP_K          = 5
	DEFAULT_INSIGHTS_LIMIT = 50
)

// EventService ingests, searches and summarizes on-chain events.
type EventService struct {
	db *sqlx.DB

	repo     EventRepo
	embedder Embedder
	logger   *log.Entry
}

func NewEventService(db *sqlx.DB, repo EventRepo, embedder Embedder) *EventService {
	return &EventService{
		db:       db,
		repo:     repo,
		embedder: embedder,
		logger:   log.WithField("service", "event_service"),
	}
}

////////////////////////////////////////////////////////////////////////////////

// IngestRequest carries a raw payload plus optional caller supplied fields.
// A set override always wins over the value extracted from the payload.
type IngestRequest struct {
	TxHash      string
	Payload     string
	Chain       string
	FromAddress *string
	ToAddress   *string
	Value       *float64
	BlockNumber *int64
	Tags        []string
}

// Ingest stores the event for req.TxHash unless one already exists, in which
// case the stored event is returned unchanged.
func (s *EventService) Ingest(ctx context.Context, req IngestRequest) (*model.OnChainEvent, error) {
	logger := s.logger.WithFields(log.Fields{
		"caller":  "Ingest",
		"tx_hash": req.TxHash,
	})

	if err := normalizeIngestRequest(&req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByTxHash(ctx, s.db, req.TxHash)
	if err == nil {
		logger.Debug("Event already ingested")
		return existing, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	var (
		meta metadata.Metadata
		vec  []float32
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta = metadata.Extract(req.Payload)
		return nil
	})
	g.Go(func() error {
		var err error
		vec, err = s.embedder.Embed(gctx, req.Payload)
		if err != nil {
			return fmt.Errorf("failed to embed payload: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(vec) != s.embedder.Dim() {
		return nil, errs.NewDimensionMismatch(len(vec), s.embedder.Dim())
	}

	event := buildEvent(req, meta, vec)
	created, err := s.repo.Create(ctx, s.db, event)
	if err == nil {
		logger.WithField("id", created.ID).Info("Event ingested")
		return created, nil
	}
	if !errors.Is(err, errs.ErrDuplicateKey) {
		return nil, err
	}

	// Lost a race with a concurrent ingest of the same hash.
	winner, err := s.repo.GetByTxHash(ctx, s.db, req.TxHash)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("event %s conflicted but is not readable: %w", req.TxHash, errs.ErrDuplicateKey)
		}
		return nil, err
	}
	logger.Debug("Concurrent ingest won, returning stored event")
	return winner, nil
}

func normalizeIngestRequest(req *IngestRequest) error {
	if strings.TrimSpace(req.TxHash) == "" {
		return fmt.Errorf("%w: tx_hash is required", errs.ErrInvalidArgument)
	}
	if req.Payload == "" {
		return fmt.Errorf("%w: payload is required", errs.ErrInvalidArgument)
	}
	if req.Chain == "" {
		req.Chain = DEFAULT_CHAIN
	}

	for _, addr := range []**string{&req.FromAddress, &req.ToAddress} {
		if *addr == nil || **addr == "" {
			*addr = nil
			continue
		}
		normalized, ok := metadata.NormalizeAddress(**addr)
		if !ok {
			return fmt.Errorf("%w: %q is not a 0x address", errs.ErrInvalidArgument, **addr)
		}
		*addr = &normalized
	}

	if req.Value != nil && *req.Value < 0 {
		return fmt.Errorf("%w: value must not be negative", errs.ErrInvalidArgument)
	}
	if req.BlockNumber != nil && *req.BlockNumber < 0 {
		return fmt.Errorf("%w: block_number must not be negative", errs.ErrInvalidArgument)
	}

	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return err
	}
	req.Tags = tags
	return nil
}

// normalizeTags trims and de-duplicates override tags, dropping blanks. Tags
// are stored comma joined, so a comma inside one is rejected.
func normalizeTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if strings.Contains(tag, ",") {
			return nil, fmt.Errorf("%w: tag %q must not contain a comma", errs.ErrInvalidArgument, tag)
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized, nil
}

func buildEvent(req IngestRequest, meta metadata.Metadata, vec []float32) *model.OnChainEvent {
	event := &model.OnChainEvent{
		TxHash:      req.TxHash,
		Payload:     req.Payload,
		Chain:       req.Chain,
		FromAddress: meta.FromAddress,
		ToAddress:   meta.ToAddress,
		Value:       meta.Value,
		BlockNumber: meta.BlockNumber,
		Tags:        metadata.JoinTags(meta.Tags),
		Embedding:   pgvector.NewVector(vec),
	}

	if req.FromAddress != nil {
		event.FromAddress = req.FromAddress
	}
	if req.ToAddress != nil {
		event.ToAddress = req.ToAddress
	}
	if req.Value != nil {
		event.Value = req.Value
	}
	if req.BlockNumber != nil {
		event.BlockNumber = req.BlockNumber
	}
	if len(req.Tags) > 0 {
		event.Tags = metadata.JoinTags(req.Tags)
	}
	return event
}

////////////////////////////////////////////////////////////////////////////////

func (s *EventService) Stats(ctx context.Context) (*model.Stats, error) {
	total, err := s.repo.TotalCount(ctx, s.db)
	if err != nil {
		return nil, err
	}

	byChain, err := s.repo.CountByChain(ctx, s.db)
	if err != nil {
		return nil, err
	}

	return &model.Stats{
		TotalEvents: total,
		ByChain:     byChain,
	}, nil
}
