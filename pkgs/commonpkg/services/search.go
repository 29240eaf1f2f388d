package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	log "github.com/sirupsen/logrus"
)

type SearchRequest struct {
	Query  string
	TopK   int    // <= 0 selects DEFAULT_TOP_K
	Chain  string // empty searches every chain
	Probes int
}

// Search embeds the query text and ranks stored events against it.
func (s *EventService) Search(ctx context.Context, req SearchRequest) ([]model.SearchHit, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", errs.ErrInvalidArgument)
	}

	vec, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return s.SearchByVector(ctx, vec, model.SearchOptions{
		TopK:   req.TopK,
		Chain:  req.Chain,
		Probes: req.Probes,
	})
}

// SearchByVector ranks stored events against a caller supplied vector, which
// must have the configured dimension.
func (s *EventService) SearchByVector(ctx context.Context, vec []float32, opts model.SearchOptions) ([]model.SearchHit, error) {
	if len(vec) != s.embedder.Dim() {
		return nil, errs.NewDimensionMismatch(len(vec), s.embedder.Dim())
	}
	if err := checkQueryVector(vec); err != nil {
		return nil, err
	}
	if opts.TopK <= 0 {
		opts.TopK = DEFAULT_TOP_K
	}

	hits, err := s.repo.SearchByVector(ctx, s.db, vec, opts)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(log.Fields{
		"caller": "SearchByVector",
		"top_k":  opts.TopK,
		"chain":  opts.Chain,
		"probes": opts.Probes,
		"hits":   len(hits),
	}).Debug("Search completed")
	return hits, nil
}

// checkQueryVector rejects vectors with no direction. Cosine distance to a
// zero vector is undefined and pgvector answers NaN for it.
func checkQueryVector(vec []float32) error {
	var sum float64
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: vector component %d is not finite", errs.ErrInvalidArgument, i)
		}
		sum += f * f
	}
	if sum == 0 {
		return fmt.Errorf("%w: vector must not be all zeros", errs.ErrInvalidArgument)
	}
	return nil
}
