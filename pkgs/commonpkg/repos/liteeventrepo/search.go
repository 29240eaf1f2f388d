package liteeventrepo

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/jmoiron/sqlx"
)

// SearchByVector scans every candidate row and ranks by cosine distance.
// opts.Probes has no meaning here and is ignored.
func (r *repo) SearchByVector(ctx context.Context, db *sqlx.DB, vec []float32, opts model.SearchOptions) ([]model.SearchHit, error) {
	query := `SELECT ` + eventColumns + ` FROM on_chain_events`
	var args []interface{}
	if opts.Chain != "" {
		query += ` WHERE chain = ?`
		args = append(args, opts.Chain)
	}

	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	var hits []model.SearchHit
	for rows.Next() {
		var event model.OnChainEvent
		if err := rows.StructScan(&event); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		distance := cosineDistance(vec, event.Embedding.Slice())
		hits = append(hits, model.SearchHit{
			Event:    event,
			Distance: distance,
			Score:    1 - distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance == hits[j].Distance {
			return hits[i].Event.ID < hits[j].Event.ID
		}
		return hits[i].Distance < hits[j].Distance
	})
	if opts.TopK >= 0 && len(hits) > opts.TopK {
		hits = hits[:opts.TopK]
	}
	if hits == nil {
		hits = []model.SearchHit{}
	}
	return hits, nil
}

// cosineDistance matches pgvector's <=>. A zero vector is at distance 1 from
// everything.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
