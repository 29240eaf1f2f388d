package serverdto

import (
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
)

// IngestRequest is the body of POST /data/ingest. Optional fields override
// what would be extracted from the payload.
type IngestRequest struct {
	TxHash      string   `json:"tx_hash"`
	Payload     string   `json:"payload"`
	Chain       string   `json:"chain,omitempty"`
	FromAddress *string  `json:"from_address,omitempty"`
	ToAddress   *string  `json:"to_address,omitempty"`
	Value       *float64 `json:"value,omitempty"`
	BlockNumber *int64   `json:"block_number,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// SearchRequest is the body of POST /data/search. Exactly one of Query and
// Vector is expected; Vector wins when both are set.
type SearchRequest struct {
	Query  string    `json:"query,omitempty"`
	Vector []float32 `json:"vector,omitempty"`
	TopK   int       `json:"top_k,omitempty"`
	Chain  string    `json:"chain,omitempty"`
	Probes int       `json:"probes,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////

// Event is an ingested event as returned by the API, without its embedding.
type Event struct {
	ID          int64     `json:"id"`
	TxHash      string    `json:"tx_hash"`
	Payload     string    `json:"payload"`
	Chain       string    `json:"chain"`
	FromAddress *string   `json:"from_address"`
	ToAddress   *string   `json:"to_address"`
	Value       *float64  `json:"value"`
	BlockNumber *int64    `json:"block_number"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewEvent(event *model.OnChainEvent) Event {
	tags := event.TagList()
	if tags == nil {
		tags = []string{}
	}
	return Event{
		ID:          event.ID,
		TxHash:      event.TxHash,
		Payload:     event.Payload,
		Chain:       event.Chain,
		FromAddress: event.FromAddress,
		ToAddress:   event.ToAddress,
		Value:       event.Value,
		BlockNumber: event.BlockNumber,
		Tags:        tags,
		CreatedAt:   event.CreatedAt,
	}
}

type SearchHit struct {
	Event Event   `json:"event"`
	Score float64 `json:"score"`
}

type SearchResponse struct {
	Results []SearchHit `json:"results"`
}

func NewSearchResponse(hits []model.SearchHit) SearchResponse {
	results := make([]SearchHit, 0, len(hits))
	for i := range hits {
		results = append(results, SearchHit{
			Event: NewEvent(&hits[i].Event),
			Score: hits[i].Score,
		})
	}
	return SearchResponse{Results: results}
}

////////////////////////////////////////////////////////////////////////////////

type HealthResponse struct {
	Status      string         `json:"status"`
	TotalEvents int            `json:"total_events"`
	ByChain     map[string]int `json:"by_chain"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
