package model

import (
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/metadata"
	"github.com/pgvector/pgvector-go"
)

// OnChainEvent is an ingested activity record. It is written once per tx hash
// and never updated.
type OnChainEvent struct {
	ID          int64           `db:"id"`
	TxHash      string          `db:"tx_hash"`
	Payload     string          `db:"payload"`
	Chain       string          `db:"chain"`
	FromAddress *string         `db:"from_address"`
	ToAddress   *string         `db:"to_address"`
	Value       *float64        `db:"value"`
	BlockNumber *int64          `db:"block_number"`
	Tags        string          `db:"tags"` // comma joined, "" when untagged
	Embedding   pgvector.Vector `db:"embedding"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (e *OnChainEvent) TagList() []string {
	return metadata.SplitTags(e.Tags)
}

////////////////////////////////////////////////////////////////////////////////

type SearchOptions struct {
	TopK   int
	Chain  string // empty searches every chain
	Probes int    // ivfflat probes for this query only, ignored when <= 0
}

type SearchHit struct {
	Event    OnChainEvent
	Distance float64
	Score    float64 // 1 - cosine distance
}

////////////////////////////////////////////////////////////////////////////////

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type Insights struct {
	TotalEvents int         `json:"total_events"`
	TopTags     []TagCount  `json:"top_tags"`
	TopTerms    []TermCount `json:"top_terms"`
	TotalValue  float64     `json:"total_value"`
}

type Stats struct {
	TotalEvents int            `json:"total_events"`
	ByChain     map[string]int `json:"by_chain"`
}
