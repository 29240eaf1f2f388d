package services

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
)

const (
	TOP_TAGS_LIMIT  = 6
	TOP_TERMS_LIMIT = 8
	MIN_TERM_LENGTH = 3
)

var termPattern = regexp.MustCompile(`[a-z0-9]+`)

// Insights summarizes the limit most recently created events. Rows are
// streamed from the store, so only the counters are held in memory.
func (s *EventService) Insights(ctx context.Context, limit int) (*model.Insights, error) {
	if limit <= 0 {
		limit = DEFAULT_INSIGHTS_LIMIT
	}

	acc := newInsightsAccumulator()
	err := s.repo.IterateRecent(ctx, s.db, limit, func(event *model.OnChainEvent) error {
		acc.add(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return acc.result(), nil
}

////////////////////////////////////////////////////////////////////////////////

type insightsAccumulator struct {
	total      int
	totalValue float64
	tags       map[string]int
	terms      map[string]int
}

func newInsightsAccumulator() *insightsAccumulator {
	return &insightsAccumulator{
		tags:  make(map[string]int),
		terms: make(map[string]int),
	}
}

func (a *insightsAccumulator) add(event *model.OnChainEvent) {
	a.total++
	if event.Value != nil {
		a.totalValue += *event.Value
	}

	for _, tag := range event.TagList() {
		if tag != "" {
			a.tags[tag]++
		}
	}

	for _, term := range termPattern.FindAllString(strings.ToLower(event.Payload), -1) {
		if len(term) >= MIN_TERM_LENGTH {
			a.terms[term]++
		}
	}
}

func (a *insightsAccumulator) result() *model.Insights {
	topTags := make([]model.TagCount, 0, TOP_TAGS_LIMIT)
	for _, name := range topKeys(a.tags, TOP_TAGS_LIMIT) {
		topTags = append(topTags, model.TagCount{Tag: name, Count: a.tags[name]})
	}

	topTerms := make([]model.TermCount, 0, TOP_TERMS_LIMIT)
	for _, name := range topKeys(a.terms, TOP_TERMS_LIMIT) {
		topTerms = append(topTerms, model.TermCount{Term: name, Count: a.terms[name]})
	}

	return &model.Insights{
		TotalEvents: a.total,
		TopTags:     topTags,
		TopTerms:    topTerms,
		TotalValue:  a.totalValue,
	}
}

// topKeys orders by count descending, then by key so equal counts come out
// the same way every time.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
