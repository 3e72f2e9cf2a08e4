package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/core"
	"github.com/podgraph/podgraph/storage"
)

// overFetchFactor is how many extra candidates a date-constrained search
// pulls before filtering locally. Publish dates are not part of the vector
// index, so the search over-fetches and discards out-of-range passages.
const overFetchFactor = 3

// Index answers similarity queries over embedded transcript passages.
type Index struct {
	passages storage.PassageRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewIndex creates a semantic index over the given passage repository.
func NewIndex(passages storage.PassageRepository, embedder ai.Embedder) *Index {
	return &Index{
		passages: passages,
		embedder: embedder,
		logger:   slog.Default().With("component", "semantic-index"),
	}
}

// Add embeds the texts of the given passages and stores them.
// Passages that already carry a vector are stored as-is.
func (idx *Index) Add(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	var pending []*core.Passage
	var texts []string
	for _, p := range passages {
		if len(p.Vector) == 0 {
			pending = append(pending, p)
			texts = append(texts, p.Text)
		}
	}

	if len(pending) > 0 {
		vectors, err := idx.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding %d passages: %w", len(pending), err)
		}
		if len(vectors) != len(pending) {
			return nil, fmt.Errorf("%w: requested %d embeddings, got %d",
				ErrEmbeddingFailed, len(pending), len(vectors))
		}
		for i, p := range pending {
			p.Vector = vectors[i]
		}
	}

	return idx.passages.AddPassages(ctx, passages...)
}

// Search returns up to limit passages most similar to the query text.
// VideoID and Podcast filters are applied during the scan; date-range
// filters are applied locally after an over-fetched search, since publish
// dates don't participate in similarity.
func (idx *Index) Search(ctx context.Context, query string, limit int, filters *core.Filters) ([]*core.PassageMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}

	vector, err := idx.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var passageFilter *storage.PassageFilter
	if filters != nil && (filters.VideoID != "" || filters.Podcast != "") {
		passageFilter = &storage.PassageFilter{
			VideoID: filters.VideoID,
			Podcast: filters.Podcast,
		}
	}

	fetchLimit := limit
	if filters.HasDateRange() {
		fetchLimit = limit * overFetchFactor
	}

	matches, err := idx.passages.FindSimilar(ctx, vector, fetchLimit, passageFilter)
	if err != nil {
		return nil, err
	}

	if filters.HasDateRange() {
		matches = filterByDateRange(matches, filters.StartDate, filters.EndDate)
		if len(matches) > limit {
			matches = matches[:limit]
		}
	}

	idx.logger.Debug("semantic search complete",
		"query_len", len(query),
		"hits", len(matches))
	return matches, nil
}

// filterByDateRange keeps matches whose publish date falls inside the
// inclusive [start, end] range. Passages without a publish date are dropped,
// since they can't be placed in the range.
func filterByDateRange(matches []*core.PassageMatch, start, end string) []*core.PassageMatch {
	kept := matches[:0]
	for _, m := range matches {
		date := m.Passage.PublishDate
		if date == "" {
			continue
		}
		if date >= start && date <= end {
			kept = append(kept, m)
		}
	}
	return kept
}
