package gallery

import (
	"context"
	"fmt"
	"sort"

	"photofind/internal/model"
	"photofind/internal/vector"
)

// DefaultSearchLimit caps results when the caller passes limit <= 0.
const DefaultSearchLimit = 50

// Search embeds the query, scores every eligible catalog row by cosine
// similarity and returns the top results, best first. Deleted rows and
// rows without an embedding are never returned, regardless of filters.
//
// A failed query embedding fails the whole search: ranking against a
// missing query vector would silently return garbage. Rows whose stored
// embedding cannot be decoded or does not match the query's dimension are
// skipped with a warning instead of poisoning the ranking.
//
// Ties keep the catalog's scan order; no secondary sort key is defined.
func (s *Service) Search(ctx context.Context, query string, limit int, filters model.SearchFilters) ([]model.ScoredResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if err := s.checkDimensions(); err != nil {
		return nil, err
	}

	queryVec, err := s.provider.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.catalog.QueryCandidates(filters)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	results := make([]model.ScoredResult, 0, len(rows))
	for _, row := range rows {
		emb, err := vector.Decode(row.Embedding)
		if err != nil {
			s.logger.Warn("skipping row with corrupt embedding", "path", row.Path, "error", err)
			continue
		}
		score, err := vector.Cosine(queryVec, emb)
		if err != nil {
			s.logger.Warn("skipping row with mismatched embedding", "path", row.Path, "error", err)
			continue
		}
		results = append(results, model.ScoredResult{
			Score:   score,
			ID:      row.ID,
			Path:    row.Path,
			Caption: row.Caption,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
