// Package search orchestrates relevance search over stored bookmarks.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/markstash-cloud/markstash/internal/domain"
	dombm "github.com/markstash-cloud/markstash/internal/domain/bookmark"
	"github.com/markstash-cloud/markstash/internal/domain/search/mode"
	"github.com/markstash-cloud/markstash/internal/metrics"
	"github.com/markstash-cloud/markstash/internal/rank"
	"github.com/markstash-cloud/markstash/internal/recommend"
	"github.com/markstash-cloud/markstash/internal/spell"
)

// Service handles bookmark search across local and semantic modes.
type Service struct {
	books  BookmarkReader
	ranker SemanticRanker
	logger *zap.Logger
}

// New creates a search service. A nil ranker disables semantic mode:
// semantic requests then run locally.
func New(books BookmarkReader, ranker SemanticRanker) *Service {
	return &Service{
		books:  books,
		ranker: ranker,
		logger: zap.NewNop(),
	}
}

// WithLogger attaches a logger.
func (s *Service) WithLogger(logger *zap.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Params carries one search request.
type Params struct {
	Query string
	// Mode defaults to local when empty.
	Mode mode.Mode
	// Limit caps returned hits; non-positive means no cap.
	Limit int
	// Suggest enables "did you mean" spelling suggestions.
	Suggest bool
}

// Output is one search response.
type Output struct {
	Hits       []rank.Scored
	Suggestion string
	// Mode is the mode that actually produced the ordering. A semantic
	// request that fell back reports local here.
	Mode mode.Mode
}

// Search runs the relevance search. Semantic mode pre-filters locally,
// asks the ranking collaborator to reorder the survivors, and falls
// back to the local ordering when the collaborator fails.
func (s *Service) Search(ctx context.Context, p Params) (Output, error) {
	m := p.Mode
	if m == "" {
		m = mode.Local
	}
	if !m.IsValid() {
		return Output{}, fmt.Errorf("unsupported search mode %q: %w", p.Mode, domain.ErrInvalidQuery)
	}

	start := time.Now()

	books, err := s.books.List(ctx)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		return Output{}, fmt.Errorf("list bookmarks: %w", err)
	}

	var vocab *spell.Vocabulary
	if p.Suggest {
		vocab = spell.Build(books)
	}

	local := rank.Search(p.Query, books, vocab)

	out := Output{
		Hits:       local.Hits,
		Suggestion: local.Suggestion,
		Mode:       mode.Local,
	}

	if m == mode.Semantic && strings.TrimSpace(p.Query) != "" {
		if hits, ok := s.rankSemantic(ctx, p.Query, local.Hits); ok {
			out.Hits = hits
			out.Mode = mode.Semantic
		}
	}

	if p.Limit > 0 && len(out.Hits) > p.Limit {
		out.Hits = out.Hits[:p.Limit]
	}

	if out.Suggestion != "" {
		metrics.SearchSuggestionsTotal.Inc()
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(out.Mode), "success").Inc()
	metrics.SearchDuration.WithLabelValues(string(out.Mode)).Observe(time.Since(start).Seconds())

	return out, nil
}

// rankSemantic reorders the local hits via the collaborator. Returns
// ok=false when the result is unusable and the local ordering stands.
func (s *Service) rankSemantic(ctx context.Context, query string, hits []rank.Scored) ([]rank.Scored, bool) {
	if s.ranker == nil || len(hits) == 0 {
		return nil, false
	}

	candidates := make([]dombm.Bookmark, len(hits))
	byID := make(map[string]rank.Scored, len(hits))
	for i, h := range hits {
		candidates[i] = h.Bookmark
		byID[h.Bookmark.ID()] = h
	}

	ids, err := s.ranker.Rank(ctx, query, candidates)
	if err != nil {
		metrics.SearchFallbacksTotal.Inc()
		s.logger.Warn("semantic ranking failed, using local ordering",
			zap.String("query", query),
			zap.Int("candidates", len(candidates)),
			zap.Error(err))
		return nil, false
	}

	// Ranked hits first in collaborator order, unmentioned hits keep
	// their local order behind them. Reordering must never lose a hit.
	reordered := make([]rank.Scored, 0, len(hits))
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		if h, ok := byID[id]; ok && !taken[id] {
			reordered = append(reordered, h)
			taken[id] = true
		}
	}
	for _, h := range hits {
		if !taken[h.Bookmark.ID()] {
			reordered = append(reordered, h)
		}
	}
	return reordered, true
}

// Quick runs the cheap as-you-type filter with no scoring.
func (s *Service) Quick(ctx context.Context, query string) ([]dombm.Bookmark, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return rank.QuickFilter(query, books), nil
}

// Related returns bookmarks similar to the given one by shared
// category, domain, and text overlap.
func (s *Service) Related(ctx context.Context, id string, limit int) ([]dombm.Bookmark, error) {
	target, err := s.books.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}

	books, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	return recommend.Related(target, books, limit), nil
}
