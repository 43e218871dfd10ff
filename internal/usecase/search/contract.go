package search

import (
	"context"

	dombm "github.com/markstash-cloud/markstash/internal/domain/bookmark"
)

// BookmarkReader reads the bookmark collection for searching.
type BookmarkReader interface {
	Get(ctx context.Context, id string) (dombm.Bookmark, error)
	List(ctx context.Context) ([]dombm.Bookmark, error)
}

// SemanticRanker orders candidate bookmarks by semantic relevance to
// the query. It returns candidate IDs from most to least relevant and
// may omit IDs it judged irrelevant.
type SemanticRanker interface {
	Rank(ctx context.Context, query string, candidates []dombm.Bookmark) ([]string, error)
}
