package bookmark

import (
	"context"

	dombm "github.com/markstash-cloud/markstash/internal/domain/bookmark"
)

// Repository defines the storage contract for bookmarks.
type Repository interface {
	Upsert(ctx context.Context, b *dombm.Bookmark) (created bool, err error)
	Get(ctx context.Context, id string) (dombm.Bookmark, error)
	List(ctx context.Context) ([]dombm.Bookmark, error)
	Delete(ctx context.Context, id string) error
}
