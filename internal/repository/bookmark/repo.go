// Package bookmark implements the bookmark repository over the hash store.
package bookmark

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/markstash-cloud/markstash/internal/domain"
	dombm "github.com/markstash-cloud/markstash/internal/domain/bookmark"
)

// store is the consumer interface for bookmarks (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/bookmark.Repository.
type Repo struct {
	store store
}

// New creates a bookmark repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert creates or updates a bookmark. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, b *dombm.Bookmark) (bool, error) {
	key := bookmarkKey(b.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(b)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// Get returns a bookmark by ID.
func (r *Repo) Get(ctx context.Context, id string) (dombm.Bookmark, error) {
	key := bookmarkKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return dombm.Bookmark{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return dombm.Bookmark{}, domain.ErrBookmarkNotFound
	}
	return parseHashFields(id, m), nil
}

// List returns every stored bookmark, newest first. Keys are fetched via
// SCAN and hydrated in one pipelined round-trip; the creation-time sort
// makes the order deterministic despite SCAN's randomness.
func (r *Repo) List(ctx context.Context) ([]dombm.Bookmark, error) {
	keys, err := r.store.Scan(ctx, keyPattern())
	if err != nil {
		return nil, fmt.Errorf("scan bookmarks: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hydrate bookmarks: %w", err)
	}

	out := make([]dombm.Bookmark, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			// Deleted between SCAN and HGETALL.
			continue
		}
		out = append(out, parseHashFields(extractID(keys[i]), m))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().After(out[j].CreatedAt())
		}
		return out[i].ID() < out[j].ID()
	})

	return out, nil
}

// Delete removes a bookmark.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := bookmarkKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrBookmarkNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func bookmarkKey(id string) string {
	return fmt.Sprintf("%sbookmark:%s", domain.KeyPrefix, id)
}

func keyPattern() string {
	return domain.KeyPrefix + "bookmark:*"
}

func extractID(key string) string {
	return strings.TrimPrefix(key, domain.KeyPrefix+"bookmark:")
}
