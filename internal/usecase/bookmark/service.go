// Package bookmark implements bookmark CRUD use cases.
package bookmark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	dombm "github.com/markstash-cloud/markstash/internal/domain/bookmark"
)

// Service handles bookmark CRUD.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a bookmark service.
func New(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock overrides the creation-time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// SaveParams carries the fields for creating or updating a bookmark.
type SaveParams struct {
	ID          string
	Title       string
	URL         string
	Category    string
	Description string
	Pinned      bool
}

// Save validates and persists a bookmark. A missing ID gets a generated
// UUID. Returns the stored bookmark and whether it was created.
func (s *Service) Save(ctx context.Context, p SaveParams) (dombm.Bookmark, bool, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	bm, err := dombm.New(id, p.Title, p.URL, p.Category, p.Description, s.now().UTC(), p.Pinned)
	if err != nil {
		return dombm.Bookmark{}, false, fmt.Errorf("validate bookmark: %w", err)
	}

	// Updates keep the original creation time.
	if existing, getErr := s.repo.Get(ctx, id); getErr == nil {
		bm = dombm.Reconstruct(
			bm.ID(), bm.Title(), bm.URL(), bm.Category(), bm.Description(),
			existing.CreatedAt(), bm.Pinned(),
		)
	}

	created, err := s.repo.Upsert(ctx, &bm)
	if err != nil {
		return dombm.Bookmark{}, false, fmt.Errorf("upsert bookmark: %w", err)
	}
	return bm, created, nil
}

// Get retrieves a bookmark by ID.
func (s *Service) Get(ctx context.Context, id string) (dombm.Bookmark, error) {
	bm, err := s.repo.Get(ctx, id)
	if err != nil {
		return dombm.Bookmark{}, fmt.Errorf("get bookmark: %w", err)
	}
	return bm, nil
}

// List returns all stored bookmarks.
func (s *Service) List(ctx context.Context) ([]dombm.Bookmark, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return list, nil
}

// Delete removes a bookmark.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}
