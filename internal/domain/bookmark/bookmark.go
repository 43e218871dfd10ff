package bookmark

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/markstash-cloud/markstash/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Field size limits.
const (
	MaxIDLength          = 256
	MaxTitleLength       = 512
	MaxURLLength         = 2048
	MaxCategoryLength    = 128
	MaxDescriptionLength = 4096
)

// Bookmark is a saved link (immutable value object).
type Bookmark struct {
	id          string
	title       string
	url         string
	category    string
	description string
	createdAt   time.Time
	pinned      bool
}

// New validates and creates a Bookmark.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title and URL are required.
// Category and description are optional and may be empty.
func New(id, title, url, category, description string, createdAt time.Time, pinned bool) (Bookmark, error) {
	if id == "" {
		return Bookmark{}, fmt.Errorf("bookmark ID is required: %w", domain.ErrInvalidBookmark)
	}
	if len(id) > MaxIDLength {
		return Bookmark{}, fmt.Errorf("bookmark ID too long (max %d): %w", MaxIDLength, domain.ErrInvalidBookmark)
	}
	if !idRegex.MatchString(id) {
		return Bookmark{}, fmt.Errorf("bookmark ID must be alphanumeric with underscores and hyphens: %w", domain.ErrInvalidBookmark)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Bookmark{}, fmt.Errorf("title is required: %w", domain.ErrInvalidBookmark)
	}
	if len(title) > MaxTitleLength {
		return Bookmark{}, fmt.Errorf("title too long (max %d): %w", MaxTitleLength, domain.ErrInvalidBookmark)
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return Bookmark{}, fmt.Errorf("url is required: %w", domain.ErrInvalidBookmark)
	}
	if len(url) > MaxURLLength {
		return Bookmark{}, fmt.Errorf("url too long (max %d): %w", MaxURLLength, domain.ErrInvalidBookmark)
	}
	if len(category) > MaxCategoryLength {
		return Bookmark{}, fmt.Errorf("category too long (max %d): %w", MaxCategoryLength, domain.ErrInvalidBookmark)
	}
	if len(description) > MaxDescriptionLength {
		return Bookmark{}, fmt.Errorf("description too long (max %d): %w", MaxDescriptionLength, domain.ErrInvalidBookmark)
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return Bookmark{
		id:          id,
		title:       title,
		url:         url,
		category:    category,
		description: description,
		createdAt:   createdAt,
		pinned:      pinned,
	}, nil
}

// Reconstruct creates a Bookmark without validation (storage hydration).
func Reconstruct(
	id, title, url, category, description string, createdAt time.Time, pinned bool,
) Bookmark {
	return Bookmark{
		id:          id,
		title:       title,
		url:         url,
		category:    category,
		description: description,
		createdAt:   createdAt,
		pinned:      pinned,
	}
}

// ID returns the bookmark identifier.
func (b *Bookmark) ID() string { return b.id }

// Title returns the bookmark title.
func (b *Bookmark) Title() string { return b.title }

// URL returns the saved resource locator.
func (b *Bookmark) URL() string { return b.url }

// Category returns the single free-text category label.
func (b *Bookmark) Category() string { return b.category }

// Description returns the optional longer text.
func (b *Bookmark) Description() string { return b.description }

// CreatedAt returns the creation timestamp.
func (b *Bookmark) CreatedAt() time.Time { return b.createdAt }

// Pinned reports whether the bookmark is pinned.
func (b *Bookmark) Pinned() bool { return b.pinned }
