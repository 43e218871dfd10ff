package chi

import (
	"time"

	dombm "github.com/markstash-cloud/markstash/internal/domain/bookmark"
	"github.com/markstash-cloud/markstash/internal/rank"
)

// Error codes returned to clients.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeBookmarkNotFound    = "bookmark_not_found"
	codeRateLimited         = "rate_limited"
	codeSemanticUnavailable = "semantic_unavailable"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type bookmarkRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Pinned      bool   `json:"pinned,omitempty"`
}

type bookmarkResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Pinned      bool      `json:"pinned"`
}

type bookmarkListResponse struct {
	Items []bookmarkResponse `json:"items"`
	Total int                `json:"total"`
}

type searchHitResponse struct {
	bookmarkResponse
	Score   int      `json:"score"`
	Matches []string `json:"matches,omitempty"`
}

type searchResponse struct {
	Items      []searchHitResponse `json:"items"`
	Total      int                 `json:"total"`
	Mode       string              `json:"mode"`
	Suggestion string              `json:"suggestion,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func bookmarkToDTO(b *dombm.Bookmark) bookmarkResponse {
	return bookmarkResponse{
		ID:          b.ID(),
		Title:       b.Title(),
		URL:         b.URL(),
		Category:    b.Category(),
		Description: b.Description(),
		CreatedAt:   b.CreatedAt().UTC(),
		Pinned:      b.Pinned(),
	}
}

func hitToDTO(h *rank.Scored) searchHitResponse {
	return searchHitResponse{
		bookmarkResponse: bookmarkToDTO(&h.Bookmark),
		Score:            h.Score,
		Matches:          h.Matches,
	}
}
