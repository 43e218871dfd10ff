package domain

import "errors"

var (
	// ErrBookmarkNotFound signals a missing bookmark.
	ErrBookmarkNotFound = errors.New("bookmark not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidBookmark signals a bookmark that failed validation.
	ErrInvalidBookmark = errors.New("invalid bookmark")
	// ErrInvalidQuery signals an unusable search request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrSemanticUnavailable signals that the semantic ranking collaborator
	// failed or returned an unusable response. Callers fall back to local search.
	ErrSemanticUnavailable = errors.New("semantic ranking unavailable")
)
