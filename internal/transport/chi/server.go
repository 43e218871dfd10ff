// Package chi implements the HTTP API over the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/markstash-cloud/markstash/internal/domain"
	"github.com/markstash-cloud/markstash/internal/domain/search/mode"
	bookmarkuc "github.com/markstash-cloud/markstash/internal/usecase/bookmark"
	healthuc "github.com/markstash-cloud/markstash/internal/usecase/health"
	searchuc "github.com/markstash-cloud/markstash/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the bookmark API.
type Server struct {
	bookmarks     *bookmarkuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler

	defaultLimit int
	maxLimit     int
	relatedLimit int
}

// NewServer creates an HTTP API server.
func NewServer(
	bookmarks *bookmarkuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		bookmarks:    bookmarks,
		search:       search,
		health:       health,
		logger:       logger,
		maxLimit:     100,
		relatedLimit: 4,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrBookmarkNotFound, http.StatusNotFound, codeBookmarkNotFound),
		sentinelHandler(domain.ErrInvalidBookmark, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrSemanticUnavailable, http.StatusBadGateway, codeSemanticUnavailable),
	}
	return s
}

// WithSearchLimits configures result caps.
func (s *Server) WithSearchLimits(defaultLimit, maxLimit, relatedLimit int) *Server {
	if defaultLimit >= 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	if relatedLimit > 0 {
		s.relatedLimit = relatedLimit
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/bookmarks", func(r chi.Router) {
			r.Post("/", s.CreateBookmark)
			r.Get("/", s.ListBookmarks)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.UpsertBookmark)
				r.Get("/", s.GetBookmark)
				r.Delete("/", s.DeleteBookmark)
				r.Get("/related", s.RelatedBookmarks)
			})
		})
		r.Get("/search", s.SearchBookmarks)
		r.Get("/search/quick", s.QuickSearch)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// CreateBookmark handles POST /api/v1/bookmarks.
func (s *Server) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	s.saveBookmark(w, r, req)
}

// UpsertBookmark handles PUT /api/v1/bookmarks/{id}.
func (s *Server) UpsertBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if req.ID != "" && req.ID != id {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "body id does not match path id")
		return
	}
	req.ID = id

	s.saveBookmark(w, r, req)
}

func (s *Server) saveBookmark(w http.ResponseWriter, r *http.Request, req bookmarkRequest) {
	bm, created, err := s.bookmarks.Save(r.Context(), bookmarkuc.SaveParams{
		ID:          req.ID,
		Title:       req.Title,
		URL:         req.URL,
		Category:    req.Category,
		Description: req.Description,
		Pinned:      req.Pinned,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/bookmarks/%s", bm.ID()))
	}

	writeJSON(w, status, bookmarkToDTO(&bm))
}

// GetBookmark handles GET /api/v1/bookmarks/{id}.
func (s *Server) GetBookmark(w http.ResponseWriter, r *http.Request) {
	bm, err := s.bookmarks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarkToDTO(&bm))
}

// ListBookmarks handles GET /api/v1/bookmarks.
func (s *Server) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	list, err := s.bookmarks.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]bookmarkResponse, len(list))
	for i := range list {
		items[i] = bookmarkToDTO(&list[i])
	}

	writeJSON(w, http.StatusOK, bookmarkListResponse{Items: items, Total: len(items)})
}

// DeleteBookmark handles DELETE /api/v1/bookmarks/{id}.
func (s *Server) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if err := s.bookmarks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchBookmarks handles GET /api/v1/search.
func (s *Server) SearchBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, ok := s.parseLimit(w, q.Get("limit"), s.defaultLimit)
	if !ok {
		return
	}

	m := mode.Mode(q.Get("mode"))
	if m != "" && !m.IsValid() {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("mode must be %q or %q", mode.Local, mode.Semantic))
		return
	}

	out, err := s.search.Search(r.Context(), searchuc.Params{
		Query:   q.Get("q"),
		Mode:    m,
		Limit:   limit,
		Suggest: q.Get("suggest") == "true",
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchHitResponse, len(out.Hits))
	for i := range out.Hits {
		items[i] = hitToDTO(&out.Hits[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items:      items,
		Total:      len(items),
		Mode:       string(out.Mode),
		Suggestion: out.Suggestion,
	})
}

// QuickSearch handles GET /api/v1/search/quick.
func (s *Server) QuickSearch(w http.ResponseWriter, r *http.Request) {
	list, err := s.search.Quick(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]bookmarkResponse, len(list))
	for i := range list {
		items[i] = bookmarkToDTO(&list[i])
	}

	writeJSON(w, http.StatusOK, bookmarkListResponse{Items: items, Total: len(items)})
}

// RelatedBookmarks handles GET /api/v1/bookmarks/{id}/related.
func (s *Server) RelatedBookmarks(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.parseLimit(w, r.URL.Query().Get("limit"), s.relatedLimit)
	if !ok {
		return
	}

	list, err := s.search.Related(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]bookmarkResponse, len(list))
	for i := range list {
		items[i] = bookmarkToDTO(&list[i])
	}

	writeJSON(w, http.StatusOK, bookmarkListResponse{Items: items, Total: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// parseLimit validates an optional limit query parameter against maxLimit.
// Reports ok=false after writing the error response.
func (s *Server) parseLimit(w http.ResponseWriter, raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > s.maxLimit {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", s.maxLimit))
		return 0, false
	}
	return limit, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrBookmarkNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidBookmark,
		domain.ErrInvalidQuery,
		domain.ErrRateLimited,
		domain.ErrSemanticUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
