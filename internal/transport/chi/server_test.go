package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/markstash-cloud/markstash/internal/domain"
	dombm "github.com/markstash-cloud/markstash/internal/domain/bookmark"
	bookmarkuc "github.com/markstash-cloud/markstash/internal/usecase/bookmark"
	healthuc "github.com/markstash-cloud/markstash/internal/usecase/health"
	searchuc "github.com/markstash-cloud/markstash/internal/usecase/search"
)

// --- Mocks ---

// memRepo is an in-memory bookmark store for transport tests.
type memRepo struct {
	mu    sync.Mutex
	items map[string]dombm.Bookmark
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[string]dombm.Bookmark)}
}

func (m *memRepo) Upsert(_ context.Context, b *dombm.Bookmark) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.items[b.ID()]
	m.items[b.ID()] = *b
	return !exists, nil
}

func (m *memRepo) Get(_ context.Context, id string) (dombm.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return dombm.Bookmark{}, domain.ErrBookmarkNotFound
	}
	return b, nil
}

func (m *memRepo) List(_ context.Context) ([]dombm.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dombm.Bookmark, 0, len(m.items))
	for _, b := range m.items {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrBookmarkNotFound
	}
	delete(m.items, id)
	return nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestRouter(t *testing.T, repo *memRepo, pinger *mockPinger) http.Handler {
	t.Helper()
	srv := NewServer(
		bookmarkuc.New(repo),
		searchuc.New(repo, nil),
		healthuc.New(pinger, nil),
		zap.NewNop(),
	)
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func seed(t *testing.T, repo *memRepo, id, title, url, category, description string) {
	t.Helper()
	bm := dombm.Reconstruct(id, title, url, category, description,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false)
	if _, err := repo.Upsert(context.Background(), &bm); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- Bookmark CRUD ---

func TestCreateBookmark_Created(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "POST", "/api/v1/bookmarks", bookmarkRequest{
		ID:    "react-docs",
		Title: "React Documentation",
		URL:   "https://react.dev",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/api/v1/bookmarks/react-docs" {
		t.Errorf("unexpected Location: %s", loc)
	}

	var resp bookmarkResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "react-docs" || resp.Title != "React Documentation" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateBookmark_GeneratedID(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "POST", "/api/v1/bookmarks", bookmarkRequest{
		Title: "Go Blog",
		URL:   "https://go.dev/blog",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp bookmarkResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Error("expected a generated ID")
	}
}

func TestCreateBookmark_MissingTitle_400(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "POST", "/api/v1/bookmarks", bookmarkRequest{
		ID:  "x",
		URL: "https://x.dev",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("expected code %s, got %s", codeValidationFailed, errResp.Code)
	}
}

func TestCreateBookmark_InvalidBody_400(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	req := httptest.NewRequest("POST", "/api/v1/bookmarks", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpsertBookmark_UpdateReturns200(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "react-docs", "React Documentation", "https://react.dev", "", "")
	h := newTestRouter(t, repo, &mockPinger{})

	rr := doJSON(t, h, "PUT", "/api/v1/bookmarks/react-docs", bookmarkRequest{
		Title:  "React Docs v19",
		URL:    "https://react.dev",
		Pinned: true,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for update, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp bookmarkResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "React Docs v19" || !resp.Pinned {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestUpsertBookmark_IDMismatch_400(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "PUT", "/api/v1/bookmarks/a", bookmarkRequest{
		ID:    "b",
		Title: "Mismatch",
		URL:   "https://x.dev",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetBookmark_NotFound_404(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/bookmarks/missing", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeBookmarkNotFound {
		t.Errorf("expected code %s, got %s", codeBookmarkNotFound, errResp.Code)
	}
}

func TestListBookmarks(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "a", "A", "https://a.dev", "", "")
	seed(t, repo, "b", "B", "https://b.dev", "", "")
	h := newTestRouter(t, repo, &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/bookmarks", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp bookmarkListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Errorf("expected 2 bookmarks, got %+v", resp)
	}
}

func TestDeleteBookmark(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "a", "A", "https://a.dev", "", "")
	h := newTestRouter(t, repo, &mockPinger{})

	rr := doJSON(t, h, "DELETE", "/api/v1/bookmarks/a", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = doJSON(t, h, "GET", "/api/v1/bookmarks/a", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr.Code)
	}
}

// --- Search ---

func TestSearchBookmarks(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "react", "React Documentation", "https://react.dev", "frontend", "")
	seed(t, repo, "go", "Go Blog", "https://go.dev/blog", "backend", "")
	h := newTestRouter(t, repo, &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/search?q=react", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != "react" {
		t.Errorf("unexpected search response: %+v", resp)
	}
	if resp.Items[0].Score <= 0 {
		t.Errorf("expected positive score, got %d", resp.Items[0].Score)
	}
	if resp.Mode != "local" {
		t.Errorf("expected local mode, got %s", resp.Mode)
	}
}

func TestSearchBookmarks_InvalidMode_400(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/search?q=x&mode=hybrid", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSearchBookmarks_InvalidLimit_400(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/search?q=x&limit=0", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSearchBookmarks_Suggestion(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "react", "React Documentation", "https://react.dev", "frontend", "")
	h := newTestRouter(t, repo, &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/search?q=recat&suggest=true", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Suggestion != "react" {
		t.Errorf("expected suggestion %q, got %q", "react", resp.Suggestion)
	}
}

func TestQuickSearch(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "react", "React Documentation", "https://react.dev", "frontend", "")
	seed(t, repo, "go", "Go Blog", "https://go.dev/blog", "backend", "")
	h := newTestRouter(t, repo, &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/search/quick?q=rea", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp bookmarkListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != "react" {
		t.Errorf("unexpected quick search response: %+v", resp)
	}
}

// --- Related ---

func TestRelatedBookmarks(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "react", "React Documentation", "https://react.dev", "frontend", "")
	seed(t, repo, "vue", "Vue Guide", "https://vuejs.org", "frontend", "")
	h := newTestRouter(t, repo, &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/bookmarks/react/related", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp bookmarkListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != "vue" {
		t.Errorf("unexpected related response: %+v", resp)
	}
}

func TestRelatedBookmarks_NotFound_404(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "GET", "/api/v1/bookmarks/missing/related", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

// --- Health ---

func TestHealthCheck_OK(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{})

	rr := doJSON(t, h, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestHealthCheck_Degraded_503(t *testing.T) {
	h := newTestRouter(t, newMemRepo(), &mockPinger{err: context.DeadlineExceeded})

	rr := doJSON(t, h, "GET", "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
