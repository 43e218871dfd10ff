package recommend

import (
	"testing"
	"time"

	"github.com/markstash-cloud/markstash/internal/domain/bookmark"
)

func mark(t *testing.T, id, title, url, category, description string) bookmark.Bookmark {
	t.Helper()
	b, err := bookmark.New(id, title, url, category, description, time.Time{}, false)
	if err != nil {
		t.Fatalf("bookmark.New: %v", err)
	}
	return b
}

func TestRelated_CategoryMatch(t *testing.T) {
	target := mark(t, "chatgpt", "ChatGPT", "https://chat.openai.com", "AI Tools", "")
	other := mark(t, "hf", "Hugging Face", "https://huggingface.co", "AI Tools", "")

	got := Related(target, []bookmark.Bookmark{target, other}, 4)
	if len(got) != 1 || got[0].ID() != "hf" {
		t.Fatalf("Related = %d records, want just hf", len(got))
	}
}

func TestRelated_ExcludesTarget(t *testing.T) {
	target := mark(t, "a", "Go Blog", "https://go.dev/blog", "Go", "")
	all := []bookmark.Bookmark{
		target,
		mark(t, "b", "Go Blog Weekly", "https://go.dev/blog/weekly", "Go", ""),
		mark(t, "c", "Go Wiki", "https://go.dev/wiki", "Go", ""),
	}
	for _, r := range Related(target, all, 10) {
		if r.ID() == target.ID() {
			t.Fatal("target leaked into its own recommendations")
		}
	}
}

func TestRelated_Limit(t *testing.T) {
	target := mark(t, "t", "News", "https://news.example.com", "News", "")
	all := []bookmark.Bookmark{target}
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		all = append(all, mark(t, id, "News "+id, "https://news.example.com/"+id, "News", ""))
	}

	if got := Related(target, all, 2); len(got) != 2 {
		t.Errorf("limit=2 returned %d", len(got))
	}
	// Non-positive limit falls back to the default.
	if got := Related(target, all, 0); len(got) != DefaultLimit {
		t.Errorf("limit=0 returned %d, want %d", len(got), DefaultLimit)
	}
}

func TestRelated_ZeroScoreExcluded(t *testing.T) {
	target := mark(t, "t", "Rust Book", "https://doc.rust-lang.org/book", "Rust", "")
	unrelated := mark(t, "u", "Pasta Recipes", "https://cooking.example.org", "Food", "")

	if got := Related(target, []bookmark.Bookmark{target, unrelated}, 4); len(got) != 0 {
		t.Errorf("unrelated bookmark recommended: %d records", len(got))
	}
}

func TestRelated_DomainMatch(t *testing.T) {
	target := mark(t, "t", "Issue Tracker", "https://www.github.com/org/repo", "Work", "")
	sameHost := mark(t, "s", "Wiki Pages", "https://github.com/org/wiki", "Docs", "")

	got := Related(target, []bookmark.Bookmark{target, sameHost}, 4)
	if len(got) != 1 || got[0].ID() != "s" {
		t.Fatalf("www-stripped domain match failed: %d records", len(got))
	}
}

func TestRelated_CategoryIsCaseSensitive(t *testing.T) {
	target := mark(t, "t", "One", "https://a.example.com", "Tools", "")
	other := mark(t, "o", "Two", "https://b.example.com", "tools", "")

	if got := Related(target, []bookmark.Bookmark{target, other}, 4); len(got) != 0 {
		t.Error("category comparison must be case-sensitive as stored")
	}
}

func TestRelated_Deterministic(t *testing.T) {
	target := mark(t, "t", "Go Concurrency Patterns", "https://go.dev/talks", "Go", "Pipelines and cancellation")
	all := []bookmark.Bookmark{
		target,
		mark(t, "a", "Go Concurrency Deep Dive", "https://go.dev/blog", "Go", "Pipelines in practice"),
		mark(t, "b", "Go Patterns", "https://patterns.dev", "Go", ""),
		mark(t, "c", "Concurrency in Java", "https://java.example.com", "Java", "Threads and pools"),
	}

	first := Related(target, all, 4)
	for i := 0; i < 5; i++ {
		again := Related(target, all, 4)
		if len(again) != len(first) {
			t.Fatalf("result length changed: %d vs %d", len(again), len(first))
		}
		for j := range again {
			if again[j].ID() != first[j].ID() {
				t.Fatalf("order changed at %d: %s vs %s", j, again[j].ID(), first[j].ID())
			}
		}
	}
}

func TestJaccard(t *testing.T) {
	a := map[string]struct{}{"go": {}, "con": {}, "pat": {}}
	b := map[string]struct{}{"go": {}, "pat": {}, "talk": {}}

	got := Jaccard(a, b)
	want := 2.0 / 4.0
	if got != want {
		t.Errorf("Jaccard = %f, want %f", got, want)
	}

	// Symmetry.
	if Jaccard(b, a) != got {
		t.Error("Jaccard must be symmetric")
	}

	// Empty sets.
	if Jaccard(nil, nil) != 0 {
		t.Error("Jaccard of two empty sets must be 0")
	}
	if Jaccard(a, nil) != 0 {
		t.Error("Jaccard against an empty set must be 0")
	}
}

func TestJaccard_Bounded(t *testing.T) {
	sets := []map[string]struct{}{
		nil,
		{"one": {}},
		{"one": {}, "two": {}},
		{"three": {}},
	}
	for _, a := range sets {
		for _, b := range sets {
			if j := Jaccard(a, b); j < 0 || j > 1 {
				t.Errorf("Jaccard out of range: %f", j)
			}
		}
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.github.com/foo", "github.com"},
		{"https://github.com/foo", "github.com"},
		{"http://sub.example.org:8080/x", "sub.example.org"},
		{"not a url at all", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Domain(tt.in); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
