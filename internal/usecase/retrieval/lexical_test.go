package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/filter"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
	searchrepo "github.com/devmedia-cloud/answerdex/internal/repository/search"
)

func newLexicalRetriever(repo *mockRepo, allow *mockAllowlist, cfg Config) *LexicalRetriever {
	r := NewLexicalRetriever(repo, allow, cfg)
	r.now = fixedNow
	return r
}

func hit(id string, date time.Time) searchrepo.Hit {
	return searchrepo.Hit{Result: result.SearchResult{
		ID: id, DocumentID: "doc-" + id, Source: result.SourceLexical, SortDate: date,
	}}
}

func TestLexicalSearch_CollectionAndTopK(t *testing.T) {
	repo := &mockRepo{}
	r := newLexicalRetriever(repo, &mockAllowlist{}, testConfig())

	_, err := r.Search(context.Background(), "phrase", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 2, 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLexical.Collection != searchrepo.CollectionChunks {
		t.Errorf("expected chunks collection, got %s", repo.lastLexical.Collection)
	}
	if repo.lastLexical.TopK != 20 {
		t.Errorf("expected TopK 20 (page×pageSize), got %d", repo.lastLexical.TopK)
	}
}

func TestLexicalSearch_LegacyCollection(t *testing.T) {
	repo := &mockRepo{}
	r := newLexicalRetriever(repo, &mockAllowlist{}, testConfig())

	if _, err := r.Search(context.Background(), "phrase", filter.Filter{}, 1, 10, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLexical.Collection != searchrepo.CollectionPages {
		t.Errorf("expected pages collection, got %s", repo.lastLexical.Collection)
	}
}

func TestLexicalSearch_FreshnessWindowReorder(t *testing.T) {
	now := fixedNow()
	// 14 hits: the first window of 12 is reordered by date, the tail keeps
	// relevance order.
	hits := make([]searchrepo.Hit, 0, 14)
	for i := 0; i < 14; i++ {
		hits = append(hits, hit(string(rune('a'+i)), now.AddDate(0, 0, -14+i)))
	}
	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return hits, nil
	}}
	r := newLexicalRetriever(repo, &mockAllowlist{}, testConfig())

	results, err := r.Search(context.Background(), "q", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 1, 14, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 14 {
		t.Fatalf("expected 14 results, got %d", len(results))
	}

	// Window 1 (first 12) newest-first: 'l' is the newest of a..l.
	if results[0].ID != "l" {
		t.Errorf("expected newest of first window first, got %s", results[0].ID)
	}
	for i := 1; i < 12; i++ {
		if results[i].SortDate.After(results[i-1].SortDate) {
			t.Errorf("window 1 not date-descending at %d", i)
		}
	}
	// Window 2 keeps its own ordering (m, n → newest first as well here).
	if results[12].ID != "n" || results[13].ID != "m" {
		t.Errorf("unexpected second window order: %s, %s", results[12].ID, results[13].ID)
	}
}

func TestLexicalSearch_Pagination(t *testing.T) {
	now := fixedNow()
	hits := []searchrepo.Hit{hit("a", now), hit("b", now), hit("c", now)}
	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return hits, nil
	}}
	r := newLexicalRetriever(repo, &mockAllowlist{}, testConfig())

	results, err := r.Search(context.Background(), "q", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 2, 2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "c" {
		t.Fatalf("expected page 2 to hold only c, got %v", results)
	}

	empty, err := r.Search(context.Background(), "q", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 5, 2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %v", empty)
	}
}

func TestPostFilter_ChunkerExactMatch(t *testing.T) {
	now := fixedNow()
	semantic := hit("a", now)
	semantic.Chunker = domain.ChunkerSemantic
	other := hit("b", now)
	other.Chunker = domain.ChunkerType("experimental")

	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return []searchrepo.Hit{semantic, other}, nil
	}}
	r := newLexicalRetriever(repo, &mockAllowlist{}, testConfig())

	results, err := r.Search(context.Background(), "q", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 1, 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("expected only the exact chunker match, got %v", results)
	}
}

func TestPostFilter_CuratedLegacy(t *testing.T) {
	now := fixedNow()
	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return []searchrepo.Hit{hit("a", now), hit("b", now)}, nil
	}}
	allow := &mockAllowlist{curated: []string{"doc-a"}}
	r := newLexicalRetriever(repo, allow, testConfig())

	results, err := r.Search(context.Background(), "q", filter.Filter{CuratedOnly: true}, 1, 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("expected only curated doc, got %v", results)
	}
}

func TestPostFilter_PlatformAllowlist(t *testing.T) {
	now := fixedNow()
	visible := hit("a", now)
	visible.Platform = "web"
	hidden := hit("b", now)
	hidden.Platform = "partner"
	unset := hit("c", now)

	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return []searchrepo.Hit{visible, hidden, unset}, nil
	}}
	cfg := testConfig()
	cfg.AllowedPlatforms = []string{"web"}
	r := newLexicalRetriever(repo, &mockAllowlist{}, cfg)

	results, err := r.Search(context.Background(), "q", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 1, 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected platformless and allowed hits, got %v", results)
	}
}

func TestPostFilter_EventArchetypeOnly(t *testing.T) {
	now := fixedNow()
	archetype := hit("a", now)
	archetype.Result.ContentType = domain.ContentTypeEvent
	archetype.Archetype = true
	archetype.EventDate = now.AddDate(0, 1, 0)
	instance := hit("b", now)
	instance.Result.ContentType = domain.ContentTypeEvent
	instance.Archetype = false

	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return []searchrepo.Hit{archetype, instance}, nil
	}}
	r := newLexicalRetriever(repo, &mockAllowlist{}, testConfig())

	results, err := r.Search(context.Background(), "q", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 1, 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("expected only the archetype event, got %v", results)
	}
}

func TestPostFilter_PastEventNeedsAttendance(t *testing.T) {
	now := fixedNow()
	past := hit("a", now)
	past.Result.ContentType = domain.ContentTypeEvent
	past.Archetype = true
	past.EventDate = now.AddDate(0, -1, 0)
	booked := hit("b", now)
	booked.Result.ContentType = domain.ContentTypeEvent
	booked.Archetype = true
	booked.EventDate = now.AddDate(0, -1, 0)

	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return []searchrepo.Hit{past, booked}, nil
	}}
	allow := &mockAllowlist{eventIDs: []string{"doc-b"}}
	cfg := testConfig()
	cfg.AttendeeFilter = true
	r := newLexicalRetriever(repo, allow, cfg)

	results, err := r.Search(context.Background(), "q", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 1, 10, "user-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "b" {
		t.Fatalf("expected only the attended past event, got %v", results)
	}
	if !allow.eventCalled {
		t.Error("expected event access lookup")
	}
}

func TestPostFilter_AttendanceLookupFailureDegrades(t *testing.T) {
	now := fixedNow()
	past := hit("a", now)
	past.Result.ContentType = domain.ContentTypeEvent
	past.Archetype = true
	past.EventDate = now.AddDate(0, -1, 0)
	regular := hit("b", now)

	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return []searchrepo.Hit{past, regular}, nil
	}}
	allow := &mockAllowlist{eventErr: errors.New("timeout")}
	cfg := testConfig()
	cfg.AttendeeFilter = true
	r := newLexicalRetriever(repo, allow, cfg)

	results, err := r.Search(context.Background(), "q", filter.Filter{
		Chunker: domain.ChunkerSemantic,
	}, 1, 10, "tok")
	if err != nil {
		t.Fatalf("lookup failure must degrade, not fail: %v", err)
	}
	// The past event is dropped (no proven access); the regular hit survives.
	if len(results) != 1 || results[0].ID != "b" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestLexicalSearch_RepoError(t *testing.T) {
	repo := &mockRepo{lexicalFn: func(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
		return nil, errors.New("index missing")
	}}
	r := newLexicalRetriever(repo, &mockAllowlist{}, testConfig())

	if _, err := r.Search(context.Background(), "q", filter.Filter{}, 1, 10, ""); err == nil {
		t.Fatal("expected error")
	}
}
