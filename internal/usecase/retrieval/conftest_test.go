package retrieval

import (
	"context"
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
	searchrepo "github.com/devmedia-cloud/answerdex/internal/repository/search"
)

type mockRepo struct {
	vectorFn  func(ctx context.Context, q searchrepo.VectorQuery) ([]result.SearchResult, error)
	lexicalFn func(ctx context.Context, q searchrepo.LexicalQuery) ([]searchrepo.Hit, error)

	lastVector  searchrepo.VectorQuery
	lastLexical searchrepo.LexicalQuery
}

func (m *mockRepo) Vector(ctx context.Context, q searchrepo.VectorQuery) ([]result.SearchResult, error) {
	m.lastVector = q
	if m.vectorFn != nil {
		return m.vectorFn(ctx, q)
	}
	return nil, nil
}

func (m *mockRepo) Lexical(ctx context.Context, q searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
	m.lastLexical = q
	if m.lexicalFn != nil {
		return m.lexicalFn(ctx, q)
	}
	return nil, nil
}

type mockAllowlist struct {
	curated     []string
	curatedErr  error
	eventIDs    []string
	eventErr    error
	eventCalled bool
}

func (m *mockAllowlist) CuratedIDs(_ context.Context) ([]string, error) {
	return m.curated, m.curatedErr
}

func (m *mockAllowlist) EventAccess(_ context.Context, _ string) ([]string, error) {
	m.eventCalled = true
	return m.eventIDs, m.eventErr
}

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 5}, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testConfig() Config {
	return Config{
		CandidateMultiplier: 3,
		MaxCandidatePool:    120,
	}
}
