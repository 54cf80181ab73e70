package ask

import (
	"context"
	"sync"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
	"github.com/devmedia-cloud/answerdex/internal/repository/chunkmeta"
	searchrepo "github.com/devmedia-cloud/answerdex/internal/repository/search"
	"github.com/devmedia-cloud/answerdex/internal/repository/synonym"
	"github.com/devmedia-cloud/answerdex/internal/usecase/assemble"
	"github.com/devmedia-cloud/answerdex/internal/usecase/retrieval"
)

type mockIndex struct {
	vectorResults []result.SearchResult
	vectorErr     error
	lexicalHits   []searchrepo.Hit
	lexicalErr    error
}

func (m *mockIndex) Vector(_ context.Context, _ searchrepo.VectorQuery) ([]result.SearchResult, error) {
	return m.vectorResults, m.vectorErr
}

func (m *mockIndex) Lexical(_ context.Context, _ searchrepo.LexicalQuery) ([]searchrepo.Hit, error) {
	return m.lexicalHits, m.lexicalErr
}

type mockAllowlist struct{}

func (mockAllowlist) CuratedIDs(context.Context) ([]string, error)          { return nil, nil }
func (mockAllowlist) EventAccess(context.Context, string) ([]string, error) { return nil, nil }

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 2}, nil
}

type mockMeta struct {
	chunks map[string]chunkmeta.ChunkMeta
	docs   map[string]chunkmeta.DocMeta
}

func (m *mockMeta) ChunkMulti(_ context.Context, _ bool, ids []string) (map[string]chunkmeta.ChunkMeta, error) {
	out := make(map[string]chunkmeta.ChunkMeta)
	for _, id := range ids {
		if c, ok := m.chunks[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *mockMeta) DocMulti(_ context.Context, ids []string) (map[string]chunkmeta.DocMeta, error) {
	out := make(map[string]chunkmeta.DocMeta)
	for _, id := range ids {
		if d, ok := m.docs[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

type mockEntitlements struct{}

func (mockEntitlements) IsAccessible(context.Context, string, string) bool { return true }

type mockSynonyms struct{}

func (mockSynonyms) Lookup(context.Context, synonym.Kind, string) (string, bool, error) {
	return "", false, nil
}

func (mockSynonyms) LookupList(context.Context, synonym.Kind, string) ([]string, bool, error) {
	return nil, false, nil
}

type mockCompleter struct {
	mu         sync.Mutex
	completeFn func(messages []domain.Message, opts domain.CompletionOptions) (string, error)
	calls      int
}

func (m *mockCompleter) Complete(
	_ context.Context, messages []domain.Message, opts domain.CompletionOptions,
) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.completeFn(messages, opts)
}

func testRetrievalConfig() retrieval.Config {
	return retrieval.Config{
		CandidateMultiplier: 3,
		MaxCandidatePool:    120,
	}
}

func testAssembleConfig() assemble.Config {
	return assemble.Config{MaxChunks: 24, MaxPerDocLegacy: 3, MaxPerDocStandard: 24}
}
