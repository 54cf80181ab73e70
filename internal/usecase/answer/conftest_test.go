package answer

import (
	"context"
	"sync"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/repository/chunkmeta"
)

// mockCompleter routes each call through completeFn and records the calls.
type mockCompleter struct {
	mu         sync.Mutex
	completeFn func(messages []domain.Message, opts domain.CompletionOptions) (string, error)
	calls      [][]domain.Message
}

func (m *mockCompleter) Complete(
	_ context.Context, messages []domain.Message, opts domain.CompletionOptions,
) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()
	return m.completeFn(messages, opts)
}

type mockDocReader struct {
	docs  map[string]chunkmeta.DocMeta
	err   error
	calls int
}

func (m *mockDocReader) DocMulti(_ context.Context, ids []string) (map[string]chunkmeta.DocMeta, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]chunkmeta.DocMeta)
	for _, id := range ids {
		if d, ok := m.docs[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func docRecord(id, summary, access string) chunkmeta.DocMeta {
	return chunkmeta.NewDocMeta(id,
		map[domain.Language]string{domain.LangEnglish: summary},
		map[domain.Language]string{domain.LangEnglish: access},
	)
}
