package keywords

import (
	"context"
	"errors"
	"testing"

	"github.com/devmedia-cloud/answerdex/internal/domain"
)

type mockCompleter struct {
	out   string
	err   error
	calls int
}

func (m *mockCompleter) Complete(
	_ context.Context, _ []domain.Message, _ domain.CompletionOptions,
) (string, error) {
	m.calls++
	return m.out, m.err
}

func TestExtract_FullExtraction(t *testing.T) {
	c := &mockCompleter{out: `{
		"phrase": "superbike engine tuning",
		"versions": ["3.2"],
		"years": ["2024"],
		"relative_years": false,
		"seasons": [{"season": "summer", "year": 2024}],
		"magazine_word": true
	}`}
	svc := New(c)

	kw := svc.Extract(context.Background(), "question text", fixedToday)

	if kw.Phrase != "superbike engine tuning" {
		t.Errorf("unexpected phrase: %q", kw.Phrase)
	}
	if len(kw.PrimaryVersions) != 1 || kw.PrimaryVersions[0] != "3.2" {
		t.Errorf("unexpected primary versions: %v", kw.PrimaryVersions)
	}
	if len(kw.SecondaryVersions) != 2 || kw.SecondaryVersions[0] != "3.1" {
		t.Errorf("unexpected secondary versions: %v", kw.SecondaryVersions)
	}
	if len(kw.Years) != 1 || kw.Years[0] != "2024" {
		t.Errorf("unexpected years: %v", kw.Years)
	}
	if len(kw.Issues) != 3 || kw.Issues[0] != "6.2024" {
		t.Errorf("unexpected issues: %v", kw.Issues)
	}
}

func TestExtract_NilCompleterFallsBack(t *testing.T) {
	svc := New(nil)

	kw := svc.Extract(context.Background(), "what about brakes?", fixedToday)

	if kw.Phrase != "what about brakes?" {
		t.Errorf("expected question-as-phrase, got %q", kw.Phrase)
	}
	if len(kw.PrimaryVersions) != 0 || len(kw.Years) != 0 || len(kw.Issues) != 0 {
		t.Errorf("fallback must carry no facets: %+v", kw)
	}
}

func TestExtract_CompleterErrorFallsBack(t *testing.T) {
	c := &mockCompleter{err: errors.New("rate limited")}
	svc := New(c)

	kw := svc.Extract(context.Background(), "the question", fixedToday)

	if kw.Phrase != "the question" {
		t.Errorf("expected fallback phrase, got %q", kw.Phrase)
	}
}

func TestExtract_MalformedJSONFallsBack(t *testing.T) {
	for _, out := range []string{
		"not json at all",
		`{"versions": ["3.2"]}`, // missing phrase
		`{"phrase": `,
	} {
		c := &mockCompleter{out: out}
		svc := New(c)

		kw := svc.Extract(context.Background(), "q", fixedToday)
		if kw.Phrase != "q" {
			t.Errorf("output %q: expected fallback, got %q", out, kw.Phrase)
		}
	}
}

func TestExtract_ToleratesCodeFences(t *testing.T) {
	c := &mockCompleter{out: "```json\n{\"phrase\": \"clean phrase\", \"versions\": []}\n```"}
	svc := New(c)

	kw := svc.Extract(context.Background(), "q", fixedToday)
	if kw.Phrase != "clean phrase" {
		t.Errorf("expected fenced JSON to parse, got %q", kw.Phrase)
	}
}

func TestExtract_RelativeYears(t *testing.T) {
	c := &mockCompleter{out: `{"phrase": "latest races", "relative_years": true}`}
	svc := New(c)

	kw := svc.Extract(context.Background(), "q", fixedToday)
	if len(kw.Years) != 2 || kw.Years[0] != "2026" || kw.Years[1] != "2027" {
		t.Errorf("unexpected years: %v", kw.Years)
	}
}

func TestExtract_SlicesNeverNil(t *testing.T) {
	c := &mockCompleter{out: `{"phrase": "plain"}`}
	svc := New(c)

	kw := svc.Extract(context.Background(), "q", fixedToday)
	if kw.PrimaryVersions == nil || kw.SecondaryVersions == nil || kw.Years == nil || kw.Issues == nil {
		t.Errorf("facet slices must be empty, not nil: %+v", kw)
	}
}
