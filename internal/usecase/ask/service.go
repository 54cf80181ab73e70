// Package ask orchestrates the full question pipeline: keyword extraction,
// filter resolution, the parallel retrieval branches, combination, context
// assembly and optional answer synthesis.
package ask

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/chunkctx"
	domkw "github.com/devmedia-cloud/answerdex/internal/domain/keywords"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/filter"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
	"github.com/devmedia-cloud/answerdex/internal/logger"
	"github.com/devmedia-cloud/answerdex/internal/metrics"
	"github.com/devmedia-cloud/answerdex/internal/usecase/answer"
	"github.com/devmedia-cloud/answerdex/internal/usecase/assemble"
	"github.com/devmedia-cloud/answerdex/internal/usecase/filters"
	"github.com/devmedia-cloud/answerdex/internal/usecase/keywords"
	"github.com/devmedia-cloud/answerdex/internal/usecase/retrieval"
)

// Request is one question with its retrieval and synthesis options.
type Request struct {
	Question    string
	ContentType domain.ContentType
	Chunker     domain.ChunkerType
	CuratedOnly bool
	Synthesize  bool
	Page        int
	PageSize    int
	User        domain.UserContext
}

// Response mirrors the reply shape the admin UI consumes: the raw keyword
// extraction, both branch result lists, the combined list and the optional
// synthesized answer.
type Response struct {
	AskID     string                `json:"ask_id"`
	Keywords  string                `json:"keywords"`
	Retrieval []result.SearchResult `json:"retrieval"`
	Embedding []result.SearchResult `json:"embeddings"`
	Combined  []result.SearchResult `json:"combined"`
	Answer    string                `json:"answer,omitempty"`
}

// Service wires the pipeline stages together.
type Service struct {
	keywords    *keywords.Service
	filters     *filters.Service
	vector      *retrieval.VectorRetriever
	lexical     *retrieval.LexicalRetriever
	assembler   *assemble.Service
	synthesizer *answer.Synthesizer
	resolver    *answer.Resolver
	completer   domain.Completer
	cfg         retrieval.Config
	now         func() time.Time
}

// New creates the orchestration service. completer may be nil when no
// generation deployment is configured; synthesis then fails fast and keyword
// extraction degrades.
func New(
	kw *keywords.Service,
	flt *filters.Service,
	vector *retrieval.VectorRetriever,
	lexical *retrieval.LexicalRetriever,
	assembler *assemble.Service,
	synthesizer *answer.Synthesizer,
	resolver *answer.Resolver,
	completer domain.Completer,
	cfg retrieval.Config,
) *Service {
	return &Service{
		keywords:    kw,
		filters:     flt,
		vector:      vector,
		lexical:     lexical,
		assembler:   assembler,
		synthesizer: synthesizer,
		resolver:    resolver,
		completer:   completer,
		cfg:         cfg,
		now:         time.Now,
	}
}

type branchOutcome struct {
	results []result.SearchResult
	err     error
}

// Ask runs the pipeline for one question.
func (s *Service) Ask(ctx context.Context, req Request) (Response, error) {
	askID := uuid.NewString()
	log := logger.FromContext(ctx).With(zap.String("ask_id", askID))
	ctx = logger.ContextWithLogger(ctx, log)

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 10
	}

	// Keyword extraction and language detection share no data; start both
	// before either is needed. Language is only read for synthesis.
	kwCh := make(chan domkw.Keywords, 1)
	go func() {
		kwCh <- s.keywords.Extract(ctx, req.Question, s.now())
	}()

	langCh := make(chan domain.Language, 1)
	if req.Synthesize && req.User.Language == "" {
		go func() {
			langCh <- answer.DetectLanguage(ctx, s.completer, req.Question)
		}()
	} else {
		langCh <- req.User.Language
	}

	kw := <-kwCh
	kwJSON, err := json.Marshal(kw)
	if err != nil {
		return Response{}, fmt.Errorf("encode keywords: %w", err)
	}

	f, err := s.filters.Resolve(ctx, kw, filters.Options{
		ContentType: req.ContentType,
		Chunker:     req.Chunker,
		CuratedOnly: req.CuratedOnly,
	})
	if err != nil {
		return Response{}, fmt.Errorf("resolve filters: %w", err)
	}

	lexical, vector, err := s.retrieve(ctx, kw.Phrase, f, req)
	if err != nil {
		return Response{}, err
	}

	combined := retrieval.Combine(lexical, vector)

	resp := Response{
		AskID:     askID,
		Keywords:  string(kwJSON),
		Retrieval: lexical,
		Embedding: vector,
		Combined:  combined,
	}

	if !req.Synthesize {
		return resp, nil
	}

	lang := <-langCh
	if lang == "" {
		lang = domain.LangEnglish
	}
	user := req.User
	user.Language = lang

	text, err := s.answer(ctx, req.Question, combined, f.Chunker.IsLegacy(), user)
	if err != nil {
		return Response{}, err
	}
	resp.Answer = text
	return resp, nil
}

// retrieve launches both branches, awaits the lexical branch first, applies
// the per-source cutoffs, and degrades to a single branch when only one
// succeeds.
func (s *Service) retrieve(
	ctx context.Context, phrase string, f filter.Filter, req Request,
) (lexical, vector []result.SearchResult, err error) {
	log := logger.FromContext(ctx)

	lexCh := make(chan branchOutcome, 1)
	go func() {
		res, err := s.lexical.Search(ctx, phrase, f, req.Page, req.PageSize, req.User.Token)
		lexCh <- branchOutcome{results: res, err: err}
	}()

	vecCh := make(chan branchOutcome, 1)
	go func() {
		res, err := s.vector.Search(ctx, phrase, f, req.Page, req.PageSize)
		vecCh <- branchOutcome{results: res, err: err}
	}()

	lex := <-lexCh
	vec := <-vecCh

	if lex.err != nil {
		metrics.RetrievalBranchTotal.WithLabelValues("lexical", "error").Inc()
		log.Warn("lexical branch failed", zap.Error(lex.err))
	} else {
		metrics.RetrievalBranchTotal.WithLabelValues("lexical", "ok").Inc()
	}
	if vec.err != nil {
		metrics.RetrievalBranchTotal.WithLabelValues("vector", "error").Inc()
		log.Warn("vector branch failed", zap.Error(vec.err))
	} else {
		metrics.RetrievalBranchTotal.WithLabelValues("vector", "ok").Inc()
	}

	if lex.err != nil && vec.err != nil {
		return nil, nil, fmt.Errorf("%w: lexical: %v; vector: %v",
			domain.ErrRetrievalFailed, lex.err, vec.err)
	}

	lexical = retrieval.ApplyCutoff(lex.results, s.cfg.LexicalScoreCutoff)
	vector = retrieval.ApplyCutoff(vec.results, s.cfg.VectorScoreCutoff)
	return lexical, vector, nil
}

// answer assembles both context shapes, synthesizes the cited answer and
// appends the resolved reference sections.
func (s *Service) answer(
	ctx context.Context, question string, combined []result.SearchResult, legacy bool, user domain.UserContext,
) (string, error) {
	chunks, err := s.assembler.Assemble(ctx, combined, assemble.Options{
		Legacy: legacy,
		Mode:   chunkctx.ModeGeneration,
		User:   user,
	})
	if err != nil {
		return "", err
	}
	refs, err := s.assembler.Assemble(ctx, combined, assemble.Options{
		Legacy: legacy,
		Mode:   chunkctx.ModeReference,
		User:   user,
	})
	if err != nil {
		return "", err
	}

	syn, err := s.synthesizer.Synthesize(ctx, question, chunks, refs, user.Language)
	if err != nil {
		return "", err
	}

	references, err := s.resolver.Resolve(ctx, syn.Citations, syn.Selection, user.Language)
	if err != nil {
		return "", err
	}
	if references == "" {
		return syn.Text, nil
	}
	return syn.Text + "\n\n" + references, nil
}
