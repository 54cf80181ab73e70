// Package search executes vector and lexical queries against the fragment
// indexes and parses hits into domain results.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/devmedia-cloud/answerdex/internal/db"
	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/filter"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
)

// Collection selects which fragment index a query targets.
type Collection string

// Fragment collections.
const (
	// CollectionChunks is the modern semantic-fragment collection.
	CollectionChunks Collection = "chunks"
	// CollectionPages is the legacy page-fragment collection.
	CollectionPages Collection = "pages"
)

func (c Collection) indexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, c)
}

func (c Collection) keyPrefix() string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, c)
}

var returnFields = []string{
	"doc_id", "content_type", "sort_date", "part_index", "part_total",
	"text", "slide_text", "platform", "archetype", "event_date", "chunker",
	"__vector_score",
}

// VectorQuery is one KNN request against a fragment collection.
type VectorQuery struct {
	Collection  Collection
	Vector      []float32
	Filter      filter.Filter
	PoolK       int // candidate pool, pageSize × multiplier capped at the max
	Offset      int // (page-1) × pageSize
	AllowDocIDs []string
}

// LexicalQuery is one weighted full-text request.
type LexicalQuery struct {
	Collection Collection
	Phrase     string
	Filter     filter.Filter
	TopK       int
}

// Hit is a parsed index entry: the request-scoped result plus the index-only
// attributes the lexical post-filters need.
type Hit struct {
	Result    result.SearchResult
	Platform  string
	Archetype bool
	EventDate time.Time
	Chunker   domain.ChunkerType
}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchLexical(ctx context.Context, q *db.LexicalQuery) (*db.SearchResult, error)
}

// Repo implements the retrieval queries.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Vector performs a filtered KNN search and returns vector-source results.
func (r *Repo) Vector(ctx context.Context, q VectorQuery) ([]result.SearchResult, error) {
	includeChunker := q.Collection != CollectionPages

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    q.Collection.indexName(),
		Prefilter:    buildPrefilter(q.Filter, includeChunker, q.AllowDocIDs),
		Vector:       q.Vector,
		K:            q.PoolK,
		Offset:       q.Offset,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", q.Collection, err)
	}

	hits := parseHits(sr, q.Collection, result.SourceVector)
	results := make([]result.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = h.Result
	}
	return results, nil
}

// Lexical performs the weighted boolean search and returns raw hits in
// relevance order; post-filtering and window reordering happen in the usecase.
func (r *Repo) Lexical(ctx context.Context, q LexicalQuery) ([]Hit, error) {
	sr, err := r.store.SearchLexical(ctx, &db.LexicalQuery{
		IndexName:    q.Collection.indexName(),
		Query:        buildLexicalQuery(q.Phrase, q.Filter),
		TopK:         q.TopK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("lexical search %s: %w", q.Collection, err)
	}

	return parseHits(sr, q.Collection, result.SourceLexical), nil
}

func parseHits(sr *db.SearchResult, coll Collection, source result.Source) []Hit {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := coll.keyPrefix()
	hits := make([]Hit, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		f := entry.Fields

		res := result.SearchResult{
			ID:              id,
			DocumentID:      f["doc_id"],
			Source:          source,
			RawScore:        entry.Score,
			NormalizedScore: entry.Score,
			ContentType:     domain.ContentType(f["content_type"]),
			Text:            f["text"],
			SlideText:       f["slide_text"],
		}
		res.SortDate = parseDate(f["sort_date"])
		res.PartIndex = parseInt(f["part_index"])
		res.PartTotal = parseInt(f["part_total"])

		hits = append(hits, Hit{
			Result:    res,
			Platform:  f["platform"],
			Archetype: f["archetype"] == "1",
			EventDate: parseDate(f["event_date"]),
			Chunker:   domain.ChunkerType(f["chunker"]),
		})
	}

	return hits
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	return time.Time{}
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
