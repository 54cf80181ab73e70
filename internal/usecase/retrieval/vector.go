package retrieval

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/filter"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
	searchrepo "github.com/devmedia-cloud/answerdex/internal/repository/search"
)

// maxRecencyPenalty bounds how much age can cost a vector hit (0.3 of scale).
const maxRecencyPenalty = 0.3

// VectorRetriever runs dense similarity queries against the fragment indexes.
type VectorRetriever struct {
	repo      Repository
	embedders *domain.EmbedderSet
	allowlist AllowlistReader
	cfg       Config
	now       func() time.Time
}

// NewVectorRetriever creates a vector retriever.
func NewVectorRetriever(
	repo Repository, embedders *domain.EmbedderSet, allowlist AllowlistReader, cfg Config,
) *VectorRetriever {
	return &VectorRetriever{
		repo:      repo,
		embedders: embedders,
		allowlist: allowlist,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Search embeds the query and runs a filtered KNN search. The legacy page
// collection uses the small embedding model and ignores the chunker tag; all
// other collections require the large model and fail fast without it.
func (r *VectorRetriever) Search(
	ctx context.Context, queryText string, f filter.Filter, page, pageSize int,
) ([]result.SearchResult, error) {
	collection := searchrepo.CollectionChunks
	class := domain.ModelClassLarge
	var allowDocIDs []string

	if f.Chunker.IsLegacy() {
		collection = searchrepo.CollectionPages
		class = domain.ModelClassSmall
		f.Chunker = ""

		if f.CuratedOnly {
			ids, err := r.allowlist.CuratedIDs(ctx)
			if err != nil {
				return nil, fmt.Errorf("curated allowlist: %w", err)
			}
			allowDocIDs = ids
		}
	}

	embedder, err := r.embedders.ForClass(class)
	if err != nil {
		return nil, err
	}

	embRes, err := embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embRes.TotalTokens)

	poolK := pageSize * r.cfg.CandidateMultiplier
	if r.cfg.MaxCandidatePool > 0 && poolK > r.cfg.MaxCandidatePool {
		poolK = r.cfg.MaxCandidatePool
	}
	if poolK < pageSize {
		poolK = pageSize
	}

	results, err := r.repo.Vector(ctx, searchrepo.VectorQuery{
		Collection:  collection,
		Vector:      embRes.Embedding,
		Filter:      f,
		PoolK:       poolK,
		Offset:      (page - 1) * pageSize,
		AllowDocIDs: allowDocIDs,
	})
	if err != nil {
		return nil, err
	}
	if len(results) > pageSize {
		results = results[:pageSize]
	}

	today := r.now()
	for i := range results {
		results[i].NormalizedScore = results[i].RawScore - recencyPenalty(results[i].SortDate, today)
	}
	return results, nil
}

// recencyPenalty grows asymptotically with age toward maxRecencyPenalty.
// Fragments without a date are not penalized.
func recencyPenalty(sortDate, today time.Time) float64 {
	if sortDate.IsZero() {
		return 0
	}
	ageDays := today.Sub(sortDate).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	penalty := (1 - math.Exp(-ageDays/365)) * maxRecencyPenalty
	return math.Min(maxRecencyPenalty, penalty)
}
