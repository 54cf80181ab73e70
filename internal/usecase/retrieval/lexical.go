package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/filter"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
	searchrepo "github.com/devmedia-cloud/answerdex/internal/repository/search"
)

// freshnessWindow is the reorder window size: relevance order is preserved
// across windows while each window is sorted by date descending.
const freshnessWindow = 12

// LexicalRetriever runs the weighted keyword query and the post-filters the
// index cannot express natively.
type LexicalRetriever struct {
	repo      Repository
	allowlist AllowlistReader
	cfg       Config
	now       func() time.Time
}

// NewLexicalRetriever creates a lexical retriever.
func NewLexicalRetriever(repo Repository, allowlist AllowlistReader, cfg Config) *LexicalRetriever {
	return &LexicalRetriever{repo: repo, allowlist: allowlist, cfg: cfg, now: time.Now}
}

// Search runs the weighted boolean query, applies post-filters, the
// window-of-12 freshness reorder, and pagination. Lexical scores pass through
// unnormalized.
func (r *LexicalRetriever) Search(
	ctx context.Context, queryText string, f filter.Filter, page, pageSize int, userToken string,
) ([]result.SearchResult, error) {
	collection := searchrepo.CollectionChunks
	legacy := f.Chunker.IsLegacy()
	if legacy {
		collection = searchrepo.CollectionPages
	}

	hits, err := r.repo.Lexical(ctx, searchrepo.LexicalQuery{
		Collection: collection,
		Phrase:     queryText,
		Filter:     f,
		TopK:       page * pageSize,
	})
	if err != nil {
		return nil, err
	}

	hits, err = r.postFilter(ctx, hits, f, legacy, userToken)
	if err != nil {
		return nil, err
	}

	results := make([]result.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = h.Result
	}

	reorderByFreshness(results)

	offset := (page - 1) * pageSize
	if offset >= len(results) {
		return nil, nil
	}
	results = results[offset:]
	if len(results) > pageSize {
		results = results[:pageSize]
	}
	return results, nil
}

// postFilter drops hits the search index cannot exclude natively: inexact
// chunker matches, uncurated legacy documents, hidden platforms, non-archetype
// events, and past events the user is not booked for.
func (r *LexicalRetriever) postFilter(
	ctx context.Context, hits []searchrepo.Hit, f filter.Filter, legacy bool, userToken string,
) ([]searchrepo.Hit, error) {
	var curated map[string]struct{}
	if legacy && f.CuratedOnly {
		ids, err := r.allowlist.CuratedIDs(ctx)
		if err != nil {
			return nil, err
		}
		curated = toSet(ids)
	}

	var eventAccess map[string]struct{}
	if r.cfg.AttendeeFilter {
		ids, err := r.allowlist.EventAccess(ctx, userToken)
		if err == nil {
			eventAccess = toSet(ids)
		}
		// lookup failure degrades to "no extra access", not a request error
	}

	platforms := toSet(r.cfg.AllowedPlatforms)
	now := r.now()

	out := hits[:0]
	for _, h := range hits {
		if !legacy && f.Chunker != "" && h.Chunker != f.Chunker {
			continue
		}
		if curated != nil {
			if _, ok := curated[h.Result.DocumentID]; !ok {
				continue
			}
		}
		if h.Platform != "" && len(platforms) > 0 {
			if _, ok := platforms[h.Platform]; !ok {
				continue
			}
		}
		if h.Result.ContentType == domain.ContentTypeEvent {
			if !h.Archetype {
				continue
			}
			if r.cfg.AttendeeFilter && !h.EventDate.IsZero() && h.EventDate.Before(now) {
				if _, ok := eventAccess[h.Result.DocumentID]; !ok {
					continue
				}
			}
		}
		out = append(out, h)
	}
	return out, nil
}

// reorderByFreshness partitions results into fixed windows, preserving
// relevance order across windows, and sorts each window by date descending.
func reorderByFreshness(results []result.SearchResult) {
	for start := 0; start < len(results); start += freshnessWindow {
		end := start + freshnessWindow
		if end > len(results) {
			end = len(results)
		}
		window := results[start:end]
		sort.SliceStable(window, func(i, j int) bool {
			return window[i].SortDate.After(window[j].SortDate)
		})
	}
}

func toSet(in []string) map[string]struct{} {
	if len(in) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(in))
	for _, v := range in {
		s[v] = struct{}{}
	}
	return s
}
