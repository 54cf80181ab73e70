package retrieval

import "github.com/devmedia-cloud/answerdex/internal/domain/search/result"

// Combine merges the two source lists into one deduplicated sequence:
//
//  1. the single highest-scored vector result, if any vector result exists,
//  2. all lexical results in their given order,
//  3. the remaining vector results in their given order.
//
// The ordering guarantees the best semantic match is never buried while
// lexical precision dominates the bulk of the list. Duplicates are skipped by
// fragment id (document id when the fragment carries none).
func Combine(lexical, vector []result.SearchResult) []result.SearchResult {
	combined := make([]result.SearchResult, 0, len(lexical)+len(vector))
	seen := make(map[string]struct{}, len(lexical)+len(vector))

	topIdx := -1
	if len(vector) > 0 {
		topIdx = 0
		for i, v := range vector {
			if v.NormalizedScore > vector[topIdx].NormalizedScore {
				topIdx = i
			}
		}
		top := vector[topIdx]
		combined = append(combined, top)
		seen[top.Key()] = struct{}{}
	}

	for _, r := range lexical {
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		combined = append(combined, r)
	}

	for i, r := range vector {
		if i == topIdx {
			continue
		}
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		combined = append(combined, r)
	}

	return combined
}

// ApplyCutoff drops results below the configured score cutoff and anything
// with a negative normalized score.
func ApplyCutoff(results []result.SearchResult, cutoff float64) []result.SearchResult {
	out := results[:0]
	for _, r := range results {
		if r.NormalizedScore < 0 || r.NormalizedScore < cutoff {
			continue
		}
		out = append(out, r)
	}
	return out
}
