// Package filter holds the resolved query constraints shared by both retrievers.
package filter

import "github.com/devmedia-cloud/answerdex/internal/domain"

// Filter is the canonical constraint set resolved from extracted keywords.
type Filter struct {
	ContentTypes      []domain.ContentType
	Brand             string
	Series            []string
	Categories        []string
	PrimaryVersions   []string
	SecondaryVersions []string
	Years             []string
	Issues            []string
	ParentIDs         []string
	Chunker           domain.ChunkerType
	CuratedOnly       bool
}

// Normalize deduplicates all list fields and removes any secondary version
// that is also primary.
func (f *Filter) Normalize() {
	f.Series = dedup(f.Series)
	f.Categories = dedup(f.Categories)
	f.PrimaryVersions = dedup(f.PrimaryVersions)
	f.SecondaryVersions = subtract(dedup(f.SecondaryVersions), f.PrimaryVersions)
	f.Years = dedup(f.Years)
	f.Issues = dedup(f.Issues)
	f.ParentIDs = dedup(f.ParentIDs)
	f.ContentTypes = dedupTypes(f.ContentTypes)
}

func dedup(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func subtract(in, remove []string) []string {
	if len(in) == 0 || len(remove) == 0 {
		return in
	}
	drop := make(map[string]struct{}, len(remove))
	for _, s := range remove {
		drop[s] = struct{}{}
	}
	out := in[:0]
	for _, s := range in {
		if _, ok := drop[s]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

func dedupTypes(in []domain.ContentType) []domain.ContentType {
	if len(in) == 0 {
		return in
	}
	seen := make(map[domain.ContentType]struct{}, len(in))
	out := in[:0]
	for _, t := range in {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
