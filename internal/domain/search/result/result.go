package result

import (
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
)

// Source identifies which retriever produced a hit.
type Source string

// Retriever sources.
const (
	SourceVector  Source = "vector"
	SourceLexical Source = "lexical"
)

// SearchResult is one retrieved fragment. Constructed fresh per query,
// immutable by convention, discarded after the request completes.
type SearchResult struct {
	ID              string
	DocumentID      string
	Source          Source
	RawScore        float64
	NormalizedScore float64
	ContentType     domain.ContentType
	SortDate        time.Time
	PartIndex       int
	PartTotal       int
	Text            string
	SlideText       string
}

// Key returns the dedup identity: the fragment id, falling back to the
// owning document id when the fragment carries none.
func (r SearchResult) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.DocumentID
}
