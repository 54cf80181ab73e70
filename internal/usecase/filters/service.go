// Package filters resolves extracted keywords into the canonical query filter
// via synonym lookups over all contiguous sub-phrases.
package filters

import (
	"context"
	"fmt"
	"strings"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	domkw "github.com/devmedia-cloud/answerdex/internal/domain/keywords"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/filter"
	"github.com/devmedia-cloud/answerdex/internal/repository/synonym"
)

// Synonyms is the consumer interface for the synonym store (ISP).
type Synonyms interface {
	Lookup(ctx context.Context, kind synonym.Kind, text string) (string, bool, error)
	LookupList(ctx context.Context, kind synonym.Kind, text string) ([]string, bool, error)
}

// Options carries the request-level constraints that bypass resolution.
type Options struct {
	ContentType domain.ContentType // explicit filter from the request, may be empty
	Chunker     domain.ChunkerType
	CuratedOnly bool
}

// Service resolves filters. Pure given its inputs except for synonym reads.
type Service struct {
	synonyms Synonyms
}

// New creates a filter resolver.
func New(synonyms Synonyms) *Service {
	return &Service{synonyms: synonyms}
}

// Resolve walks every contiguous word window of the phrase through the
// synonym tables and assembles the canonical filter. Parent-document ids are
// resolved only from matched issue designations, never guessed.
func (s *Service) Resolve(ctx context.Context, kw domkw.Keywords, opts Options) (filter.Filter, error) {
	f := filter.Filter{
		PrimaryVersions:   kw.PrimaryVersions,
		SecondaryVersions: kw.SecondaryVersions,
		Years:             kw.Years,
		Issues:            kw.Issues,
		Chunker:           opts.Chunker,
		CuratedOnly:       opts.CuratedOnly,
	}
	if opts.ContentType != "" {
		f.ContentTypes = append(f.ContentTypes, opts.ContentType)
	}

	windows := subPhrases(kw.Phrase)

	for _, w := range windows {
		if err := s.resolveWindow(ctx, w, &f); err != nil {
			return filter.Filter{}, err
		}
	}

	// Issue designations only exist for the read content type.
	if hasReadType(f.ContentTypes) {
		for _, w := range windows {
			if err := s.resolveIssue(ctx, w, &f); err != nil {
				return filter.Filter{}, err
			}
		}
	}

	f.Normalize()
	return f, nil
}

func (s *Service) resolveWindow(ctx context.Context, w string, f *filter.Filter) error {
	if brand, ok, err := s.synonyms.Lookup(ctx, synonym.KindBrand, w); err != nil {
		return fmt.Errorf("resolve brand: %w", err)
	} else if ok {
		f.Brand = brand
		types, ok, err := s.synonyms.LookupList(ctx, synonym.KindBrandTypes, w)
		if err != nil {
			return fmt.Errorf("resolve brand types: %w", err)
		}
		if ok {
			for _, t := range types {
				f.ContentTypes = append(f.ContentTypes, domain.ContentType(t))
			}
		}
	}

	if series, ok, err := s.synonyms.Lookup(ctx, synonym.KindSeries, w); err != nil {
		return fmt.Errorf("resolve series: %w", err)
	} else if ok {
		f.Series = append(f.Series, series)
	}

	if cat, ok, err := s.synonyms.Lookup(ctx, synonym.KindCategory, w); err != nil {
		return fmt.Errorf("resolve category: %w", err)
	} else if ok {
		f.Categories = append(f.Categories, cat)
	}

	if ct, ok, err := s.synonyms.Lookup(ctx, synonym.KindContentType, w); err != nil {
		return fmt.Errorf("resolve content type: %w", err)
	} else if ok {
		f.ContentTypes = append(f.ContentTypes, domain.ContentType(ct))
	}

	return nil
}

func (s *Service) resolveIssue(ctx context.Context, w string, f *filter.Filter) error {
	parentID, ok, err := s.synonyms.Lookup(ctx, synonym.KindIssue, w)
	if err != nil {
		return fmt.Errorf("resolve issue designation: %w", err)
	}
	if ok {
		f.ParentIDs = append(f.ParentIDs, parentID)
	}
	return nil
}

// subPhrases returns every contiguous word window of the phrase, lower-cased:
// all start..end slices, longest combinations included.
func subPhrases(phrase string) []string {
	words := strings.Fields(strings.ToLower(phrase))
	var windows []string
	for start := 0; start < len(words); start++ {
		for end := start + 1; end <= len(words); end++ {
			windows = append(windows, strings.Join(words[start:end], " "))
		}
	}
	return windows
}

func hasReadType(types []domain.ContentType) bool {
	for _, t := range types {
		if t.IsRead() {
			return true
		}
	}
	return false
}
