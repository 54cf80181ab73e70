// Package synonym reads the canonical-name synonym store. Each kind is one
// hash keyed by lower-cased surface text.
package synonym

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devmedia-cloud/answerdex/internal/db"
	"github.com/devmedia-cloud/answerdex/internal/domain"
)

// Kind selects a synonym table.
type Kind string

// Synonym tables.
const (
	KindBrand       Kind = "brand"
	KindBrandTypes  Kind = "brand_types"
	KindSeries      Kind = "series"
	KindCategory    Kind = "category"
	KindContentType Kind = "content_type"
	KindIssue       Kind = "issue"
)

// store is the consumer interface for synonym lookups (ISP).
type store interface {
	HGet(ctx context.Context, key, field string) (string, error)
}

// Repo implements the synonym lookups used by the filter resolver.
type Repo struct {
	store store
}

// New creates a synonym repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Lookup resolves surface text to its canonical value. The match is exact and
// case-insensitive; ok is false when the table has no entry.
func (r *Repo) Lookup(ctx context.Context, kind Kind, text string) (string, bool, error) {
	key := fmt.Sprintf("%ssyn:%s", domain.KeyPrefix, kind)
	v, err := r.store.HGet(ctx, key, strings.ToLower(strings.TrimSpace(text)))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("synonym %s lookup: %w", kind, err)
	}
	return v, true, nil
}

// LookupList resolves surface text to a comma-separated list value
// (brand content types).
func (r *Repo) LookupList(ctx context.Context, kind Kind, text string) ([]string, bool, error) {
	v, ok, err := r.Lookup(ctx, kind, text)
	if err != nil || !ok {
		return nil, ok, err
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true, nil
}
