// Package assemble selects a bounded, quota-respecting subset of combined
// results and enriches it into the chunk contexts handed to generation.
package assemble

import (
	"context"
	"fmt"
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/chunkctx"
	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
	"github.com/devmedia-cloud/answerdex/internal/repository/chunkmeta"
)

// Entitlements checks document access; implementations must default to
// accessible on failure.
type Entitlements interface {
	IsAccessible(ctx context.Context, documentID, userToken string) bool
}

// MetaReader fetches full fragment and document records.
type MetaReader interface {
	ChunkMulti(ctx context.Context, legacy bool, chunkIDs []string) (map[string]chunkmeta.ChunkMeta, error)
	DocMulti(ctx context.Context, docIDs []string) (map[string]chunkmeta.DocMeta, error)
}

// Config holds the assembly quotas.
type Config struct {
	MaxChunks         int
	MaxPerDocLegacy   int // legacy page fragments are large: few per document
	MaxPerDocStandard int // semantic fragments are small: many per document
}

// Options carries the per-request assembly parameters.
type Options struct {
	Legacy bool
	Mode   chunkctx.Mode
	User   domain.UserContext
}

// Service implements context assembly.
type Service struct {
	meta         MetaReader
	entitlements Entitlements
	cfg          Config
	now          func() time.Time
}

// New creates a context assembler.
func New(meta MetaReader, entitlements Entitlements, cfg Config) *Service {
	return &Service{meta: meta, entitlements: entitlements, cfg: cfg, now: time.Now}
}

// Assemble greedily admits fragments in combined order, skipping duplicates
// and any fragment whose document already reached the per-document quota,
// until the global cap is reached. Admitted fragments are enriched with
// entitlement state and a localized access message.
func (s *Service) Assemble(
	ctx context.Context, combined []result.SearchResult, opts Options,
) ([]chunkctx.ChunkContext, error) {
	maxPerDoc := s.cfg.MaxPerDocStandard
	if opts.Legacy {
		maxPerDoc = s.cfg.MaxPerDocLegacy
	}

	admitted := admit(combined, s.cfg.MaxChunks, maxPerDoc)
	if len(admitted) == 0 {
		return nil, nil
	}

	ids := make([]string, len(admitted))
	for i, r := range admitted {
		ids[i] = r.ID
	}

	chunks, err := s.meta.ChunkMulti(ctx, opts.Legacy, ids)
	if err != nil {
		return nil, fmt.Errorf("assemble context: %w", err)
	}

	var docs map[string]chunkmeta.DocMeta
	if opts.Mode == chunkctx.ModeReference {
		docIDs := make([]string, 0, len(admitted))
		for _, r := range admitted {
			docIDs = append(docIDs, r.DocumentID)
		}
		docs, err = s.meta.DocMulti(ctx, docIDs)
		if err != nil {
			return nil, fmt.Errorf("assemble references: %w", err)
		}
	}

	lang := opts.User.Language
	if !lang.HasLocalizedSummaries() {
		lang = domain.LangEnglish
	}

	out := make([]chunkctx.ChunkContext, 0, len(admitted))
	for _, r := range admitted {
		cc := chunkctx.ChunkContext{
			ChunkID:    r.ID,
			DocumentID: r.DocumentID,
			PartIndex:  r.PartIndex,
			PartTotal:  r.PartTotal,
		}

		cc.Access = chunkctx.AccessGranted
		if !s.entitlements.IsAccessible(ctx, r.DocumentID, opts.User.Token) {
			cc.Access = chunkctx.AccessRestricted
		}

		meta, haveMeta := chunks[r.ID]
		if haveMeta {
			cc.PartIndex = meta.PartIndex
			cc.PartTotal = meta.PartTotal
		}

		switch opts.Mode {
		case chunkctx.ModeGeneration:
			if haveMeta {
				cc.Title = meta.Title
				cc.ParentTitle = meta.ParentTitle
				cc.Author = meta.Author
				cc.Date = meta.Date
				cc.ContentType = meta.ContentType
				cc.Text = meta.Text
				cc.SlideText = meta.SlideText
			} else {
				cc.ContentType = r.ContentType
				cc.Text = r.Text
				cc.SlideText = r.SlideText
			}
			cc.AccessMessage = accessMessage(lang, messageInput{
				ContentType: cc.ContentType,
				Access:      cc.Access,
				EventDate:   meta.EventDate,
				Tier:        opts.User.Tier,
				HasDiscount: opts.User.HasDiscount,
				Now:         s.now(),
			})
		case chunkctx.ModeReference:
			doc, ok := docs[r.DocumentID]
			if ok {
				cc.Summary = doc.Summary(lang)
				cc.AccessMessage = doc.AccessMessage(lang)
			}
		}

		out = append(out, cc)
	}
	return out, nil
}

// admit applies the global cap and the per-document quota in combined order.
func admit(combined []result.SearchResult, maxChunks, maxPerDoc int) []result.SearchResult {
	var out []result.SearchResult
	seen := make(map[string]struct{}, len(combined))
	perDoc := make(map[string]int)

	for _, r := range combined {
		if len(out) >= maxChunks {
			break
		}
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		if perDoc[r.DocumentID] >= maxPerDoc {
			continue
		}
		seen[r.Key()] = struct{}{}
		perDoc[r.DocumentID]++
		out = append(out, r)
	}
	return out
}
