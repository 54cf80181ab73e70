package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/reference"
	"github.com/devmedia-cloud/answerdex/internal/logger"
	"github.com/devmedia-cloud/answerdex/internal/metrics"
	"github.com/devmedia-cloud/answerdex/internal/repository/chunkmeta"
)

// maxRepairRounds caps the resolution loop. A citation whose metadata cannot
// be found would otherwise keep the missing set non-empty forever.
const maxRepairRounds = 2

// DocReader fetches document records for repair rounds.
type DocReader interface {
	DocMulti(ctx context.Context, docIDs []string) (map[string]chunkmeta.DocMeta, error)
}

// Resolver repairs the reference selection until it covers every citation,
// then renders the reference markdown.
type Resolver struct {
	completer domain.Completer
	docs      DocReader
}

// NewResolver creates a reference resolver.
func NewResolver(completer domain.Completer, docs DocReader) *Resolver {
	return &Resolver{completer: completer, docs: docs}
}

// Resolve runs the bounded repair loop: while a cited document is missing
// from the selection, fetch its record, translate summary and access message
// when the language needs it, append, and try again. Citations that still
// lack a record after the cap are dropped with a warning. Returns the
// rendered markdown.
func (r *Resolver) Resolve(
	ctx context.Context,
	citations []reference.Citation,
	selection reference.Selection,
	lang domain.Language,
) (string, error) {
	log := logger.FromContext(ctx)

	// Fast-path selections arrive as bare ids; fill in the precomputed text.
	if err := r.hydrate(ctx, &selection, lang); err != nil {
		return "", err
	}

	rounds := 0
	for ; rounds < maxRepairRounds; rounds++ {
		missing := selection.Missing(citations)
		if len(missing) == 0 {
			break
		}

		repaired, unresolved, err := r.repair(ctx, missing, lang)
		if err != nil {
			return "", err
		}
		selection.Entries = append(selection.Entries, repaired...)

		if len(unresolved) > 0 {
			// No record will ever appear for these; drop them now instead of
			// burning the remaining rounds.
			log.Warn("dropping citations without document records",
				zap.Int("count", len(unresolved)))
			citations = withoutDocs(citations, unresolved)
		}
	}
	metrics.ReferenceRepairRounds.Observe(float64(rounds))

	if still := selection.Missing(citations); len(still) > 0 {
		log.Warn("citations still unresolved after repair cap, dropping",
			zap.Int("count", len(still)))
		drop := make(map[string]struct{}, len(still))
		for _, c := range still {
			drop[c.DocumentID] = struct{}{}
		}
		citations = withoutDocs(citations, drop)
	}

	return render(citations, selection), nil
}

// hydrate fills empty summaries and access messages from the precomputed
// records. For fast-path languages this is the whole translation story.
func (r *Resolver) hydrate(ctx context.Context, sel *reference.Selection, lang domain.Language) error {
	var bare []string
	for _, e := range sel.Entries {
		if e.Summary == "" || e.AccessMessage == "" {
			bare = append(bare, e.DocumentID)
		}
	}
	if len(bare) == 0 {
		return nil
	}

	docs, err := r.docs.DocMulti(ctx, bare)
	if err != nil {
		return fmt.Errorf("hydrate references: %w", err)
	}
	for i, e := range sel.Entries {
		doc, ok := docs[e.DocumentID]
		if !ok {
			continue
		}
		if e.Summary == "" {
			sel.Entries[i].Summary = doc.Summary(lang)
		}
		if e.AccessMessage == "" {
			sel.Entries[i].AccessMessage = doc.AccessMessage(lang)
		}
	}
	return nil
}

// repair fetches records for the missing citations and, for languages without
// precomputed text, translates them in one call. Returns the repaired entries
// plus the document ids that have no record at all.
func (r *Resolver) repair(
	ctx context.Context, missing []reference.Citation, lang domain.Language,
) ([]reference.Entry, map[string]struct{}, error) {
	ids := make([]string, len(missing))
	for i, c := range missing {
		ids[i] = c.DocumentID
	}

	docs, err := r.docs.DocMulti(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("repair references: %w", err)
	}

	unresolved := make(map[string]struct{})
	var entries []reference.Entry
	for _, c := range missing {
		doc, ok := docs[c.DocumentID]
		if !ok {
			unresolved[c.DocumentID] = struct{}{}
			continue
		}
		entries = append(entries, reference.Entry{
			DocumentID:    c.DocumentID,
			Summary:       doc.Summary(lang),
			AccessMessage: doc.AccessMessage(lang),
		})
	}

	if len(entries) > 0 && !lang.HasLocalizedSummaries() {
		translated, err := r.translate(ctx, entries, lang)
		if err != nil {
			return nil, nil, err
		}
		entries = translated
	}
	return entries, unresolved, nil
}

// translate runs the dedicated translation call for one repair round.
func (r *Resolver) translate(
	ctx context.Context, entries []reference.Entry, lang domain.Language,
) ([]reference.Entry, error) {
	if r.completer == nil {
		return entries, nil
	}

	payload, err := json.Marshal(struct {
		Entries []reference.Entry `json:"entries"`
	}{Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("translate references: %w", err)
	}

	out, err := r.completer.Complete(ctx,
		[]domain.Message{
			{Role: domain.RoleSystem, Content: fmt.Sprintf(translatePrompt, languageName(lang))},
			{Role: domain.RoleUser, Content: string(payload)},
		},
		domain.CompletionOptions{MaxTokens: 1200, Temperature: 0},
	)
	if err != nil {
		return nil, fmt.Errorf("translate references: %w", err)
	}

	sel, err := decodeSelection(out)
	if err != nil {
		return nil, fmt.Errorf("translate references: %w", err)
	}
	byDoc := make(map[string]reference.Entry, len(sel.Entries))
	for _, e := range sel.Entries {
		byDoc[e.DocumentID] = e
	}
	// Keep the untranslated entry when the model dropped or mangled one.
	for i, e := range entries {
		if t, ok := byDoc[e.DocumentID]; ok && t.Summary != "" {
			entries[i] = t
		}
	}
	return entries, nil
}

// render builds the two markdown sections: cited sources in citation order,
// then the remaining selection entries in selection order.
func render(citations []reference.Citation, selection reference.Selection) string {
	byDoc := make(map[string]reference.Entry, len(selection.Entries))
	for _, e := range selection.Entries {
		byDoc[e.DocumentID] = e
	}

	var b strings.Builder
	cited := make(map[string]struct{})
	for _, c := range citations {
		if c.DocumentID == "" {
			continue
		}
		if _, dup := cited[c.DocumentID]; dup {
			continue
		}
		e, ok := byDoc[c.DocumentID]
		if !ok {
			continue
		}
		cited[c.DocumentID] = struct{}{}
		if len(cited) == 1 {
			b.WriteString("## Sources\n\n")
		}
		writeEntry(&b, e)
	}

	wroteMore := false
	for _, e := range selection.Entries {
		if _, isCited := cited[e.DocumentID]; isCited {
			continue
		}
		if e.Summary == "" {
			continue
		}
		if !wroteMore {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString("## More on this topic\n\n")
			wroteMore = true
		}
		writeEntry(&b, e)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, e reference.Entry) {
	fmt.Fprintf(b, "- %s", e.Summary)
	if e.AccessMessage != "" {
		fmt.Fprintf(b, " _%s_", e.AccessMessage)
	}
	b.WriteString("\n")
}

// withoutDocs filters citations whose documents are in the drop set.
func withoutDocs(citations []reference.Citation, drop map[string]struct{}) []reference.Citation {
	out := citations[:0:0]
	for _, c := range citations {
		if _, gone := drop[c.DocumentID]; gone {
			continue
		}
		out = append(out, c)
	}
	return out
}

// decodeSelection parses a selection or translation response, tolerating
// code fences.
func decodeSelection(out string) (reference.Selection, error) {
	trimmed := strings.TrimSpace(out)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var decoded struct {
		Entries []reference.Entry `json:"entries"`
	}
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return reference.Selection{}, fmt.Errorf("%w: %w", domain.ErrMalformedGeneration, err)
	}
	return reference.Selection{Entries: decoded.Entries}, nil
}
