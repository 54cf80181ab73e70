// Package chunkmeta reads document-level metadata (localized summaries and
// access messages), the curated allowlist, and per-user event access lists.
package chunkmeta

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
)

// DocMeta is the precomputed document record used for reference entries.
type DocMeta struct {
	DocumentID  string
	Title       string
	ContentType domain.ContentType
	EventDate   time.Time
	summaries   map[domain.Language]string
	accessMsgs  map[domain.Language]string
}

// Summary returns the precomputed summary for a fast-path language,
// falling back to English.
func (m DocMeta) Summary(lang domain.Language) string {
	if s, ok := m.summaries[lang]; ok && s != "" {
		return s
	}
	return m.summaries[domain.LangEnglish]
}

// AccessMessage returns the precomputed access message for a fast-path
// language, falling back to English.
func (m DocMeta) AccessMessage(lang domain.Language) string {
	if s, ok := m.accessMsgs[lang]; ok && s != "" {
		return s
	}
	return m.accessMsgs[domain.LangEnglish]
}

// store is the consumer interface for metadata reads (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo reads document metadata and allowlists.
type Repo struct {
	store store
}

// New creates a metadata repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func docKey(docID string) string {
	return fmt.Sprintf("%sdoc:%s", domain.KeyPrefix, docID)
}

// Doc returns the metadata record for one document.
// Returns domain.ErrNotFound when no record exists.
func (r *Repo) Doc(ctx context.Context, docID string) (DocMeta, error) {
	fields, err := r.store.HGetAll(ctx, docKey(docID))
	if err != nil {
		return DocMeta{}, fmt.Errorf("doc meta %s: %w", docID, err)
	}
	if len(fields) == 0 {
		return DocMeta{}, fmt.Errorf("doc meta %s: %w", docID, domain.ErrNotFound)
	}
	return parseDocMeta(docID, fields), nil
}

// DocMulti returns metadata for several documents in one round-trip. Documents
// without a record are omitted from the result.
func (r *Repo) DocMulti(ctx context.Context, docIDs []string) (map[string]DocMeta, error) {
	if len(docIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(docIDs))
	for i, id := range docIDs {
		keys[i] = docKey(id)
	}
	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("doc meta multi: %w", err)
	}
	out := make(map[string]DocMeta, len(rows))
	for i, fields := range rows {
		if len(fields) == 0 {
			continue
		}
		out[docIDs[i]] = parseDocMeta(docIDs[i], fields)
	}
	return out, nil
}

// CuratedIDs returns the audited-document allowlist.
func (r *Repo) CuratedIDs(ctx context.Context) ([]string, error) {
	ids, err := r.store.SMembers(ctx, domain.KeyPrefix+"curated")
	if err != nil {
		return nil, fmt.Errorf("curated ids: %w", err)
	}
	return ids, nil
}

// IsCurated checks allowlist membership for one document.
func (r *Repo) IsCurated(ctx context.Context, docID string) (bool, error) {
	ok, err := r.store.SIsMember(ctx, domain.KeyPrefix+"curated", docID)
	if err != nil {
		return false, fmt.Errorf("curated check %s: %w", docID, err)
	}
	return ok, nil
}

// EventAccess returns the event-document ids the user is booked for.
func (r *Repo) EventAccess(ctx context.Context, userToken string) ([]string, error) {
	if userToken == "" {
		return nil, nil
	}
	ids, err := r.store.SMembers(ctx, domain.KeyPrefix+"attendee:"+userToken)
	if err != nil {
		return nil, fmt.Errorf("event access: %w", err)
	}
	return ids, nil
}

// NewDocMeta builds a document record from already-localized fields. Callers
// outside the Redis hash layout (tests, fixtures) use this instead of
// parseDocMeta.
func NewDocMeta(docID string, summaries, accessMsgs map[domain.Language]string) DocMeta {
	return DocMeta{DocumentID: docID, summaries: summaries, accessMsgs: accessMsgs}
}

func parseDocMeta(docID string, fields map[string]string) DocMeta {
	m := DocMeta{
		DocumentID:  docID,
		Title:       fields["title"],
		ContentType: domain.ContentType(fields["content_type"]),
		summaries: map[domain.Language]string{
			domain.LangEnglish: fields["summary_en"],
			domain.LangGerman:  fields["summary_de"],
			domain.LangDutch:   fields["summary_nl"],
		},
		accessMsgs: map[domain.Language]string{
			domain.LangEnglish: fields["access_en"],
			domain.LangGerman:  fields["access_de"],
			domain.LangDutch:   fields["access_nl"],
		},
	}
	if v := fields["event_date"]; v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			m.EventDate = ts
		}
	}
	return m
}

// ChunkMeta is the full fragment record fetched for context assembly.
type ChunkMeta struct {
	ChunkID     string
	DocumentID  string
	Title       string
	ParentTitle string
	Author      string
	Date        time.Time
	ContentType domain.ContentType
	EventDate   time.Time
	Text        string
	SlideText   string
	PartIndex   int
	PartTotal   int
}

func chunkKey(legacy bool, chunkID string) string {
	collection := "chunks"
	if legacy {
		collection = "pages"
	}
	return fmt.Sprintf("%s%s:%s", domain.KeyPrefix, collection, chunkID)
}

// ChunkMulti fetches full fragment records in one round-trip. Fragments
// without a record are omitted.
func (r *Repo) ChunkMulti(ctx context.Context, legacy bool, chunkIDs []string) (map[string]ChunkMeta, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(chunkIDs))
	for i, id := range chunkIDs {
		keys[i] = chunkKey(legacy, id)
	}
	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("chunk meta multi: %w", err)
	}
	out := make(map[string]ChunkMeta, len(rows))
	for i, fields := range rows {
		if len(fields) == 0 {
			continue
		}
		out[chunkIDs[i]] = parseChunkMeta(chunkIDs[i], fields)
	}
	return out, nil
}

func parseChunkMeta(chunkID string, fields map[string]string) ChunkMeta {
	m := ChunkMeta{
		ChunkID:     chunkID,
		DocumentID:  fields["doc_id"],
		Title:       fields["title"],
		ParentTitle: fields["parent_title"],
		Author:      fields["author"],
		ContentType: domain.ContentType(fields["content_type"]),
		Text:        fields["text"],
		SlideText:   fields["slide_text"],
	}
	if v := fields["sort_date"]; v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			m.Date = ts
		}
	}
	if v := fields["event_date"]; v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			m.EventDate = ts
		}
	}
	m.PartIndex, _ = strconv.Atoi(fields["part_index"])
	m.PartTotal, _ = strconv.Atoi(fields["part_total"])
	return m
}
