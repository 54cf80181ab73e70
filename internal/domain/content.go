package domain

// ContentType classifies a source document.
type ContentType string

// Content type constants.
const (
	ContentTypeArticle  ContentType = "article"
	ContentTypeMagazine ContentType = "magazine"
	ContentTypeBook     ContentType = "book"
	ContentTypeVideo    ContentType = "video"
	ContentTypeEvent    ContentType = "event"
)

// IsRead reports whether the type carries issue designations (print issues).
func (t ContentType) IsRead() bool { return t == ContentTypeMagazine }

// ChunkerType tags the strategy a document was split with. It determines the
// storage collection and the per-document context quota.
type ChunkerType string

const (
	// ChunkerPagewise is the legacy default chunker: whole pages, few per document.
	ChunkerPagewise ChunkerType = "pagewise"
	// ChunkerSemantic is the modern chunker: small semantic fragments.
	ChunkerSemantic ChunkerType = "semantic"
)

// IsLegacy reports whether the tag designates the legacy page collection.
func (c ChunkerType) IsLegacy() bool { return c == "" || c == ChunkerPagewise }

// Language is an ISO 639-1 answer language code.
type Language string

// Languages with precomputed localized summaries (reference fast path).
const (
	LangEnglish Language = "en"
	LangGerman  Language = "de"
	LangDutch   Language = "nl"
)

// HasLocalizedSummaries reports whether precomputed summaries exist for the language.
func (l Language) HasLocalizedSummaries() bool {
	return l == LangEnglish || l == LangGerman || l == LangDutch
}
