// Package reference models citations and the "Sources" / "More on this topic"
// reference entries.
package reference

// Citation is a chunk id the synthesizer embedded in its answer via a
// [CID:{chunk_id}] marker, resolved back to a document id.
type Citation struct {
	ChunkID    string
	DocumentID string
}

// Entry is one document-level reference: localized (or translated) summary
// plus the access message shown next to it.
type Entry struct {
	DocumentID    string `json:"doc_id"`
	Summary       string `json:"summary"`
	AccessMessage string `json:"access_message"`
}

// Selection is the model's pick of up to MaxEntries relevant documents.
type Selection struct {
	Entries []Entry
}

// MaxEntries caps the "more on this topic" selection.
const MaxEntries = 10

// Contains reports whether the selection already carries the document.
func (s Selection) Contains(docID string) bool {
	for _, e := range s.Entries {
		if e.DocumentID == docID {
			return true
		}
	}
	return false
}

// Missing returns the citations whose documents are absent from the selection,
// preserving citation order and skipping duplicate documents.
func (s Selection) Missing(citations []Citation) []Citation {
	var missing []Citation
	seen := make(map[string]struct{})
	for _, c := range citations {
		if c.DocumentID == "" {
			continue
		}
		if _, dup := seen[c.DocumentID]; dup {
			continue
		}
		seen[c.DocumentID] = struct{}{}
		if !s.Contains(c.DocumentID) {
			missing = append(missing, c)
		}
	}
	return missing
}
