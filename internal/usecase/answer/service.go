// Package answer generates the cited answer text and resolves its citations
// into localized reference sections.
package answer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/chunkctx"
	"github.com/devmedia-cloud/answerdex/internal/domain/reference"
	"github.com/devmedia-cloud/answerdex/internal/logger"
)

// citationMarker matches [CID:{chunk_id}] markers embedded in answer text.
var citationMarker = regexp.MustCompile(`\[CID:([^\[\]\s]+)\]`)

// Synthesis is the joined output of the main answer call and the concurrent
// reference-selection call.
type Synthesis struct {
	Text      string
	Citations []reference.Citation
	Selection reference.Selection
}

// Synthesizer produces the cited answer. It requires a working generation
// deployment; there is no degraded mode for the main answer.
type Synthesizer struct {
	completer domain.Completer
	maxTokens int
}

// NewSynthesizer creates an answer synthesizer.
func NewSynthesizer(completer domain.Completer) *Synthesizer {
	return &Synthesizer{completer: completer, maxTokens: 1600}
}

// Synthesize launches the main answer call and the reference-selection call
// together and joins both. The reference pool is the document-level context
// built in reference mode; chunks is the generation-mode pool the answer is
// grounded in.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	question string,
	chunks []chunkctx.ChunkContext,
	refs []chunkctx.ChunkContext,
	lang domain.Language,
) (Synthesis, error) {
	log := logger.FromContext(ctx)

	if s.completer == nil {
		return Synthesis{}, domain.ErrGenerationUnavailable
	}

	var (
		wg         sync.WaitGroup
		answerText string
		answerErr  error
		selection  reference.Selection
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		answerText, answerErr = s.completer.Complete(ctx,
			[]domain.Message{
				{Role: domain.RoleSystem, Content: fmt.Sprintf(answerPrompt, languageName(lang)) + "\n\n" + buildContextBlock(chunks)},
				{Role: domain.RoleUser, Content: question},
			},
			domain.CompletionOptions{MaxTokens: s.maxTokens, Temperature: 0.2},
		)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		selection, err = s.selectReferences(ctx, question, refs, lang)
		if err != nil {
			// The selection is repairable downstream; the answer is not.
			log.Warn("reference selection failed, starting empty",
				zap.Error(err))
			selection = reference.Selection{}
		}
	}()

	wg.Wait()

	if answerErr != nil {
		return Synthesis{}, fmt.Errorf("synthesize answer: %w", answerErr)
	}

	return Synthesis{
		Text:      answerText,
		Citations: parseCitations(answerText, chunks),
		Selection: selection,
	}, nil
}

// selectReferences runs the concurrent selection call and decodes its JSON.
func (s *Synthesizer) selectReferences(
	ctx context.Context, question string, refs []chunkctx.ChunkContext, lang domain.Language,
) (reference.Selection, error) {
	if len(refs) == 0 {
		return reference.Selection{}, nil
	}

	instruction := referenceFastPath
	if !lang.HasLocalizedSummaries() {
		instruction = fmt.Sprintf(referenceTranslate, languageName(lang))
	}
	system := fmt.Sprintf(referencePrompt, reference.MaxEntries, instruction) +
		"\n\n" + buildReferenceBlock(refs)

	out, err := s.completer.Complete(ctx,
		[]domain.Message{
			{Role: domain.RoleSystem, Content: system},
			{Role: domain.RoleUser, Content: question},
		},
		domain.CompletionOptions{MaxTokens: 1200, Temperature: 0},
	)
	if err != nil {
		return reference.Selection{}, fmt.Errorf("select references: %w", err)
	}

	sel, err := decodeSelection(out)
	if err != nil {
		return reference.Selection{}, fmt.Errorf("select references: %w", err)
	}
	if len(sel.Entries) > reference.MaxEntries {
		sel.Entries = sel.Entries[:reference.MaxEntries]
	}
	return sel, nil
}

// parseCitations extracts markers in answer order, deduplicates by chunk id
// and resolves each chunk back to its document through the context pool.
// Markers that name no known fragment are kept with an empty document id so
// the resolver can log and drop them.
func parseCitations(text string, chunks []chunkctx.ChunkContext) []reference.Citation {
	byChunk := make(map[string]string, len(chunks))
	for _, c := range chunks {
		byChunk[c.ChunkID] = c.DocumentID
	}

	var out []reference.Citation
	seen := make(map[string]struct{})
	for _, m := range citationMarker.FindAllStringSubmatch(text, -1) {
		id := m[1]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, reference.Citation{ChunkID: id, DocumentID: byChunk[id]})
	}
	return out
}

// buildContextBlock renders the generation-mode fragments for the prompt.
func buildContextBlock(chunks []chunkctx.ChunkContext) string {
	var b strings.Builder
	b.WriteString("Source fragments:\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n--- fragment %d | chunk_id: %s ---\n", i+1, c.ChunkID)
		if c.Title != "" {
			fmt.Fprintf(&b, "title: %s\n", c.Title)
		}
		if c.ParentTitle != "" {
			fmt.Fprintf(&b, "publication: %s\n", c.ParentTitle)
		}
		if c.Author != "" {
			fmt.Fprintf(&b, "author: %s\n", c.Author)
		}
		if !c.Date.IsZero() {
			fmt.Fprintf(&b, "date: %s\n", c.Date.Format("2006-01-02"))
		}
		if c.ContentType != "" {
			fmt.Fprintf(&b, "type: %s\n", c.ContentType)
		}
		if c.PartTotal > 1 {
			fmt.Fprintf(&b, "part: %d of %d\n", c.PartIndex, c.PartTotal)
		}
		if c.AccessMessage != "" {
			fmt.Fprintf(&b, "access: %s\n", c.AccessMessage)
		}
		text := c.Text
		if text == "" {
			text = c.SlideText
		}
		fmt.Fprintf(&b, "text: %s\n", text)
	}
	return b.String()
}

// buildReferenceBlock renders the document-level pool for the selection call.
func buildReferenceBlock(refs []chunkctx.ChunkContext) string {
	var b strings.Builder
	b.WriteString("Documents:\n")
	seen := make(map[string]struct{}, len(refs))
	i := 0
	for _, c := range refs {
		if _, dup := seen[c.DocumentID]; dup {
			continue
		}
		seen[c.DocumentID] = struct{}{}
		i++
		fmt.Fprintf(&b, "\n--- document %d | doc_id: %s ---\n", i, c.DocumentID)
		if c.Summary != "" {
			fmt.Fprintf(&b, "summary: %s\n", c.Summary)
		}
		if c.AccessMessage != "" {
			fmt.Fprintf(&b, "access: %s\n", c.AccessMessage)
		}
	}
	return b.String()
}

// languageName maps an ISO code to the name used in prompts.
func languageName(lang domain.Language) string {
	switch lang {
	case domain.LangGerman:
		return "German"
	case domain.LangDutch:
		return "Dutch"
	case domain.LangEnglish, "":
		return "English"
	default:
		return string(lang)
	}
}

// DetectLanguage asks the model for the question's ISO 639-1 code. Any
// failure degrades to English.
func DetectLanguage(ctx context.Context, completer domain.Completer, question string) domain.Language {
	if completer == nil {
		return domain.LangEnglish
	}
	out, err := completer.Complete(ctx,
		[]domain.Message{
			{Role: domain.RoleSystem, Content: languagePrompt},
			{Role: domain.RoleUser, Content: question},
		},
		domain.CompletionOptions{MaxTokens: 4, Temperature: 0},
	)
	if err != nil {
		logger.FromContext(ctx).Warn("language detection failed, assuming English", zap.Error(err))
		return domain.LangEnglish
	}
	code := strings.ToLower(strings.TrimSpace(out))
	if len(code) != 2 {
		return domain.LangEnglish
	}
	return domain.Language(code)
}
