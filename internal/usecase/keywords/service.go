// Package keywords turns a free-text question into a normalized search phrase
// plus structured temporal and version facets.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	domkw "github.com/devmedia-cloud/answerdex/internal/domain/keywords"
	"github.com/devmedia-cloud/answerdex/internal/logger"
)

// Service implements keyword extraction. Extraction never fails the request:
// every error path degrades to the question-as-phrase fallback.
type Service struct {
	completer domain.Completer
	maxTokens int
}

// New creates a keyword extraction service. completer may be nil when no
// generation deployment is configured; extraction then always degrades.
func New(completer domain.Completer) *Service {
	return &Service{completer: completer, maxTokens: 400}
}

// rawExtraction is the model's JSON output before rule expansion.
type rawExtraction struct {
	Phrase        string          `json:"phrase"`
	Versions      []string        `json:"versions"`
	Years         []string        `json:"years"`
	RelativeYears bool            `json:"relative_years"`
	Seasons       []seasonMention `json:"seasons"`
	MagazineWord  bool            `json:"magazine_word"`
}

type seasonMention struct {
	Season string `json:"season"`
	Year   int    `json:"year"`
}

// Extract runs the generation call and applies the deterministic expansion
// rules (version predecessors, relative years, season issue tokens).
func (s *Service) Extract(ctx context.Context, question string, today time.Time) domkw.Keywords {
	log := logger.FromContext(ctx)

	if s.completer == nil {
		return domkw.Fallback(question)
	}

	out, err := s.completer.Complete(ctx,
		[]domain.Message{
			{Role: domain.RoleSystem, Content: fmt.Sprintf(extractionPrompt, extractionSchema)},
			{Role: domain.RoleUser, Content: question},
		},
		domain.CompletionOptions{MaxTokens: s.maxTokens, Temperature: 0},
	)
	if err != nil {
		log.Warn("keyword extraction degraded to fallback", zap.Error(err))
		return domkw.Fallback(question)
	}

	raw, err := decodeExtraction(out)
	if err != nil {
		log.Warn("keyword extraction returned malformed JSON, using fallback", zap.Error(err))
		return domkw.Fallback(question)
	}

	return expand(question, raw, today)
}

// expand applies the deterministic facet rules on top of the raw extraction.
func expand(question string, raw rawExtraction, today time.Time) domkw.Keywords {
	kw := domkw.Keywords{
		Phrase:            strings.TrimSpace(raw.Phrase),
		PrimaryVersions:   dedup(raw.Versions),
		SecondaryVersions: []string{},
		Years:             []string{},
		Issues:            []string{},
	}
	if kw.Phrase == "" {
		kw.Phrase = question
	}
	if kw.PrimaryVersions == nil {
		kw.PrimaryVersions = []string{}
	}
	if sec := expandVersions(kw.PrimaryVersions); sec != nil {
		kw.SecondaryVersions = sec
	}
	if years := expandYears(raw.Years, raw.RelativeYears, today); years != nil {
		kw.Years = years
	}
	if issues := expandSeasons(raw.Seasons, raw.MagazineWord, today); issues != nil {
		kw.Issues = issues
	}
	return kw
}

// decodeExtraction parses the model output, tolerating code fences.
func decodeExtraction(out string) (rawExtraction, error) {
	trimmed := strings.TrimSpace(out)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return rawExtraction{}, fmt.Errorf("%w: %w", domain.ErrMalformedGeneration, err)
	}
	if raw.Phrase == "" {
		return rawExtraction{}, fmt.Errorf("%w: missing phrase", domain.ErrMalformedGeneration)
	}
	return raw, nil
}

func dedup(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
