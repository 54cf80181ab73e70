package domain

import (
	"context"
	"fmt"
)

// ModelClass selects an embedding deployment. The legacy page collection was
// indexed with the small model; every other collection requires the large one.
type ModelClass string

const (
	// ModelClassSmall is the legacy low-dimension embedding model.
	ModelClassSmall ModelClass = "small"
	// ModelClassLarge is the default high-dimension embedding model.
	ModelClassLarge ModelClass = "large"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// EmbedderSet holds one embedder per model class. A class may be absent.
type EmbedderSet struct {
	embedders map[ModelClass]Embedder
}

// NewEmbedderSet creates a set from the configured class→embedder mapping.
func NewEmbedderSet(embedders map[ModelClass]Embedder) *EmbedderSet {
	return &EmbedderSet{embedders: embedders}
}

// ForClass returns the embedder for a class or ErrModelNotConfigured.
func (s *EmbedderSet) ForClass(class ModelClass) (Embedder, error) {
	e, ok := s.embedders[class]
	if !ok || e == nil {
		return nil, fmt.Errorf("no %s embedding deployment: %w", class, ErrModelNotConfigured)
	}
	return e, nil
}
