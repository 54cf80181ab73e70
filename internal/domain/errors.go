package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrModelNotConfigured signals that a required embedding deployment is missing.
	ErrModelNotConfigured = errors.New("embedding model not configured")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationUnavailable signals that the text-generation deployment is missing or down.
	ErrGenerationUnavailable = errors.New("text generation unavailable")
	// ErrMalformedGeneration signals structurally invalid model output.
	ErrMalformedGeneration = errors.New("malformed generation output")
	// ErrRetrievalFailed signals that both retrieval branches were unusable.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
