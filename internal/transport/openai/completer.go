package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/metrics"
)

// Completer is a chat-completion provider using the OpenAI-compatible API.
// One instance serves all generation purposes (extraction, synthesis,
// reference selection, translation); the purpose label only feeds metrics.
type Completer struct {
	client  *openai.Client
	model   string
	purpose string
	logger  *zap.Logger
}

// CompleterConfig holds the generation deployment settings.
type CompleterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Purpose string
	Logger  *zap.Logger
}

// NewCompleter creates an OpenAI-compatible chat completion provider.
// Returns an error when no model is configured: answer synthesis is a hard
// dependency and must fail fast at startup, not mid-request.
func NewCompleter(cfg *CompleterConfig) (*Completer, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("completer model is required: %w", domain.ErrGenerationUnavailable)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	purpose := cfg.Purpose
	if purpose == "" {
		purpose = "general"
	}

	return &Completer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		purpose: purpose,
		logger:  cfg.Logger,
	}, nil
}

// Complete implements domain.Completer.
func (c *Completer) Complete(
	ctx context.Context, messages []domain.Message, opts domain.CompletionOptions,
) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(c.model, c.purpose, "error").Inc()
		return "", parseAPIError("generation", err, domain.ErrGenerationUnavailable)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(c.model, c.purpose, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationUnavailable)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(c.model, c.purpose, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(c.model, c.purpose).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
