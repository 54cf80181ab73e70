package domain

import "context"

// Message roles for chat completion requests.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat completion message.
type Message struct {
	Role    string
	Content string
}

// CompletionOptions tune a single generation call.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
}

// Completer is the text-generation contract shared by keyword extraction,
// language detection, answer synthesis and reference translation.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
}
