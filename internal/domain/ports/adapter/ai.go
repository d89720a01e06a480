package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResult is the explicit outcome of one model call. The reply pipeline
// consumes it instead of propagating the error: a failed call selects a
// fallback, it never reaches the voice caller.
type ChatResult struct {
	Text string
	Err  error
}

func (r ChatResult) OK() bool { return r.Err == nil && r.Text != "" }

// GenerationOptions caps a single completion.
type GenerationOptions struct {
	MaxOutputTokens int
	Temperature     float32
}

// AIServiceAdapter is the port for LLM chat.
type AIServiceAdapter interface {
	// CountTokens returns prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)

	// Chat returns only the assistant text.
	Chat(ctx context.Context, model string, messages []Message, opts GenerationOptions) (string, error)
}
