package ai

import (
	"context"
	"fmt"

	"voice-ai-callbot/internal/domain/ports/adapter"
)

// Ensure interface compliance
var _ adapter.AIServiceAdapter = (*EchoAdapter)(nil)

// EchoAdapter is a deterministic stand-in for local/dev runs without API
// keys. It restates the last user message instead of generating text.
type EchoAdapter struct{}

func NewEchoAdapter() *EchoAdapter { return &EchoAdapter{} }

func (e *EchoAdapter) CountTokens(_ context.Context, _ string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

func (e *EchoAdapter) Chat(_ context.Context, _ string, messages []adapter.Message, _ adapter.GenerationOptions) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}
	return fmt.Sprintf("You said: %s", messages[len(messages)-1].Content), nil
}
