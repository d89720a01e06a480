// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"strings"
	"time"

	"voice-ai-callbot/internal/domain/ports/adapter"
	"voice-ai-callbot/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*MultiAIAdapter)(nil)

// MultiAIAdapter routes each call to a provider by model-name prefix and
// meters latency and prompt tokens around the underlying adapter.
type MultiAIAdapter struct {
	defaultProvider string // "gemini" or "openai"
	byProvider      map[string]adapter.AIServiceAdapter
}

// NewMultiAIAdapter does not inject any default model; it only knows a
// default provider. Each provider adapter owns its own default model.
func NewMultiAIAdapter(defaultProvider string, byProvider map[string]adapter.AIServiceAdapter) *MultiAIAdapter {
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
	}
}

func (m *MultiAIAdapter) resolveProvider(model string) string {
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"): // OpenAI models
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAIAdapter) pick(model string) (string, adapter.AIServiceAdapter) {
	prov := m.resolveProvider(model)
	if a := m.byProvider[prov]; a != nil {
		return prov, a
	}
	// last resort: first available
	for p, a := range m.byProvider {
		if a != nil {
			return p, a
		}
	}
	return prov, nil
}

func (m *MultiAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	_, a := m.pick(model)
	if a == nil {
		return 0, nil
	}
	return a.CountTokens(ctx, model, messages)
}

func (m *MultiAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message, opts adapter.GenerationOptions) (string, error) {
	prov, a := m.pick(model)
	if a == nil {
		return "", nil
	}
	if n, err := a.CountTokens(ctx, model, messages); err == nil {
		metrics.AddAITokensIn(prov, model, n)
	}

	start := time.Now()
	text, err := a.Chat(ctx, model, messages, opts)
	metrics.ObserveAICallLatency(prov, model, err == nil, float64(time.Since(start).Milliseconds()))
	return text, err
}
