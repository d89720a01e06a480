package twilio

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"voice-ai-callbot/internal/domain/ports/adapter"
)

// Ensure interface compliance
var _ adapter.CallControlAdapter = (*NoopAdapter)(nil)

// NoopAdapter implements adapter.CallControlAdapter for local/dev testing.
// It mints call SIDs instead of placing real calls and reports every known
// call as in-progress.
type NoopAdapter struct {
	log *zerolog.Logger

	mu      sync.Mutex
	entropy *rand.Rand
	placed  map[string]string // sid -> to number
}

func NewNoopAdapter(logger *zerolog.Logger) *NoopAdapter {
	l := logger.With().Str("component", "noop-twilio").Logger()
	return &NoopAdapter{
		log:     &l,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		placed:  make(map[string]string),
	}
}

func (a *NoopAdapter) StartCall(ctx context.Context, toNumber, webhookURL string) (string, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	a.mu.Lock()
	sid := "CA" + ulid.MustNew(ulid.Timestamp(time.Now()), a.entropy).String()
	a.placed[sid] = toNumber
	a.mu.Unlock()

	a.log.Info().Str("call_sid", sid).Str("to", toNumber).Str("webhook", webhookURL).Msg("pretend call placed")
	return sid, nil
}

func (a *NoopAdapter) CallStatus(_ context.Context, callID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.placed[callID]; ok {
		return "in-progress", nil
	}
	return "unknown", nil
}
