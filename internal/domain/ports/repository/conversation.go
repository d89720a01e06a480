package repository

import (
	"context"
	"time"

	"voice-ai-callbot/internal/domain/model"
)

// -----------------------------
// Conversations
// -----------------------------

// ConversationRepository owns the per-call session records. Implementations
// must serialize mutations to the same call while keeping different calls
// independent. Reads return snapshots safe to use outside the store.
type ConversationRepository interface {
	// GetOrCreate returns the session for callID, creating it with the given
	// context if unknown. The context of an existing session is never
	// overwritten (first writer wins).
	GetOrCreate(ctx context.Context, callID, callContext string) (*model.CallSession, error)

	Find(ctx context.Context, callID string) (*model.CallSession, error)

	// AddExchange appends one utterance/reply pair, bumping the exchange
	// counter and trimming history to the bound.
	AddExchange(ctx context.Context, callID, userInput, aiReply string) error

	// End marks the session finished. Ending an already-ended session is not
	// an error.
	End(ctx context.Context, callID string) error

	Summarize(ctx context.Context, callID string) (*model.ConversationSummary, error)

	// ListActive summarizes every session not yet ended.
	ListActive(ctx context.Context) ([]*model.ConversationSummary, error)

	// Expire drops a session outright. Unused by the call flow; exposed so
	// operators or the idle sweeper can reclaim memory.
	Expire(ctx context.Context, callID string) error

	// ExpireIdle drops ended or stale sessions whose last activity is older
	// than ttl, returning how many were removed.
	ExpireIdle(ctx context.Context, ttl time.Duration) (int, error)
}
