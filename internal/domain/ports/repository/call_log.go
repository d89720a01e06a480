package repository

import (
	"context"

	"voice-ai-callbot/internal/domain/model"
)

// -----------------------------
// Call log
// -----------------------------

type CallLogRepository interface {
	RecordStart(ctx context.Context, callID, callContext string) error
	RecordExchange(ctx context.Context, callID string) error
	RecordEnd(ctx context.Context, callID string) error
	Find(ctx context.Context, callID string) (*model.CallLogEntry, error)
}
