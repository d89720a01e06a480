package memory

import (
	"context"
	"sync"
	"time"

	"voice-ai-callbot/internal/domain"
	"voice-ai-callbot/internal/domain/model"
	"voice-ai-callbot/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.CallLogRepository = (*CallLogRepo)(nil)

// CallLogRepo tracks call lifecycle metadata, keyed by call SID. It shares
// keys with the conversation store but is mutated independently.
type CallLogRepo struct {
	mu      sync.RWMutex
	entries map[string]*model.CallLogEntry
}

func NewCallLogRepo() *CallLogRepo {
	return &CallLogRepo{entries: make(map[string]*model.CallLogEntry)}
}

func (r *CallLogRepo) RecordStart(_ context.Context, callID, callContext string) error {
	if callID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[callID]; ok {
		return nil
	}
	r.entries[callID] = &model.CallLogEntry{
		Status:    model.CallStatusStarted,
		StartTime: time.Now(),
		Context:   callContext,
	}
	return nil
}

func (r *CallLogRepo) RecordExchange(_ context.Context, callID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[callID]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	e.LastExchangeTime = &now
	return nil
}

func (r *CallLogRepo) RecordEnd(_ context.Context, callID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[callID]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	e.Status = model.CallStatusEnded
	e.EndTime = &now
	return nil
}

func (r *CallLogRepo) Find(_ context.Context, callID string) (*model.CallLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[callID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}
