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
var _ repository.ConversationRepository = (*ConversationRepo)(nil)

// entry pairs a session with its own mutex so that retried webhooks for one
// call serialize against each other while distinct calls never contend past
// the map guard.
type entry struct {
	mu      sync.Mutex
	session *model.CallSession
}

// ConversationRepo is the single-process conversation store. Sessions live
// for the process lifetime; nothing evicts them unless Expire/ExpireIdle is
// invoked.
type ConversationRepo struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewConversationRepo() *ConversationRepo {
	return &ConversationRepo{entries: make(map[string]*entry)}
}

func (r *ConversationRepo) getOrCreate(callID, callContext string) *entry {
	r.mu.RLock()
	e, ok := r.entries[callID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[callID]; ok {
		return e
	}
	e = &entry{session: model.NewCallSession(callID, callContext)}
	r.entries[callID] = e
	return e
}

func (r *ConversationRepo) find(callID string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[callID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r *ConversationRepo) GetOrCreate(_ context.Context, callID, callContext string) (*model.CallSession, error) {
	if callID == "" {
		return nil, domain.ErrInvalidArgument
	}
	e := r.getOrCreate(callID, callContext)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Snapshot(), nil
}

func (r *ConversationRepo) Find(_ context.Context, callID string) (*model.CallSession, error) {
	e, err := r.find(callID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Snapshot(), nil
}

func (r *ConversationRepo) AddExchange(_ context.Context, callID, userInput, aiReply string) error {
	e, err := r.find(callID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.AddExchange(userInput, aiReply)
	return nil
}

func (r *ConversationRepo) End(_ context.Context, callID string) error {
	e, err := r.find(callID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.End()
	return nil
}

func (r *ConversationRepo) Summarize(_ context.Context, callID string) (*model.ConversationSummary, error) {
	e, err := r.find(callID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Summarize(), nil
}

func (r *ConversationRepo) ListActive(_ context.Context) ([]*model.ConversationSummary, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	out := make([]*model.ConversationSummary, 0, len(ids))
	for _, id := range ids {
		e, err := r.find(id)
		if err != nil {
			continue
		}
		e.mu.Lock()
		if e.session.Status == model.CallSessionActive {
			out = append(out, e.session.Summarize())
		}
		e.mu.Unlock()
	}
	return out, nil
}

func (r *ConversationRepo) Expire(_ context.Context, callID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[callID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.entries, callID)
	return nil
}

func (r *ConversationRepo) ExpireIdle(_ context.Context, ttl time.Duration) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		e.mu.Lock()
		idle := lastActivity(e.session).Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(r.entries, id)
			removed++
		}
	}
	return removed, nil
}

func lastActivity(s *model.CallSession) time.Time {
	if n := len(s.History); n > 0 {
		return s.History[n-1].Timestamp
	}
	return s.StartedAt
}
