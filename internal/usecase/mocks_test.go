//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"voice-ai-callbot/internal/domain"
	"voice-ai-callbot/internal/domain/model"
	"voice-ai-callbot/internal/domain/ports/repository"
)

// --- Mock Repositories (Ports) ---

type mockConversationRepo struct {
	repository.ConversationRepository // Embed interface for forward compatibility
	mu                                sync.Mutex
	sessions                          map[string]*model.CallSession
}

func newMockConversationRepo() *mockConversationRepo {
	return &mockConversationRepo{sessions: make(map[string]*model.CallSession)}
}

func (m *mockConversationRepo) GetOrCreate(_ context.Context, callID, callContext string) (*model.CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[callID]; ok {
		return s.Snapshot(), nil
	}
	s := model.NewCallSession(callID, callContext)
	m.sessions[callID] = s
	return s.Snapshot(), nil
}

func (m *mockConversationRepo) AddExchange(_ context.Context, callID, userInput, aiReply string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[callID]
	if !ok {
		return domain.ErrNotFound
	}
	s.AddExchange(userInput, aiReply)
	return nil
}

func (m *mockConversationRepo) End(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[callID]
	if !ok {
		return domain.ErrNotFound
	}
	s.End()
	return nil
}

func (m *mockConversationRepo) Summarize(_ context.Context, callID string) (*model.ConversationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[callID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Summarize(), nil
}

func (m *mockConversationRepo) ListActive(_ context.Context) ([]*model.ConversationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ConversationSummary
	for _, s := range m.sessions {
		if s.Status == model.CallSessionActive {
			out = append(out, s.Summarize())
		}
	}
	return out, nil
}

func (m *mockConversationRepo) session(callID string) *model.CallSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[callID]
}

type mockCallLogRepo struct {
	repository.CallLogRepository // Embed interface
	mu                           sync.Mutex
	entries                      map[string]*model.CallLogEntry
}

func newMockCallLogRepo() *mockCallLogRepo {
	return &mockCallLogRepo{entries: make(map[string]*model.CallLogEntry)}
}

func (m *mockCallLogRepo) RecordStart(_ context.Context, callID, callContext string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[callID]; ok {
		return nil
	}
	m.entries[callID] = &model.CallLogEntry{
		Status:    model.CallStatusStarted,
		StartTime: time.Now(),
		Context:   callContext,
	}
	return nil
}

func (m *mockCallLogRepo) RecordExchange(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[callID]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	e.LastExchangeTime = &now
	return nil
}

func (m *mockCallLogRepo) RecordEnd(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[callID]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	e.Status = model.CallStatusEnded
	e.EndTime = &now
	return nil
}

func (m *mockCallLogRepo) Find(_ context.Context, callID string) (*model.CallLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[callID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// --- Mock Responder ---

type mockResponder struct {
	mu    sync.Mutex
	calls int
	reply string
}

func (m *mockResponder) Select(_ context.Context, _, _ string) (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.reply, SourceCanned
}

func (m *mockResponder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
