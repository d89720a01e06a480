//go:build !integration

package web

import (
	"context"
	"errors"
	"sync"

	"voice-ai-callbot/internal/domain/ports/adapter"
)

// --- Mock adapters (ports) ---

type mockCallControl struct {
	mu         sync.Mutex
	started    []string
	sid        string
	startErr   error
	status     string
	statusErr  error
	lastURL    string
	lastNumber string
}

func (m *mockCallControl) StartCall(_ context.Context, toNumber, webhookURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return "", m.startErr
	}
	m.lastNumber = toNumber
	m.lastURL = webhookURL
	m.started = append(m.started, toNumber)
	if m.sid == "" {
		return "CAtest123", nil
	}
	return m.sid, nil
}

func (m *mockCallControl) CallStatus(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return "", m.statusErr
	}
	if m.status == "" {
		return "in-progress", nil
	}
	return m.status, nil
}

type stubAI struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (s *stubAI) CountTokens(_ context.Context, _ string, msgs []adapter.Message) (int, error) {
	return len(msgs), nil
}

func (s *stubAI) Chat(_ context.Context, _ string, _ []adapter.Message, _ adapter.GenerationOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.reply == "" {
		return "", errors.New("stub not primed")
	}
	return s.reply, nil
}

func (s *stubAI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
