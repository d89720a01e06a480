package model

import (
	"time"
)

type CallSessionStatus string

const (
	CallSessionActive CallSessionStatus = "active"
	CallSessionEnded  CallSessionStatus = "ended"
)

// Turn speakers as rendered into history.
const (
	SpeakerUser = "user"
	SpeakerAI   = "assistant"
)

// MaxHistoryTurns bounds the rolling dialogue history per call:
// only the most recent turns survive, oldest dropped first.
const MaxHistoryTurns = 16

// Turn is one spoken line within a call, either the caller's or ours.
type Turn struct {
	Speaker   string
	Text      string
	Timestamp time.Time
}

// CallSession is the aggregate root for one phone conversation, keyed by the
// provider-assigned call SID. Context is fixed at creation; history is a
// bounded FIFO while ExchangeCount and UserInputs are never trimmed.
type CallSession struct {
	ID            string
	Context       string
	Status        CallSessionStatus
	History       []Turn
	ExchangeCount int
	UserInputs    []string
	StartedAt     time.Time
}

func NewCallSession(id, context string) *CallSession {
	return &CallSession{
		ID:        id,
		Context:   context,
		Status:    CallSessionActive,
		History:   make([]Turn, 0, MaxHistoryTurns),
		StartedAt: time.Now(),
	}
}

// AddExchange records one completed utterance/reply pair and trims history
// to the bound. The exchange counter keeps counting past the trim.
func (s *CallSession) AddExchange(userInput, aiReply string) {
	now := time.Now()
	s.History = append(s.History,
		Turn{Speaker: SpeakerUser, Text: userInput, Timestamp: now},
		Turn{Speaker: SpeakerAI, Text: aiReply, Timestamp: now},
	)
	s.UserInputs = append(s.UserInputs, userInput)
	s.ExchangeCount++
	if len(s.History) > MaxHistoryTurns {
		s.History = s.History[len(s.History)-MaxHistoryTurns:]
	}
}

// RecentInputs returns up to the last n raw utterances, newest last.
func (s *CallSession) RecentInputs(n int) []string {
	if n <= 0 || len(s.UserInputs) <= n {
		return s.UserInputs
	}
	return s.UserInputs[len(s.UserInputs)-n:]
}

func (s *CallSession) End() {
	s.Status = CallSessionEnded
}

// Snapshot returns a deep copy safe to read outside the store's locks.
func (s *CallSession) Snapshot() *CallSession {
	cp := *s
	cp.History = append([]Turn(nil), s.History...)
	cp.UserInputs = append([]string(nil), s.UserInputs...)
	return &cp
}

// ConversationSummary is the external inspection view of a session.
type ConversationSummary struct {
	CallID          string   `json:"callId"`
	DurationSeconds int      `json:"durationSeconds"`
	ExchangeCount   int      `json:"exchangeCount"`
	ContextPreview  string   `json:"contextPreview"`
	RecentTopics    []string `json:"recentTopics"`
}

// Summarize builds the inspection view: bounded context preview and the
// last three raw utterances as "recent topics".
func (s *CallSession) Summarize() *ConversationSummary {
	return &ConversationSummary{
		CallID:          s.ID,
		DurationSeconds: int(time.Since(s.StartedAt).Seconds()),
		ExchangeCount:   s.ExchangeCount,
		ContextPreview:  Truncate(s.Context, 100),
		RecentTopics:    append([]string(nil), s.RecentInputs(3)...),
	}
}
