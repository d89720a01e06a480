// File: internal/usecase/conversation_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"voice-ai-callbot/internal/domain/model"
	"voice-ai-callbot/internal/domain/ports/repository"
)

// TurnAction tells the webhook layer what to do after speaking the reply.
type TurnAction string

const (
	// ActionListen re-arms the speech-capture window.
	ActionListen TurnAction = "listen"
	// ActionEnd hangs up; no further listening window is armed.
	ActionEnd TurnAction = "end"
)

// TurnOutcome is one step of the call state machine: what to say, whether to
// keep listening, and for how long.
type TurnOutcome struct {
	Reply         string
	Source        string
	Action        TurnAction
	ListenTimeout time.Duration
	CallStarted   bool
	CallEnded     bool
	Exchanged     bool
}

// CallStatusView is the admin inspection of one call.
type CallStatusView struct {
	CallID          string                     `json:"callId"`
	ProviderStatus  string                     `json:"providerStatus"`
	DurationSeconds int                        `json:"durationSeconds"`
	Conversation    *model.ConversationSummary `json:"conversation"`
	Log             *model.CallLogEntry        `json:"log"`
}

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

type ConversationUseCase interface {
	// StartCall creates (or revisits) the session for a call and returns the
	// opening greeting plus the first listening window.
	StartCall(ctx context.Context, callID, callContext string) (*TurnOutcome, error)

	// HandleUtterance advances the state machine by one caller turn.
	HandleUtterance(ctx context.Context, callID, speech string) (*TurnOutcome, error)

	Status(ctx context.Context, callID string) (*CallStatusView, error)
	ActiveCalls(ctx context.Context) ([]*model.ConversationSummary, error)
}

// ConversationConfig carries the tunables of the state machine.
type ConversationConfig struct {
	// ListenTimeoutEarly applies through the third exchange; afterwards the
	// shorter ListenTimeoutLate takes over. Callers hesitate early on and
	// speed up once engaged.
	ListenTimeoutEarly time.Duration
	ListenTimeoutLate  time.Duration
}

func (c ConversationConfig) normalize() ConversationConfig {
	if c.ListenTimeoutEarly <= 0 {
		c.ListenTimeoutEarly = 5 * time.Second
	}
	if c.ListenTimeoutLate <= 0 {
		c.ListenTimeoutLate = 3 * time.Second
	}
	return c
}

type conversationUC struct {
	conversations repository.ConversationRepository
	callLog       repository.CallLogRepository
	responder     ResponderUseCase
	cfg           ConversationConfig
	log           *zerolog.Logger
}

func NewConversationUseCase(
	conversations repository.ConversationRepository,
	callLog repository.CallLogRepository,
	responder ResponderUseCase,
	cfg ConversationConfig,
	logger *zerolog.Logger,
) *conversationUC {
	l := logger.With().Str("component", "conversation").Logger()
	return &conversationUC{
		conversations: conversations,
		callLog:       callLog,
		responder:     responder,
		cfg:           cfg.normalize(),
		log:           &l,
	}
}

// Utterances containing any of these end the call after the reply.
var terminationKeywords = []string{"bye", "goodbye", "end call", "hang up", "stop"}

const (
	greetingDefault = "Hello! Ask your question after the beep."
	repromptSilence = "Sorry, I didn't hear anything. Please ask your question after the beep."
	repromptUnclear = "I didn't quite catch that. Could you say it again?"
	farewellLine    = "Thanks for calling. Goodbye!"
)

func (u *conversationUC) StartCall(ctx context.Context, callID, callContext string) (*TurnOutcome, error) {
	s, err := u.conversations.GetOrCreate(ctx, callID, callContext)
	if err != nil {
		return nil, fmt.Errorf("get or create session: %w", err)
	}
	if err := u.callLog.RecordStart(ctx, callID, s.Context); err != nil {
		return nil, fmt.Errorf("record call start: %w", err)
	}
	u.log.Info().Str("call_sid", callID).Msg("call started")

	greeting := greetingDefault
	if lc := model.ParseLearningContext(s.Context); lc.Topic != "" {
		greeting = fmt.Sprintf("Hello! Today we're looking at %s. Ask your question after the beep.", model.Truncate(lc.Topic, 40))
	}
	return &TurnOutcome{
		Reply:         greeting,
		Action:        ActionListen,
		ListenTimeout: u.listenTimeout(s.ExchangeCount),
		CallStarted:   true,
	}, nil
}

func (u *conversationUC) HandleUtterance(ctx context.Context, callID, speech string) (*TurnOutcome, error) {
	s, err := u.conversations.GetOrCreate(ctx, callID, "")
	if err != nil {
		return nil, fmt.Errorf("get or create session: %w", err)
	}
	// A session can exist without a log entry when the utterance webhook
	// beats the call-start one; keep the two maps independently consistent.
	_ = u.callLog.RecordStart(ctx, callID, s.Context)

	if s.Status == model.CallSessionEnded {
		return &TurnOutcome{Reply: farewellLine, Action: ActionEnd}, nil
	}

	trimmed := strings.TrimSpace(speech)
	if trimmed == "" {
		// Listening window elapsed with no speech: re-prompt, never hang up.
		return &TurnOutcome{
			Reply:         repromptSilence,
			Action:        ActionListen,
			ListenTimeout: u.listenTimeout(s.ExchangeCount),
		}, nil
	}
	if len([]rune(trimmed)) < 2 {
		return &TurnOutcome{
			Reply:         repromptUnclear,
			Action:        ActionListen,
			ListenTimeout: u.listenTimeout(s.ExchangeCount),
		}, nil
	}

	reply, source := u.responder.Select(ctx, trimmed, s.Context)

	normalized := strings.ToLower(trimmed)
	ending := containsAny(normalized, terminationKeywords)
	if ending {
		reply = reply + " " + farewellLine
	}

	if err := u.conversations.AddExchange(ctx, callID, trimmed, reply); err != nil {
		return nil, fmt.Errorf("add exchange: %w", err)
	}
	if err := u.callLog.RecordExchange(ctx, callID); err != nil {
		u.log.Warn().Err(err).Str("call_sid", callID).Msg("record exchange failed")
	}

	if ending {
		if err := u.conversations.End(ctx, callID); err != nil {
			return nil, fmt.Errorf("end session: %w", err)
		}
		if err := u.callLog.RecordEnd(ctx, callID); err != nil {
			u.log.Warn().Err(err).Str("call_sid", callID).Msg("record end failed")
		}
		u.log.Info().Str("call_sid", callID).Msg("call ended by caller")
		return &TurnOutcome{Reply: reply, Source: source, Action: ActionEnd, CallEnded: true, Exchanged: true}, nil
	}

	// The exchange we just recorded counts toward the timeout schedule.
	return &TurnOutcome{
		Reply:         reply,
		Source:        source,
		Action:        ActionListen,
		ListenTimeout: u.listenTimeout(s.ExchangeCount + 1),
		Exchanged:     true,
	}, nil
}

func (u *conversationUC) Status(ctx context.Context, callID string) (*CallStatusView, error) {
	summary, err := u.conversations.Summarize(ctx, callID)
	if err != nil {
		return nil, err
	}
	entry, err := u.callLog.Find(ctx, callID)
	if err != nil {
		return nil, err
	}
	return &CallStatusView{
		CallID:          callID,
		DurationSeconds: summary.DurationSeconds,
		Conversation:    summary,
		Log:             entry,
	}, nil
}

func (u *conversationUC) ActiveCalls(ctx context.Context) ([]*model.ConversationSummary, error) {
	return u.conversations.ListActive(ctx)
}

func (u *conversationUC) listenTimeout(exchanges int) time.Duration {
	if exchanges >= 3 {
		return u.cfg.ListenTimeoutLate
	}
	return u.cfg.ListenTimeoutEarly
}
