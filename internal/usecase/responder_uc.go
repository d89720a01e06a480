// File: internal/usecase/responder_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"voice-ai-callbot/internal/domain/model"
	"voice-ai-callbot/internal/domain/ports/adapter"
)

// Reply sources, reported alongside the reply so callers can meter which
// rung of the ladder answered.
const (
	SourceCanned     = "canned"
	SourceTopic      = "topic"
	SourceProgress   = "progress"
	SourceCurriculum = "curriculum"
	SourceModel      = "model"
	SourceFallback   = "fallback"
)

// Compile-time check
var _ ResponderUseCase = (*responderUC)(nil)

// ResponderUseCase selects the next spoken reply for an utterance. Select is
// side-effect-free; recording the exchange is the caller's job. It never
// fails: a broken model call lands on the fallback ladder, not on the caller.
type ResponderUseCase interface {
	Select(ctx context.Context, utterance, callContext string) (reply, source string)
}

type responderUC struct {
	ai          adapter.AIServiceAdapter
	model       string
	opts        adapter.GenerationOptions
	callTimeout time.Duration
	log         *zerolog.Logger
}

func NewResponderUseCase(ai adapter.AIServiceAdapter, modelName string, opts adapter.GenerationOptions, callTimeout time.Duration, logger *zerolog.Logger) *responderUC {
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	l := logger.With().Str("component", "responder").Logger()
	return &responderUC{ai: ai, model: modelName, opts: opts, callTimeout: callTimeout, log: &l}
}

// Canned exact-match phrases. These bypass the model entirely.
var cannedReplies = map[string]string{
	"hello":     "Hi there! I'm your study assistant. What would you like to know about today's lesson?",
	"hi":        "Hi there! I'm your study assistant. What would you like to know about today's lesson?",
	"hey":       "Hi there! I'm your study assistant. What would you like to know about today's lesson?",
	"thanks":    "You're welcome! Keep up the great work.",
	"thank you": "You're welcome! Keep up the great work.",
	"bye":       "Goodbye! Good luck with your studies.",
	"goodbye":   "Goodbye! Good luck with your studies.",
	"yes":       "Great! Let's keep going then.",
	"no":        "No problem. We can take it one step at a time.",
}

var (
	topicKeywords    = []string{"today", "topic", "study"}
	progressKeywords = []string{"progress", "how much", "percentage"}
)

func (r *responderUC) Select(ctx context.Context, utterance, callContext string) (string, string) {
	q := strings.ToLower(strings.TrimSpace(utterance))

	if reply, ok := cannedReplies[q]; ok {
		return reply, SourceCanned
	}

	lc := model.ParseLearningContext(callContext)

	if containsAny(q, topicKeywords) {
		if lc.Topic != "" {
			return fmt.Sprintf("Today you're working on %s. Would you like a quick refresher, or do you have a specific question?", model.Truncate(lc.Topic, 50)), SourceTopic
		}
		return "Let's focus on your current lesson. Which part would you like to go over?", SourceTopic
	}

	if containsAny(q, progressKeywords) {
		if lc.Progress != "" {
			return fmt.Sprintf("You're currently at %s. That's real progress, keep pushing forward!", lc.Progress), SourceProgress
		}
		return "You're moving along nicely. Every session counts!", SourceProgress
	}

	if strings.Contains(q, "day 1") && strings.Contains(q, "month") {
		if lc.Topic != "" {
			return fmt.Sprintf("Day one of a new month is all about foundations. We'll start with %s.", model.Truncate(lc.Topic, 50)), SourceCurriculum
		}
		return "Day one of a new month is all about foundations. Let's build them up together.", SourceCurriculum
	}

	res := r.askModel(ctx, utterance, callContext)
	if res.OK() && len(res.Text) > 5 {
		return model.Truncate(res.Text, 100), SourceModel
	}
	if res.Err != nil {
		r.log.Warn().Err(res.Err).Msg("model call failed, using fallback")
	}

	return r.fallback(lc, callContext), SourceFallback
}

// askModel is the single place the external model is touched. Its outcome is
// a value, never a propagated error.
func (r *responderUC) askModel(ctx context.Context, utterance, callContext string) adapter.ChatResult {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"You are a friendly study assistant speaking on a phone call.\n"+
			"Learner context:\n%s\n\n"+
			"The caller asked: %q\n\n"+
			"Answer in at most two short sentences suitable for being read aloud.",
		callContext, utterance,
	)

	text, err := r.ai.Chat(callCtx, r.model, []adapter.Message{{Role: "user", Content: prompt}}, r.opts)
	return adapter.ChatResult{Text: strings.TrimSpace(text), Err: err}
}

func (r *responderUC) fallback(lc model.LearningContext, callContext string) string {
	if lc.Topic != "" {
		return fmt.Sprintf("Good question! It ties back to %s, which you're studying right now. Let's walk through it again together.", model.Truncate(lc.Topic, 50))
	}
	lcCtx := strings.ToLower(callContext)
	if strings.Contains(lcCtx, "python") {
		return "When in doubt, return to Python fundamentals: variables, loops, and functions. Practicing those pays off every time."
	}
	if strings.Contains(lcCtx, "ai") {
		return "A good AI study habit: pick one core concept and work through a small example end to end."
	}
	return "Keep going, you're doing great. Break the problem into small steps and tackle them one at a time."
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
