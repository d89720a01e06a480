package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"voice-ai-callbot/internal/domain/ports/repository"
)

// IdleSweeper periodically expires sessions whose last activity is older
// than the TTL. It exists as the reclamation hook for the otherwise
// unbounded session map; with a zero TTL it is never started.
type IdleSweeper struct {
	interval time.Duration
	ttl      time.Duration
	convs    repository.ConversationRepository
	log      *zerolog.Logger
}

func NewIdleSweeper(interval, ttl time.Duration, convs repository.ConversationRepository, logger *zerolog.Logger) *IdleSweeper {
	l := logger.With().Str("component", "IdleSweeper").Logger()
	if interval <= 0 {
		interval = time.Minute
	}
	return &IdleSweeper{interval: interval, ttl: ttl, convs: convs, log: &l}
}

func (w *IdleSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("ttl", w.ttl).Msg("Starting idle sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping idle sweeper")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.convs.ExpireIdle(ctx, w.ttl)
			if err != nil {
				w.log.Error().Err(err).Msg("idle sweep error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("idle sessions expired")
			}
		}
	}
}
