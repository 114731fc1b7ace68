// File: internal/infra/sched/session_sweeper.go
package sched

import (
	"context"
	"time"

	"inline-post-bot/internal/infra/metrics"
	"inline-post-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// SessionSweeper periodically deactivates conversation sessions that ran
// past their TTL, so abandoned flows do not pile up in storage.
type SessionSweeper struct {
	interval  time.Duration
	sessionUC usecase.SessionUseCase
	log       *zerolog.Logger
}

func NewSessionSweeper(interval time.Duration, sessionUC usecase.SessionUseCase, logger *zerolog.Logger) *SessionSweeper {
	swLog := logger.With().Str("component", "SessionSweeper").Logger()
	return &SessionSweeper{
		interval:  interval,
		sessionUC: sessionUC,
		log:       &swLog,
	}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.sessionUC.ClearExpired(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("session sweep error")
			}
			if n > 0 {
				metrics.AddSessionsSwept(n)
				w.log.Info().Int64("count", n).Msg("expired sessions deactivated")
			}
		}
	}
}
