// File: internal/infra/sched/claim_expiry_worker.go
package sched

import (
	"context"
	"time"

	"inline-post-bot/internal/infra/metrics"
	"inline-post-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// ClaimExpiryWorker closes channel claim windows whose deadline has
// passed. A channel whose window expired can be re-registered later.
type ClaimExpiryWorker struct {
	interval  time.Duration
	channelUC usecase.ChannelUseCase
	log       *zerolog.Logger
}

func NewClaimExpiryWorker(interval time.Duration, channelUC usecase.ChannelUseCase, logger *zerolog.Logger) *ClaimExpiryWorker {
	ceLog := logger.With().Str("component", "ClaimExpiryWorker").Logger()
	return &ClaimExpiryWorker{
		interval:  interval,
		channelUC: channelUC,
		log:       &ceLog,
	}
}

func (w *ClaimExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting claim expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping claim expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.channelUC.ExpireStaleClaims(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("claim expiry error")
			}
			if n > 0 {
				metrics.AddClaimsExpired(n)
				w.log.Info().Int64("count", n).Msg("stale claim windows expired")
			}
		}
	}
}
