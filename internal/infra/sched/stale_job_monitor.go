package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/metrics"
)

// StaleJobMonitor counts processing jobs whose callback never came. Detection
// only: the job stays processing and an operator decides what to do, usually
// after checking the planner side.
type StaleJobMonitor struct {
	jobs       repository.PlanJobRepository
	staleAfter time.Duration
	interval   time.Duration
	log        *zerolog.Logger
}

func NewStaleJobMonitor(jobs repository.PlanJobRepository, staleAfter, interval time.Duration, logger *zerolog.Logger) *StaleJobMonitor {
	smLog := logger.With().Str("component", "StaleJobMonitor").Logger()
	return &StaleJobMonitor{
		jobs:       jobs,
		staleAfter: staleAfter,
		interval:   interval,
		log:        &smLog,
	}
}

func (m *StaleJobMonitor) Run(ctx context.Context) error {
	m.log.Info().Msg("Starting stale job monitor")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Stopping stale job monitor")
			return ctx.Err()
		case <-ticker.C:
			n, err := m.jobs.CountStaleProcessing(ctx, nil, time.Now().Add(-m.staleAfter))
			if err != nil {
				m.log.Error().Err(err).Msg("stale job count error")
				continue
			}
			metrics.SetStaleJobs(n)
			if n > 0 {
				m.log.Warn().Int("count", n).Dur("stale_after", m.staleAfter).Msg("processing jobs without callback")
			}
		}
	}
}
