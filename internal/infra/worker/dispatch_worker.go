package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/usecase"
)

const sweepBatchSize = 100

// DispatchWorker owns outbound planner dispatch. Schedule is the fast path
// used by the HTTP layer right after a job is created; the Run loop sweeps for
// pending jobs that fell through (full queue, crash between create and
// schedule) and re-submits them. The pending -> processing CAS makes the two
// paths safe to overlap.
type DispatchWorker struct {
	jobs     repository.PlanJobRepository
	jobUC    usecase.PlanJobUseCase
	pool     *Pool
	interval time.Duration
	grace    time.Duration
	log      *zerolog.Logger
}

func NewDispatchWorker(
	jobs repository.PlanJobRepository,
	jobUC usecase.PlanJobUseCase,
	pool *Pool,
	interval, grace time.Duration,
	logger *zerolog.Logger,
) *DispatchWorker {
	dwLog := logger.With().Str("component", "DispatchWorker").Logger()
	return &DispatchWorker{
		jobs:     jobs,
		jobUC:    jobUC,
		pool:     pool,
		interval: interval,
		grace:    grace,
		log:      &dwLog,
	}
}

// Schedule submits a dispatch task for the job. Errors are swallowed on
// purpose: a job that cannot be queued now stays pending and the sweeper
// retries it.
func (w *DispatchWorker) Schedule(jobID string) {
	err := w.pool.Submit(func(ctx context.Context) error {
		return w.dispatch(ctx, jobID)
	})
	if err != nil {
		w.log.Warn().Err(err).Str("job_id", jobID).Msg("dispatch queue full, sweeper will retry")
	}
}

func (w *DispatchWorker) dispatch(ctx context.Context, jobID string) error {
	_, err := w.jobUC.Dispatch(ctx, jobID)
	if err == nil || errors.Is(err, domain.ErrJobConflict) {
		return nil
	}
	if errors.Is(err, domain.ErrDispatchFailed) {
		// Already recorded on the job; nothing more for the pool to log.
		return nil
	}
	return err
}

// Run sweeps for stranded pending jobs. The grace period keeps the sweeper
// from racing the fast path on jobs created a moment ago.
func (w *DispatchWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting dispatch worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping dispatch worker")
			return ctx.Err()
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.log.Error().Err(err).Msg("pending sweep error")
			}
		}
	}
}

func (w *DispatchWorker) sweep(ctx context.Context) error {
	pending, err := w.jobs.ListPending(ctx, nil, time.Now().Add(-w.grace), sweepBatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	w.log.Info().Int("count", len(pending)).Msg("re-submitting stranded pending jobs")
	for _, job := range pending {
		w.Schedule(job.ID)
	}
	return nil
}
