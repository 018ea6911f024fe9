package usecase

import (
	"context"
	"time"

	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// JobStats is the admin-facing snapshot of the job table. StaleProcessing is
// the detection half of the staleness story: jobs sitting in processing past
// the threshold with no callback.
type JobStats struct {
	ByStatus        map[model.PlanJobStatus]int `json:"by_status"`
	ByType          map[model.PlanJobType]int   `json:"by_type"`
	StaleProcessing int                         `json:"stale_processing"`
}

type StatsUseCase interface {
	Totals(ctx context.Context) (*JobStats, error)
}

type statsUC struct {
	jobs       repository.PlanJobRepository
	staleAfter time.Duration
}

func NewStatsUseCase(jobs repository.PlanJobRepository, staleAfter time.Duration) *statsUC {
	return &statsUC{jobs: jobs, staleAfter: staleAfter}
}

func (u *statsUC) Totals(ctx context.Context) (*JobStats, error) {
	byStatus, err := u.jobs.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	byType, err := u.jobs.CountByType(ctx, nil)
	if err != nil {
		return nil, err
	}
	stale, err := u.jobs.CountStaleProcessing(ctx, nil, time.Now().Add(-u.staleAfter))
	if err != nil {
		return nil, err
	}
	return &JobStats{ByStatus: byStatus, ByType: byType, StaleProcessing: stale}, nil
}
