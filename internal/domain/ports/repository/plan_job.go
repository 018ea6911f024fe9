package repository

import (
	"context"
	"time"

	"travel-ai-planner/internal/domain/model"
)

// TransitionFields carries the columns a status transition may set alongside
// the CAS on status. Nil pointers leave the stored value untouched.
type TransitionFields struct {
	ErrorCode         *string
	ErrorMessage      *string
	IntentStatus      *model.IntentStatus
	DiffKeys          []string
	Message           *string
	ResultItineraryID *string
	StartedAt         *time.Time
	CompletedAt       *time.Time
	IncrementAttempt  bool
	IncrementRetry    bool
}

type PlanJobRepository interface {
	Create(ctx context.Context, tx Tx, job *model.PlanJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PlanJob, error)

	// Transition is the concurrency guard for the whole subsystem: a single
	// atomic compare-and-swap on status. It returns domain.ErrJobConflict when
	// the stored status no longer matches `from`, and domain.ErrJobNotFound
	// when the job does not exist.
	Transition(ctx context.Context, tx Tx, id string, from, to model.PlanJobStatus, fields TransitionFields) (*model.PlanJob, error)

	// ListPending returns pending jobs whose last update is older than
	// `olderThan`, oldest first. Used by the dispatch sweeper to pick up jobs
	// the in-process pool never got to.
	ListPending(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PlanJob, error)

	CountByStatus(ctx context.Context, tx Tx) (map[model.PlanJobStatus]int, error)
	CountByType(ctx context.Context, tx Tx) (map[model.PlanJobType]int, error)
	CountStaleProcessing(ctx context.Context, tx Tx, startedBefore time.Time) (int, error)
}
