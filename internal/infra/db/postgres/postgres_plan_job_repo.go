package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

var _ repository.PlanJobRepository = (*planJobRepo)(nil)

type planJobRepo struct {
	pool *pgxpool.Pool
}

func NewPlanJobRepo(pool *pgxpool.Pool) *planJobRepo {
	return &planJobRepo{pool: pool}
}

const planJobColumns = `
id, job_type, status, owner_id, source_survey_id, target_itinerary_id,
attempt_count, retry_count, error_code, error_message, intent_status,
diff_keys, user_query, message, result_itinerary_id,
started_at, completed_at, created_at, updated_at`

func (r *planJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.PlanJob) error {
	const q = `
INSERT INTO plan_jobs (
  id, job_type, status, owner_id, source_survey_id, target_itinerary_id,
  attempt_count, retry_count, error_code, error_message, intent_status,
  diff_keys, user_query, message, result_itinerary_id,
  started_at, completed_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19);`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.Type, job.Status, job.OwnerID, job.SourceSurveyID, job.TargetItineraryID,
		job.AttemptCount, job.RetryCount, job.ErrorCode, job.ErrorMessage, job.IntentStatus,
		job.DiffKeys, job.UserQuery, job.Message, job.ResultItineraryID,
		job.StartedAt, job.CompletedAt, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *planJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PlanJob, error) {
	const q = `SELECT ` + planJobColumns + ` FROM plan_jobs WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	job, err := scanPlanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// Transition is the subsystem's concurrency guard: a single UPDATE whose
// WHERE clause compares the persisted status. Zero rows affected means the
// CAS lost (or the job is gone); the follow-up SELECT tells which.
func (r *planJobRepo) Transition(ctx context.Context, tx repository.Tx, id string, from, to model.PlanJobStatus, f repository.TransitionFields) (*model.PlanJob, error) {
	if !model.CanTransition(from, to) {
		return nil, domain.ErrInvalidArgument
	}

	const q = `
UPDATE plan_jobs SET
  status = $3,
  error_code          = COALESCE($4::text, error_code),
  error_message       = COALESCE($5::text, error_message),
  intent_status       = COALESCE($6::text, intent_status),
  diff_keys           = COALESCE($7::text[], diff_keys),
  message             = COALESCE($8::text, message),
  result_itinerary_id = COALESCE($9::text, result_itinerary_id),
  started_at          = COALESCE($10::timestamptz, started_at),
  completed_at        = COALESCE($11::timestamptz, completed_at),
  attempt_count       = attempt_count + $12,
  retry_count         = retry_count + $13,
  updated_at          = $14
WHERE id=$1 AND status=$2
RETURNING ` + planJobColumns + `;`

	attemptInc, retryInc := 0, 0
	if f.IncrementAttempt {
		attemptInc = 1
	}
	if f.IncrementRetry {
		retryInc = 1
	}
	var intent *string
	if f.IntentStatus != nil {
		s := string(*f.IntentStatus)
		intent = &s
	}

	row, err := pickRow(ctx, r.pool, tx, q,
		id, from, to,
		f.ErrorCode, f.ErrorMessage, intent, f.DiffKeys, f.Message, f.ResultItineraryID,
		f.StartedAt, f.CompletedAt, attemptInc, retryInc, time.Now())
	if err != nil {
		return nil, err
	}
	job, err := scanPlanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Distinguish a lost CAS from a missing job.
	checkRow, cerr := pickRow(ctx, r.pool, tx, `SELECT status FROM plan_jobs WHERE id=$1;`, id)
	if cerr != nil {
		return nil, cerr
	}
	var current string
	if serr := checkRow.Scan(&current); serr != nil {
		if errors.Is(serr, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, serr
	}
	return nil, domain.ErrJobConflict
}

func (r *planJobRepo) ListPending(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PlanJob, error) {
	const q = `
SELECT ` + planJobColumns + `
FROM plan_jobs
WHERE status='pending' AND updated_at < $1
ORDER BY created_at
LIMIT $2;`

	rows, err := pickRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.PlanJob
	for rows.Next() {
		job, err := scanPlanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *planJobRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PlanJobStatus]int, error) {
	rows, err := pickRows(ctx, r.pool, tx, `SELECT status, COUNT(*) FROM plan_jobs GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.PlanJobStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.PlanJobStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *planJobRepo) CountByType(ctx context.Context, tx repository.Tx) (map[model.PlanJobType]int, error) {
	rows, err := pickRows(ctx, r.pool, tx, `SELECT job_type, COUNT(*) FROM plan_jobs GROUP BY job_type;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.PlanJobType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[model.PlanJobType(typ)] = n
	}
	return out, rows.Err()
}

func (r *planJobRepo) CountStaleProcessing(ctx context.Context, tx repository.Tx, startedBefore time.Time) (int, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT COUNT(*) FROM plan_jobs WHERE status='processing' AND started_at < $1;`, startedBefore)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanPlanJob(row pgx.Row) (*model.PlanJob, error) {
	var (
		job          model.PlanJob
		jobType      string
		status       string
		intentStatus string
	)
	err := row.Scan(
		&job.ID, &jobType, &status, &job.OwnerID, &job.SourceSurveyID, &job.TargetItineraryID,
		&job.AttemptCount, &job.RetryCount, &job.ErrorCode, &job.ErrorMessage, &intentStatus,
		&job.DiffKeys, &job.UserQuery, &job.Message, &job.ResultItineraryID,
		&job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Type = model.PlanJobType(jobType)
	job.Status = model.PlanJobStatus(status)
	job.IntentStatus = model.IntentStatus(intentStatus)
	return &job, nil
}
