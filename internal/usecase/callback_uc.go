package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/metrics"
)

// Compile-time check
var _ CallbackUseCase = (*callbackUC)(nil)

type CallbackUseCase interface {
	// Ingest resolves an asynchronous planner callback into a terminal job
	// state. Duplicate and late deliveries surface as
	// domain.ErrJobAlreadyTerminal, which callers treat as benign. Every other
	// path leaves the job terminal: success with materialized itinerary data,
	// or failed with an error code.
	Ingest(ctx context.Context, jobID string, payload adapter.CallbackPayload) error
}

type callbackUC struct {
	jobs        repository.PlanJobRepository
	itineraries repository.ItineraryRepository
	mat         *Materializer
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewCallbackUseCase(
	jobs repository.PlanJobRepository,
	itineraries repository.ItineraryRepository,
	mat *Materializer,
	tm repository.TransactionManager,
	log *zerolog.Logger,
) *callbackUC {
	return &callbackUC{jobs: jobs, itineraries: itineraries, mat: mat, tm: tm, log: log}
}

func (u *callbackUC) Ingest(ctx context.Context, jobID string, payload adapter.CallbackPayload) error {
	job, err := u.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrJobNotFound) {
			return domain.ErrJobNotFound
		}
		return err
	}
	if job.Terminal() {
		metrics.IncCallback(string(job.Type), "duplicate")
		return domain.ErrJobAlreadyTerminal
	}

	switch payload.Status {
	case adapter.CallbackStatusFailed:
		return u.ingestFailure(ctx, job, payload)
	case adapter.CallbackStatusSuccess:
		return u.ingestSuccess(ctx, job, payload)
	default:
		return u.failJob(ctx, job, model.ErrCodeInvalidCallbackPayload,
			fmt.Sprintf("unknown callback status %q", payload.Status), domain.ErrInvalidCallbackPayload)
	}
}

func (u *callbackUC) ingestFailure(ctx context.Context, job *model.PlanJob, payload adapter.CallbackPayload) error {
	code := "LLM_PROVIDER_ERROR"
	msg := "planner reported failure without detail"
	if payload.Error != nil {
		if payload.Error.Code != "" {
			code = payload.Error.Code
		}
		if payload.Error.Message != "" {
			msg = payload.Error.Message
		}
	}
	now := time.Now()
	_, err := u.jobs.Transition(ctx, nil, job.ID, job.Status, model.PlanJobStatusFailed, repository.TransitionFields{
		ErrorCode:    &code,
		ErrorMessage: &msg,
		CompletedAt:  &now,
	})
	if errors.Is(err, domain.ErrJobConflict) {
		metrics.IncCallback(string(job.Type), "duplicate")
		return domain.ErrJobAlreadyTerminal
	}
	if err != nil {
		return err
	}
	metrics.IncCallback(string(job.Type), "failed")
	u.log.Warn().Str("job_id", job.ID).Str("error_code", code).Msg("plan job failed by planner callback")
	return nil
}

func (u *callbackUC) ingestSuccess(ctx context.Context, job *model.PlanJob, payload adapter.CallbackPayload) error {
	if err := validatePayload(job.Type, payload); err != nil {
		return u.failJob(ctx, job, model.ErrCodeInvalidCallbackPayload, err.Error(), domain.ErrInvalidCallbackPayload)
	}

	switch job.Type {
	case model.PlanJobTypeGeneration:
		return u.completeGeneration(ctx, job, payload.Data)
	case model.PlanJobTypeModification:
		if model.IntentStatus(payload.IntentStatus) != model.IntentSuccess {
			return u.completeIntentOnly(ctx, job, payload)
		}
		return u.completeModification(ctx, job, payload)
	default:
		return fmt.Errorf("%w: job type %q", domain.ErrInvalidArgument, job.Type)
	}
}

// completeGeneration materializes a brand-new itinerary and flips the job to
// success inside one transaction: the job is never success with a
// half-written tree.
func (u *callbackUC) completeGeneration(ctx context.Context, job *model.PlanJob, plan *adapter.GeneratedPlan) error {
	it, err := u.mat.BuildItinerary(job.OwnerID, plan)
	if err != nil {
		return u.failJob(ctx, job, model.ErrCodeInvalidCallbackPayload, err.Error(), err)
	}

	now := time.Now()
	txErr := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.itineraries.Create(ctx, tx, it); err != nil {
			return err
		}
		msg := plan.LLMCommentary
		_, err := u.jobs.Transition(ctx, tx, job.ID, model.PlanJobStatusProcessing, model.PlanJobStatusSuccess, repository.TransitionFields{
			ResultItineraryID: &it.ID,
			Message:           &msg,
			CompletedAt:       &now,
		})
		return err
	})
	if errors.Is(txErr, domain.ErrJobConflict) {
		metrics.IncCallback(string(job.Type), "duplicate")
		return domain.ErrJobAlreadyTerminal
	}
	if txErr != nil {
		return u.failJob(ctx, job, model.ErrCodeMaterializationFailed, txErr.Error(), txErr)
	}
	metrics.IncCallback(string(job.Type), "success")
	u.log.Info().Str("job_id", job.ID).Str("itinerary_id", it.ID).
		Int("days", len(it.Days)).Int("places", it.PlaceCount()).
		Msg("itinerary materialized")
	return nil
}

// completeIntentOnly closes a modification job whose request the planner
// classified as non-actionable. The job still succeeded at classifying
// intent; no itinerary node changes.
func (u *callbackUC) completeIntentOnly(ctx context.Context, job *model.PlanJob, payload adapter.CallbackPayload) error {
	intent := model.IntentStatus(payload.IntentStatus)
	now := time.Now()
	_, err := u.jobs.Transition(ctx, nil, job.ID, model.PlanJobStatusProcessing, model.PlanJobStatusSuccess, repository.TransitionFields{
		IntentStatus: &intent,
		Message:      &payload.Message,
		CompletedAt:  &now,
	})
	if errors.Is(err, domain.ErrJobConflict) {
		metrics.IncCallback(string(job.Type), "duplicate")
		return domain.ErrJobAlreadyTerminal
	}
	if err != nil {
		return err
	}
	metrics.IncCallback(string(job.Type), "success")
	u.log.Info().Str("job_id", job.ID).Str("intent", payload.IntentStatus).Msg("modification resolved without diff")
	return nil
}

func (u *callbackUC) completeModification(ctx context.Context, job *model.PlanJob, payload adapter.CallbackPayload) error {
	intent := model.IntentSuccess
	now := time.Now()

	txErr := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.itineraries.FindByID(ctx, tx, job.TargetItineraryID)
		if err != nil {
			return err
		}
		patched, err := u.mat.PatchItinerary(existing, payload.ModifiedItinerary, payload.DiffKeys)
		if err != nil {
			return err
		}
		if err := u.itineraries.Update(ctx, tx, patched); err != nil {
			return err
		}
		_, err = u.jobs.Transition(ctx, tx, job.ID, model.PlanJobStatusProcessing, model.PlanJobStatusSuccess, repository.TransitionFields{
			IntentStatus:      &intent,
			DiffKeys:          payload.DiffKeys,
			Message:           &payload.Message,
			ResultItineraryID: &job.TargetItineraryID,
			CompletedAt:       &now,
		})
		return err
	})
	if txErr == nil {
		metrics.IncCallback(string(job.Type), "success")
		u.log.Info().Str("job_id", job.ID).Strs("diff_keys", payload.DiffKeys).Msg("itinerary patched")
		return nil
	}
	if errors.Is(txErr, domain.ErrJobConflict) {
		metrics.IncCallback(string(job.Type), "duplicate")
		return domain.ErrJobAlreadyTerminal
	}
	if errors.Is(txErr, domain.ErrDiffKeyNotFound) {
		return u.failJob(ctx, job, model.ErrCodeDiffKeyNotFound, txErr.Error(), txErr)
	}
	return u.failJob(ctx, job, model.ErrCodeMaterializationFailed, txErr.Error(), txErr)
}

// failJob resolves the job to failed and propagates cause. A lost CAS here
// means a concurrent callback already settled the job; that duplicate is
// absorbed.
func (u *callbackUC) failJob(ctx context.Context, job *model.PlanJob, code, msg string, cause error) error {
	now := time.Now()
	_, err := u.jobs.Transition(ctx, nil, job.ID, job.Status, model.PlanJobStatusFailed, repository.TransitionFields{
		ErrorCode:    &code,
		ErrorMessage: &msg,
		CompletedAt:  &now,
	})
	if errors.Is(err, domain.ErrJobConflict) {
		metrics.IncCallback(string(job.Type), "duplicate")
		return domain.ErrJobAlreadyTerminal
	}
	if err != nil {
		return err
	}
	metrics.IncCallback(string(job.Type), "rejected")
	u.log.Warn().Str("job_id", job.ID).Str("error_code", code).Str("detail", msg).Msg("plan job failed during ingest")
	return cause
}

// validatePayload checks the success payload shape against the job type
// before anything touches storage.
func validatePayload(jobType model.PlanJobType, p adapter.CallbackPayload) error {
	switch jobType {
	case model.PlanJobTypeGeneration:
		if p.Data == nil {
			return fmt.Errorf("%w: generation callback missing data", domain.ErrInvalidCallbackPayload)
		}
		if len(p.Data.Itinerary) == 0 {
			return fmt.Errorf("%w: generation callback has no days", domain.ErrInvalidCallbackPayload)
		}
		if p.Data.StartDate == "" || p.Data.EndDate == "" {
			return fmt.Errorf("%w: generation callback missing date range", domain.ErrInvalidCallbackPayload)
		}
		for _, d := range p.Data.Itinerary {
			if d.DayNumber <= 0 {
				return fmt.Errorf("%w: day_number must be positive", domain.ErrInvalidCallbackPayload)
			}
		}
		return nil
	case model.PlanJobTypeModification:
		switch model.IntentStatus(p.IntentStatus) {
		case model.IntentSuccess:
			if len(p.DiffKeys) == 0 {
				return fmt.Errorf("%w: modification success without diff_keys", domain.ErrInvalidCallbackPayload)
			}
			if len(p.ModifiedItinerary) == 0 {
				return fmt.Errorf("%w: modification success without modified_itinerary", domain.ErrInvalidCallbackPayload)
			}
			return nil
		case model.IntentAskClarification, model.IntentGeneralChat, model.IntentRejected:
			if len(p.DiffKeys) > 0 {
				return fmt.Errorf("%w: diff_keys present with intent %s", domain.ErrInvalidCallbackPayload, p.IntentStatus)
			}
			return nil
		default:
			return fmt.Errorf("%w: unknown intent_status %q", domain.ErrInvalidCallbackPayload, p.IntentStatus)
		}
	default:
		return fmt.Errorf("%w: job type %q", domain.ErrInvalidArgument, jobType)
	}
}
