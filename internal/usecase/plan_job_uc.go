package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/metrics"
)

// Compile-time check
var _ PlanJobUseCase = (*planJobUC)(nil)

type PlanJobUseCase interface {
	// RequestGeneration creates a pending generation job for the survey.
	// Dispatch happens separately (worker pool or sweeper).
	RequestGeneration(ctx context.Context, ownerID, surveyID string) (*model.PlanJob, error)

	// RequestModification creates a pending modification job against an
	// existing itinerary.
	RequestModification(ctx context.Context, ownerID, itineraryID, userQuery string) (*model.PlanJob, error)

	// Dispatch moves the job pending -> processing and invokes the planner.
	// The external call happens strictly after the CAS has committed, so a
	// hanging planner cannot stall other jobs. A lost CAS means another
	// dispatch is in flight; the job is returned as-is without a second call.
	Dispatch(ctx context.Context, jobID string) (*model.PlanJob, error)

	// Retry re-opens a failed job (failed -> pending) while the retry budget
	// allows, incrementing attempt and retry counters. The caller schedules a
	// fresh Dispatch afterwards.
	Retry(ctx context.Context, ownerID, jobID string) (*model.PlanJob, error)

	// Get returns the job scoped to its owner.
	Get(ctx context.Context, ownerID, jobID string) (*model.PlanJob, error)
}

type planJobUC struct {
	jobs        repository.PlanJobRepository
	surveys     repository.TravelSurveyRepository
	itineraries repository.ItineraryRepository
	planner     adapter.PlannerAdapter

	callbackBaseURL string
	maxRetries      int

	log *zerolog.Logger
}

func NewPlanJobUseCase(
	jobs repository.PlanJobRepository,
	surveys repository.TravelSurveyRepository,
	itineraries repository.ItineraryRepository,
	planner adapter.PlannerAdapter,
	callbackBaseURL string,
	maxRetries int,
	log *zerolog.Logger,
) *planJobUC {
	return &planJobUC{
		jobs:            jobs,
		surveys:         surveys,
		itineraries:     itineraries,
		planner:         planner,
		callbackBaseURL: strings.TrimRight(callbackBaseURL, "/"),
		maxRetries:      maxRetries,
		log:             log,
	}
}

// Job ids are ULIDs so listings sort by creation time for free.
func (u *planJobUC) newJobID() string {
	return ulid.Make().String()
}

func (u *planJobUC) callbackURL(jobID string) string {
	return u.callbackBaseURL + "/callbacks/planner/" + jobID
}

func (u *planJobUC) RequestGeneration(ctx context.Context, ownerID, surveyID string) (*model.PlanJob, error) {
	survey, err := u.surveys.FindByID(ctx, nil, surveyID)
	if err != nil {
		return nil, err
	}
	if survey.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}

	job := model.NewGenerationJob(u.newJobID(), ownerID, surveyID)
	if err := u.jobs.Create(ctx, nil, job); err != nil {
		return nil, err
	}
	metrics.IncJobCreated(string(job.Type))
	u.log.Info().Str("job_id", job.ID).Str("survey_id", surveyID).Msg("generation job created")
	return job, nil
}

func (u *planJobUC) RequestModification(ctx context.Context, ownerID, itineraryID, userQuery string) (*model.PlanJob, error) {
	userQuery = strings.TrimSpace(userQuery)
	if userQuery == "" {
		return nil, domain.ErrInvalidArgument
	}
	it, err := u.itineraries.FindByID(ctx, nil, itineraryID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}

	job := model.NewModificationJob(u.newJobID(), ownerID, itineraryID, userQuery)
	if err := u.jobs.Create(ctx, nil, job); err != nil {
		return nil, err
	}
	metrics.IncJobCreated(string(job.Type))
	u.log.Info().Str("job_id", job.ID).Str("itinerary_id", itineraryID).Msg("modification job created")
	return job, nil
}

func (u *planJobUC) Dispatch(ctx context.Context, jobID string) (*model.PlanJob, error) {
	now := time.Now()
	job, err := u.jobs.Transition(ctx, nil, jobID, model.PlanJobStatusPending, model.PlanJobStatusProcessing, repository.TransitionFields{
		StartedAt: &now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrJobConflict) {
			// Another dispatch already won the CAS; exactly one outbound call
			// per pending -> processing edge.
			return u.jobs.FindByID(ctx, nil, jobID)
		}
		return nil, err
	}

	start := time.Now()
	err = u.invoke(ctx, job)
	metrics.ObserveDispatch(string(job.Type), time.Since(start), err == nil)

	if err != nil {
		u.log.Error().Err(err).Str("job_id", job.ID).Msg("planner dispatch failed")
		code := model.ErrCodeDispatchFailed
		msg := err.Error()
		done := time.Now()
		if _, terr := u.jobs.Transition(ctx, nil, job.ID, model.PlanJobStatusProcessing, model.PlanJobStatusFailed, repository.TransitionFields{
			ErrorCode:    &code,
			ErrorMessage: &msg,
			CompletedAt:  &done,
		}); terr != nil && !errors.Is(terr, domain.ErrJobConflict) {
			u.log.Error().Err(terr).Str("job_id", job.ID).Msg("could not record dispatch failure")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}

	u.log.Info().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("plan job dispatched")
	return job, nil
}

// invoke builds the planner request from the job's reference data and sends
// it. No repository locks are held at this point.
func (u *planJobUC) invoke(ctx context.Context, job *model.PlanJob) error {
	switch job.Type {
	case model.PlanJobTypeGeneration:
		survey, err := u.surveys.FindByID(ctx, nil, job.SourceSurveyID)
		if err != nil {
			return fmt.Errorf("load survey: %w", err)
		}
		return u.planner.RequestGeneration(ctx, adapter.GenerationRequest{
			JobID:       job.ID,
			CallbackURL: u.callbackURL(job.ID),
			Survey:      surveySnapshot(survey),
		})
	case model.PlanJobTypeModification:
		it, err := u.itineraries.FindByID(ctx, nil, job.TargetItineraryID)
		if err != nil {
			return fmt.Errorf("load itinerary: %w", err)
		}
		return u.planner.RequestModification(ctx, adapter.ModificationRequest{
			JobID:       job.ID,
			CallbackURL: u.callbackURL(job.ID),
			UserQuery:   job.UserQuery,
			Itinerary:   itinerarySnapshot(it),
		})
	default:
		return fmt.Errorf("%w: job type %q", domain.ErrInvalidArgument, job.Type)
	}
}

func (u *planJobUC) Retry(ctx context.Context, ownerID, jobID string) (*model.PlanJob, error) {
	job, err := u.Get(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.PlanJobStatusFailed {
		return nil, domain.ErrJobConflict
	}
	if job.RetryCount >= u.maxRetries {
		return nil, domain.ErrRetryLimitExceeded
	}

	empty := ""
	job, err = u.jobs.Transition(ctx, nil, jobID, model.PlanJobStatusFailed, model.PlanJobStatusPending, repository.TransitionFields{
		ErrorCode:        &empty,
		ErrorMessage:     &empty,
		IncrementAttempt: true,
		IncrementRetry:   true,
	})
	if err != nil {
		return nil, err
	}
	metrics.IncJobRetried(string(job.Type))
	u.log.Info().Str("job_id", job.ID).Int("retry_count", job.RetryCount).Msg("plan job re-opened for retry")
	return job, nil
}

func (u *planJobUC) Get(ctx context.Context, ownerID, jobID string) (*model.PlanJob, error) {
	job, err := u.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID {
		// Do not leak other users' job ids.
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func surveySnapshot(s *model.TravelSurvey) adapter.SurveySnapshot {
	return adapter.SurveySnapshot{
		Destination: s.Destination,
		StartDate:   s.StartDate.Format(adapter.DateLayout),
		EndDate:     s.EndDate.Format(adapter.DateLayout),
		PeopleCount: s.PeopleCount,
		BudgetLevel: s.BudgetLevel,
		Themes:      s.Themes,
		FreeText:    s.FreeText,
	}
}

// itinerarySnapshot serializes the stored tree for the planner, tagging every
// node with its internal id so modification diffs can reference it.
func itinerarySnapshot(it *model.Itinerary) adapter.ItinerarySnapshot {
	snap := adapter.ItinerarySnapshot{
		Title:     it.Title,
		StartDate: it.StartDate.Format(adapter.DateLayout),
		EndDate:   it.EndDate.Format(adapter.DateLayout),
	}
	for _, d := range it.Days {
		dn := adapter.DayNode{
			NodeKey:   d.ID,
			DayNumber: d.DayNumber,
			DailyDate: d.Date.Format(adapter.DateLayout),
		}
		for _, p := range d.Places {
			dn.Places = append(dn.Places, adapter.PlaceNode{
				NodeKey:       p.ID,
				PlaceName:     p.Name,
				PlaceID:       p.ExternalID,
				Address:       p.Address,
				Latitude:      p.Latitude,
				Longitude:     p.Longitude,
				PlaceURL:      p.URL,
				Description:   p.Description,
				VisitSequence: p.VisitSequence,
				VisitTime:     p.VisitTime,
			})
		}
		snap.Days = append(snap.Days, dn)
	}
	return snap
}
