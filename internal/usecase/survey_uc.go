package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

// Compile-time check
var _ SurveyUseCase = (*surveyUC)(nil)

type SurveyUseCase interface {
	Create(ctx context.Context, ownerID string, s *model.TravelSurvey) (*model.TravelSurvey, error)
	Get(ctx context.Context, ownerID, id string) (*model.TravelSurvey, error)
	List(ctx context.Context, ownerID string, offset, limit int) ([]*model.TravelSurvey, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type surveyUC struct {
	surveys repository.TravelSurveyRepository
}

func NewSurveyUseCase(surveys repository.TravelSurveyRepository) *surveyUC {
	return &surveyUC{surveys: surveys}
}

func (u *surveyUC) Create(ctx context.Context, ownerID string, s *model.TravelSurvey) (*model.TravelSurvey, error) {
	if strings.TrimSpace(s.Destination) == "" {
		return nil, domain.ErrInvalidArgument
	}
	if s.EndDate.Before(s.StartDate) {
		return nil, domain.ErrInvalidArgument
	}
	if s.PeopleCount <= 0 {
		s.PeopleCount = 1
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.OwnerID = ownerID
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if err := u.surveys.Save(ctx, nil, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *surveyUC) Get(ctx context.Context, ownerID, id string) (*model.TravelSurvey, error) {
	s, err := u.surveys.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if s.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (u *surveyUC) List(ctx context.Context, ownerID string, offset, limit int) ([]*model.TravelSurvey, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.surveys.ListByOwner(ctx, nil, ownerID, offset, limit)
}

func (u *surveyUC) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := u.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return u.surveys.Delete(ctx, nil, id)
}
