package repository

import (
	"context"

	"travel-ai-planner/internal/domain/model"
)

type TravelSurveyRepository interface {
	Save(ctx context.Context, tx Tx, s *model.TravelSurvey) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.TravelSurvey, error)
	ListByOwner(ctx context.Context, tx Tx, ownerID string, offset, limit int) ([]*model.TravelSurvey, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
