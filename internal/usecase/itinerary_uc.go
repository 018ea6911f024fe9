package usecase

import (
	"context"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

// Compile-time check
var _ ItineraryUseCase = (*itineraryUC)(nil)

// ItineraryUseCase is the read model over materialized itineraries. Writes
// only ever happen through the callback ingest path.
type ItineraryUseCase interface {
	Get(ctx context.Context, ownerID, id string) (*model.Itinerary, error)
	List(ctx context.Context, ownerID string, offset, limit int) ([]*model.Itinerary, error)
}

type itineraryUC struct {
	itineraries repository.ItineraryRepository
}

func NewItineraryUseCase(itineraries repository.ItineraryRepository) *itineraryUC {
	return &itineraryUC{itineraries: itineraries}
}

func (u *itineraryUC) Get(ctx context.Context, ownerID, id string) (*model.Itinerary, error) {
	it, err := u.itineraries.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return it, nil
}

func (u *itineraryUC) List(ctx context.Context, ownerID string, offset, limit int) ([]*model.Itinerary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.itineraries.ListByOwner(ctx, nil, ownerID, offset, limit)
}
