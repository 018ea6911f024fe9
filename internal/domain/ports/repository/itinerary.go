package repository

import (
	"context"

	"travel-ai-planner/internal/domain/model"
)

type ItineraryRepository interface {
	// Create inserts the itinerary together with all of its days and places.
	Create(ctx context.Context, tx Tx, it *model.Itinerary) error

	// Update persists the full tree: header and child rows are upserted and
	// days/places absent from `it` are deleted. Callers are expected to run it
	// inside a transaction so the tree is never half-written.
	Update(ctx context.Context, tx Tx, it *model.Itinerary) error

	// FindByID loads the full tree, days ordered by day_number and places by
	// visit_sequence.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Itinerary, error)

	// ListByOwner returns itinerary headers (no days) for the owner.
	ListByOwner(ctx context.Context, tx Tx, ownerID string, offset, limit int) ([]*model.Itinerary, error)
}
