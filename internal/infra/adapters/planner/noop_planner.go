package planner

import (
	"context"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain/ports/adapter"
)

var _ adapter.PlannerAdapter = (*NoopPlanner)(nil)

// NoopPlanner accepts every dispatch without calling anything. Useful for
// local development when no planner service is running; jobs stay in
// PROCESSING until a callback is posted by hand.
type NoopPlanner struct {
	log zerolog.Logger
}

func NewNoopPlanner(log zerolog.Logger) *NoopPlanner {
	return &NoopPlanner{log: log}
}

func (p *NoopPlanner) RequestGeneration(_ context.Context, req adapter.GenerationRequest) error {
	p.log.Info().Str("job_id", req.JobID).Msg("noop planner: generation dispatch accepted")
	return nil
}

func (p *NoopPlanner) RequestModification(_ context.Context, req adapter.ModificationRequest) error {
	p.log.Info().Str("job_id", req.JobID).Msg("noop planner: modification dispatch accepted")
	return nil
}
