package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/domain/ports/repository"
)

// memJobRepo is an in-memory PlanJobRepository with the same CAS semantics as
// the Postgres implementation. The mutex makes Transition atomic so the
// concurrency tests mean something.
type memJobRepo struct {
	mu    sync.Mutex
	store map[string]*model.PlanJob

	createErr     error
	transitionErr error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.PlanJob)}
}

func (m *memJobRepo) Create(ctx context.Context, _ repository.Tx, job *model.PlanJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[job.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.PlanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.store[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memJobRepo) Transition(ctx context.Context, _ repository.Tx, id string, from, to model.PlanJobStatus, f repository.TransitionFields) (*model.PlanJob, error) {
	if m.transitionErr != nil {
		return nil, m.transitionErr
	}
	if !model.CanTransition(from, to) {
		return nil, domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.store[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	if job.Status != from {
		return nil, domain.ErrJobConflict
	}
	job.Status = to
	if f.ErrorCode != nil {
		job.ErrorCode = *f.ErrorCode
	}
	if f.ErrorMessage != nil {
		job.ErrorMessage = *f.ErrorMessage
	}
	if f.IntentStatus != nil {
		job.IntentStatus = *f.IntentStatus
	}
	if f.DiffKeys != nil {
		job.DiffKeys = append([]string(nil), f.DiffKeys...)
	}
	if f.Message != nil {
		job.Message = *f.Message
	}
	if f.ResultItineraryID != nil {
		job.ResultItineraryID = *f.ResultItineraryID
	}
	if f.StartedAt != nil {
		t := *f.StartedAt
		job.StartedAt = &t
	}
	if f.CompletedAt != nil {
		t := *f.CompletedAt
		job.CompletedAt = &t
	}
	if f.IncrementAttempt {
		job.AttemptCount++
	}
	if f.IncrementRetry {
		job.RetryCount++
	}
	job.UpdatedAt = time.Now()
	cp := *job
	return &cp, nil
}

func (m *memJobRepo) ListPending(ctx context.Context, _ repository.Tx, olderThan time.Time, limit int) ([]*model.PlanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PlanJob
	for _, job := range m.store {
		if job.Status == model.PlanJobStatusPending && job.UpdatedAt.Before(olderThan) {
			cp := *job
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memJobRepo) CountByStatus(ctx context.Context, _ repository.Tx) (map[model.PlanJobStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.PlanJobStatus]int)
	for _, job := range m.store {
		out[job.Status]++
	}
	return out, nil
}

func (m *memJobRepo) CountByType(ctx context.Context, _ repository.Tx) (map[model.PlanJobType]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[model.PlanJobType]int)
	for _, job := range m.store {
		out[job.Type]++
	}
	return out, nil
}

func (m *memJobRepo) CountStaleProcessing(ctx context.Context, _ repository.Tx, startedBefore time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, job := range m.store {
		if job.Status == model.PlanJobStatusProcessing && job.StartedAt != nil && job.StartedAt.Before(startedBefore) {
			n++
		}
	}
	return n, nil
}

type memSurveyRepo struct {
	mu    sync.RWMutex
	store map[string]*model.TravelSurvey
}

func newMemSurveyRepo() *memSurveyRepo {
	return &memSurveyRepo{store: make(map[string]*model.TravelSurvey)}
}

func (m *memSurveyRepo) Save(ctx context.Context, _ repository.Tx, s *model.TravelSurvey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSurveyRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.TravelSurvey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSurveyRepo) ListByOwner(ctx context.Context, _ repository.Tx, ownerID string, offset, limit int) ([]*model.TravelSurvey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.TravelSurvey
	for _, s := range m.store {
		if s.OwnerID == ownerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSurveyRepo) Delete(ctx context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

type memItineraryRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Itinerary

	createErr error
	updateErr error
}

func newMemItineraryRepo() *memItineraryRepo {
	return &memItineraryRepo{store: make(map[string]*model.Itinerary)}
}

func cloneIt(src *model.Itinerary) *model.Itinerary {
	dst := *src
	dst.Tags = append([]string(nil), src.Tags...)
	dst.Days = make([]model.ItineraryDay, len(src.Days))
	for i, d := range src.Days {
		cd := d
		cd.Places = append([]model.ItineraryPlace(nil), d.Places...)
		dst.Days[i] = cd
	}
	return &dst
}

func (m *memItineraryRepo) Create(ctx context.Context, _ repository.Tx, it *model.Itinerary) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[it.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.store[it.ID] = cloneIt(it)
	return nil
}

func (m *memItineraryRepo) Update(ctx context.Context, _ repository.Tx, it *model.Itinerary) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[it.ID]; !ok {
		return domain.ErrNotFound
	}
	m.store[it.ID] = cloneIt(it)
	return nil
}

func (m *memItineraryRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Itinerary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneIt(it), nil
}

func (m *memItineraryRepo) ListByOwner(ctx context.Context, _ repository.Tx, ownerID string, offset, limit int) ([]*model.Itinerary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Itinerary
	for _, it := range m.store {
		if it.OwnerID == ownerID {
			out = append(out, cloneIt(it))
		}
	}
	return out, nil
}

// fakePlanner records dispatches and fails on demand.
type fakePlanner struct {
	mu          sync.Mutex
	generations []adapter.GenerationRequest
	mods        []adapter.ModificationRequest
	err         error
}

func (f *fakePlanner) RequestGeneration(ctx context.Context, req adapter.GenerationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.generations = append(f.generations, req)
	return nil
}

func (f *fakePlanner) RequestModification(ctx context.Context, req adapter.ModificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.mods = append(f.mods, req)
	return nil
}

// fakeTxManager runs the function with a nil tx; the in-memory repos ignore
// the handle anyway.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}
