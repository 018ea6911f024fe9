package web

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/config"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	red "travel-ai-planner/internal/infra/redis"
	"travel-ai-planner/internal/usecase"
)

// --- Use case fakes ---

type fakeSurveyUC struct {
	CreateFunc func(ctx context.Context, ownerID string, s *model.TravelSurvey) (*model.TravelSurvey, error)
	GetFunc    func(ctx context.Context, ownerID, id string) (*model.TravelSurvey, error)
	ListFunc   func(ctx context.Context, ownerID string, offset, limit int) ([]*model.TravelSurvey, error)
	DeleteFunc func(ctx context.Context, ownerID, id string) error
}

func (f *fakeSurveyUC) Create(ctx context.Context, ownerID string, s *model.TravelSurvey) (*model.TravelSurvey, error) {
	return f.CreateFunc(ctx, ownerID, s)
}
func (f *fakeSurveyUC) Get(ctx context.Context, ownerID, id string) (*model.TravelSurvey, error) {
	return f.GetFunc(ctx, ownerID, id)
}
func (f *fakeSurveyUC) List(ctx context.Context, ownerID string, offset, limit int) ([]*model.TravelSurvey, error) {
	return f.ListFunc(ctx, ownerID, offset, limit)
}
func (f *fakeSurveyUC) Delete(ctx context.Context, ownerID, id string) error {
	return f.DeleteFunc(ctx, ownerID, id)
}

type fakeJobUC struct {
	RequestGenerationFunc   func(ctx context.Context, ownerID, surveyID string) (*model.PlanJob, error)
	RequestModificationFunc func(ctx context.Context, ownerID, itineraryID, userQuery string) (*model.PlanJob, error)
	DispatchFunc            func(ctx context.Context, jobID string) (*model.PlanJob, error)
	RetryFunc               func(ctx context.Context, ownerID, jobID string) (*model.PlanJob, error)
	GetFunc                 func(ctx context.Context, ownerID, jobID string) (*model.PlanJob, error)
}

func (f *fakeJobUC) RequestGeneration(ctx context.Context, ownerID, surveyID string) (*model.PlanJob, error) {
	return f.RequestGenerationFunc(ctx, ownerID, surveyID)
}
func (f *fakeJobUC) RequestModification(ctx context.Context, ownerID, itineraryID, userQuery string) (*model.PlanJob, error) {
	return f.RequestModificationFunc(ctx, ownerID, itineraryID, userQuery)
}
func (f *fakeJobUC) Dispatch(ctx context.Context, jobID string) (*model.PlanJob, error) {
	return f.DispatchFunc(ctx, jobID)
}
func (f *fakeJobUC) Retry(ctx context.Context, ownerID, jobID string) (*model.PlanJob, error) {
	return f.RetryFunc(ctx, ownerID, jobID)
}
func (f *fakeJobUC) Get(ctx context.Context, ownerID, jobID string) (*model.PlanJob, error) {
	return f.GetFunc(ctx, ownerID, jobID)
}

type fakeItinUC struct {
	GetFunc  func(ctx context.Context, ownerID, id string) (*model.Itinerary, error)
	ListFunc func(ctx context.Context, ownerID string, offset, limit int) ([]*model.Itinerary, error)
}

func (f *fakeItinUC) Get(ctx context.Context, ownerID, id string) (*model.Itinerary, error) {
	return f.GetFunc(ctx, ownerID, id)
}
func (f *fakeItinUC) List(ctx context.Context, ownerID string, offset, limit int) ([]*model.Itinerary, error) {
	return f.ListFunc(ctx, ownerID, offset, limit)
}

type fakeCallbackUC struct {
	IngestFunc func(ctx context.Context, jobID string, payload adapter.CallbackPayload) error
}

func (f *fakeCallbackUC) Ingest(ctx context.Context, jobID string, payload adapter.CallbackPayload) error {
	return f.IngestFunc(ctx, jobID, payload)
}

type fakeStatsUC struct {
	TotalsFunc func(ctx context.Context) (*usecase.JobStats, error)
}

func (f *fakeStatsUC) Totals(ctx context.Context) (*usecase.JobStats, error) {
	return f.TotalsFunc(ctx)
}

// --- Infra fakes ---

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []string
}

func (f *fakeScheduler) Schedule(jobID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, jobID)
}

type fakeLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
	UnlockFunc  func(ctx context.Context, key, token string) error
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.TryLockFunc != nil {
		return f.TryLockFunc(ctx, key, ttl)
	}
	return "token", nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	if f.UnlockFunc != nil {
		return f.UnlockFunc(ctx, key, token)
	}
	return nil
}

// fakeRedis backs the rate limiter with an in-memory counter.
type fakeRedis struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRedis() *fakeRedis { return &fakeRedis{counts: make(map[string]int64)} }

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }
func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	return nil
}
func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	return true, nil
}
func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}
func (f *fakeRedis) Expire(ctx context.Context, key string, _ time.Duration) error { return nil }
func (f *fakeRedis) Del(ctx context.Context, keys ...string) error                 { return nil }
func (f *fakeRedis) Close() error                                                  { return nil }

// --- Server under test ---

type serverFixture struct {
	surveys *fakeSurveyUC
	jobs    *fakeJobUC
	itins   *fakeItinUC
	cb      *fakeCallbackUC
	stats   *fakeStatsUC
	sched   *fakeScheduler
	locker  *fakeLocker
	srv     *Server
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		surveys: &fakeSurveyUC{},
		jobs:    &fakeJobUC{},
		itins:   &fakeItinUC{},
		cb:      &fakeCallbackUC{},
		stats:   &fakeStatsUC{},
		sched:   &fakeScheduler{},
		locker:  &fakeLocker{},
	}
	cfg := &config.Config{}
	cfg.Admin.APIKey = "admin-key"
	cfg.Admin.JWTSecret = "test-secret"
	cfg.Admin.SessionTTL = 30 * time.Minute
	cfg.Planner.CallbackSecret = "cb-secret"
	cfg.RateLimit.PlanRequests = 100
	cfg.RateLimit.Window = time.Minute

	nop := zerolog.Nop()
	auth := NewAuthManager(cfg.Admin.JWTSecret, false, "", cfg.Admin.SessionTTL)
	f.srv = NewServer(f.surveys, f.jobs, f.itins, f.cb, f.stats, f.sched, f.locker,
		red.NewRateLimiter(newFakeRedis()), auth, cfg, &nop)
	return f
}
