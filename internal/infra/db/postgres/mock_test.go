//go:build !integration

package postgres

import (
	"context"
	"time"

	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
	red "travel-ai-planner/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerJobRepo mocks the database repository that the plan job decorator wraps.
type mockInnerJobRepo struct {
	CreateFunc               func(ctx context.Context, tx repository.Tx, job *model.PlanJob) error
	FindByIDFunc             func(ctx context.Context, tx repository.Tx, id string) (*model.PlanJob, error)
	TransitionFunc           func(ctx context.Context, tx repository.Tx, id string, from, to model.PlanJobStatus, f repository.TransitionFields) (*model.PlanJob, error)
	ListPendingFunc          func(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PlanJob, error)
	CountByStatusFunc        func(ctx context.Context, tx repository.Tx) (map[model.PlanJobStatus]int, error)
	CountByTypeFunc          func(ctx context.Context, tx repository.Tx) (map[model.PlanJobType]int, error)
	CountStaleProcessingFunc func(ctx context.Context, tx repository.Tx, startedBefore time.Time) (int, error)
}

func (m *mockInnerJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.PlanJob) error {
	return m.CreateFunc(ctx, tx, job)
}
func (m *mockInnerJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PlanJob, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerJobRepo) Transition(ctx context.Context, tx repository.Tx, id string, from, to model.PlanJobStatus, f repository.TransitionFields) (*model.PlanJob, error) {
	return m.TransitionFunc(ctx, tx, id, from, to, f)
}
func (m *mockInnerJobRepo) ListPending(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PlanJob, error) {
	return m.ListPendingFunc(ctx, tx, olderThan, limit)
}
func (m *mockInnerJobRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PlanJobStatus]int, error) {
	return m.CountByStatusFunc(ctx, tx)
}
func (m *mockInnerJobRepo) CountByType(ctx context.Context, tx repository.Tx) (map[model.PlanJobType]int, error) {
	return m.CountByTypeFunc(ctx, tx)
}
func (m *mockInnerJobRepo) CountStaleProcessing(ctx context.Context, tx repository.Tx, startedBefore time.Time) (int, error) {
	return m.CountStaleProcessingFunc(ctx, tx, startedBefore)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNXFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return m.SetNXFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
