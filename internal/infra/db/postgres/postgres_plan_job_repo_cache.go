package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/metrics"
	red "travel-ai-planner/internal/infra/redis"
)

var _ repository.PlanJobRepository = (*planJobRepoCacheDecorator)(nil)

// planJobRepoCacheDecorator caches FindByID lookups. Clients poll job status
// until it turns terminal, so even a short TTL absorbs most of that read
// load. Transition invalidates the entry after the row has changed; deleting
// first would let a concurrent read re-cache the old row for a full TTL.
type planJobRepoCacheDecorator struct {
	inner repository.PlanJobRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanJobRepoCacheDecorator(inner repository.PlanJobRepository, cache red.RedisClient) repository.PlanJobRepository {
	return &planJobRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   30 * time.Second,
	}
}

func jobCacheKey(id string) string { return fmt.Sprintf("plan_job:%s", id) }

func (d *planJobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PlanJob, error) {
	// Transactional reads bypass the cache: they want the row as the
	// transaction sees it.
	if tx == nil {
		val, err := d.cache.Get(ctx, jobCacheKey(id))
		if err == nil {
			metrics.IncCacheRequest("plan_job", "hit")
			var job model.PlanJob
			if json.Unmarshal([]byte(val), &job) == nil {
				return &job, nil
			}
		} else if err != redis.Nil {
			// Redis trouble: fall through to the database.
		}
		metrics.IncCacheRequest("plan_job", "miss")
	}

	job, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		if b, err := json.Marshal(job); err == nil {
			_ = d.cache.Set(ctx, jobCacheKey(id), b, d.ttl)
		}
	}
	return job, nil
}

func (d *planJobRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, job *model.PlanJob) error {
	_ = d.cache.Del(ctx, jobCacheKey(job.ID))
	return d.inner.Create(ctx, tx, job)
}

func (d *planJobRepoCacheDecorator) Transition(ctx context.Context, tx repository.Tx, id string, from, to model.PlanJobStatus, f repository.TransitionFields) (*model.PlanJob, error) {
	job, err := d.inner.Transition(ctx, tx, id, from, to, f)
	if err != nil {
		// Lost CAS or missing row: nothing changed, the cached row is still
		// accurate.
		return nil, err
	}
	_ = d.cache.Del(ctx, jobCacheKey(id))
	return job, nil
}

func (d *planJobRepoCacheDecorator) ListPending(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PlanJob, error) {
	return d.inner.ListPending(ctx, tx, olderThan, limit)
}

func (d *planJobRepoCacheDecorator) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PlanJobStatus]int, error) {
	return d.inner.CountByStatus(ctx, tx)
}

func (d *planJobRepoCacheDecorator) CountByType(ctx context.Context, tx repository.Tx) (map[model.PlanJobType]int, error) {
	return d.inner.CountByType(ctx, tx)
}

func (d *planJobRepoCacheDecorator) CountStaleProcessing(ctx context.Context, tx repository.Tx, startedBefore time.Time) (int, error) {
	return d.inner.CountStaleProcessing(ctx, tx, startedBefore)
}
