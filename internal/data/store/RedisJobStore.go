package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/data/redisStore"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

type RedisJobStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewRedisJobStore(store *redisStore.Store, ttl time.Duration) *RedisJobStore {
	if ttl <= 0 {
		ttl = config.RedisJobStoreTTL
	}
	return &RedisJobStore{
		store:  store,
		ttl:    ttl,
		logger: logger_i.NewLogger("JobStore"),
	}
}

// NewJobStore picks Redis when it is enabled and reachable. Otherwise it
// falls back to memory if allowed, or returns nil.
func NewJobStore(ctx context.Context, settings config.RedisSettings) jobModel.JobStore {
	logger := logger_i.NewLogger("JobStore")
	if settings.Enabled {
		if rs := redisStore.GetRedisStore(ctx, settings, config.RedisJobStore); rs != nil {
			return NewRedisJobStore(rs, settings.TTL)
		}
		if !settings.FallbackToMemory {
			logger.Error("Redis job store is offline and fallback is disabled")
			return nil
		}
		logger.Warn("Redis job store is offline, using the in-memory store")
	}
	return NewInMemoryJobStore(settings.TTL, time.Now)
}

func traceOf(ctx context.Context) string {
	id, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return id
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.With("traceId", traceOf(ctx), "job Id", job.Id)
	log.Debug("saving job")
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, job.Id, data, s.ttl)
	if err == nil {
		log.Debug("Saved job to Redis")
	}
	return err
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	log := s.logger.With("traceId", traceOf(ctx), "job Id", jobId)
	val, err := s.store.Get(ctx, jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		log.Error("Error reading job from Redis", "error", err)
		return job, false
	}

	if err = json.Unmarshal([]byte(val), &job); err != nil {
		log.Error("Stored job is not valid JSON", "error", err)
		return job, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	err := s.store.Del(ctx, jobID)
	if err != nil {
		s.logger.Error("Error deleting job from Redis", "jobId", jobID, "error", err)
		return
	}
	s.logger.Debug("Job deleted from Redis", "jobId", jobID)
}
