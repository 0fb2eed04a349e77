package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

// InMemoryJobStore keeps job records for as long as the Redis store would:
// a record older than ttl reads as missing and is swept on the next save.
type InMemoryJobStore struct {
	jobMutex sync.RWMutex
	records  map[string]jobRecord
	ttl      time.Duration
	now      func() time.Time
	logger   *logger_i.Logger
}

type jobRecord struct {
	job     jobModel.Job
	savedAt time.Time
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return NewInMemoryJobStore(config.RedisJobStoreTTL, time.Now)
}

func NewInMemoryJobStore(ttl time.Duration, now func() time.Time) *InMemoryJobStore {
	if ttl <= 0 {
		ttl = config.RedisJobStoreTTL
	}
	return &InMemoryJobStore{
		records: make(map[string]jobRecord),
		ttl:     ttl,
		now:     now,
		logger:  logger_i.NewLogger("InMem JobStore"),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	now := store.now()
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	for id, r := range store.records {
		if now.Sub(r.savedAt) > store.ttl {
			delete(store.records, id)
		}
	}
	store.records[job.Id] = jobRecord{job: job, savedAt: now}
	store.logger.Debug("Saved job to store", "jobId", job.Id, "step", job.CurrentStep, "traceId", traceOf(ctx))
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	r, found := store.records[jobId]
	if found && store.now().Sub(r.savedAt) > store.ttl {
		found = false
	}
	store.logger.Debug("Job lookup", "jobId", jobId, "found", found, "traceId", traceOf(ctx))
	if !found {
		return jobModel.Job{}, false
	}
	return r.job, true
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.records, jobID)
}

func (store *InMemoryJobStore) Len() int {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	return len(store.records)
}
