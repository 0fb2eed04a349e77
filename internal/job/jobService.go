package job

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/metrics"
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	// RequestsPerNewWorker queued jobs make the dispatcher consider one more worker.
	RequestsPerNewWorker int64
}

type ServiceConfig struct {
	JobChannel           chan jobModel.Job
	RequestCount         int64
	DispatcherChannel    chan bool
	JobStore             jobModel.JobStore
	RequestsPerNewWorker int64
}

func InitJobService(cfg ServiceConfig) *Service {
	if cfg.RequestsPerNewWorker <= 0 {
		cfg.RequestsPerNewWorker = config.RequestsPerNewWorkerCount
	}
	return &Service{
		JobChannel:           cfg.JobChannel,
		RequestCount:         cfg.RequestCount,
		DispatcherChannel:    cfg.DispatcherChannel,
		JobStore:             cfg.JobStore,
		RequestsPerNewWorker: cfg.RequestsPerNewWorker,
	}
}

// Enqueue records the job and hands it to the worker pool without blocking.
// It reports false when the queue is full; the job is then not stored.
func (s *Service) Enqueue(ctx context.Context, job jobModel.Job) (bool, error) {
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		return false, err
	}
	select {
	case s.JobChannel <- job:
	default:
		s.JobStore.DeleteJob(ctx, job.Id)
		return false, nil
	}
	metrics.IncrementJobsInQueue()

	if atomic.AddInt64(&s.RequestCount, 1)%s.RequestsPerNewWorker == 0 {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
	return true, nil
}
