package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/akolanti/PdfQA/internal/config"
	jobmodel "github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/metrics"
	"github.com/akolanti/PdfQA/internal/rag/ingest"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

// saveTimeout bounds the final status write, which runs after the job's own
// deadline may already have passed.
const saveTimeout = 5 * time.Second

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout)
	defer cancel()
	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job")

	job.Status = jobmodel.JobStatusRunning
	saveJobState(ctx, log, job)

	job = _ragService.ProcessRequest(ctx, job)
	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
	}

	saveCtx, cancelSave := context.WithTimeout(ctxTrace, saveTimeout)
	defer cancelSave()
	saveJobState(saveCtx, log, job)
	log.Info("Job finished", "status", job.Status, "step", job.CurrentStep, "elapsed", time.Since(start))
}

func removeWorker(reason string) {
	atomic.AddInt64(&currentWorkerCount, -1)
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, log *logger_i.Logger, job jobmodel.Job) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to update job status", "err", err)
	}
}

// DrainQueue fails every job still waiting in the queue and removes its
// uploads. It is meant to run once the workers have stopped.
func DrainQueue(ctx context.Context) int {
	drained := 0
	for {
		select {
		case job := <-_jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			log := logger.With("traceId", job.TraceId, "jobId", job.Id)
			ingest.RemoveFiles(job.JobPayload.Files, log)

			job.FailedStep = job.CurrentStep
			job.CurrentStep = jobmodel.Failed
			job.Status = jobmodel.JobStatusError
			job.EndTime = time.Now()
			job.Error = jobmodel.JobError{
				Code:    http.StatusServiceUnavailable,
				Kind:    string(ragErrors.KindInternal),
				Message: "The server shut down before the request was processed. Please submit it again.",
			}
			saveJobState(ctx, log, job)
			drained++
		default:
			if drained > 0 {
				logger.Info("Drained queued jobs", "count", drained)
			}
			return drained
		}
	}
}
