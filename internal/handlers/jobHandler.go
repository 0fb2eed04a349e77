package handlers

import (
	"context"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/job"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	logJH           = logger_i.NewLogger("JobHandler")
	logRH           = logger_i.NewLogger("RequestHandler")
)

type JobHandler struct {
	service   *job.Service
	uploadDir string
	maxUpload int64
	// preconditions run before an upload touches the disk
	preconditions []func() error
}

// InitJobHandler wires the handlers to the job service. Calling it again
// replaces the previous wiring. Each precondition that fails rejects a
// request before its files are written.
func InitJobHandler(jobService *job.Service, settings config.ServerSettings, preconditions ...func() error) {
	uploadDir := settings.UploadDir
	if uploadDir == "" {
		uploadDir = config.TempUploadDir
	}
	maxUpload := settings.MaxUpload
	if maxUpload <= 0 {
		maxUpload = config.MaxUploadSize
	}
	handlerInstance = &JobHandler{
		service:       jobService,
		uploadDir:     uploadDir,
		maxUpload:     maxUpload,
		preconditions: preconditions,
	}

	logJH = logger_i.NewLogger("JobHandler")
	logRH = logger_i.NewLogger("RequestHandler")
	logJH.Info("Starting job handler", "uploadDir", uploadDir)
}

// CreateNewJob queues the job for the worker pool. It reports false when the
// queue is full.
func CreateNewJob(ctx context.Context, newJob jobModel.Job) (bool, error) {
	log := logJH.With("traceId", newJob.TraceId, "job id", newJob.Id)
	accepted, err := handlerInstance.service.Enqueue(ctx, newJob)
	if err != nil {
		log.Error("Could not store new job", "error", err)
		return false, err
	}
	if !accepted {
		log.Warn("Job queue is full")
		return false, nil
	}
	log.Info("Created new job", "files", len(newJob.JobPayload.Files))
	return true, nil
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func checkPreconditions() error {
	for _, check := range handlerInstance.preconditions {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
