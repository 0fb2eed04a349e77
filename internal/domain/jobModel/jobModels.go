package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
)

type JobStatus string

// InternalStatus is the pipeline state a job is in.
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	Idle           InternalStatus = "Idle"
	ExtractingText InternalStatus = "ExtractingText"
	Chunking       InternalStatus = "Chunking"
	IndexBuilding  InternalStatus = "IndexBuilding"
	Retrieving     InternalStatus = "Retrieving"
	Generating     InternalStatus = "Generating"
	Done           InternalStatus = "Done"
	Failed         InternalStatus = "Failed"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
	// FailedStep is the state the pipeline was in when it failed.
	FailedStep InternalStatus `json:"failed_step,omitempty"`
}

type JobError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question string                     `json:"question,omitempty"`
	Files    []commonModels.SourceFile  `json:"files,omitempty"`
	Answer   string                     `json:"answer,omitempty"`
	Context  []commonModels.ScoredChunk `json:"context,omitempty"`
}

// NewJob returns a queued job in the Idle state.
func NewJob(id, traceId, question string, files []commonModels.SourceFile) Job {
	return Job{
		Id:          id,
		TraceId:     traceId,
		CreatedTime: time.Now(),
		Status:      JobStatusQueued,
		CurrentStep: Idle,
		JobPayload: JobPayload{
			Question: question,
			Files:    files,
		},
	}
}

func (j Job) IsTerminal() bool {
	return j.CurrentStep == Done || j.CurrentStep == Failed
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
