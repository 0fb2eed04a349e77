package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/PdfQA/internal/api"
	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
)

func ToInitJobResponse(job jobModel.Job) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        job.Id,
		Status:    string(job.Status),
		StatusURL: fmt.Sprintf("status/%s", job.Id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Kind:    job.Error.Kind,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.JobResponse{
		Id:          job.Id,
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		FailedStep:  string(job.FailedStep),
		Result:      ToAnswerResult(job.JobPayload),
		Error:       errorPtr,
		StartTime:   job.CreatedTime,
		EndTime:     job.EndTime,
	}
}

func ToAnswerResult(payload jobModel.JobPayload) *api.AnswerResult {
	if payload.Answer == "" {
		return nil
	}
	return &api.AnswerResult{
		Question:   payload.Question,
		Answer:     payload.Answer,
		AnswerHTML: RenderMarkdown(payload.Answer),
		Context:    toContextChunks(payload.Context),
	}
}

func toContextChunks(chunks []commonModels.ScoredChunk) []api.ContextChunk {
	out := make([]api.ContextChunk, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, api.ContextChunk{
			Index: c.Chunk.Index,
			Start: c.Chunk.Start,
			End:   c.Chunk.End,
			Text:  c.Chunk.Text,
			Score: c.Score,
		})
	}
	return out
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		Status:    string(api.JobStatusError),
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
