package rag

import (
	"context"
	"time"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/metrics"
	"github.com/akolanti/PdfQA/internal/rag/chunker"
	"github.com/akolanti/PdfQA/internal/rag/ingest"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Done
	job.Status = jobModel.JobStatusComplete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func traceID(ctx context.Context, job jobModel.Job) string {
	if id, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && id != "" {
		return id
	}
	return job.TraceId
}

func (s *service) jobError(job jobModel.Job, log *logger_i.Logger, err error) jobModel.Job {
	kind := ragErrors.KindOf(err)
	log.Error("Request failed", "step", job.CurrentStep, "kind", kind, "error", err)
	metrics.IncrementRequestFailures(string(kind), string(job.CurrentStep))

	job.FailedStep = job.CurrentStep
	job.CurrentStep = jobModel.Failed
	job.Status = jobModel.JobStatusError
	job.JobPayload.Answer = ""
	job.Error = jobModel.JobError{
		Code:    ragErrors.HTTPStatus(kind),
		Kind:    string(kind),
		Message: ragErrors.UserMessage(err),
		Retry:   false,
	}
	return job
}

func (s *service) executeExtractionStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) (string, error) {
	*job = logOutput(*job, jobModel.ExtractingText, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extract_text", time.Since(start)) }()

	return ingest.ExtractAll(ctx, s.deps.Extractor, job.JobPayload.Files, log)
}

func (s *service) executeChunkingStep(log *logger_i.Logger, job *jobModel.Job, text string) ([]commonModels.Chunk, error) {
	*job = logOutput(*job, jobModel.Chunking, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chunking", time.Since(start)) }()

	chunks, err := chunker.Split(text, s.opts.ChunkSize, s.opts.Overlap)
	if err == nil {
		metrics.CaptureChunkCount(len(chunks))
		log.Debug("Text chunked", "chunks", len(chunks))
	}
	return chunks, err
}

func (s *service) executeIndexStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, store vectorDB.Store, chunks []commonModels.Chunk) (*vectorDB.Index, error) {
	*job = logOutput(*job, jobModel.IndexBuilding, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_build", time.Since(start)) }()

	buildCtx, cancel := withTimeout(ctx, s.opts.EmbeddingTimeout)
	defer cancel()
	return vectorDB.Build(buildCtx, s.deps.Embedder, store, chunks)
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, index Retriever) ([]commonModels.ScoredChunk, error) {
	*job = logOutput(*job, jobModel.Retrieving, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	return s.responder.Retrieve(ctx, index, job.JobPayload.Question)
}

func (s *service) executeGenerationStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, matches []commonModels.ScoredChunk) (string, error) {
	*job = logOutput(*job, jobModel.Generating, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.responder.Generate(ctx, job.JobPayload.Question, matches)
}
