package rag

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/rag/embedding"
	"github.com/akolanti/PdfQA/internal/rag/ingest"
	"github.com/akolanti/PdfQA/internal/rag/llm"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract the worker, the CLI and the MCP tool call.
  - It keeps callers decoupled from the extractor, the embedder, the store
    and the language model behind it.

2. service (Private Struct):
  - Holds the collaborators, all built once at startup from Settings.
  - Nothing per request lives here: each call builds its own chunks, store
    and index and throws them away before returning.

3. Dependency Injection (NewService):
  - Swapping real backends for mocks in tests needs no change to callers.
*/

// Service runs one question-answering request end to end.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
}

type Dependencies struct {
	Extractor ingest.Extractor
	Embedder  embedding.Embedder
	NewStore  vectorDB.StoreFactory
	LLM       llm.Provider
}

type Options struct {
	ChunkSize         int
	Overlap           int
	TopK              int
	EmbeddingTimeout  time.Duration
	GenerationTimeout time.Duration
	// CredentialRequired is set when the configured model needs an API key;
	// Credential is checked against it before any file is touched. The
	// embedding pair works the same way for remote embedding backends.
	CredentialRequired          bool
	Credential                  string
	EmbeddingCredentialRequired bool
	EmbeddingCredential         string
}

// CheckCredentials reports ErrMissingCredential when a configured backend
// needs a key that is absent.
func (o Options) CheckCredentials() error {
	if o.CredentialRequired && strings.TrimSpace(o.Credential) == "" {
		return ragErrors.Wrapf(ragErrors.ErrMissingCredential, "language model")
	}
	if o.EmbeddingCredentialRequired && strings.TrimSpace(o.EmbeddingCredential) == "" {
		return ragErrors.Wrapf(ragErrors.ErrMissingCredential, "embedding model")
	}
	return nil
}

// OptionsFromSettings lifts the pipeline knobs out of the loaded configuration.
func OptionsFromSettings(s *config.Settings) Options {
	return Options{
		ChunkSize:          s.Chunking.ChunkSize,
		Overlap:            s.Chunking.Overlap,
		TopK:               s.Retrieval.TopK,
		EmbeddingTimeout:   s.Embedding.Timeout,
		GenerationTimeout:  s.LLM.Timeout,
		CredentialRequired: s.LLMNeedsCredential(),
		Credential:         s.Credentials.LLMAPIKey,

		EmbeddingCredentialRequired: s.EmbeddingNeedsCredential(),
		EmbeddingCredential:         s.Credentials.EmbeddingAPIKey,
	}
}

type service struct {
	deps      Dependencies
	opts      Options
	responder *Responder
	logger    *logger_i.Logger
}

func NewService(deps Dependencies, opts Options) Service {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = config.DefaultChunkSize
		opts.Overlap = config.DefaultOverlap
	}
	if opts.TopK <= 0 {
		opts.TopK = config.DefaultTopK
	}
	return &service{
		deps:      deps,
		opts:      opts,
		responder: NewResponder(deps.LLM, opts.TopK, opts.EmbeddingTimeout, opts.GenerationTimeout),
		logger:    logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	log := s.logger.With("traceId", traceID(ctx, jobt), "JobId", jobt.Id)

	// temp files go on every exit path, including the early ones
	defer ingest.RemoveFiles(jobt.JobPayload.Files, log)

	jobt.CurrentStep = jobModel.Idle
	if err := s.opts.CheckCredentials(); err != nil {
		return s.jobError(jobt, log, err)
	}
	if len(jobt.JobPayload.Files) == 0 {
		return s.jobError(jobt, log, ragErrors.Wrapf(ragErrors.ErrInvalidParameters, "Please upload at least one PDF file"))
	}
	if strings.TrimSpace(jobt.JobPayload.Question) == "" {
		return s.jobError(jobt, log, ragErrors.Wrapf(ragErrors.ErrInvalidParameters, "Please enter a valid question."))
	}

	text, err := s.executeExtractionStep(ctx, log, &jobt)
	if err != nil {
		return s.jobError(jobt, log, err)
	}

	chunks, err := s.executeChunkingStep(log, &jobt, text)
	if err != nil {
		return s.jobError(jobt, log, err)
	}

	store, err := s.deps.NewStore(ctx)
	if err != nil {
		return s.jobError(jobt, log, err)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			log.Warn("Failed to close request store", "error", err)
		}
	}()

	index, err := s.executeIndexStep(ctx, log, &jobt, store, chunks)
	if err != nil {
		return s.jobError(jobt, log, err)
	}

	matches, err := s.executeRetrievalStep(ctx, log, &jobt, index)
	if err != nil {
		return s.jobError(jobt, log, err)
	}
	jobt.JobPayload.Context = matches

	answer, err := s.executeGenerationStep(ctx, log, &jobt, matches)
	if err != nil {
		return s.jobError(jobt, log, err)
	}

	return returnOutput(jobt, answer)
}
