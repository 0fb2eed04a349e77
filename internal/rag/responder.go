package rag

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/rag/llm"
)

// Retriever is the read side of an index, borrowed by the Responder for one
// question.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error)
}

// Responder answers a question from the chunks an index returns for it.
// It holds no per-request state and makes exactly one model call per answer.
type Responder struct {
	provider          llm.Provider
	topK              int
	queryTimeout      time.Duration
	generationTimeout time.Duration
}

func NewResponder(provider llm.Provider, topK int, queryTimeout, generationTimeout time.Duration) *Responder {
	return &Responder{
		provider:          provider,
		topK:              topK,
		queryTimeout:      queryTimeout,
		generationTimeout: generationTimeout,
	}
}

// Retrieve returns the top chunks for question. An index with nothing in it
// and a query with no hits both surface as ErrRetrievalEmpty so the model is
// never called with empty context.
func (r *Responder) Retrieve(ctx context.Context, ix Retriever, question string) ([]commonModels.ScoredChunk, error) {
	queryCtx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	chunks, err := ix.Query(queryCtx, question, r.topK)
	if err != nil {
		if errors.Is(err, ragErrors.ErrEmptyIndex) {
			return nil, ragErrors.Wrap(ragErrors.ErrRetrievalEmpty, err)
		}
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ragErrors.ErrRetrievalEmpty
	}
	return chunks, nil
}

// Generate makes the single model call. The response is returned verbatim.
func (r *Responder) Generate(ctx context.Context, question string, chunks []commonModels.ScoredChunk) (string, error) {
	if len(chunks) == 0 {
		return "", ragErrors.ErrRetrievalEmpty
	}
	prompt := llm.BuildPrompt(question, chunks)

	genCtx, cancel := withTimeout(ctx, r.generationTimeout)
	defer cancel()

	answer, err := r.provider.Generate(genCtx, prompt)
	if err != nil {
		return "", ragErrors.External(ragErrors.ErrModelCallFailed, err)
	}
	return answer, nil
}

func (r *Responder) Answer(ctx context.Context, ix Retriever, question string) (string, []commonModels.ScoredChunk, error) {
	chunks, err := r.Retrieve(ctx, ix, question)
	if err != nil {
		return "", nil, err
	}
	answer, err := r.Generate(ctx, question, chunks)
	if err != nil {
		return "", chunks, err
	}
	return answer, chunks, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
