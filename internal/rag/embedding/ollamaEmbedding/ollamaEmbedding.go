package ollamaEmbedding

import (
	"context"
	"fmt"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Embedder runs embeddings on a local Ollama server; no credential needed.
type Embedder struct {
	inner *embeddings.EmbedderImpl
	model string
}

func New(serverURL string, model string) (*Embedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}
	inner, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(config.EmbeddingBatchSize))
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: %w", err)
	}
	logger_i.NewLogger("ollama_embedding").Info("Ollama embedder created", "model", model, "url", serverURL)
	return &Embedder{inner: inner, model: model}, nil
}

func (e *Embedder) Model() string {
	return e.model
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return e.inner.EmbedDocuments(ctx, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.inner.EmbedQuery(ctx, text)
}
