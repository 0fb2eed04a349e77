// Package bootstrap turns loaded Settings into a ready rag.Service. The HTTP
// server, the CLI and the MCP server all start from here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/customHttpClient"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/rag"
	"github.com/akolanti/PdfQA/internal/rag/embedding"
	"github.com/akolanti/PdfQA/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/PdfQA/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/PdfQA/internal/rag/embedding/ollamaEmbedding"
	"github.com/akolanti/PdfQA/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/PdfQA/internal/rag/ingest"
	"github.com/akolanti/PdfQA/internal/rag/llm"
	"github.com/akolanti/PdfQA/internal/rag/llm/gemini"
	"github.com/akolanti/PdfQA/internal/rag/llm/ollamaLLM"
	"github.com/akolanti/PdfQA/internal/rag/llm/openaiLLM"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB/chromemDB"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

var log = logger_i.NewLogger("bootstrap")

// NewService builds every collaborator named in settings. cleanup releases
// shared connections and is safe to call when err is nil.
func NewService(ctx context.Context, settings *config.Settings) (rag.Service, func(), error) {
	embedder, err := NewEmbedder(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	provider, err := NewProvider(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	factory, closeStore, err := NewStoreFactory(settings.VectorStore)
	if err != nil {
		return nil, nil, err
	}

	service := rag.NewService(rag.Dependencies{
		Extractor: ingest.NewFileExtractor(),
		Embedder:  embedder,
		NewStore:  factory,
		LLM:       provider,
	}, rag.OptionsFromSettings(settings))

	log.Info("Pipeline ready",
		"embedding", settings.Embedding.Provider, "embeddingModel", embedder.Model(),
		"llm", settings.LLM.Provider, "model", provider.Model(),
		"vectorStore", settings.VectorStore.Backend)
	return service, closeStore, nil
}

func NewEmbedder(ctx context.Context, settings *config.Settings) (embedding.Embedder, error) {
	s := settings.Embedding
	key := settings.Credentials.EmbeddingAPIKey
	if settings.EmbeddingNeedsCredential() && key == "" {
		log.Warn("Embedding API key is missing, requests will fail", "env", s.APIKeyEnv)
		return missingCredential{model: s.Model}, nil
	}

	switch s.Provider {
	case config.EmbeddingProviderHashing:
		return hashEmbedding.New(int(s.Dimensions))
	case config.EmbeddingProviderGoogle:
		return googleEmbedding.New(ctx, s.Model, key, s.Dimensions, customHttpClient.New(s.Timeout))
	case config.EmbeddingProviderOpenAI:
		return openaiEmbedding.New(s.Model, key, s.BaseURL, s.Dimensions, customHttpClient.New(s.Timeout))
	case config.EmbeddingProviderOllama:
		return ollamaEmbedding.New(s.BaseURL, s.Model)
	}
	return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
}

func NewProvider(ctx context.Context, settings *config.Settings) (llm.Provider, error) {
	s := settings.LLM
	key := settings.Credentials.LLMAPIKey
	if settings.LLMNeedsCredential() && key == "" {
		// the pipeline rejects every request before reaching the model
		log.Warn("LLM API key is missing, requests will fail", "env", s.APIKeyEnv)
		return missingCredential{model: s.Model}, nil
	}

	switch s.Provider {
	case config.LLMProviderGroq, config.LLMProviderOpenAI:
		return openaiLLM.NewClient(s, key, customHttpClient.New(s.Timeout))
	case config.LLMProviderGemini:
		return gemini.NewClient(ctx, s, key, customHttpClient.New(s.Timeout))
	case config.LLMProviderOllama:
		return ollamaLLM.NewClient(s)
	}
	return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
}

// NewStoreFactory returns how each request opens its own vector store, and
// the cleanup for whatever connection the factories share.
func NewStoreFactory(settings config.VectorSettings) (vectorDB.StoreFactory, func(), error) {
	switch settings.Backend {
	case config.VectorBackendMemory:
		return chromemDB.NewStore, func() {}, nil
	case config.VectorBackendQdrant:
		holder, err := qdrantDB.NewClient(settings.Qdrant)
		if err != nil {
			return nil, nil, err
		}
		return holder.StoreFactory(), func() {
			if err := holder.Close(); err != nil {
				log.Error("Could not close qdrant", "error", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown vector store backend %q", settings.Backend)
}

// missingCredential stands in for a remote backend configured without its
// key, so the process still starts and each request reports the problem.
type missingCredential struct {
	model string
}

var errNoKey = ragErrors.Wrap(ragErrors.ErrMissingCredential, errors.New("no API key configured"))

func (m missingCredential) Model() string { return m.model }

func (m missingCredential) Generate(context.Context, string) (string, error) {
	return "", errNoKey
}

func (m missingCredential) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, errNoKey
}

func (m missingCredential) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errNoKey
}
