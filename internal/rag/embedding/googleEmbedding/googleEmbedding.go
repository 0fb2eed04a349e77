package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/rag/embedding"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

type Embedder struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func New(ctx context.Context, modelName string, apiKey string, dimension int32, httpClient *http.Client) (*Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("google embedding: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("google embedding client: %w", err)
	}
	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", modelName)
	return &Embedder{genAi: c, model: modelName, dimension: dimension, logger: logger}, nil
}

func (e *Embedder) Model() string {
	return e.model
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.InBatches(ctx, texts, config.EmbeddingBatchSize, func(ctx context.Context, batch []string) ([][]float32, error) {
		return e.doCall(ctx, batch, taskDocument)
	})
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	res, err := e.doCall(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (e *Embedder) doCall(ctx context.Context, texts []string, task string) ([][]float32, error) {
	conf := &genai.EmbedContentConfig{TaskType: task}
	if e.dimension > 0 {
		conf.OutputDimensionality = &e.dimension
	}
	result, err := e.genAi.Models.EmbedContent(ctx, e.model, getContent(texts), conf)
	if err != nil {
		e.logger.Error("Error getting Embeddings from Google", "error", err, "task", task)
		return nil, err
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("google embedding: expected %d embeddings", len(texts))
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, r := range result.Embeddings {
		if r == nil || len(r.Values) == 0 {
			return nil, errors.New("google embedding: empty embedding in response")
		}
		vectors = append(vectors, r.Values)
	}
	return vectors, nil
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}
