package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/rag/embedding"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Embedder talks to any OpenAI-compatible /embeddings endpoint.
type Embedder struct {
	client     openai.Client
	model      string
	dimensions int32
	logger     *logger_i.Logger
}

func New(model string, apiKey string, baseURL string, dimensions int32, httpClient *http.Client) (*Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("openai embedding: empty api key")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Embedder{
		client:     openai.NewClient(opts...),
		model:      model,
		dimensions: dimensions,
		logger:     logger_i.NewLogger("openai_embedding"),
	}, nil
}

func (e *Embedder) Model() string {
	return e.model
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return embedding.InBatches(ctx, texts, config.EmbeddingBatchSize, e.doCall)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	res, err := e.doCall(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (e *Embedder) doCall(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.model),
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		e.logger.Error("Error getting Embeddings", "error", err, "model", e.model)
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embedding: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("openai embedding: index %d out of range", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vectors[d.Index] = v
	}
	return vectors, nil
}
