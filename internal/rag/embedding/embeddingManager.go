package embedding

import (
	"context"
	"fmt"
)

// Embedder turns text into fixed-dimension vectors. Chunks and the question
// of one request must go through the same Embedder, since vectors from
// different models are not comparable.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// InBatches calls embed over consecutive slices of at most size texts and
// concatenates the results in input order.
func InBatches(ctx context.Context, texts []string, size int, embed func(ctx context.Context, batch []string) ([][]float32, error)) ([][]float32, error) {
	if size <= 0 {
		size = len(texts)
	}
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += size {
		end := min(i+size, len(texts))
		batch, err := embed(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-i {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(batch), end-i)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
