package vectorDB

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/rag/embedding"
)

// Index is the per-request embedding index. It owns its Store until Close.
//
// Build and Query use the same Embedder, which is what keeps chunk and
// question vectors comparable; callers must not swap the model in between.
type Index struct {
	embedder  embedding.Embedder
	store     Store
	dimension int
	size      int
}

// Build embeds every chunk and inserts the vectors into store. Building from
// zero chunks is allowed and yields an index that refuses queries.
func Build(ctx context.Context, em embedding.Embedder, store Store, chunks []commonModels.Chunk) (*Index, error) {
	ix := &Index{embedder: em, store: store}
	if len(chunks) == 0 {
		return ix, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := em.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, ragErrors.External(ragErrors.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return nil, ragErrors.Wrapf(ragErrors.ErrEmbeddingUnavailable,
			"model %s returned %d vectors for %d chunks", em.Model(), len(vectors), len(chunks))
	}
	dimension := len(vectors[0])
	for i, v := range vectors {
		if err := checkVector(v, dimension); err != nil {
			return nil, ragErrors.Wrapf(ragErrors.ErrEmbeddingUnavailable, "chunk %d: %v", i, err)
		}
	}

	if err := store.Add(ctx, chunks, vectors); err != nil {
		return nil, storeError(ctx, "index insert", err)
	}
	ix.dimension = dimension
	ix.size = len(chunks)
	return ix, nil
}

// Query returns the k chunks most similar to text, best first. Equal scores
// keep the original chunk order. k <= 0 means the default; k larger than the
// index is clamped.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error) {
	if ix == nil || ix.size == 0 {
		return nil, ragErrors.ErrEmptyIndex
	}
	if k <= 0 {
		k = config.DefaultTopK
	}
	k = min(k, ix.size)

	q, err := ix.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, ragErrors.External(ragErrors.ErrEmbeddingUnavailable, err)
	}
	if err := checkVector(q, ix.dimension); err != nil {
		return nil, ragErrors.Wrapf(ragErrors.ErrEmbeddingUnavailable, "question: %v", err)
	}

	// Ask for every chunk so that ties at the cut-off are settled here and not
	// by the store.
	results, err := ix.store.Search(ctx, q, ix.size)
	if err != nil {
		return nil, storeError(ctx, "index search", err)
	}
	Rank(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.size
}

func (ix *Index) Model() string {
	return ix.embedder.Model()
}

// Close releases the underlying store.
func (ix *Index) Close(ctx context.Context) error {
	if ix == nil || ix.store == nil {
		return nil
	}
	return ix.store.Close(ctx)
}

// Rank orders results by descending score, then ascending chunk index.
func Rank(results []commonModels.ScoredChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})
}

// storeError classifies a failed store call. The store is part of the index,
// so an unreachable store counts as the index backend being unavailable; a
// spent deadline is a timeout whatever the store reported.
func storeError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ragErrors.Wrap(ragErrors.ErrTimeout, fmt.Errorf("%s: %w", op, err))
	}
	return ragErrors.External(ragErrors.ErrEmbeddingUnavailable, fmt.Errorf("%s: %w", op, err))
}

func checkVector(v []float32, dimension int) error {
	if len(v) == 0 {
		return fmt.Errorf("empty vector")
	}
	if len(v) != dimension {
		return fmt.Errorf("vector has %d dimensions, want %d", len(v), dimension)
	}
	var norm float64
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("vector holds a non-finite value")
		}
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return fmt.Errorf("zero vector")
	}
	return nil
}
