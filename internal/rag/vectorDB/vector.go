package vectorDB

import (
	"context"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
)

// Store is the similarity-search structure behind one Index. A Store is
// created for a single request, written once by Add and closed when the
// request ends.
type Store interface {
	Add(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error
	// Search returns up to n chunks ranked by cosine similarity, best first.
	Search(ctx context.Context, vector []float32, n int) ([]commonModels.ScoredChunk, error)
	Count() int
	Close(ctx context.Context) error
}

// StoreFactory opens a fresh, empty Store.
type StoreFactory func(ctx context.Context) (Store, error)
