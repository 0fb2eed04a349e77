package chromemDB

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/akolanti/PdfQA/internal/adapter/utils"
	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB"
	"github.com/philippgille/chromem-go"
)

var errPrecomputedOnly = errors.New("chromem store only accepts precomputed embeddings")

// Store keeps one request's vectors in an in-process chromem collection.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewStore satisfies vectorDB.StoreFactory.
func NewStore(_ context.Context) (vectorDB.Store, error) {
	db := chromem.NewDB()
	c, err := db.CreateCollection("request-"+utils.GetNewUUID(), nil, refuseEmbedding)
	if err != nil {
		return nil, fmt.Errorf("chromem collection: %w", err)
	}
	return &Store{db: db, collection: c}, nil
}

func refuseEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errPrecomputedOnly
}

// Add inserts documents one at a time; chromem's AddDocuments would fan out
// across goroutines.
func (s *Store) Add(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	for i, c := range chunks {
		doc := chromem.Document{
			ID:        strconv.Itoa(c.Index),
			Content:   c.Text,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"index": strconv.Itoa(c.Index),
				"start": strconv.Itoa(c.Start),
				"end":   strconv.Itoa(c.End),
			},
		}
		if err := s.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("chromem add chunk %d: %w", c.Index, err)
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, n int) ([]commonModels.ScoredChunk, error) {
	n = min(n, s.collection.Count())
	if n <= 0 {
		return nil, nil
	}
	results, err := s.collection.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]commonModels.ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk, err := toChunk(r)
		if err != nil {
			return nil, err
		}
		out = append(out, commonModels.ScoredChunk{Chunk: chunk, Score: r.Similarity})
	}
	return out, nil
}

func (s *Store) Count() int {
	return s.collection.Count()
}

func (s *Store) Close(_ context.Context) error {
	return s.db.DeleteCollection(s.collection.Name)
}

func toChunk(r chromem.Result) (commonModels.Chunk, error) {
	var c commonModels.Chunk
	var err error
	if c.Index, err = strconv.Atoi(r.Metadata["index"]); err != nil {
		return c, fmt.Errorf("chromem result %s: bad index: %w", r.ID, err)
	}
	if c.Start, err = strconv.Atoi(r.Metadata["start"]); err != nil {
		return c, fmt.Errorf("chromem result %s: bad start: %w", r.ID, err)
	}
	if c.End, err = strconv.Atoi(r.Metadata["end"]); err != nil {
		return c, fmt.Errorf("chromem result %s: bad end: %w", r.ID, err)
	}
	c.Text = r.Content
	return c, nil
}
