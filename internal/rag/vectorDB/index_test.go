package vectorDB_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/rag/chunker"
	"github.com/akolanti/PdfQA/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB/chromemDB"
)

type stubEmbedder struct {
	onDocuments func(ctx context.Context, texts []string) ([][]float32, error)
	onQuery     func(ctx context.Context, text string) ([]float32, error)
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return s.onDocuments(ctx, texts)
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.onQuery(ctx, text)
}

func (s *stubEmbedder) Model() string { return "stub" }

// constant embeds everything onto the same direction so that every score ties.
func constant() *stubEmbedder {
	return &stubEmbedder{
		onDocuments: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i := range out {
				out[i] = []float32{1, 0, 0}
			}
			return out, nil
		},
		onQuery: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
	}
}

func newStore(t *testing.T) vectorDB.Store {
	t.Helper()
	store, err := chromemDB.NewStore(context.Background())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func chunksOf(texts ...string) []commonModels.Chunk {
	chunks := make([]commonModels.Chunk, len(texts))
	offset := 0
	for i, text := range texts {
		chunks[i] = commonModels.Chunk{Index: i, Start: offset, End: offset + len(text), Text: text}
		offset += len(text)
	}
	return chunks
}

func TestQuery_EmptyIndex(t *testing.T) {
	calls := 0
	em := constant()
	em.onQuery = func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return []float32{1, 0, 0}, nil
	}

	ix, err := vectorDB.Build(context.Background(), em, newStore(t), nil)
	if err != nil {
		t.Fatalf("Build on zero chunks should succeed, got %v", err)
	}

	results, err := ix.Query(context.Background(), "anything", 3)
	if !errors.Is(err, ragErrors.ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
	if results != nil {
		t.Errorf("expected no results, got %v", results)
	}
	if calls != 0 {
		t.Errorf("empty index should not embed the question, embedder called %d times", calls)
	}
}

func TestQuery_ClampsK(t *testing.T) {
	ix, err := vectorDB.Build(context.Background(), constant(), newStore(t), chunksOf("one", "two"))
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []int{2, 3, 50} {
		results, err := ix.Query(context.Background(), "q", k)
		if err != nil {
			t.Fatalf("Query(k=%d) failed: %v", k, err)
		}
		if len(results) != 2 {
			t.Errorf("Query(k=%d) returned %d results, want 2", k, len(results))
		}
	}

	results, _ := ix.Query(context.Background(), "q", 1)
	if len(results) != 1 {
		t.Errorf("Query(k=1) returned %d results", len(results))
	}
}

func TestQuery_DefaultK(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}
	ix, err := vectorDB.Build(context.Background(), constant(), newStore(t), chunksOf(texts...))
	if err != nil {
		t.Fatal(err)
	}
	results, err := ix.Query(context.Background(), "q", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Errorf("default k returned %d results, want 4", len(results))
	}
}

func TestQuery_TiesKeepChunkOrder(t *testing.T) {
	chunks := chunksOf("a", "b", "c", "d", "e", "f", "g", "h")
	ix, err := vectorDB.Build(context.Background(), constant(), newStore(t), chunks)
	if err != nil {
		t.Fatal(err)
	}

	for run := 0; run < 5; run++ {
		results, err := ix.Query(context.Background(), "q", 5)
		if err != nil {
			t.Fatal(err)
		}
		for i, r := range results {
			if r.Chunk.Index != i {
				t.Fatalf("run %d: position %d holds chunk %d, want %d", run, i, r.Chunk.Index, i)
			}
		}
	}
}

func TestRank(t *testing.T) {
	results := []commonModels.ScoredChunk{
		{Chunk: commonModels.Chunk{Index: 3}, Score: 0.5},
		{Chunk: commonModels.Chunk{Index: 1}, Score: 0.9},
		{Chunk: commonModels.Chunk{Index: 0}, Score: 0.5},
		{Chunk: commonModels.Chunk{Index: 2}, Score: 0.9},
	}
	vectorDB.Rank(results)
	want := []int{1, 2, 0, 3}
	for i, r := range results {
		if r.Chunk.Index != want[i] {
			t.Errorf("position %d = chunk %d, want %d", i, r.Chunk.Index, want[i])
		}
	}
}

func TestBuild_EmbeddingFailures(t *testing.T) {
	tests := []struct {
		name     string
		docs     func(ctx context.Context, texts []string) ([][]float32, error)
		wantKind ragErrors.Kind
	}{
		{
			name: "backend unreachable",
			docs: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
			wantKind: ragErrors.KindEmbeddingUnavailable,
		},
		{
			name: "backend too slow",
			docs: func(ctx context.Context, texts []string) ([][]float32, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
			wantKind: ragErrors.KindTimeout,
		},
		{
			name: "vector count mismatch",
			docs: func(ctx context.Context, texts []string) ([][]float32, error) {
				return [][]float32{{1, 0}}, nil
			},
			wantKind: ragErrors.KindEmbeddingUnavailable,
		},
		{
			name: "mixed dimensions",
			docs: func(ctx context.Context, texts []string) ([][]float32, error) {
				return [][]float32{{1, 0}, {1, 0, 0}}, nil
			},
			wantKind: ragErrors.KindEmbeddingUnavailable,
		},
		{
			name: "zero vector",
			docs: func(ctx context.Context, texts []string) ([][]float32, error) {
				return [][]float32{{1, 0}, {0, 0}}, nil
			},
			wantKind: ragErrors.KindEmbeddingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			em := constant()
			em.onDocuments = tt.docs
			ix, err := vectorDB.Build(ctx, em, newStore(t), chunksOf("first", "second"))
			if err == nil {
				t.Fatal("expected Build to fail")
			}
			if ix != nil {
				t.Error("a failed Build must not return an index")
			}
			if got := ragErrors.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %s, want %s (err %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestQuery_QuestionEmbeddingFails(t *testing.T) {
	em := constant()
	ix, err := vectorDB.Build(context.Background(), em, newStore(t), chunksOf("only"))
	if err != nil {
		t.Fatal(err)
	}

	em.onQuery = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("503 service unavailable")
	}
	if _, err := ix.Query(context.Background(), "q", 1); !errors.Is(err, ragErrors.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable, got %v", err)
	}

	em.onQuery = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	if _, err := ix.Query(context.Background(), "q", 1); !errors.Is(err, ragErrors.ErrEmbeddingUnavailable) {
		t.Errorf("dimension mismatch should be ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestQuery_RanksRelevantChunkFirst(t *testing.T) {
	em, _ := hashEmbedding.New(1024)
	text := strings.Repeat("Our office dog enjoys long walks through the park on sunny afternoons. ", 8) +
		"The total revenue was $5 million in 2023. " +
		strings.Repeat("Parking permits are issued by facilities every spring for staff cars. ", 8)

	chunks, err := chunker.Split(text, 120, 20)
	if err != nil {
		t.Fatal(err)
	}
	ix, err := vectorDB.Build(context.Background(), em, newStore(t), chunks)
	if err != nil {
		t.Fatal(err)
	}

	results, err := ix.Query(context.Background(), "What was the total revenue in 2023?", 3)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(results[0].Chunk.Text, "$5 million") {
		t.Errorf("top result %q does not hold the revenue sentence", results[0].Chunk.Text)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score at %d", i)
		}
	}
}

func TestIndex_IndependentBuilds(t *testing.T) {
	em, _ := hashEmbedding.New(256)
	chunks := chunksOf("The total revenue was $5 million in 2023.", "Unrelated text about gardening.")

	first, err := vectorDB.Build(context.Background(), em, newStore(t), chunks)
	if err != nil {
		t.Fatal(err)
	}
	second, err := vectorDB.Build(context.Background(), em, newStore(t), chunks)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := first.Query(context.Background(), "total revenue 2023", 2)
	if err := first.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, err := second.Query(context.Background(), "total revenue 2023", 2)
	if err != nil {
		t.Fatalf("closing one index affected another: %v", err)
	}
	if second.Len() != 2 || len(a) != len(b) || a[0].Chunk.Index != b[0].Chunk.Index {
		t.Errorf("independent indexes disagree: %v vs %v", a, b)
	}
}

// failingStore wraps a real store and lets a test replace Add or Search.
type failingStore struct {
	vectorDB.Store
	onAdd    func(ctx context.Context) error
	onSearch func(ctx context.Context) error
}

func (s *failingStore) Add(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error {
	if s.onAdd != nil {
		return s.onAdd(ctx)
	}
	return s.Store.Add(ctx, chunks, vectors)
}

func (s *failingStore) Search(ctx context.Context, vector []float32, n int) ([]commonModels.ScoredChunk, error) {
	if s.onSearch != nil {
		return nil, s.onSearch(ctx)
	}
	return s.Store.Search(ctx, vector, n)
}

func TestIndex_StoreFailures(t *testing.T) {
	waitForDeadline := func(ctx context.Context) error {
		<-ctx.Done()
		return errors.New("rpc error: code = Unavailable desc = i/o timeout")
	}
	refused := func(ctx context.Context) error {
		return errors.New("dial tcp 127.0.0.1:6334: connection refused")
	}

	tests := []struct {
		name     string
		store    func(t *testing.T) *failingStore
		wantKind ragErrors.Kind
	}{
		{"insert unreachable", func(t *testing.T) *failingStore {
			return &failingStore{Store: newStore(t), onAdd: refused}
		}, ragErrors.KindEmbeddingUnavailable},
		{"insert past deadline", func(t *testing.T) *failingStore {
			return &failingStore{Store: newStore(t), onAdd: waitForDeadline}
		}, ragErrors.KindTimeout},
		{"search unreachable", func(t *testing.T) *failingStore {
			return &failingStore{Store: newStore(t), onSearch: refused}
		}, ragErrors.KindEmbeddingUnavailable},
		{"search past deadline", func(t *testing.T) *failingStore {
			return &failingStore{Store: newStore(t), onSearch: waitForDeadline}
		}, ragErrors.KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			store := tt.store(t)
			ix, err := vectorDB.Build(ctx, constant(), store, chunksOf("first", "second"))
			if err == nil {
				_, err = ix.Query(ctx, "q", 1)
			}
			if err == nil {
				t.Fatal("expected the store failure to surface")
			}
			if got := ragErrors.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %s, want %s (err %v)", got, tt.wantKind, err)
			}
		})
	}
}
