package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/PdfQA/internal/rag/embedding"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB/chromemDB"
)

// MockExtractor implements ingest.Extractor
type MockExtractor struct {
	OnExtract func(ctx context.Context, path string) (string, error)
	Calls     int
}

func (m *MockExtractor) Extract(ctx context.Context, path string) (string, error) {
	m.Calls++
	if m.OnExtract != nil {
		return m.OnExtract(ctx, path)
	}
	return "default document text", nil
}

// MockEmbedder implements embedding.Embedder by delegating to Inner unless
// a hook is set.
type MockEmbedder struct {
	Inner       embedding.Embedder
	OnDocuments func(ctx context.Context, texts []string) ([][]float32, error)
	OnQuery     func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnDocuments != nil {
		return m.OnDocuments(ctx, texts)
	}
	return m.Inner.EmbedDocuments(ctx, texts)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, text)
	}
	return m.Inner.EmbedQuery(ctx, text)
}

func (m *MockEmbedder) Model() string { return "mock-embedder" }

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
	Prompts    []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Model() string { return "mock-llm" }

// trackedStore records whether the pipeline closed it.
type trackedStore struct {
	vectorDB.Store
	closed bool
}

func (s *trackedStore) Close(ctx context.Context) error {
	s.closed = true
	return s.Store.Close(ctx)
}

// StoreRecorder hands out fresh chromem stores and remembers each of them.
type StoreRecorder struct {
	mu     sync.Mutex
	stores []*trackedStore
}

func (r *StoreRecorder) Factory() vectorDB.StoreFactory {
	return func(ctx context.Context) (vectorDB.Store, error) {
		inner, err := chromemDB.NewStore(ctx)
		if err != nil {
			return nil, err
		}
		s := &trackedStore{Store: inner}
		r.mu.Lock()
		r.stores = append(r.stores, s)
		r.mu.Unlock()
		return s, nil
	}
}

func (r *StoreRecorder) Opened() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

func (r *StoreRecorder) AllClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if !s.closed {
			return false
		}
	}
	return true
}

func (r *StoreRecorder) Store(i int) vectorDB.Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stores[i]
}
