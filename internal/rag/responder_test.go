package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
)

type fakeRetriever struct {
	onQuery func(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error)
}

func (f *fakeRetriever) Query(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error) {
	return f.onQuery(ctx, text, k)
}

type fakeProvider struct {
	calls      int
	onGenerate func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.onGenerate(ctx, prompt)
}

func (f *fakeProvider) Model() string { return "fake" }

func scored(texts ...string) []commonModels.ScoredChunk {
	out := make([]commonModels.ScoredChunk, len(texts))
	for i, t := range texts {
		out[i] = commonModels.ScoredChunk{Chunk: commonModels.Chunk{Index: i, Text: t}, Score: 1 - float32(i)/10}
	}
	return out
}

func TestResponder_RetrievalEmpty(t *testing.T) {
	tests := []struct {
		name    string
		onQuery func(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error)
	}{
		{
			name: "empty index",
			onQuery: func(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error) {
				return nil, ragErrors.ErrEmptyIndex
			},
		},
		{
			name: "no hits",
			onQuery: func(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error) {
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{onGenerate: func(ctx context.Context, prompt string) (string, error) {
				return "should not be called", nil
			}}
			r := NewResponder(provider, 4, time.Second, time.Second)

			_, _, err := r.Answer(context.Background(), &fakeRetriever{onQuery: tt.onQuery}, "question?")
			if ragErrors.KindOf(err) != ragErrors.KindRetrievalEmpty {
				t.Errorf("kind = %s, want %s", ragErrors.KindOf(err), ragErrors.KindRetrievalEmpty)
			}
			if provider.calls != 0 {
				t.Errorf("model called %d times with no context", provider.calls)
			}
		})
	}
}

func TestResponder_PassesTopKAndContextOrder(t *testing.T) {
	var gotK int
	retriever := &fakeRetriever{onQuery: func(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error) {
		gotK = k
		return scored("best chunk", "second chunk"), nil
	}}
	var prompt string
	provider := &fakeProvider{onGenerate: func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "  the answer, verbatim \n", nil
	}}

	answer, chunks, err := NewResponder(provider, 3, time.Second, time.Second).Answer(context.Background(), retriever, "question?")
	if err != nil {
		t.Fatal(err)
	}
	if gotK != 3 {
		t.Errorf("query k = %d, want 3", gotK)
	}
	if answer != "  the answer, verbatim \n" {
		t.Errorf("answer was altered: %q", answer)
	}
	if len(chunks) != 2 {
		t.Errorf("got %d chunks", len(chunks))
	}
	if strings.Index(prompt, "best chunk") > strings.Index(prompt, "second chunk") {
		t.Error("context is not in retrieved order")
	}
}

func TestResponder_ModelFailures(t *testing.T) {
	retriever := &fakeRetriever{onQuery: func(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error) {
		return scored("context"), nil
	}}

	tests := []struct {
		name     string
		generate func(ctx context.Context, prompt string) (string, error)
		wantKind ragErrors.Kind
	}{
		{
			name: "rate limited",
			generate: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("429 rate limit exceeded")
			},
			wantKind: ragErrors.KindModelCallFailed,
		},
		{
			name: "deadline",
			generate: func(ctx context.Context, prompt string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
			wantKind: ragErrors.KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{onGenerate: tt.generate}
			r := NewResponder(provider, 4, time.Second, 20*time.Millisecond)

			_, _, err := r.Answer(context.Background(), retriever, "question?")
			if got := ragErrors.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %s, want %s (err %v)", got, tt.wantKind, err)
			}
			if provider.calls != 1 {
				t.Errorf("model called %d times, want exactly one attempt", provider.calls)
			}
		})
	}
}
