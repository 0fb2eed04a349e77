package hashEmbedding

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbed_NormalisedAndDeterministic(t *testing.T) {
	e, err := New(256)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, text := range []string{"", "???", "The total revenue was $5 million in 2023"} {
		v1, _ := e.EmbedQuery(ctx, text)
		v2, _ := e.EmbedQuery(ctx, text)
		if !reflect.DeepEqual(v1, v2) {
			t.Errorf("embedding of %q is not deterministic", text)
		}
		if len(v1) != 256 {
			t.Errorf("dimension = %d, want 256", len(v1))
		}
		if n := math.Sqrt(dot(v1, v1)); math.Abs(n-1) > 1e-5 {
			t.Errorf("norm of %q = %f, want 1", text, n)
		}
	}
}

func TestEmbed_SharedTermsScoreHigher(t *testing.T) {
	e, _ := New(1024)
	ctx := context.Background()

	docs, err := e.EmbedDocuments(ctx, []string{
		"The total revenue was $5 million in 2023.",
		"Our office dog enjoys long walks in the park.",
	})
	if err != nil {
		t.Fatal(err)
	}
	q, _ := e.EmbedQuery(ctx, "What was the total revenue in 2023?")

	if dot(q, docs[0]) <= dot(q, docs[1]) {
		t.Errorf("relevant score %f should exceed unrelated score %f", dot(q, docs[0]), dot(q, docs[1]))
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("What was the Total-Revenue in 2023?")
	want := []string{"total", "revenue", "2023"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestNew_RejectsTinyDimension(t *testing.T) {
	if _, err := New(1); err == nil {
		t.Error("expected an error for dimension 1")
	}
}

func TestEmbed_HonoursCancellation(t *testing.T) {
	e, _ := New(64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.EmbedDocuments(ctx, []string{"a"}); err == nil {
		t.Error("expected cancelled context to fail")
	}
}
