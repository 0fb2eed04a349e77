// Package hashEmbedding is an offline embedder: each token is hashed into a
// bucket of a fixed-size vector and the counts are L2-normalised. It needs no
// network and no model files, which makes it the zero-setup default and the
// embedder used throughout the tests.
package hashEmbedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// biasWeight fills the last slot so that text without any tokens still has a
// non-zero vector.
const biasWeight = 0.05

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {}, "did": {}, "do": {},
	"does": {}, "for": {}, "from": {}, "how": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "who": {}, "why": {}, "with": {},
}

type Embedder struct {
	dimension int
}

func New(dimension int) (*Embedder, error) {
	if dimension < 2 {
		return nil, fmt.Errorf("hashing embedder: dimension %d too small", dimension)
	}
	return &Embedder{dimension: dimension}, nil
}

func (e *Embedder) Model() string {
	return fmt.Sprintf("hashing-%d", e.dimension)
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors = append(vectors, e.embed(t))
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

func (e *Embedder) embed(text string) []float32 {
	v := make([]float64, e.dimension)
	buckets := uint32(e.dimension - 1)
	for _, token := range Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		v[h.Sum32()%buckets]++
	}
	v[e.dimension-1] = biasWeight

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dimension)
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

// Tokenize lowercases text, splits on anything that is not a letter or a
// digit and drops stop words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; !stop {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
