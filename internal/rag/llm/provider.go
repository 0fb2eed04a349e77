package llm

import "context"

// Provider sends one fully built prompt to a language model and returns its
// text verbatim. Implementations make exactly one attempt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}
