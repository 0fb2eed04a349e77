package ragErrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"plain sentinel", ErrEmptyIndex, KindEmptyIndex},
		{"wrapped cause", Wrap(ErrModelCallFailed, errors.New("401 unauthorized")), KindModelCallFailed},
		{"retrieval over empty index", Wrap(ErrRetrievalEmpty, ErrEmptyIndex), KindRetrievalEmpty},
		{"deadline on embedding", External(ErrEmbeddingUnavailable, context.DeadlineExceeded), KindTimeout},
		{"cancel is not a timeout", External(ErrEmbeddingUnavailable, context.Canceled), KindEmbeddingUnavailable},
		{"bare deadline", fmt.Errorf("step: %w", context.DeadlineExceeded), KindTimeout},
		{"unknown", errors.New("boom"), KindInternal},
		{"formatted", Wrapf(ErrInvalidParameters, "overlap %d >= chunk size %d", 5, 5), KindInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(ErrExtractionEmpty); got != "No extractable text found in the uploaded PDF(s)." {
		t.Errorf("unexpected message %q", got)
	}
	if got := UserMessage(ErrMissingCredential); got != "API Key is missing." {
		t.Errorf("unexpected message %q", got)
	}
	err := Wrapf(ErrInvalidParameters, "question is empty")
	if got := UserMessage(err); got != "question is empty" {
		t.Errorf("parameter errors should keep their detail, got %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("nil error should have no message, got %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindInvalidParameters:    http.StatusBadRequest,
		KindExtractionEmpty:      http.StatusUnprocessableEntity,
		KindRetrievalEmpty:       http.StatusUnprocessableEntity,
		KindEmbeddingUnavailable: http.StatusBadGateway,
		KindModelCallFailed:      http.StatusBadGateway,
		KindTimeout:              http.StatusGatewayTimeout,
		KindMissingCredential:    http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", kind, got, want)
		}
	}
}
