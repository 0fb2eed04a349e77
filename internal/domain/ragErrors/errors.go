package ragErrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind names one failure class of a question-answering request.
type Kind string

const (
	KindNone                 Kind = ""
	KindInvalidParameters    Kind = "INVALID_PARAMETERS"
	KindExtractionEmpty      Kind = "EXTRACTION_EMPTY"
	KindExtractionFailed     Kind = "EXTRACTION_FAILED"
	KindEmbeddingUnavailable Kind = "EMBEDDING_UNAVAILABLE"
	KindEmptyIndex           Kind = "EMPTY_INDEX"
	KindRetrievalEmpty       Kind = "RETRIEVAL_EMPTY"
	KindModelCallFailed      Kind = "MODEL_CALL_FAILED"
	KindTimeout              Kind = "TIMEOUT"
	KindMissingCredential    Kind = "MISSING_CREDENTIAL"
	KindInternal             Kind = "INTERNAL"
)

var (
	ErrInvalidParameters    = errors.New("invalid parameters")
	ErrExtractionEmpty      = errors.New("no extractable text found in the uploaded PDF(s)")
	ErrExtractionFailed     = errors.New("document extraction failed")
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")
	ErrEmptyIndex           = errors.New("index holds no chunks")
	ErrRetrievalEmpty       = errors.New("no relevant content retrieved")
	ErrModelCallFailed      = errors.New("language model call failed")
	ErrTimeout              = errors.New("external call timed out")
	ErrMissingCredential    = errors.New("API key is missing")
)

// order matters: the first match wins
var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrMissingCredential, KindMissingCredential},
	{ErrTimeout, KindTimeout},
	{ErrInvalidParameters, KindInvalidParameters},
	{ErrExtractionEmpty, KindExtractionEmpty},
	{ErrExtractionFailed, KindExtractionFailed},
	{ErrRetrievalEmpty, KindRetrievalEmpty},
	{ErrEmptyIndex, KindEmptyIndex},
	{ErrEmbeddingUnavailable, KindEmbeddingUnavailable},
	{ErrModelCallFailed, KindModelCallFailed},
}

var userMessages = map[Kind]string{
	KindInvalidParameters:    "The request parameters are invalid.",
	KindExtractionEmpty:      "No extractable text found in the uploaded PDF(s).",
	KindExtractionFailed:     "One of the uploaded documents could not be read.",
	KindEmbeddingUnavailable: "The embedding service is unavailable. Please try again later.",
	KindEmptyIndex:           "The uploaded documents did not produce any searchable content.",
	KindRetrievalEmpty:       "The uploaded documents do not contain enough content to answer the question.",
	KindModelCallFailed:      "The language model could not generate an answer. Please try again.",
	KindTimeout:              "An external service took too long to respond. Please try again.",
	KindMissingCredential:    "API Key is missing.",
	KindInternal:             "Internal Server Error",
}

// Wrap tags cause with the sentinel of a failure class.
func Wrap(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Wrapf tags a formatted message with the sentinel of a failure class.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// External classifies the failure of a call to an outside service. A deadline
// is reported as a timeout regardless of which service missed it.
func External(sentinel error, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return Wrap(ErrTimeout, cause)
	}
	return Wrap(sentinel, cause)
}

func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

// UserMessage is the one line shown to whoever submitted the request.
// Parameter errors keep their detail since it names what to fix.
func UserMessage(err error) string {
	kind := KindOf(err)
	if kind == KindNone {
		return ""
	}
	if kind == KindInvalidParameters {
		return strings.TrimPrefix(err.Error(), ErrInvalidParameters.Error()+": ")
	}
	return userMessages[kind]
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNone:
		return http.StatusOK
	case KindInvalidParameters:
		return http.StatusBadRequest
	case KindExtractionEmpty, KindExtractionFailed, KindEmptyIndex, KindRetrievalEmpty:
		return http.StatusUnprocessableEntity
	case KindEmbeddingUnavailable, KindModelCallFailed:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
