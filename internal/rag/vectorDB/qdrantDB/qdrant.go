package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/PdfQA/internal/adapter/utils"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/rag/vectorDB"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ClientHolder owns the shared gRPC connection. Each request gets its own
// throwaway collection on it, so nothing is shared between requests but the
// connection.
type ClientHolder struct {
	QObj   *qdrant.Client
	logger *logger_i.Logger
}

func NewClient(settings config.QdrantSettings) (*ClientHolder, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.Host,
		Port:     settings.Port,
		APIKey:   settings.APIKey,
		UseTLS:   settings.UseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}
	logger := logger_i.NewLogger("Qdrant")
	logger.Info("Qdrant client created", "host", settings.Host, "port", settings.Port)
	return &ClientHolder{QObj: client, logger: logger}, nil
}

func (db *ClientHolder) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

// StoreFactory opens a new ephemeral collection per call.
func (db *ClientHolder) StoreFactory() vectorDB.StoreFactory {
	return func(ctx context.Context) (vectorDB.Store, error) {
		return &Store{
			client:         db.QObj,
			collectionName: config.QdrantCollectionPrefix + utils.GetNewUUID(),
			logger:         db.logger,
		}, nil
	}
}

// Store is one request's collection. The collection is created by the first
// Add, once the vector size is known, and dropped by Close.
type Store struct {
	client         *qdrant.Client
	collectionName string
	created        bool
	count          int
	logger         *logger_i.Logger
}

func (s *Store) Add(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	if !s.created {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(len(vectors[0])),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return describe(ctx, "create collection", err)
		}
		s.created = true
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(c.Index)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"index": c.Index,
				"start": c.Start,
				"end":   c.End,
				"text":  c.Text,
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return describe(ctx, "upsert", err)
	}
	s.count += len(chunks)
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, n int) ([]commonModels.ScoredChunk, error) {
	n = min(n, s.count)
	if n <= 0 {
		return nil, nil
	}
	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(n)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, describe(ctx, "query", err)
	}

	matches := make([]commonModels.ScoredChunk, 0, len(result))
	for _, hit := range result {
		matches = append(matches, commonModels.ScoredChunk{
			Chunk: commonModels.Chunk{
				Index: int(hit.Payload["index"].GetIntegerValue()),
				Start: int(hit.Payload["start"].GetIntegerValue()),
				End:   int(hit.Payload["end"].GetIntegerValue()),
				Text:  hit.Payload["text"].GetStringValue(),
			},
			Score: hit.Score,
		})
	}
	return matches, nil
}

func (s *Store) Count() int {
	return s.count
}

// Close drops the collection. It runs on request teardown, so it gets its own
// short deadline instead of the possibly expired request context.
func (s *Store) Close(ctx context.Context) error {
	if !s.created {
		return nil
	}
	dropCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.QdrantConnectionTimeout)
	defer cancel()
	if err := s.client.DeleteCollection(dropCtx, s.collectionName); err != nil {
		s.logger.Error("could not drop request collection", "collection", s.collectionName, "error", err)
		return describe(dropCtx, "drop collection", err)
	}
	s.created = false
	return nil
}

// describe maps gRPC failures onto the error kinds. A deadline, from the
// server or from ctx, is a timeout; anything else means the vector backend
// did not serve the call.
func describe(ctx context.Context, op string, err error) error {
	st, _ := status.FromError(err)
	switch {
	case st.Code() == codes.DeadlineExceeded, errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ragErrors.Wrap(ragErrors.ErrTimeout, fmt.Errorf("qdrant %s: %w", op, err))
	case st.Code() == codes.Unavailable:
		return ragErrors.Wrap(ragErrors.ErrEmbeddingUnavailable, fmt.Errorf("qdrant %s: server unavailable: %w", op, err))
	}
	return ragErrors.Wrap(ragErrors.ErrEmbeddingUnavailable, fmt.Errorf("qdrant %s: %w", op, err))
}
