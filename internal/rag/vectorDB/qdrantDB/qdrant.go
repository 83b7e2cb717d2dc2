package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Options struct {
	Host       string
	Port       int
	UseTLS     bool
	Collection string
	Dimension  uint64
}

type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
	dimension  uint64
	logger     *logger_i.Logger
}

// Open connects to qdrant and creates the collection if the server does not have it yet.
func Open(ctx context.Context, opts Options) (*ClientHolder, error) {
	logger := logger_i.NewLogger("Qdrant").With("collection", opts.Collection)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:          opts.Host,
		Port:          opts.Port,
		UseTLS:        opts.UseTLS,
		PoolSize:      uint(config.QdrantPoolSize),
		KeepAliveTime: int(config.QdrantKeepAliveTime.Seconds()),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	db := &ClientHolder{QObj: client, collection: opts.Collection, dimension: opts.Dimension, logger: logger}
	if err := db.createCollection(ctx); err != nil {
		logger.Error("could not create collection: ", "error:", err)
		_ = client.Close()
		return nil, fmt.Errorf("qdrant collection %s: %w", opts.Collection, err)
	}
	return db, nil
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, topK int) ([]commonModels.SearchHit, error) {
	loggr := db.logger.WithTrace(ctx)
	if topK <= 0 {
		return nil, nil
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, storeError("qdrantDB.Search", err)
	}

	hits := make([]commonModels.SearchHit, 0, len(result))
	for _, point := range result {
		hits = append(hits, commonModels.SearchHit{Chunk: fromPayload(point.Payload), Score: point.Score})
	}
	loggr.Debug("Found matches", "count", len(hits))
	return hits, nil
}

func (db *ClientHolder) Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: toPayload(chunk),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return storeError("qdrantDB.Upsert", err)
	}
	return nil
}

func (db *ClientHolder) Count(ctx context.Context) (int, error) {
	n, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: db.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, storeError("qdrantDB.Count", err)
	}
	return int(n), nil
}

// Reset drops the collection and creates it again empty.
func (db *ClientHolder) Reset(ctx context.Context) error {
	err := db.QObj.DeleteCollection(ctx, db.collection)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("qdrant delete collection: %w", err)
	}
	return db.createCollection(ctx)
}

func (db *ClientHolder) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

func (db *ClientHolder) createCollection(ctx context.Context) error {
	if db.collection == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, db.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func toPayload(chunk commonModels.DocChunk) map[string]*qdrant.Value {
	return qdrant.NewValueMap(map[string]any{
		"content":       chunk.Chunk,
		"page_num":      chunk.PageNum,
		"source_doc_id": chunk.DocId,
		"chunk_order":   chunk.ChunkOrder,
		"chunk_id":      chunk.ChunkId,
		"start_offset":  chunk.StartOffset,
		"end_offset":    chunk.EndOffset,
		"ingested_at":   chunk.IngestedAt.Unix(),
	})
}

func fromPayload(payload map[string]*qdrant.Value) commonModels.DocChunk {
	return commonModels.DocChunk{
		ChunkId:     payload["chunk_id"].GetStringValue(),
		DocId:       payload["source_doc_id"].GetStringValue(),
		Chunk:       payload["content"].GetStringValue(),
		PageNum:     int(payload["page_num"].GetIntegerValue()),
		ChunkOrder:  int(payload["chunk_order"].GetIntegerValue()),
		StartOffset: int(payload["start_offset"].GetIntegerValue()),
		EndOffset:   int(payload["end_offset"].GetIntegerValue()),
		IngestedAt:  time.Unix(payload["ingested_at"].GetIntegerValue(), 0),
	}
}

// a missing collection is the qdrant form of a lost bootstrap record
func storeError(op string, err error) error {
	if isNotFound(err) {
		return ragErrors.StoreUnavailable(op, err, "qdrant collection is missing")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool {
	s, ok := status.FromError(err)
	return ok && s.Code() == codes.NotFound
}
