package vectorDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag/embedding"
	"github.com/akolanti/docqa/pkg/logger_i"
)

const (
	repairWarning = "vector index was corrupt and has been reset; previously ingested documents must be re-uploaded"
	pendingRepair = "vector index needs a manual repair"
)

type StoreOptions struct {
	// MarkerDir holds the repair marker file. It must survive a Reset of the backend.
	MarkerDir  string
	AutoRepair bool
	BatchSize  int
}

// Store embeds chunks and queries through a DataProcessor backend. A StoreUnavailable error from
// the backend triggers a delete-and-reinitialise of the index (unless AutoRepair is off); the
// operation that hit it still fails, with Recovered set.
//
// With AutoRepair off the store stays open but refuses Add, Search and Count until Repair runs.
type Store struct {
	backend    DataProcessor
	embedder   embedding.Embedder
	markerPath string
	autoRepair bool
	batchSize  int
	logger     *logger_i.Logger

	mu             sync.Mutex
	needsRepair    bool
	repairedOnOpen bool
}

// NewStore wires backend and embedder together. A repair marker left by an earlier run, or an
// unhealthy backend, is repaired here when AutoRepair is on. Otherwise the store is returned in
// the needs-repair state so a shell can still reach Repair.
func NewStore(ctx context.Context, backend DataProcessor, embedder embedding.Embedder, opts StoreOptions) (*Store, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.EmbeddingBatchSize
	}
	s := &Store{
		backend:    backend,
		embedder:   embedder,
		markerPath: filepath.Join(opts.MarkerDir, config.RepairFlagName),
		autoRepair: opts.AutoRepair,
		batchSize:  opts.BatchSize,
		logger:     logger_i.NewLogger("vector_store"),
	}

	if _, err := os.Stat(s.markerPath); err == nil {
		if !s.autoRepair {
			s.needsRepair = true
			s.logger.Error("Repair marker present and automatic repair disabled, the vector index refuses requests until it is repaired",
				"marker", s.markerPath)
			return s, nil
		}
		s.logger.Warn("Repair marker found, rebuilding vector index", "marker", s.markerPath)
		if err := s.repair(ctx, "startup"); err != nil {
			return nil, err
		}
		s.repairedOnOpen = true
		return s, nil
	}

	if _, err := backend.Count(ctx); err != nil {
		healed := s.handleUnavailable(ctx, err)
		switch {
		case ragErrors.WasRecovered(healed):
			s.repairedOnOpen = true
		case s.needsRepair:
		default:
			return nil, healed
		}
	}
	return s, nil
}

// RepairedOnOpen reports whether NewStore rebuilt the index. Anything that describes its old
// content is stale.
func (s *Store) RepairedOnOpen() bool {
	return s.repairedOnOpen
}

func (s *Store) NeedsRepair() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsRepair
}

func (s *Store) pending(op string) error {
	if !s.needsRepair {
		return nil
	}
	return ragErrors.StoreUnavailable(op, nil, pendingRepair)
}

// Add embeds chunks in batches and stores them. Adding the same chunks twice stores them twice.
func (s *Store) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	const op = "vectorDB.Add"
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pending(op); err != nil {
		return err
	}

	log := s.logger.WithTrace(ctx)
	for i := 0; i < len(chunks); i += s.batchSize {
		currentBatch := chunks[i:min(i+s.batchSize, len(chunks))]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		log.Debug("Starting embedding call", "current batch length", len(currentBatch))
		start := time.Now()
		vectors, err := s.embedder.BatchEmbedding(ctx, texts)
		metrics.CaptureExecutionMetrics("embedding", time.Since(start))
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != len(currentBatch) {
			return ragErrors.Generation(op, nil, fmt.Sprintf("embedder returned %d vectors for %d chunks", len(vectors), len(currentBatch)))
		}

		start = time.Now()
		err = s.backend.Upsert(ctx, currentBatch, vectors)
		metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start))
		if err != nil {
			return s.handleUnavailable(ctx, err)
		}
	}
	return nil
}

// Search embeds query and returns the topK nearest chunks, best first.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]commonModels.SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pending("vectorDB.Search"); err != nil {
		return nil, err
	}

	start := time.Now()
	vector, err := s.embedder.GetEmbedding(ctx, query)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	start = time.Now()
	hits, err := s.backend.Search(ctx, vector, topK)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		return nil, s.handleUnavailable(ctx, err)
	}
	return hits, nil
}

// Count reports the number of stored records. It never repairs: health checks call it.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pending("vectorDB.Count"); err != nil {
		return 0, err
	}
	return s.backend.Count(ctx)
}

// Repair deletes and reinitialises the index on demand.
func (s *Store) Repair(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repair(ctx, "manual")
}

// Clear drops every record. Unlike Repair it is an ordinary request, not a recovery.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Reset(ctx); err != nil {
		return ragErrors.StoreUnavailable("vectorDB.Clear", err, "vector index reset failed")
	}
	if err := os.Remove(s.markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("Could not remove repair marker", "marker", s.markerPath, "error", err)
	}
	s.needsRepair = false
	s.logger.WithTrace(ctx).Info("Vector index cleared")
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

// handleUnavailable passes non-store errors through. For StoreUnavailable it rebuilds the index
// when allowed and returns the original failure marked as recovered.
func (s *Store) handleUnavailable(ctx context.Context, cause error) error {
	var storeErr *ragErrors.Error
	if !errors.As(cause, &storeErr) || storeErr.Kind != ragErrors.KindStoreUnavailable {
		return cause
	}

	log := s.logger.WithTrace(ctx)
	if !s.autoRepair {
		s.writeMarker()
		s.needsRepair = true
		log.Error("Vector index unavailable, automatic repair disabled", "error", cause)
		return cause
	}

	log.Error("Vector index unavailable, rebuilding", "error", cause)
	if err := s.repair(ctx, "auto"); err != nil {
		return err
	}
	return &ragErrors.Error{
		Kind:      ragErrors.KindStoreUnavailable,
		Op:        storeErr.Op,
		Message:   repairWarning,
		Err:       cause,
		Recovered: true,
	}
}

func (s *Store) repair(ctx context.Context, trigger string) error {
	const op = "vectorDB.repair"
	log := s.logger.WithTrace(ctx)

	s.writeMarker()
	if err := s.backend.Reset(ctx); err != nil {
		log.Error("Vector index reset failed, marker left in place", "error", err)
		return ragErrors.StoreUnavailable(op, err, "vector index reset failed")
	}
	if err := os.Remove(s.markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error("Could not remove repair marker", "marker", s.markerPath, "error", err)
	}
	s.needsRepair = false

	metrics.CaptureStoreRepair(trigger)
	log.Warn(repairWarning, "trigger", trigger)
	return nil
}

func (s *Store) writeMarker() {
	if err := os.MkdirAll(filepath.Dir(s.markerPath), 0o755); err != nil {
		s.logger.Error("Could not create marker directory", "error", err)
		return
	}
	if err := os.WriteFile(s.markerPath, []byte(time.Now().UTC().Format(time.RFC3339)), 0o644); err != nil {
		s.logger.Error("Could not write repair marker", "marker", s.markerPath, "error", err)
	}
}
