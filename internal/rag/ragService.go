package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/data/store"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag/ingest"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/pkg/logger_i"
)

// NoContextAnswer is returned, without calling the language model, when retrieval finds nothing.
const NoContextAnswer = "No relevant information was found in the ingested documents."

var ErrDuplicateDocument = errors.New("document already ingested")

// Service is the only entry point the shells use. Every operation runs to completion before the
// next one starts.
type Service interface {
	Ask(ctx context.Context, question string) (commonModels.Answer, error)

	IngestUpload(ctx context.Context, name string, r io.Reader) (IngestResult, error)
	IngestFile(ctx context.Context, path string) (IngestResult, error)
	// IngestPreloaded ingests documents found in the storage directory that the catalog does not
	// know yet. Failures are logged and skipped.
	IngestPreloaded(ctx context.Context) int

	History() []commonModels.Turn
	ClearHistory()
	Documents() []commonModels.Document
	ClearAllData(ctx context.Context) error
	RepairStore(ctx context.Context) error
	Status(ctx context.Context) Status
	Close() error
}

// VectorStore is the embedding and similarity search layer. vectorDB.Store implements it.
type VectorStore interface {
	Add(ctx context.Context, chunks []commonModels.DocChunk) error
	Search(ctx context.Context, query string, topK int) ([]commonModels.SearchHit, error)
	Count(ctx context.Context) (int, error)
	Repair(ctx context.Context) error
	Clear(ctx context.Context) error
	Close() error
}

type Options struct {
	PDFDir            string
	TopK              int
	MaxHistoryTurns   int
	GenerateSummaries bool
}

type IngestResult struct {
	Document commonModels.Document  `json:"document"`
	Chunks   []commonModels.DocChunk `json:"-"`
}

type State string

const (
	StateIdle      State = "idle"
	StateAnswering State = "answering"
	StateIngesting State = "ingesting"
)

type Status struct {
	State         State  `json:"state"`
	Documents     int    `json:"documents"`
	IndexedChunks int    `json:"indexed_chunks"`
	HistoryTurns  int    `json:"history_turns"`
	IndexError    string `json:"index_error,omitempty"`
}

type service struct {
	vectors     VectorStore
	llmProvider llm.Provider
	chunker     *ingest.Chunker
	memory      *store.ConversationMemory
	catalog     *store.DocumentCatalog
	opts        Options
	logger      *logger_i.Logger

	mu    sync.Mutex
	state atomic.Value
}

func NewService(vectors VectorStore, provider llm.Provider, chunker *ingest.Chunker, memory *store.ConversationMemory, catalog *store.DocumentCatalog, opts Options) Service {
	if opts.TopK <= 0 {
		opts.TopK = config.DefaultTopK
	}
	s := &service{
		vectors:     vectors,
		llmProvider: provider,
		chunker:     chunker,
		memory:      memory,
		catalog:     catalog,
		opts:        opts,
		logger:      logger_i.NewLogger("RAG Service"),
	}
	s.state.Store(StateIdle)
	return s
}

func (s *service) Ask(ctx context.Context, question string) (commonModels.Answer, error) {
	const op = "rag.Ask"
	start := time.Now()
	outcome := "answered"
	defer func() { metrics.CaptureAskMetrics(outcome, time.Since(start)) }()

	question = strings.TrimSpace(question)
	if question == "" {
		outcome = string(ragErrors.KindValidation)
		return commonModels.Answer{}, ragErrors.Validation(op, "question must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.enter(StateAnswering)()

	log := s.logger.WithTrace(ctx)
	hits, err := s.executeVectorSearchStep(ctx, log, question)
	if err != nil {
		outcome = outcomeOf(err)
		s.afterStoreError(err)
		return commonModels.Answer{}, err
	}

	if len(hits) == 0 {
		outcome = "no_context"
		s.memory.Append(commonModels.Turn{Question: question, Answer: NoContextAnswer, Sources: []commonModels.Citation{}, AskedAt: time.Now()})
		return commonModels.Answer{Text: NoContextAnswer, Sources: []commonModels.Citation{}}, nil
	}

	prompt := buildAnswerPrompt(question, hits, s.memory.Recent(s.opts.MaxHistoryTurns))
	text, err := s.executeLLMStep(ctx, log, prompt)
	if err != nil {
		outcome = string(ragErrors.KindGeneration)
		return commonModels.Answer{}, err
	}

	sources := citationsFrom(hits)
	s.memory.Append(commonModels.Turn{Question: question, Answer: text, Sources: sources, AskedAt: time.Now()})
	return commonModels.Answer{Text: text, Sources: sources, Chunks: hits}, nil
}

func (s *service) IngestUpload(ctx context.Context, name string, r io.Reader) (IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.enter(StateIngesting)()
	return s.storeAndIngest(ctx, name, r)
}

// IngestFile copies the file at path into the storage directory and ingests the copy.
func (s *service) IngestFile(ctx context.Context, path string) (IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return IngestResult{}, ragErrors.Load("rag.IngestFile", err, "cannot open "+path)
	}
	defer f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.enter(StateIngesting)()
	return s.storeAndIngest(ctx, filepath.Base(path), f)
}

func (s *service) storeAndIngest(ctx context.Context, name string, r io.Reader) (IngestResult, error) {
	const op = "rag.Ingest"
	log := s.logger.WithTrace(ctx)

	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return IngestResult{}, ragErrors.Validation(op, "document name must not be empty")
	}
	if !ingest.Supported(name) {
		return IngestResult{}, ragErrors.Validation(op, "unsupported document type: "+name)
	}
	if s.catalog.Has(name) {
		metrics.CaptureIngestOutcome("duplicate")
		return IngestResult{}, &ragErrors.Error{Kind: ragErrors.KindValidation, Op: op, Message: name + " is already ingested", Err: ErrDuplicateDocument}
	}

	path, err := s.saveUpload(name, r)
	if err != nil {
		log.Error("Error storing upload", "name", name, "error", err)
		return IngestResult{}, ragErrors.Load(op, err, "cannot store "+name)
	}

	res, err := s.ingestPath(ctx, path)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			log.Error("Error removing failed upload", "path", path, "error", rmErr)
		}
		return IngestResult{}, err
	}
	return res, nil
}

func (s *service) saveUpload(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.opts.PDFDir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.opts.PDFDir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(s.opts.PDFDir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

func (s *service) ingestPath(ctx context.Context, path string) (IngestResult, error) {
	log := s.logger.WithTrace(ctx).With("path", path)

	start := time.Now()
	res, err := ingest.ProcessDocument(ctx, path, s.chunker, s.vectors)
	metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start))
	if err != nil {
		metrics.CaptureIngestOutcome(outcomeOf(err))
		s.afterStoreError(err)
		log.Error("Ingestion failed", "error", err)
		return IngestResult{}, err
	}

	doc := res.Document
	s.describe(ctx, log, &doc, res.Preview)
	if err := s.catalog.Put(doc); err != nil {
		log.Error("Error saving catalog", "error", err)
	}

	metrics.AddChunksIngested(len(res.Chunks))
	metrics.CaptureIngestOutcome("ingested")
	log.Info("Document ingested", "pages", doc.PageCount, "chunks", doc.ChunkCount)
	return IngestResult{Document: doc, Chunks: res.Chunks}, nil
}

func (s *service) IngestPreloaded(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.enter(StateIngesting)()

	log := s.logger.WithTrace(ctx)
	entries, err := os.ReadDir(s.opts.PDFDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Error("Cannot read document directory", "dir", s.opts.PDFDir, "error", err)
		}
		return 0
	}

	ingested := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !ingest.Supported(name) || s.catalog.Has(name) {
			continue
		}
		if _, err := s.ingestPath(ctx, filepath.Join(s.opts.PDFDir, name)); err != nil {
			log.Warn("Skipping preloaded document", "name", name, "error", err)
			continue
		}
		ingested++
	}
	if ingested > 0 {
		log.Info("Preloaded documents ingested", "count", ingested)
	}
	return ingested
}

func (s *service) History() []commonModels.Turn {
	return s.memory.History()
}

func (s *service) ClearHistory() {
	s.memory.Clear()
}

func (s *service) Documents() []commonModels.Document {
	return s.catalog.List()
}

// ClearAllData deletes stored documents and the index, then starts over empty.
func (s *service) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logger.WithTrace(ctx)

	if err := os.RemoveAll(s.opts.PDFDir); err != nil {
		return fmt.Errorf("removing document directory: %w", err)
	}
	if err := os.MkdirAll(s.opts.PDFDir, 0o755); err != nil {
		return fmt.Errorf("recreating document directory: %w", err)
	}
	if err := s.vectors.Clear(ctx); err != nil {
		return err
	}
	s.memory.Clear()
	if err := s.catalog.Clear(); err != nil {
		log.Error("Error clearing catalog", "error", err)
	}

	log.Warn("All documents, embeddings and history were deleted")
	return nil
}

func (s *service) RepairStore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.vectors.Repair(ctx); err != nil {
		return err
	}
	s.forgetDocuments()
	return nil
}

func (s *service) Status(ctx context.Context) Status {
	st := Status{
		State:        s.state.Load().(State),
		Documents:    s.catalog.Len(),
		HistoryTurns: s.memory.Len(),
	}
	n, err := s.vectors.Count(ctx)
	if err != nil {
		st.IndexedChunks = -1
		st.IndexError = err.Error()
		return st
	}
	st.IndexedChunks = n
	return st
}

func (s *service) Close() error {
	return s.vectors.Close()
}

func (s *service) enter(state State) func() {
	s.state.Store(state)
	metrics.SetPipelineBusy(true)
	return func() {
		s.state.Store(StateIdle)
		metrics.SetPipelineBusy(false)
	}
}

// afterStoreError empties the catalog once the index behind it was rebuilt.
func (s *service) afterStoreError(err error) {
	if ragErrors.WasRecovered(err) {
		s.forgetDocuments()
	}
}

func (s *service) forgetDocuments() {
	if err := s.catalog.Clear(); err != nil {
		s.logger.Error("Error clearing catalog", "error", err)
	}
}
