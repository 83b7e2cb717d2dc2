// Package app builds the pipeline from Settings. The HTTP server, the CLI and the MCP server share it.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/customHttpClient"
	"github.com/akolanti/docqa/internal/data/store"
	"github.com/akolanti/docqa/internal/rag"
	"github.com/akolanti/docqa/internal/rag/embedding"
	"github.com/akolanti/docqa/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/docqa/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/docqa/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/docqa/internal/rag/ingest"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/internal/rag/llm/gemini"
	"github.com/akolanti/docqa/internal/rag/llm/openaiLLM"
	"github.com/akolanti/docqa/internal/rag/vectorDB"
	"github.com/akolanti/docqa/internal/rag/vectorDB/localDB"
	"github.com/akolanti/docqa/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/docqa/pkg/logger_i"
)

type App struct {
	Settings *config.Settings
	Service  rag.Service
}

// Build wires every component. When IngestOnStartup is set the documents already in the storage
// directory are indexed before Build returns. A startup repair of the index empties the catalog
// first, so the stored files are indexed again.
func Build(ctx context.Context, settings *config.Settings) (*App, error) {
	logger := logger_i.NewLogger("app")

	if err := os.MkdirAll(settings.PDFDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}

	embedder, err := NewEmbedder(ctx, settings)
	if err != nil {
		return nil, err
	}
	provider, err := NewLLM(ctx, settings)
	if err != nil {
		return nil, err
	}
	backend, err := NewBackend(ctx, settings, embedder.Dimension())
	if err != nil {
		return nil, err
	}

	vectors, err := vectorDB.NewStore(ctx, backend, embedder, vectorDB.StoreOptions{
		MarkerDir:  settings.DataDir,
		AutoRepair: settings.Vector.AutoRepair,
		BatchSize:  config.EmbeddingBatchSize,
	})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	chunker, err := ingest.NewChunker(settings.Chunking.Size, settings.Chunking.Overlap)
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}
	catalog, err := store.LoadCatalog(settings.PDFDir())
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}
	if vectors.RepairedOnOpen() && catalog.Len() > 0 {
		logger.Warn("Vector index was rebuilt on startup, forgetting catalogued documents", "documents", catalog.Len())
		if err := catalog.Clear(); err != nil {
			_ = vectors.Close()
			return nil, err
		}
	}

	svc := rag.NewService(vectors, provider, chunker, store.InitConversationMemory(), catalog, rag.Options{
		PDFDir:            settings.PDFDir(),
		TopK:              settings.TopK,
		MaxHistoryTurns:   settings.MaxHistoryTurns,
		GenerateSummaries: settings.GenerateSummaries,
	})

	switch {
	case vectors.NeedsRepair():
		logger.Error("Vector index needs a manual repair, questions and uploads fail until it is repaired")
	case settings.IngestOnStartup:
		svc.IngestPreloaded(ctx)
	}

	logger.Info("Pipeline ready",
		"embedding", settings.Providers.Embedding,
		"llm", settings.Providers.LLM,
		"vector backend", settings.Vector.Backend,
		"documents", len(svc.Documents()))
	return &App{Settings: settings, Service: svc}, nil
}

func (a *App) Close() error {
	return a.Service.Close()
}

func NewEmbedder(ctx context.Context, settings *config.Settings) (embedding.Embedder, error) {
	p := settings.Providers
	httpClient := customHttpClient.New(settings.Server.RequestTimeout)
	switch p.Embedding {
	case config.ProviderOpenAI:
		return openaiEmbedding.NewOpenAIEmbedder(p.OpenAIKey, p.OpenAIBaseURL, p.OpenAIEmbedder, settings.Vector.Dimension, httpClient)
	case config.ProviderGemini:
		return googleEmbedding.NewGoogleEmbedder(ctx, p.GoogleKey, p.GoogleEmbedder, int32(settings.Vector.Dimension), httpClient)
	case config.ProviderHash:
		return hashEmbedding.NewHashEmbedder(config.HashEmbeddingDimension), nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", p.Embedding)
}

func NewLLM(ctx context.Context, settings *config.Settings) (llm.Provider, error) {
	p := settings.Providers
	httpClient := customHttpClient.New(settings.Server.RequestTimeout)
	switch p.LLM {
	case config.ProviderOpenAI:
		return openaiLLM.NewOpenAIClient(p.OpenAIKey, p.OpenAIBaseURL, p.OpenAIModel, p.Temperature, httpClient)
	case config.ProviderGemini:
		return gemini.NewGeminiClient(ctx, p.GoogleKey, p.GeminiModel, p.Temperature, httpClient)
	}
	return nil, fmt.Errorf("unknown llm provider %q", p.LLM)
}

func NewBackend(ctx context.Context, settings *config.Settings, dimension int) (vectorDB.DataProcessor, error) {
	v := settings.Vector
	switch v.Backend {
	case config.VectorBackendLocal:
		db, err := localDB.Open(settings.VectorDir(), v.Collection)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.VectorBackendQdrant:
		db, err := qdrantDB.Open(ctx, qdrantDB.Options{
			Host:       v.QdrantHost,
			Port:       v.QdrantPort,
			UseTLS:     v.QdrantTLS,
			Collection: v.Collection,
			Dimension:  uint64(dimension),
		})
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown vector backend %q", v.Backend)
}
