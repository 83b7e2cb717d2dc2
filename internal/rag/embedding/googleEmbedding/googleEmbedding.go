package googleEmbedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag/embedding"
	"github.com/akolanti/docqa/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewGoogleEmbedder(ctx context.Context, apiKey, modelName string, dimension int32, httpClient *http.Client) (embedding.Embedder, error) {
	const op = "googleEmbedding.NewGoogleEmbedder"
	if apiKey == "" {
		return nil, ragErrors.Config(op, "GOOGLE_API_KEY is not set")
	}

	logger := logger_i.NewLogger("google_embedding")
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return nil, ragErrors.Config(op, fmt.Sprintf("cannot create genai client: %v", err))
	}

	logger.Debug("Google Embedding model name: " + modelName)
	logger.Info("Google Embedding client created")
	return &client{genAi: c, model: modelName, dimension: dimension, logger: logger}, nil
}

func (c *client) Dimension() int {
	return int(c.dimension)
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := c.logger.WithTrace(ctx)

	res, err := c.doCall(ctx, genai.Text(query), taskQuery)
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, providerError("googleEmbedding.GetEmbedding", err)
	}
	if len(res.Embeddings) == 0 {
		return nil, ragErrors.Generation("googleEmbedding.GetEmbedding", nil, "empty embedding response")
	}
	return res.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	const op = "googleEmbedding.BatchEmbedding"
	log := c.logger.WithTrace(ctx)

	results := make([][]float32, 0, len(chunks))
	for _, batch := range splitRequests(chunks) {
		res, err := c.doCall(ctx, getContent(batch), taskDocument)
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err, "batch size", len(batch))
			return nil, providerError(op, err)
		}
		if len(res.Embeddings) != len(batch) {
			return nil, ragErrors.Generation(op, nil, fmt.Sprintf("expected %d embeddings, got %d", len(batch), len(res.Embeddings)))
		}
		for _, e := range res.Embeddings {
			results = append(results, e.Values)
		}
	}
	return results, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             task,
	})
}
