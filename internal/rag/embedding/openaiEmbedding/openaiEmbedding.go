package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag/embedding"
	"github.com/akolanti/docqa/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// one embeddings request may carry at most this many inputs
const maxInputsPerRequest = 2048

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

// NewOpenAIEmbedder builds an embedder for model. baseURL may point at any OpenAI compatible server;
// empty means api.openai.com.
func NewOpenAIEmbedder(apiKey, baseURL, model string, dimension int, httpClient *http.Client) (embedding.Embedder, error) {
	const op = "openaiEmbedding.NewOpenAIEmbedder"
	if apiKey == "" {
		return nil, ragErrors.Config(op, "OPENAI_API_KEY is not set")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	logger := logger_i.NewLogger("openai_embedding").With("model", model)
	logger.Info("OpenAI Embedding client created")
	return &client{api: openai.NewClient(opts...), model: model, dimension: dimension, logger: logger}, nil
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	const op = "openaiEmbedding.BatchEmbedding"
	log := c.logger.WithTrace(ctx)

	results := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += maxInputsPerRequest {
		batch := chunks[start:min(start+maxInputsPerRequest, len(chunks))]

		res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
			Model: c.model,
		})
		if err != nil {
			log.Error("Error getting Embeddings from OpenAI", "error", err, "batch size", len(batch))
			return nil, providerError(op, err)
		}
		if len(res.Data) != len(batch) {
			return nil, ragErrors.Generation(op, nil, fmt.Sprintf("expected %d embeddings, got %d", len(batch), len(res.Data)))
		}

		sort.Slice(res.Data, func(i, j int) bool { return res.Data[i].Index < res.Data[j].Index })
		for _, d := range res.Data {
			results = append(results, toFloat32(d.Embedding))
		}
	}
	return results, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

func providerError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return ragErrors.Generation(op, err, "embedding provider rate limit hit")
	}
	return ragErrors.Generation(op, err, "embedding provider call failed")
}
