package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *logger_i.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, temperature float32, httpClient *http.Client) (llm.Provider, error) {
	const op = "gemini.NewGeminiClient"
	if apiKey == "" {
		return nil, ragErrors.Config(op, "GOOGLE_API_KEY is not set")
	}

	logger := logger_i.NewLogger("llm_gemini")
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return nil, ragErrors.Config(op, fmt.Sprintf("cannot create genai client: %v", err))
	}

	logger.Debug("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, temperature: temperature, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	const op = "gemini.Generate"
	log := c.logger.WithTrace(ctx)

	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if prompt.System != "" {
		contentConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt.User), contentConfig)
	if err != nil {
		log.Error("Error generating content", "error", err)
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", ragErrors.Generation(op, err, "language model rate limit hit")
		}
		return "", ragErrors.Generation(op, err, "language model call failed")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ragErrors.Generation(op, nil, "language model returned no text")
	}
	return text, nil
}
