package openaiLLM

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api         openai.Client
	modelName   string
	temperature float32
	logger      *logger_i.Logger
}

func NewOpenAIClient(apiKey, baseURL, modelName string, temperature float32, httpClient *http.Client) (llm.Provider, error) {
	if apiKey == "" {
		return nil, ragErrors.Config("openaiLLM.NewOpenAIClient", "OPENAI_API_KEY is not set")
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

	logger := logger_i.NewLogger("llm_openai").With("model", modelName)
	logger.Info("OpenAI chat client created")
	return &llmClient{api: openai.NewClient(opts...), modelName: modelName, temperature: temperature, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	const op = "openaiLLM.Generate"
	log := c.logger.WithTrace(ctx)

	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       c.modelName,
		Temperature: openai.Float(float64(c.temperature)),
	})
	if err != nil {
		log.Error("Error calling chat completion", "error", err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", ragErrors.Generation(op, err, "language model rate limit hit")
		}
		return "", ragErrors.Generation(op, err, "language model call failed")
	}
	if len(completion.Choices) == 0 {
		return "", ragErrors.Generation(op, nil, "language model returned no choices")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ragErrors.Generation(op, nil, "language model returned no text")
	}
	return text, nil
}
