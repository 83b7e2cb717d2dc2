package googleEmbedding

import (
	"errors"
	"net/http"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"google.golang.org/genai"
)

// the embedContent endpoint accepts at most this many contents per request
const maxContentsPerRequest = 100

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func splitRequests(chunks []string) [][]string {
	var batches [][]string
	for i := 0; i < len(chunks); i += maxContentsPerRequest {
		batches = append(batches, chunks[i:min(i+maxContentsPerRequest, len(chunks))])
	}
	return batches
}

// providerError wraps a genai failure. Rate limits are reported as such and not retried.
func providerError(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return ragErrors.Generation(op, err, "embedding provider rate limit hit")
	}
	return ragErrors.Generation(op, err, "embedding provider call failed")
}
