package openaiLLM

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag/llm"
)

func TestGenerate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" The sky is blue. "}}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIClient("key", srv.URL+"/v1/", "gpt-4o", 0.2, srv.Client())
	if err != nil {
		t.Fatal(err)
	}

	answer, err := p.Generate(context.Background(), llm.Prompt{System: "be brief", User: "what colour is the sky?"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "The sky is blue." {
		t.Errorf("answer = %q", answer)
	}
	if got.Model != "gpt-4o" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "what colour is the sky?" {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestGenerate_ProviderFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`},
		{"rate limit", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`},
		{"no choices", http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, _ := NewOpenAIClient("key", srv.URL+"/v1/", "gpt-4o", 0.2, srv.Client())
			if _, err := p.Generate(context.Background(), llm.Prompt{User: "q"}); !errors.Is(err, ragErrors.ErrGeneration) {
				t.Fatalf("expected GenerationError, got %v", err)
			}
		})
	}
}
