package googleEmbedding

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"google.golang.org/genai"
)

func TestSplitRequests(t *testing.T) {
	tests := []struct {
		n        int
		expected []int
	}{
		{0, nil},
		{1, []int{1}},
		{100, []int{100}},
		{250, []int{100, 100, 50}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			batches := splitRequests(make([]string, tt.n))
			if len(batches) != len(tt.expected) {
				t.Fatalf("expected %d batches, got %d", len(tt.expected), len(batches))
			}
			for i, b := range batches {
				if len(b) != tt.expected[i] {
					t.Errorf("batch %d has %d items, want %d", i, len(b), tt.expected[i])
				}
			}
		})
	}
}

func TestProviderError(t *testing.T) {
	limited := providerError("op", fmt.Errorf("call: %w", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}))
	if !errors.Is(limited, ragErrors.ErrGeneration) || !strings.Contains(limited.Error(), "rate limit") {
		t.Errorf("unexpected rate limit error: %v", limited)
	}

	other := providerError("op", errors.New("boom"))
	if !errors.Is(other, ragErrors.ErrGeneration) || strings.Contains(other.Error(), "rate limit") {
		t.Errorf("unexpected error: %v", other)
	}
}
