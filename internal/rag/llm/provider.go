package llm

import "context"

// Prompt is one stateless completion request. History and context are already rendered into User.
type Prompt struct {
	System string
	User   string
}

type Provider interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
