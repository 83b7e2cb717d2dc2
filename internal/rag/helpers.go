package rag

import (
	"context"
	"time"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag/llm"
	"github.com/akolanti/docqa/pkg/logger_i"
)

func logStep(step string, log *logger_i.Logger) {
	log.Debug("Ask", "Current Step", step)
}

func outcomeOf(err error) string {
	if kind := ragErrors.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, question string) ([]commonModels.SearchHit, error) {
	logStep("vector_search", log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := s.vectors.Search(ctx, question, s.opts.TopK)
	if err != nil {
		log.Error("Error searching the vector index", "error", err)
		return nil, err
	}
	log.Debug("Ask", "retrieved", len(hits))
	return hits, nil
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, prompt llm.Prompt) (string, error) {
	logStep("llm_generation", log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	text, err := s.llmProvider.Generate(ctx, prompt)
	if err != nil {
		log.Error("Error generating answer", "error", err)
		if ragErrors.KindOf(err) == ragErrors.KindGeneration {
			return "", err
		}
		return "", ragErrors.Generation("rag.Ask", err, "language model call failed")
	}
	return text, nil
}

// describe fills the title and summary of doc. It never fails the ingest.
func (s *service) describe(ctx context.Context, log *logger_i.Logger, doc *commonModels.Document, preview string) {
	if !s.opts.GenerateSummaries || s.llmProvider == nil {
		doc.Summary = SummaryUnavailable
		return
	}

	start := time.Now()
	reply, err := s.llmProvider.Generate(ctx, buildSummaryPrompt(preview))
	metrics.CaptureExecutionMetrics("summary_generation", time.Since(start))
	if err != nil {
		log.Warn("Summary extraction failed", "error", err)
		doc.Summary = SummaryUnavailable
		return
	}
	doc.Title, doc.Summary = parseSummary(reply, doc.Name)
}
