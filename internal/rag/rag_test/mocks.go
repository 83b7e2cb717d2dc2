package rag_test

import (
	"context"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag/llm"
)

// MockVectorStore implements rag.VectorStore
type MockVectorStore struct {
	// Control fields to simulate different behaviors
	OnAdd    func(ctx context.Context, chunks []commonModels.DocChunk) error
	OnSearch func(ctx context.Context, query string, topK int) ([]commonModels.SearchHit, error)
	OnCount  func(ctx context.Context) (int, error)
	OnRepair func(ctx context.Context) error
	OnClear  func(ctx context.Context) error

	added []commonModels.DocChunk
}

func (m *MockVectorStore) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	if m.OnAdd != nil {
		return m.OnAdd(ctx, chunks)
	}
	m.added = append(m.added, chunks...)
	return nil
}

func (m *MockVectorStore) Search(ctx context.Context, query string, topK int) ([]commonModels.SearchHit, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, topK)
	}
	return nil, nil
}

func (m *MockVectorStore) Count(ctx context.Context) (int, error) {
	if m.OnCount != nil {
		return m.OnCount(ctx)
	}
	return len(m.added), nil
}

func (m *MockVectorStore) Repair(ctx context.Context) error {
	if m.OnRepair != nil {
		return m.OnRepair(ctx)
	}
	m.added = nil
	return nil
}

func (m *MockVectorStore) Clear(ctx context.Context) error {
	if m.OnClear != nil {
		return m.OnClear(ctx)
	}
	m.added = nil
	return nil
}

func (m *MockVectorStore) Close() error {
	return nil
}

// MockLLM implements llm.Provider and remembers every prompt it was given.
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt llm.Prompt) (string, error)

	Prompts []llm.Prompt
}

func (m *MockLLM) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

func hit(doc string, page int, text string, score float32) commonModels.SearchHit {
	return commonModels.SearchHit{
		Chunk: commonModels.DocChunk{ChunkId: doc + "-" + text, DocId: doc, PageNum: page, Chunk: text},
		Score: score,
	}
}
