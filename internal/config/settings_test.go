package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultChunkSize, s.Chunking.Size)
	assert.Equal(t, DefaultChunkOverlap, s.Chunking.Overlap)
	assert.Equal(t, DefaultTopK, s.TopK)
	assert.True(t, s.Vector.AutoRepair)
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docqa.yaml")
	yml := []byte("data_dir: /srv/docqa\ntop_k: 8\nchunking:\n  size: 500\n  overlap: 50\nproviders:\n  embedding: hash\n  llm: gemini\n")
	require.NoError(t, os.WriteFile(path, yml, 0o644))

	t.Setenv("DOCQA_TOP_K", "3")
	t.Setenv("QDRANT_PORT", "7000")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/docqa", s.DataDir)
	assert.Equal(t, 3, s.TopK)
	assert.Equal(t, 500, s.Chunking.Size)
	assert.Equal(t, ProviderHash, s.Providers.Embedding)
	assert.Equal(t, ProviderGemini, s.Providers.LLM)
	assert.Equal(t, 7000, s.Vector.QdrantPort)
	assert.Equal(t, filepath.Join("/srv/docqa", PDFStorageDir), s.PDFDir())
	assert.Equal(t, filepath.Join("/srv/docqa", VectorDBDir), s.VectorDir())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"overlap equals size", func(s *Settings) { s.Chunking.Overlap = s.Chunking.Size }},
		{"negative overlap", func(s *Settings) { s.Chunking.Overlap = -1 }},
		{"zero size", func(s *Settings) { s.Chunking.Size = 0 }},
		{"zero top k", func(s *Settings) { s.TopK = 0 }},
		{"unknown embedder", func(s *Settings) { s.Providers.Embedding = "bert" }},
		{"unknown llm", func(s *Settings) { s.Providers.LLM = "hash" }},
		{"unknown backend", func(s *Settings) { s.Vector.Backend = "chroma" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ragErrors.ErrConfig), "got %v", err)
		})
	}

	assert.NoError(t, Defaults().Validate())
}
