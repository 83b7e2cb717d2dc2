package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag/ingest/testpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatServer answers every chat completion with "The sky is blue." and counts the calls.
func fakeChatServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "The sky is blue.") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"context missing"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"The sky is blue."}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func testSettings(t *testing.T, baseURL string) *config.Settings {
	t.Helper()
	s := config.Defaults()
	s.DataDir = t.TempDir()
	s.TopK = 1
	s.GenerateSummaries = false
	s.Providers.Embedding = config.ProviderHash
	s.Providers.LLM = config.ProviderOpenAI
	s.Providers.OpenAIKey = "test-key"
	s.Providers.OpenAIBaseURL = baseURL + "/v1/"
	require.NoError(t, s.Validate())
	return s
}

func TestBuild_IngestsPreloadedDocumentsAndAnswers(t *testing.T) {
	srv, calls := fakeChatServer(t)
	s := testSettings(t, srv.URL)

	require.NoError(t, os.MkdirAll(s.PDFDir(), 0o755))
	testpdf.Write(t, s.PDFDir(), "nature.pdf", "The sky is blue.", "The grass is green.")

	a, err := Build(context.Background(), s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	docs := a.Service.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "nature.pdf", docs[0].Id)
	assert.Equal(t, 2, docs[0].PageCount)

	ans, err := a.Service.Ask(context.Background(), "What color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", ans.Text)
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "nature.pdf", ans.Sources[0].DocId)
	assert.Equal(t, 1, ans.Sources[0].PageNum)
	assert.EqualValues(t, 1, calls.Load())
}

func TestBuild_ReopensPersistedIndex(t *testing.T) {
	srv, _ := fakeChatServer(t)
	s := testSettings(t, srv.URL)
	ctx := context.Background()

	a, err := Build(ctx, s)
	require.NoError(t, err)
	src := testpdf.Write(t, t.TempDir(), "nature.pdf", "The sky is blue.")
	_, err = a.Service.IngestFile(ctx, src)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := Build(ctx, s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	st := b.Service.Status(ctx)
	assert.Equal(t, 1, st.Documents)
	assert.Equal(t, 1, st.IndexedChunks, "restart must neither lose nor re-ingest the document")
	assert.Empty(t, b.Service.History())
}

func dropTenant(t *testing.T, s *config.Settings) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(s.VectorDir(), config.LocalDBFileName))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`DELETE FROM tenants`)
	require.NoError(t, err)
}

// ingestAndClose builds the pipeline once, ingests nature.pdf and returns its source path.
func ingestAndClose(t *testing.T, s *config.Settings) string {
	t.Helper()
	a, err := Build(context.Background(), s)
	require.NoError(t, err)
	src := testpdf.Write(t, t.TempDir(), "nature.pdf", "The sky is blue.")
	_, err = a.Service.IngestFile(context.Background(), src)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	return src
}

func TestBuild_StartupRepairReindexesStoredDocuments(t *testing.T) {
	srv, _ := fakeChatServer(t)
	s := testSettings(t, srv.URL)
	ctx := context.Background()
	ingestAndClose(t, s)
	dropTenant(t, s)

	b, err := Build(ctx, s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	st := b.Service.Status(ctx)
	assert.Empty(t, st.IndexError)
	assert.Equal(t, 1, st.Documents)
	assert.Equal(t, 1, st.IndexedChunks)

	ans, err := b.Service.Ask(ctx, "What color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", ans.Text)
	require.Len(t, ans.Sources, 1)
}

func TestBuild_StartupRepairAllowsReupload(t *testing.T) {
	srv, _ := fakeChatServer(t)
	s := testSettings(t, srv.URL)
	s.IngestOnStartup = false
	ctx := context.Background()
	src := ingestAndClose(t, s)
	dropTenant(t, s)

	b, err := Build(ctx, s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	assert.Empty(t, b.Service.Documents())

	_, err = b.Service.IngestFile(ctx, src)
	require.NoError(t, err)
	ans, err := b.Service.Ask(ctx, "What color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", ans.Text)
}

func TestBuild_HealthCheckLeavesIndexAlone(t *testing.T) {
	srv, _ := fakeChatServer(t)
	s := testSettings(t, srv.URL)
	ctx := context.Background()

	a, err := Build(ctx, s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	src := testpdf.Write(t, t.TempDir(), "nature.pdf", "The sky is blue.")
	_, err = a.Service.IngestFile(ctx, src)
	require.NoError(t, err)

	dropTenant(t, s)
	for i := 0; i < 2; i++ {
		st := a.Service.Status(ctx)
		assert.NotEmpty(t, st.IndexError)
		assert.Equal(t, 1, st.Documents)
	}

	_, err = a.Service.Ask(ctx, "What color is the sky?")
	assert.True(t, errors.Is(err, ragErrors.ErrStoreUnavailable), "got %v", err)
	assert.True(t, ragErrors.WasRecovered(err))
	assert.Empty(t, a.Service.Documents())

	_, err = a.Service.IngestFile(ctx, src)
	require.NoError(t, err)
	ans, err := a.Service.Ask(ctx, "What color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", ans.Text)
}

func TestBuild_ManualRepairWithoutAutoRepair(t *testing.T) {
	srv, _ := fakeChatServer(t)
	s := testSettings(t, srv.URL)
	s.Vector.AutoRepair = false
	ctx := context.Background()
	marker := filepath.Join(s.DataDir, config.RepairFlagName)

	a, err := Build(ctx, s)
	require.NoError(t, err)
	src := testpdf.Write(t, t.TempDir(), "nature.pdf", "The sky is blue.")
	_, err = a.Service.IngestFile(ctx, src)
	require.NoError(t, err)
	dropTenant(t, s)
	_, err = a.Service.Ask(ctx, "What color is the sky?")
	assert.True(t, errors.Is(err, ragErrors.ErrStoreUnavailable), "got %v", err)
	assert.False(t, ragErrors.WasRecovered(err))
	require.FileExists(t, marker)
	require.NoError(t, a.Close())

	b, err := Build(ctx, s)
	require.NoError(t, err, "a pending repair must not stop the pipeline from starting")
	t.Cleanup(func() { _ = b.Close() })
	assert.NotEmpty(t, b.Service.Status(ctx).IndexError)
	_, err = b.Service.Ask(ctx, "What color is the sky?")
	assert.True(t, errors.Is(err, ragErrors.ErrStoreUnavailable), "got %v", err)

	require.NoError(t, b.Service.RepairStore(ctx))
	assert.NoFileExists(t, marker)
	assert.Empty(t, b.Service.Documents())

	_, err = b.Service.IngestFile(ctx, src)
	require.NoError(t, err)
	ans, err := b.Service.Ask(ctx, "What color is the sky?")
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", ans.Text)
}

func TestBuild_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *config.Settings)
	}{
		{"missing openai key", func(s *config.Settings) { s.Providers.OpenAIKey = "" }},
		{"missing google key for embeddings", func(s *config.Settings) {
			s.Providers.Embedding = config.ProviderGemini
			s.Providers.GoogleKey = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings(t, "http://127.0.0.1:1")
			tt.mutate(s)
			_, err := Build(context.Background(), s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ragErrors.ErrConfig), "got %v", err)
		})
	}
}

func TestNewBackend_Local(t *testing.T) {
	s := config.Defaults()
	s.DataDir = t.TempDir()
	db, err := NewBackend(context.Background(), s, config.HashEmbeddingDimension)
	require.NoError(t, err)
	defer db.Close()
	assert.FileExists(t, filepath.Join(s.VectorDir(), config.LocalDBFileName))
}
