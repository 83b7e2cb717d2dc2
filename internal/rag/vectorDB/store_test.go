package vectorDB

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/docqa/internal/rag/vectorDB/localDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	OnUpsert func(chunks []commonModels.DocChunk, vectors [][]float32) error
	OnSearch func(vector []float32, topK int) ([]commonModels.SearchHit, error)
	OnCount  func() (int, error)
	resets   int
}

func (f *fakeBackend) Upsert(_ context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if f.OnUpsert == nil {
		return nil
	}
	return f.OnUpsert(chunks, vectors)
}

func (f *fakeBackend) Search(_ context.Context, vector []float32, topK int) ([]commonModels.SearchHit, error) {
	if f.OnSearch == nil {
		return nil, nil
	}
	return f.OnSearch(vector, topK)
}

func (f *fakeBackend) Count(context.Context) (int, error) {
	if f.OnCount == nil {
		return 0, nil
	}
	return f.OnCount()
}

func (f *fakeBackend) Reset(context.Context) error {
	f.resets++
	return nil
}

func (f *fakeBackend) Close() error { return nil }

type countingEmbedder struct {
	calls int
	fail  error
}

func (e *countingEmbedder) GetEmbedding(context.Context, string) ([]float32, error) {
	return []float32{1}, e.fail
}

func (e *countingEmbedder) BatchEmbedding(_ context.Context, chunks []string) ([][]float32, error) {
	e.calls++
	if e.fail != nil {
		return nil, e.fail
	}
	return make([][]float32, len(chunks)), nil
}

func (e *countingEmbedder) Dimension() int { return 1 }

func chunksOf(texts ...string) []commonModels.DocChunk {
	out := make([]commonModels.DocChunk, len(texts))
	for i, text := range texts {
		out[i] = commonModels.DocChunk{ChunkId: fmt.Sprintf("chunk-%d", i), DocId: "nature.pdf", Chunk: text, PageNum: i + 1, ChunkOrder: i}
	}
	return out
}

func newLocalStore(t *testing.T, autoRepair bool) (*Store, string) {
	t.Helper()
	dataDir := t.TempDir()
	backend, err := localDB.Open(filepath.Join(dataDir, config.VectorDBDir), config.EmbeddingDBName)
	require.NoError(t, err)

	s, err := NewStore(context.Background(), backend, hashEmbedding.NewHashEmbedder(config.HashEmbeddingDimension),
		StoreOptions{MarkerDir: dataDir, AutoRepair: autoRepair})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dataDir
}

func dropTenant(t *testing.T, dataDir string) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(dataDir, config.VectorDBDir, config.LocalDBFileName))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`DELETE FROM tenants`)
	require.NoError(t, err)
}

func TestStore_ExactTextRetrieval(t *testing.T) {
	s, _ := newLocalStore(t, true)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, chunksOf("The sky is blue.", "Grass is green.", "Snow is white and cold.")))

	hits, err := s.Search(ctx, "Grass is green.", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Grass is green.", hits[0].Chunk.Chunk)
	assert.Equal(t, 2, hits[0].Chunk.PageNum)
}

func TestStore_SelfHealsMissingTenant(t *testing.T) {
	s, dataDir := newLocalStore(t, true)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, chunksOf("The sky is blue.", "Grass is green.")))

	dropTenant(t, dataDir)

	_, err := s.Search(ctx, "sky", 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ragErrors.ErrStoreUnavailable), "got %v", err)
	assert.True(t, ragErrors.WasRecovered(err))
	assert.NoFileExists(t, filepath.Join(dataDir, config.RepairFlagName))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "index should be empty after the rebuild")

	require.NoError(t, s.Add(ctx, chunksOf("The sky is blue.")))
	hits, err := s.Search(ctx, "The sky is blue.", 4)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestStore_AutoRepairDisabled(t *testing.T) {
	s, dataDir := newLocalStore(t, false)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, chunksOf("The sky is blue.")))

	dropTenant(t, dataDir)

	_, err := s.Search(ctx, "sky", 4)
	assert.True(t, errors.Is(err, ragErrors.ErrStoreUnavailable), "got %v", err)
	assert.False(t, ragErrors.WasRecovered(err))
	assert.FileExists(t, filepath.Join(dataDir, config.RepairFlagName))
	assert.True(t, s.NeedsRepair())
	assert.True(t, errors.Is(s.Add(ctx, chunksOf("Grass is green.")), ragErrors.ErrStoreUnavailable))

	require.NoError(t, s.Repair(ctx))
	assert.NoFileExists(t, filepath.Join(dataDir, config.RepairFlagName))
	_, err = s.Search(ctx, "sky", 4)
	assert.NoError(t, err)
}

func TestStore_CountDoesNotRepair(t *testing.T) {
	s, dataDir := newLocalStore(t, true)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, chunksOf("The sky is blue.")))

	dropTenant(t, dataDir)

	for i := 0; i < 2; i++ {
		_, err := s.Count(ctx)
		assert.True(t, errors.Is(err, ragErrors.ErrStoreUnavailable), "got %v", err)
		assert.False(t, ragErrors.WasRecovered(err))
	}
	assert.NoFileExists(t, filepath.Join(dataDir, config.RepairFlagName))

	_, err := s.Search(ctx, "sky", 4)
	assert.True(t, ragErrors.WasRecovered(err), "got %v", err)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewStore_RepairMarker(t *testing.T) {
	ctx := context.Background()
	emb := &countingEmbedder{}

	t.Run("repairs on startup", func(t *testing.T) {
		dir := t.TempDir()
		backend := &fakeBackend{}
		writeMarker(t, dir)

		s, err := NewStore(ctx, backend, emb, StoreOptions{MarkerDir: dir, AutoRepair: true})
		require.NoError(t, err)
		assert.Equal(t, 1, backend.resets)
		assert.True(t, s.RepairedOnOpen())
		assert.False(t, s.NeedsRepair())
		assert.NoFileExists(t, filepath.Join(dir, config.RepairFlagName))
	})

	t.Run("opens in needs-repair state without auto repair", func(t *testing.T) {
		dir := t.TempDir()
		backend := &fakeBackend{}
		writeMarker(t, dir)

		s, err := NewStore(ctx, backend, emb, StoreOptions{MarkerDir: dir, AutoRepair: false})
		require.NoError(t, err)
		assert.Zero(t, backend.resets)
		assert.False(t, s.RepairedOnOpen())
		assert.True(t, s.NeedsRepair())

		_, err = s.Search(ctx, "sky", 4)
		assert.True(t, errors.Is(err, ragErrors.ErrStoreUnavailable), "got %v", err)
		assert.True(t, errors.Is(s.Add(ctx, chunksOf("text")), ragErrors.ErrStoreUnavailable))
		_, err = s.Count(ctx)
		assert.True(t, errors.Is(err, ragErrors.ErrStoreUnavailable), "got %v", err)

		require.NoError(t, s.Repair(ctx))
		assert.Equal(t, 1, backend.resets)
		assert.False(t, s.NeedsRepair())
		assert.NoFileExists(t, filepath.Join(dir, config.RepairFlagName))
		_, err = s.Search(ctx, "sky", 4)
		assert.NoError(t, err)
	})

	t.Run("unhealthy backend without auto repair leaves marker", func(t *testing.T) {
		dir := t.TempDir()
		backend := &fakeBackend{OnCount: func() (int, error) {
			return 0, ragErrors.StoreUnavailable("test", nil, "no tenant")
		}}

		s, err := NewStore(ctx, backend, emb, StoreOptions{MarkerDir: dir, AutoRepair: false})
		require.NoError(t, err)
		assert.True(t, s.NeedsRepair())
		assert.Zero(t, backend.resets)
		assert.FileExists(t, filepath.Join(dir, config.RepairFlagName))
	})

	t.Run("unhealthy backend is rebuilt", func(t *testing.T) {
		dir := t.TempDir()
		backend := &fakeBackend{}
		broken := true
		backend.OnCount = func() (int, error) {
			if broken {
				broken = false
				return 0, ragErrors.StoreUnavailable("test", nil, "no tenant")
			}
			return 0, nil
		}

		s, err := NewStore(ctx, backend, emb, StoreOptions{MarkerDir: dir, AutoRepair: true})
		require.NoError(t, err)
		assert.Equal(t, 1, backend.resets)
		assert.True(t, s.RepairedOnOpen())
	})

	t.Run("healthy backend is left alone", func(t *testing.T) {
		backend := &fakeBackend{}
		s, err := NewStore(ctx, backend, emb, StoreOptions{MarkerDir: t.TempDir(), AutoRepair: true})
		require.NoError(t, err)
		assert.Zero(t, backend.resets)
		assert.False(t, s.RepairedOnOpen())
	})
}

func writeMarker(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.RepairFlagName), []byte("x"), 0o644))
}

func TestStore_AddBatches(t *testing.T) {
	emb := &countingEmbedder{}
	var upserts []int
	backend := &fakeBackend{OnUpsert: func(chunks []commonModels.DocChunk, vectors [][]float32) error {
		upserts = append(upserts, len(chunks))
		return nil
	}}
	s, err := NewStore(context.Background(), backend, emb, StoreOptions{MarkerDir: t.TempDir(), AutoRepair: true})
	require.NoError(t, err)

	require.NoError(t, s.Add(context.Background(), make([]commonModels.DocChunk, 250)))
	assert.Equal(t, 3, emb.calls)
	assert.Equal(t, []int{100, 100, 50}, upserts)
}

func TestStore_EmbedderFailureIsNotRepaired(t *testing.T) {
	emb := &countingEmbedder{fail: ragErrors.Generation("test", nil, "provider down")}
	backend := &fakeBackend{}
	s, err := NewStore(context.Background(), backend, emb, StoreOptions{MarkerDir: t.TempDir(), AutoRepair: true})
	require.NoError(t, err)

	err = s.Add(context.Background(), chunksOf("text"))
	assert.True(t, errors.Is(err, ragErrors.ErrGeneration), "got %v", err)
	_, err = s.Search(context.Background(), "text", 4)
	assert.True(t, errors.Is(err, ragErrors.ErrGeneration), "got %v", err)
	assert.Zero(t, backend.resets)
}
