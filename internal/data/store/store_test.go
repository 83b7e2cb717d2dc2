package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(i int) commonModels.Turn {
	return commonModels.Turn{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)}
}

func TestConversationMemory_AppendAndClear(t *testing.T) {
	m := InitConversationMemory()
	for i := 0; i < 7; i++ {
		m.Append(turn(i))
	}

	history := m.History()
	require.Len(t, history, 7)
	for i, tr := range history {
		assert.Equal(t, fmt.Sprintf("q%d", i), tr.Question)
	}

	m.Clear()
	assert.Empty(t, m.History())
	assert.Zero(t, m.Len())
}

func TestConversationMemory_Recent(t *testing.T) {
	m := InitConversationMemory()
	for i := 0; i < 7; i++ {
		m.Append(turn(i))
	}

	tests := []struct {
		n     int
		first string
		size  int
	}{
		{5, "q2", 5},
		{1, "q6", 1},
		{10, "q0", 7},
		{0, "q0", 7},
		{-1, "q0", 7},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			view := m.Recent(tt.n)
			require.Len(t, view, tt.size)
			assert.Equal(t, tt.first, view[0].Question)
			assert.Equal(t, "q6", view[len(view)-1].Question)
		})
	}

	// the view is a copy, and the full history is never trimmed
	view := m.Recent(2)
	view[0].Question = "changed"
	assert.Equal(t, "q5", m.Recent(2)[0].Question)
	assert.Equal(t, 7, m.Len())
}

func TestConversationMemory_ConcurrentAppend(t *testing.T) {
	m := InitConversationMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Append(turn(i))
			_ = m.Recent(5)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
}

func TestDocumentCatalog_PersistsAndLists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), config.PDFStorageDir)
	c, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.Zero(t, c.Len())

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.Put(commonModels.Document{Id: "b.pdf", Name: "b.pdf", PageCount: 3, LastIngestTimestamp: base.Add(time.Minute)}))
	require.NoError(t, c.Put(commonModels.Document{Id: "a.pdf", Name: "a.pdf", PageCount: 1, LastIngestTimestamp: base}))
	assert.True(t, c.Has("a.pdf"))
	assert.FileExists(t, filepath.Join(dir, config.CatalogFileName))

	reloaded, err := LoadCatalog(dir)
	require.NoError(t, err)
	docs := reloaded.List()
	require.Len(t, docs, 2)
	assert.Equal(t, "a.pdf", docs[0].Id)
	assert.Equal(t, 3, docs[1].PageCount)

	require.NoError(t, reloaded.Remove("a.pdf"))
	_, ok := reloaded.Get("a.pdf")
	assert.False(t, ok)

	require.NoError(t, reloaded.Clear())
	again, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.Zero(t, again.Len())
}

func TestDocumentCatalog_UnreadableFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.CatalogFileName), []byte("{not json"), 0o644))

	c, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}
