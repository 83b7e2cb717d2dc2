package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag/ingest/testpdf"
)

type mockWriter struct {
	addFunc func(ctx context.Context, chunks []commonModels.DocChunk) error
}

func (m *mockWriter) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	return m.addFunc(ctx, chunks)
}

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"REPORT.PDF", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"notes.txt", commonModels.TXT},
		{"image.png", commonModels.ERR},
		{"noext", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestNewChunker_InvalidConfig(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"overlap equals size", 100, 100},
		{"overlap larger than size", 100, 150},
		{"negative overlap", 100, -1},
		{"zero size", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			if !errors.Is(err, ragErrors.ErrConfig) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestSplitPage_WindowsCoverPage(t *testing.T) {
	c, err := NewChunker(1000, 200)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("abcdefghij", 250) // 2500 chars
	chunks := c.SplitPage("doc.pdf", Page{Number: 3, Content: text}, 0)

	wantBounds := [][2]int{{0, 1000}, {800, 1800}, {1600, 2500}}
	if len(chunks) != len(wantBounds) {
		t.Fatalf("expected %d chunks, got %d", len(wantBounds), len(chunks))
	}
	for i, ch := range chunks {
		if ch.StartOffset != wantBounds[i][0] || ch.EndOffset != wantBounds[i][1] {
			t.Errorf("chunk %d bounds = [%d,%d), want %v", i, ch.StartOffset, ch.EndOffset, wantBounds[i])
		}
		if ch.PageNum != 3 || ch.DocId != "doc.pdf" || ch.ChunkOrder != i {
			t.Errorf("chunk %d metadata mismatch: %+v", i, ch)
		}
		if ch.ChunkId == "" {
			t.Errorf("chunk %d has no id", i)
		}
	}

	// concatenating the non-overlapping tails rebuilds the page
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Chunk)
	for _, ch := range chunks[1:] {
		rebuilt.WriteString(ch.Chunk[200:])
	}
	if rebuilt.String() != text {
		t.Error("chunks do not reproduce the page text")
	}

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1].Chunk, chunks[i].Chunk
		if prev[len(prev)-200:] != cur[:200] {
			t.Errorf("chunks %d and %d do not share a 200 char overlap", i-1, i)
		}
	}
}

func TestSplitPage_ShortAndBlankPages(t *testing.T) {
	c, _ := NewChunker(1000, 200)

	chunks := c.SplitPage("d", Page{Number: 1, Content: "The sky is blue."}, 0)
	if len(chunks) != 1 || chunks[0].Chunk != "The sky is blue." {
		t.Fatalf("expected the whole short page as one chunk, got %+v", chunks)
	}

	if got := c.SplitPage("d", Page{Number: 2, Content: " \n\t "}, 0); len(got) != 0 {
		t.Errorf("expected no chunks for a blank page, got %d", len(got))
	}
}

func TestSplitPage_CountsRunes(t *testing.T) {
	c, _ := NewChunker(3, 1)
	chunks := c.SplitPage("d", Page{Number: 1, Content: "héllo"}, 0)

	want := []string{"hél", "llo"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i := range want {
		if chunks[i].Chunk != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Chunk, want[i])
		}
	}
}

func TestSplit_OrderAcrossPages(t *testing.T) {
	c, _ := NewChunker(10, 2)
	pages := func(yield func(Page, error) bool) {
		_ = yield(Page{Number: 1, Content: strings.Repeat("a", 15)}, nil) &&
			yield(Page{Number: 2, Content: strings.Repeat("b", 5)}, nil)
	}

	chunks, err := c.Split("d", pages)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ChunkOrder != i {
			t.Errorf("chunk %d has order %d", i, ch.ChunkOrder)
		}
	}
	if chunks[2].PageNum != 2 || chunks[2].Chunk != "bbbbb" {
		t.Errorf("page two chunk mixed with page one: %+v", chunks[2])
	}
}

func TestSplit_PropagatesLoadError(t *testing.T) {
	c, _ := NewChunker(10, 2)
	loadErr := ragErrors.Load("test", nil, "broken")
	pages := func(yield func(Page, error) bool) {
		if !yield(Page{Number: 1, Content: "fine"}, nil) {
			return
		}
		yield(Page{}, loadErr)
	}

	if _, err := c.Split("d", pages); !errors.Is(err, ragErrors.ErrLoad) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestPages_PDF(t *testing.T) {
	path := testpdf.Write(t, t.TempDir(), "nature.pdf", "The sky is blue.", "", "Grass is green.")

	pages, err := CollectPages(Pages(path))
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 text pages, got %d: %+v", len(pages), pages)
	}
	if pages[0].Number != 1 || !strings.Contains(pages[0].Content, "The sky is blue.") {
		t.Errorf("unexpected first page: %+v", pages[0])
	}
	if pages[1].Number != 3 || !strings.Contains(pages[1].Content, "Grass is green.") {
		t.Errorf("blank page should be skipped but numbering kept: %+v", pages[1])
	}
}

func TestPages_TextFileIsOnePage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Meeting notes.\nThe budget was approved."), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := CollectPages(Pages(path))
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 || !strings.Contains(pages[0].Content, "budget was approved") {
		t.Errorf("unexpected pages: %+v", pages)
	}
}

func TestPages_FromBytesMatchesFile(t *testing.T) {
	pages, err := CollectPages(PagesFromBytes("upload.pdf", testpdf.Build("The sky is blue.")))
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || !strings.Contains(pages[0].Content, "sky") {
		t.Errorf("unexpected pages: %+v", pages)
	}
}

func TestPages_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pdf")
	if err := os.WriteFile(garbage, []byte("this is not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := testpdf.Write(t, dir, "scanned.pdf", "")

	tests := []struct {
		name string
		path string
	}{
		{"not a pdf", garbage},
		{"no extractable text", empty},
		{"missing file", filepath.Join(dir, "missing.pdf")},
		{"unsupported type", filepath.Join(dir, "photo.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CollectPages(Pages(tt.path))
			if !errors.Is(err, ragErrors.ErrLoad) {
				t.Fatalf("expected LoadError, got %v", err)
			}
		})
	}
}

func TestProcessDocument(t *testing.T) {
	path := testpdf.Write(t, t.TempDir(), "nature.pdf", "The sky is blue.", "Grass is green.")
	c, _ := NewChunker(1000, 200)

	var stored []commonModels.DocChunk
	w := &mockWriter{addFunc: func(ctx context.Context, chunks []commonModels.DocChunk) error {
		stored = append(stored, chunks...)
		return nil
	}}

	res, err := ProcessDocument(context.Background(), path, c, w)
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}

	if res.Document.Id != "nature.pdf" || res.Document.PageCount != 2 || res.Document.ChunkCount != 2 {
		t.Errorf("unexpected document: %+v", res.Document)
	}
	if len(stored) != 2 || stored[1].PageNum != 2 {
		t.Errorf("unexpected stored chunks: %+v", stored)
	}
	if !strings.Contains(res.Preview, "The sky is blue.") || !strings.Contains(res.Preview, "Grass is green.") {
		t.Errorf("preview misses page text: %q", res.Preview)
	}
}

func TestProcessDocument_Errors(t *testing.T) {
	c, _ := NewChunker(1000, 200)
	storeErr := ragErrors.StoreUnavailable("test", nil, "down")

	t.Run("writer error", func(t *testing.T) {
		path := testpdf.Write(t, t.TempDir(), "a.pdf", "text")
		w := &mockWriter{addFunc: func(ctx context.Context, chunks []commonModels.DocChunk) error { return storeErr }}
		if _, err := ProcessDocument(context.Background(), path, c, w); !errors.Is(err, ragErrors.ErrStoreUnavailable) {
			t.Fatalf("expected StoreUnavailable, got %v", err)
		}
	})

	t.Run("unsupported file never reaches the writer", func(t *testing.T) {
		w := &mockWriter{addFunc: func(ctx context.Context, chunks []commonModels.DocChunk) error {
			t.Error("writer should not be called")
			return nil
		}}
		if _, err := ProcessDocument(context.Background(), "notes.xlsx", c, w); !errors.Is(err, ragErrors.ErrLoad) {
			t.Fatalf("expected LoadError, got %v", err)
		}
	})
}
