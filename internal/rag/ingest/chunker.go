package ingest

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/google/uuid"
)

// Chunker cuts page text into fixed-size windows of runes. Consecutive windows on the same page
// share exactly overlap runes; windows never span two pages.
type Chunker struct {
	size    int
	overlap int
	now     func() time.Time
}

func NewChunker(size, overlap int) (*Chunker, error) {
	const op = "ingest.NewChunker"
	if size <= 0 {
		return nil, ragErrors.Config(op, fmt.Sprintf("chunk size must be positive, got %d", size))
	}
	if overlap < 0 || overlap >= size {
		return nil, ragErrors.Config(op, fmt.Sprintf("chunk overlap %d must be in [0, %d)", overlap, size))
	}
	return &Chunker{size: size, overlap: overlap, now: time.Now}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks every page of pages in order. ChunkOrder runs across the whole document. The first
// error from pages is returned as is.
func (c *Chunker) Split(docId string, pages iter.Seq2[Page, error]) ([]commonModels.DocChunk, error) {
	var all []commonModels.DocChunk
	for page, err := range pages {
		if err != nil {
			return nil, err
		}
		all = append(all, c.SplitPage(docId, page, len(all))...)
	}
	return all, nil
}

// SplitPage chunks a single page. Blank pages give no chunks.
func (c *Chunker) SplitPage(docId string, page Page, firstOrder int) []commonModels.DocChunk {
	if strings.TrimSpace(page.Content) == "" {
		return nil
	}

	runes := []rune(page.Content)
	step := c.size - c.overlap
	ingestedAt := c.now()

	var chunks []commonModels.DocChunk
	for start := 0; ; start += step {
		end := min(start+c.size, len(runes))
		chunks = append(chunks, commonModels.DocChunk{
			ChunkId:     uuid.NewString(),
			DocId:       docId,
			Chunk:       string(runes[start:end]),
			PageNum:     page.Number,
			ChunkOrder:  firstOrder + len(chunks),
			StartOffset: start,
			EndOffset:   end,
			IngestedAt:  ingestedAt,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
