package ingest

import (
	"context"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/pkg/logger_i"
)

// ChunkWriter embeds and stores chunks. vectorDB.Store satisfies it.
type ChunkWriter interface {
	Add(ctx context.Context, chunks []commonModels.DocChunk) error
}

type Result struct {
	Document commonModels.Document
	Chunks   []commonModels.DocChunk
	// Preview is the leading text of the document, used for title and summary extraction.
	Preview string
}

// ProcessDocument loads the file at path, chunks it and hands the chunks to writer. The document id
// is the file name.
func ProcessDocument(ctx context.Context, path string, chunker *Chunker, writer ChunkWriter) (Result, error) {
	const op = "ingest.ProcessDocument"
	logger := logger_i.NewLogger("Document Ingestion").WithTrace(ctx)

	docName := filepath.Base(path)
	docType := getDocType(path)
	logger.Debug("Processing document", "filename", docName, "path", path, "type", docType)
	if docType == commonModels.ERR {
		return Result{}, ragErrors.Load(op, nil, "unsupported document type: "+docName)
	}

	stats := &pageStats{}
	chunks, err := chunker.Split(docName, stats.observe(Pages(path)))
	if err != nil {
		logger.Error("Error extracting document content", "error", err)
		return Result{}, err
	}
	if len(chunks) == 0 {
		return Result{}, ragErrors.Load(op, nil, docName+" produced no chunks")
	}

	logger.Debug("Processing document", "pages", stats.pages, "chunks", len(chunks))
	if err := writer.Add(ctx, chunks); err != nil {
		logger.Error("Error storing chunks", "error", err)
		return Result{}, err
	}

	doc := commonModels.Document{
		Id:                  docName,
		Name:                docName,
		Title:               strings.TrimSuffix(docName, filepath.Ext(docName)),
		StoragePath:         path,
		ContentType:         docType,
		PageCount:           stats.pages,
		ChunkCount:          len(chunks),
		LastIngestTimestamp: time.Now(),
	}
	return Result{Document: doc, Chunks: chunks, Preview: stats.preview.String()}, nil
}

// pageStats counts pages and keeps the first SummarySourceChars runes as they stream past.
type pageStats struct {
	pages      int
	previewLen int
	preview    strings.Builder
}

func (s *pageStats) observe(pages iter.Seq2[Page, error]) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		for page, err := range pages {
			if err == nil {
				s.pages++
				s.keep(page.Content)
			}
			if !yield(page, err) {
				return
			}
		}
	}
}

func (s *pageStats) keep(text string) {
	room := config.SummarySourceChars - s.previewLen
	if room <= 0 {
		return
	}
	runes := []rune(text)
	if len(runes) > room {
		runes = runes[:room]
	}
	if s.preview.Len() > 0 {
		s.preview.WriteString("\n")
	}
	s.preview.WriteString(string(runes))
	s.previewLen += len(runes)
}
