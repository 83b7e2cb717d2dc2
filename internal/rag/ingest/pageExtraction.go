package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// Page is the raw text of one page, numbered from 1.
type Page struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var pageExtractTimeout = 10 * time.Second

// Supported reports whether the loader can read files named like name.
func Supported(name string) bool {
	return getDocType(name) != commonModels.ERR
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// Pages lazily yields the pages of the document at path. Errors are yielded as LoadError and end
// the sequence.
func Pages(path string) iter.Seq2[Page, error] {
	const op = "ingest.Pages"
	name := filepath.Base(path)

	switch getDocType(path) {
	case commonModels.PDF:
		data, err := os.ReadFile(path)
		if err != nil {
			return failed(ragErrors.Load(op, err, "cannot read "+name))
		}
		return pdfPages(name, data)
	case commonModels.DOCX, commonModels.TXT:
		return func(yield func(Page, error) bool) {
			text, err := cat.File(path)
			if err != nil {
				yield(Page{}, ragErrors.Load(op, err, "cannot extract text from "+name))
				return
			}
			singlePage(name, text, yield)
		}
	default:
		return failed(ragErrors.Load(op, nil, "unsupported document type: "+name))
	}
}

// PagesFromBytes is Pages for an uploaded stream already held in memory.
func PagesFromBytes(name string, data []byte) iter.Seq2[Page, error] {
	const op = "ingest.PagesFromBytes"
	switch getDocType(name) {
	case commonModels.PDF:
		return pdfPages(name, data)
	case commonModels.DOCX, commonModels.TXT:
		return func(yield func(Page, error) bool) {
			text, err := cat.FromBytes(data)
			if err != nil {
				yield(Page{}, ragErrors.Load(op, err, "cannot extract text from "+name))
				return
			}
			singlePage(name, text, yield)
		}
	default:
		return failed(ragErrors.Load(op, nil, "unsupported document type: "+name))
	}
}

// CollectPages drains a page sequence.
func CollectPages(pages iter.Seq2[Page, error]) ([]Page, error) {
	var out []Page
	for p, err := range pages {
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func failed(err error) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		yield(Page{}, err)
	}
}

// word processors give no page breaks we can trust, so the whole text is page 1
func singlePage(name string, text string, yield func(Page, error) bool) {
	if strings.TrimSpace(text) == "" {
		yield(Page{}, ragErrors.Load("ingest.singlePage", nil, name+" contains no extractable text"))
		return
	}
	yield(Page{Number: 1, Content: text}, nil)
}

func pdfPages(name string, data []byte) iter.Seq2[Page, error] {
	const op = "ingest.pdfPages"
	return func(yield func(Page, error) bool) {
		logger := logger_i.NewLogger("pdf_loader").With("document", name)

		reader, err := openPDF(data)
		if err != nil {
			yield(Page{}, ragErrors.Load(op, err, "cannot open "+name))
			return
		}

		numPages := reader.NumPage()
		logger.Debug("extractPDF", "number of pages", numPages)
		found := false
		for i := 1; i <= numPages; i++ {
			page := reader.Page(i)
			if page.V.IsNull() {
				logger.Debug("extractPDF", "page value is null", i)
				continue
			}

			content, err := protectExtract(page)
			if err != nil {
				// one bad page should not sink the document
				logger.Warn("Error parsing page content", "page", i, "error", err)
				continue
			}
			if strings.TrimSpace(content) == "" {
				continue
			}

			found = true
			if !yield(Page{Number: i, Content: content}, nil) {
				return
			}
		}

		if !found {
			yield(Page{}, ragErrors.Load(op, nil, name+" contains no extractable text (scanned or empty document?)"))
		}
	}
}

func openPDF(data []byte) (reader *pdf.Reader, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, errors.New("not a PDF file")
	}

	defer func() {
		if r := recover(); r != nil {
			reader = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return nil, errors.New("pdf is password protected")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return reader, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		return "", errors.New("timeout")
	}
}
