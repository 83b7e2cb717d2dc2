package commonModels

import (
	"fmt"
	"time"
)

// Document is the catalog entry for an ingested file. Id is the file name.
type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	Title               string    `json:"title"`
	Summary             string    `json:"summary"`
	StoragePath         string    `json:"storage_path"`
	ContentType         DocType   `json:"content_type"`
	PageCount           int       `json:"page_count"`
	ChunkCount          int       `json:"chunk_count"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
}

// DocChunk is a span of one page of one document. Offsets are rune offsets into the page text.
type DocChunk struct {
	ChunkId     string    `json:"chunk_id"`
	DocId       string    `json:"source_doc_id"`
	Chunk       string    `json:"content"`
	PageNum     int       `json:"page_num"`
	ChunkOrder  int       `json:"chunk_order"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	IngestedAt  time.Time `json:"ingested_at"`
}

type SearchHit struct {
	Chunk DocChunk `json:"chunk"`
	Score float32  `json:"score"`
}

type Citation struct {
	DocId   string `json:"source_doc_id"`
	PageNum int    `json:"page_num"`
}

func (c Citation) String() string {
	return fmt.Sprintf("%s (page %d)", c.DocId, c.PageNum)
}

type Turn struct {
	Question string     `json:"question"`
	Answer   string     `json:"answer"`
	Sources  []Citation `json:"sources"`
	AskedAt  time.Time  `json:"asked_at"`
}

type Answer struct {
	Text    string      `json:"answer"`
	Sources []Citation  `json:"sources"`
	Chunks  []SearchHit `json:"chunks,omitempty"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"
