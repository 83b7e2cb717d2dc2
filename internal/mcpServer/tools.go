package mcpServer

import (
	"context"
	"time"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the ingested documents"`
}

type SourceOutput struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
}

type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

type IngestFileInput struct {
	Path string `json:"path" jsonschema:"path of a PDF, DOCX, ODT, RTF or TXT file readable by the server"`
}

type DocumentOutput struct {
	Id         string `json:"id"`
	Title      string `json:"title"`
	Summary    string `json:"summary,omitempty"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	IngestedAt string `json:"ingested_at"`
}

type DocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

type NoInput struct{}

type MessageOutput struct {
	Message string `json:"message"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the ingested documents. The conversation so far is taken into account.",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_file",
		Description: "Copy a document into storage and index it",
	}, s.handleIngestFile)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the ingested documents with title and summary",
	}, s.handleListDocuments)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_history",
		Description: "Forget the conversation so far",
	}, s.handleClearHistory)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "repair_store",
		Description: "Delete and reinitialise the vector index. Every document has to be ingested again afterwards.",
	}, s.handleRepairStore)
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	ans, err := s.service.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	out := AskOutput{Answer: ans.Text, Sources: make([]SourceOutput, 0, len(ans.Sources))}
	for _, c := range ans.Sources {
		out.Sources = append(out.Sources, SourceOutput{Document: c.DocId, Page: c.PageNum})
	}
	return nil, out, nil
}

func (s *Server) handleIngestFile(ctx context.Context, _ *mcp.CallToolRequest, input IngestFileInput) (*mcp.CallToolResult, DocumentOutput, error) {
	res, err := s.service.IngestFile(ctx, input.Path)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, toDocumentOutput(res.Document), nil
}

func (s *Server) handleListDocuments(_ context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, DocumentsOutput, error) {
	docs := s.service.Documents()
	out := DocumentsOutput{Documents: make([]DocumentOutput, 0, len(docs)), Count: len(docs)}
	for _, d := range docs {
		out.Documents = append(out.Documents, toDocumentOutput(d))
	}
	return nil, out, nil
}

func (s *Server) handleClearHistory(_ context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, MessageOutput, error) {
	s.service.ClearHistory()
	return nil, MessageOutput{Message: "conversation history cleared"}, nil
}

func (s *Server) handleRepairStore(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, MessageOutput, error) {
	if err := s.service.RepairStore(ctx); err != nil {
		return nil, MessageOutput{}, err
	}
	return nil, MessageOutput{Message: "vector index rebuilt, ingest your documents again"}, nil
}

func toDocumentOutput(d commonModels.Document) DocumentOutput {
	return DocumentOutput{
		Id:         d.Id,
		Title:      d.Title,
		Summary:    d.Summary,
		Pages:      d.PageCount,
		Chunks:     d.ChunkCount,
		IngestedAt: d.LastIngestTimestamp.Format(time.RFC3339),
	}
}
