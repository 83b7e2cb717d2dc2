// Package mcpServer exposes the pipeline as Model Context Protocol tools over stdio.
package mcpServer

import (
	"context"

	"github.com/akolanti/docqa/internal/rag"
	"github.com/akolanti/docqa/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

type Server struct {
	service rag.Service
	server  *mcp.Server
	logger  *logger_i.Logger
}

func NewServer(service rag.Service) *Server {
	impl := &mcp.Implementation{
		Name:    "docqa",
		Title:   "Document Q&A",
		Version: Version,
	}

	s := &Server{
		service: service,
		server:  mcp.NewServer(impl, nil),
		logger:  logger_i.NewLogger("mcp"),
	}
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
