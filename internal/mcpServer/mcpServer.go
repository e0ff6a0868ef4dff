package mcpServer

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/internal/rag"
	"github.com/intigra/ragapi/pkg/logger_i"
)

const Version = "1.0.0"

// Server exposes the query pipeline and the job registry as MCP tools so
// agent clients can use the service without going through HTTP.
type Server struct {
	ragService rag.Service
	registry   jobModel.JobRegistry
	server     *mcp.Server
	logger     *logger_i.Logger
}

func NewServer(ragService rag.Service, registry jobModel.JobRegistry) *Server {
	impl := &mcp.Implementation{
		Name:    "ragapi",
		Version: Version,
	}

	s := &Server{
		ragService: ragService,
		registry:   registry,
		server:     mcp.NewServer(impl, nil),
		logger:     logger_i.NewLogger("MCPServer"),
	}

	s.registerTools()

	return s
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server running over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
