// Package mcpserver exposes change review over the Model Context Protocol so
// an assistant can read, search, approve and reject summaries.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"

	"releaseradar/internal/models"
	"releaseradar/internal/services"

	"github.com/mark3labs/mcp-go/server"
)

const serverName = "release-radar-mcp"

// defaultApprover is recorded when a tool call names no reviewer.
const defaultApprover = "MCP User"

// Server holds the MCP server and the change service its handlers call.
type Server struct {
	changes services.ChangeService
	mcp     *server.MCPServer
}

// New registers every resource, tool and prompt.
func New(changes services.ChangeService, version string) *Server {
	s := &Server{changes: changes}
	s.mcp = server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	for _, res := range changeResources {
		s.mcp.AddResource(res.resource(), s.readChanges(res))
	}

	s.mcp.AddTool(approveTool(), s.handleApprove)
	s.mcp.AddTool(rejectTool(), s.handleReject)
	s.mcp.AddTool(detailsTool(), s.handleDetails)
	s.mcp.AddTool(searchTool(), s.handleSearch)

	s.mcp.AddPrompt(reviewPRPrompt(), s.handleReviewPR)
	s.mcp.AddPrompt(reviewPendingPrompt(), s.handleReviewPending)
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio speaks the protocol over in and out until ctx is done or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(log.Writer(), "[mcp] ", log.LstdFlags))
	log.Printf("[mcp] %s running on stdio", serverName)
	return stdio.Listen(ctx, in, out)
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func ensureSlice(recs []models.ChangeRecord) []models.ChangeRecord {
	if recs == nil {
		return []models.ChangeRecord{}
	}
	return recs
}
