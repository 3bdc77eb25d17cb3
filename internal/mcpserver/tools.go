package mcpserver

import (
	"context"
	"fmt"
	"log"
	"strings"

	"releaseradar/internal/models"
	"releaseradar/internal/services"

	"github.com/mark3labs/mcp-go/mcp"
)

func kindArg() mcp.ToolOption {
	return mcp.WithString("type",
		mcp.Required(),
		mcp.Enum("pr", "ticket"),
		mcp.Description("Type of summary (pr or ticket)"),
	)
}

func idArg() mcp.ToolOption {
	return mcp.WithString("id",
		mcp.Required(),
		mcp.Description("ID of the PR summary or Linear ticket"),
	)
}

func approveTool() mcp.Tool {
	return mcp.NewTool("approve_summary",
		mcp.WithDescription("Approve a PR or ticket summary, optionally with edited text"),
		idArg(),
		kindArg(),
		mcp.WithString("edited_summary", mcp.Description("Optional edited summary text")),
		mcp.WithString("approved_by",
			mcp.Description("Name of the person approving"),
			mcp.DefaultString(defaultApprover),
		),
	)
}

func rejectTool() mcp.Tool {
	return mcp.NewTool("reject_summary",
		mcp.WithDescription("Reject a PR or ticket summary"),
		idArg(),
		kindArg(),
		mcp.WithString("approved_by",
			mcp.Description("Name of the person rejecting"),
			mcp.DefaultString(defaultApprover),
		),
	)
}

func detailsTool() mcp.Tool {
	return mcp.NewTool("get_summary_details",
		mcp.WithDescription("Get full details of a specific PR or ticket summary"),
		idArg(),
		kindArg(),
	)
}

func searchTool() mcp.Tool {
	return mcp.NewTool("search_summaries",
		mcp.WithDescription("Search through PR summaries and Linear tickets"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithString("type",
			mcp.Enum("pr", "ticket", "all"),
			mcp.DefaultString("all"),
			mcp.Description("Filter by type"),
		),
		mcp.WithString("status",
			mcp.Enum("pending", "approved", "rejected", "all"),
			mcp.DefaultString("all"),
			mcp.Description("Filter by status"),
		),
	)
}

// target reads the id and type arguments shared by the per-change tools.
func target(req mcp.CallToolRequest) (models.SourceType, string, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return "", "", err
	}
	raw, err := req.RequireString("type")
	if err != nil {
		return "", "", err
	}
	src, err := models.ParseSourceType(raw)
	if err != nil {
		return "", "", err
	}
	return src, strings.TrimSpace(id), nil
}

func (s *Server) handleApprove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, id, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var edited *string
	if text := strings.TrimSpace(req.GetString("edited_summary", "")); text != "" {
		edited = &text
	}
	by := req.GetString("approved_by", defaultApprover)

	if _, err := s.changes.Approve(ctx, src, id, by, edited); err != nil {
		log.Printf("[mcp] approve %s %s: %v", src, id, err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to approve: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully approved %s summary %s.", src, id)), nil
}

func (s *Server) handleReject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, id, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	by := req.GetString("approved_by", defaultApprover)

	if _, err := s.changes.Reject(ctx, src, id, by); err != nil {
		log.Printf("[mcp] reject %s %s: %v", src, id, err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to reject: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully rejected %s summary %s.", src, id)), nil
}

func (s *Server) handleDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, id, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.changes.Get(ctx, src, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get summary: %v", err)), nil
	}
	text, err := toJSON(rec)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q := services.SearchQuery{Text: query}

	if kind := req.GetString("type", "all"); kind != "all" {
		if q.Source, err = models.ParseSourceType(kind); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if status := req.GetString("status", "all"); status != "all" {
		if q.Status, err = models.ParseApprovalStatus(status); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	recs, err := s.changes.Search(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}
	text, err := toJSON(ensureSlice(recs))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}
