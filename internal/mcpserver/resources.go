package mcpserver

import (
	"context"
	"fmt"

	"releaseradar/internal/models"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ResourceLimit caps how many changes one resource read returns.
const ResourceLimit = 100

type changeResource struct {
	uri         string
	name        string
	description string
	source      models.SourceType
	status      models.ApprovalStatus
}

var changeResources = []changeResource{
	{"pr-summaries://pending", "Pending PR Summaries", "PR summaries awaiting approval", models.SourceReview, models.StatusPending},
	{"pr-summaries://approved", "Approved PR Summaries", "Approved PR summaries", models.SourceReview, models.StatusApproved},
	{"linear-tickets://pending", "Pending Linear Tickets", "Linear tickets awaiting approval", models.SourceTicket, models.StatusPending},
	{"linear-tickets://approved", "Approved Linear Tickets", "Approved Linear tickets", models.SourceTicket, models.StatusApproved},
}

func (r changeResource) resource() mcp.Resource {
	return mcp.NewResource(r.uri, r.name,
		mcp.WithResourceDescription(r.description),
		mcp.WithMIMEType("application/json"),
	)
}

func (s *Server) readChanges(r changeResource) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		recs, err := s.changes.ListByStatus(ctx, r.source, r.status, ResourceLimit)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r.uri, err)
		}
		text, err := toJSON(ensureSlice(recs))
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: r.uri, MIMEType: "application/json", Text: text},
		}, nil
	}
}
