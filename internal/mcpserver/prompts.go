package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"releaseradar/internal/models"

	"github.com/mark3labs/mcp-go/mcp"
)

// pendingPreview is how many changes per source review-pending counts.
const pendingPreview = 10

func reviewPRPrompt() mcp.Prompt {
	return mcp.NewPrompt("review-pr",
		mcp.WithPromptDescription("Template for reviewing a PR summary"),
		mcp.WithArgument("pr_id",
			mcp.ArgumentDescription("ID of the PR summary"),
			mcp.RequiredArgument(),
		),
	)
}

func reviewPendingPrompt() mcp.Prompt {
	return mcp.NewPrompt("review-pending",
		mcp.WithPromptDescription("Review all pending summaries"),
	)
}

func (s *Server) handleReviewPR(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := strings.TrimSpace(req.Params.Arguments["pr_id"])
	if id == "" {
		return nil, fmt.Errorf("pr_id is required")
	}
	rec, err := s.changes.Get(ctx, models.SourceReview, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PR: %w", err)
	}
	return mcp.NewGetPromptResult("Review a PR summary", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(reviewPRText(rec))),
	}), nil
}

func reviewPRText(rec *models.ChangeRecord) string {
	var number int
	var author, merged string
	if rec.Review != nil {
		number = rec.Review.Number
		author = rec.Review.Author
		if !rec.Review.MergedAt.IsZero() {
			merged = rec.Review.MergedAt.Format("Jan 2, 2006")
		}
	}
	description := rec.Description
	if strings.TrimSpace(description) == "" {
		description = "N/A"
	}

	var b strings.Builder
	b.WriteString("Please review this PR summary and suggest improvements:\n\n")
	fmt.Fprintf(&b, "**PR #%d: %s**\n", number, rec.Title)
	fmt.Fprintf(&b, "Author: %s\n", author)
	fmt.Fprintf(&b, "Merged: %s\n\n", merged)
	fmt.Fprintf(&b, "**Current Summary:**\n%s\n\n", rec.Summary)
	fmt.Fprintf(&b, "**Original Description:**\n%s\n\n", description)
	b.WriteString("Please provide:\n")
	b.WriteString("1. Is the summary accurate and user-friendly?\n")
	b.WriteString("2. Any suggested edits to make it clearer\n")
	b.WriteString("3. Should this PR be approved for release notes?")
	return b.String()
}

func (s *Server) handleReviewPending(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	total := 0
	for _, src := range []models.SourceType{models.SourceReview, models.SourceTicket} {
		recs, err := s.changes.ListByStatus(ctx, src, models.StatusPending, pendingPreview)
		if err != nil {
			return nil, fmt.Errorf("list pending %s changes: %w", src, err)
		}
		total += len(recs)
	}
	text := fmt.Sprintf(`There are %d pending items to review.

Use the resources and tools to:
1. Review each pending PR and ticket
2. Approve or reject based on quality
3. Edit summaries if needed to be more user-friendly

Start by reading the pr-summaries://pending and linear-tickets://pending resources.`, total)
	return mcp.NewGetPromptResult("Review pending summaries", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	}), nil
}
