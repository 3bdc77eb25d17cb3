package api

import (
	"log"
	"net/http"

	"releaseradar/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultSummaryLimit = 100

func (s *Server) listSummaries(status models.ApprovalStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		limit := queryInt(c, "limit", defaultSummaryLimit)
		reviews, err := s.changes.ListByStatus(ctx, models.SourceReview, status, limit)
		if err != nil {
			log.Printf("[api] Error fetching %s review summaries: %v", status, err)
			fail(c, http.StatusInternalServerError, "Failed to fetch "+string(status)+" summaries", err)
			return
		}
		tickets, err := s.changes.ListByStatus(ctx, models.SourceTicket, status, limit)
		if err != nil {
			log.Printf("[api] Error fetching %s ticket summaries: %v", status, err)
			fail(c, http.StatusInternalServerError, "Failed to fetch "+string(status)+" summaries", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"prSummaries":   nonNil(reviews),
			"linearTickets": nonNil(tickets),
		})
	}
}

func nonNil(recs []models.ChangeRecord) []models.ChangeRecord {
	if recs == nil {
		return []models.ChangeRecord{}
	}
	return recs
}

type patchSummaryRequest struct {
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	EditedSummary *string `json:"edited_summary"`
	ApprovedBy    string  `json:"approved_by"`
}

// patchSummary approves, rejects or edits a pending change.
func (s *Server) patchSummary(c *gin.Context) {
	var req patchSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	src, err := models.ParseSourceType(req.Type)
	if err != nil {
		fail(c, http.StatusBadRequest, `Invalid type. Must be "pr" or "ticket"`, nil)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	var rec *models.ChangeRecord
	switch {
	case req.Status == "":
		if req.EditedSummary == nil {
			fail(c, http.StatusBadRequest, "Nothing to update", nil)
			return
		}
		rec, err = s.changes.EditSummary(ctx, src, id, *req.EditedSummary)
	default:
		status, perr := models.ParseApprovalStatus(req.Status)
		if perr != nil {
			fail(c, http.StatusBadRequest, "Invalid status", perr)
			return
		}
		switch status {
		case models.StatusApproved:
			rec, err = s.changes.Approve(ctx, src, id, req.ApprovedBy, req.EditedSummary)
		case models.StatusRejected:
			rec, err = s.changes.Reject(ctx, src, id, req.ApprovedBy)
		default:
			if req.EditedSummary == nil {
				fail(c, http.StatusBadRequest, "Nothing to update", nil)
				return
			}
			rec, err = s.changes.EditSummary(ctx, src, id, *req.EditedSummary)
		}
	}
	if err != nil {
		log.Printf("[api] Error updating summary %s: %v", id, err)
		fail(c, statusFor(err), "Failed to update summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}
