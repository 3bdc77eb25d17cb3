package api

import (
	"log"
	"net/http"
	"strings"

	"releaseradar/internal/models"

	"github.com/gin-gonic/gin"
)

type docUpdateRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// updateDocs runs the documentation pipeline for an approved change.
// type accepts "pr", "linear", "review-change", "ticket-change" and the
// canonical "review" and "ticket".
func (s *Server) updateDocs(c *gin.Context) {
	var req docUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Type) == "" || strings.TrimSpace(req.ID) == "" {
		fail(c, http.StatusBadRequest, "Missing required fields: type and id", nil)
		return
	}
	src, err := models.ParseSourceType(req.Type)
	if err != nil {
		fail(c, http.StatusBadRequest, `Invalid type. Must be "pr" or "linear"`, err)
		return
	}

	res, err := s.docs.Process(c.Request.Context(), src, req.ID)
	if err != nil {
		log.Printf("[api] Error processing doc update for %s %s: %v", src, req.ID, err)
		fail(c, statusFor(err), "Failed to process documentation update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"runId":        res.RunID,
		"docPrUrl":     res.DocPRURL,
		"docPrNumber":  res.DocPRNumber,
		"filesUpdated": res.FilesUpdated,
		"branchName":   res.BranchName,
	})
}
