package api

import (
	"errors"
	"log"
	"net/http"

	"releaseradar/internal/services"

	"github.com/gin-gonic/gin"
)

// releaseNoteForWeek returns the note for ?week=YYYY-MM-DD, or the current
// week. A missing note is a null body, not an error.
func (s *Server) releaseNoteForWeek(c *gin.Context) {
	note, err := s.notes.GetByWeek(c.Request.Context(), c.Query("week"))
	if errors.Is(err, services.ErrReleaseNoteMissing) {
		c.JSON(http.StatusOK, gin.H{"releaseNote": nil})
		return
	}
	if err != nil {
		fail(c, statusFor(err), "Failed to fetch release notes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"releaseNote": note})
}

func (s *Server) listReleaseNotes(c *gin.Context) {
	notes, err := s.notes.List(c.Request.Context(), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		log.Printf("[api] Error fetching release notes: %v", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch release notes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"releaseNotes": notes})
}

func (s *Server) getReleaseNote(c *gin.Context) {
	note, err := s.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, statusFor(err), "Release note not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"releaseNote": note})
}

type generateRequest struct {
	WeekStart string `json:"weekStart"`
}

func (s *Server) generateReleaseNotes(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	note, err := s.notes.Generate(c.Request.Context(), req.WeekStart)
	if err != nil {
		log.Printf("[api] Error generating release notes: %v", err)
		fail(c, statusFor(err), "Failed to generate release notes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "releaseNote": note})
}

func (s *Server) markReleaseNoteSent(c *gin.Context) {
	note, err := s.notes.MarkSent(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, statusFor(err), "Failed to mark release note sent", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "releaseNote": note})
}
