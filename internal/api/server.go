// Package api exposes the pipeline over HTTP.
package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"releaseradar/internal/config"
	"releaseradar/internal/models"
	"releaseradar/internal/retry"
	"releaseradar/internal/services"

	"github.com/gin-gonic/gin"
)

// Server holds the handlers' dependencies.
type Server struct {
	changes  services.ChangeService
	docs     services.DocUpdateService
	notes    services.ReleaseNotesService
	ingest   services.IngestService
	webhooks config.WebhooksConfig
}

func NewServer(svc *services.Services, webhooks config.WebhooksConfig) *Server {
	return &Server{
		changes:  svc.Changes,
		docs:     svc.DocUpdates,
		notes:    svc.ReleaseNotes,
		ingest:   svc.Ingest,
		webhooks: webhooks,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.Writer()), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/docs/update", s.updateDocs)

	summaries := api.Group("/summaries")
	summaries.GET("/pending", s.listSummaries(models.StatusPending))
	summaries.GET("/approved", s.listSummaries(models.StatusApproved))
	summaries.PATCH("/:id", s.patchSummary)

	notes := api.Group("/release-notes")
	notes.GET("", s.releaseNoteForWeek)
	notes.GET("/list", s.listReleaseNotes)
	notes.POST("/generate", s.generateReleaseNotes)
	notes.GET("/:id", s.getReleaseNote)
	notes.POST("/:id/sent", s.markReleaseNoteSent)

	hooks := api.Group("/webhooks")
	hooks.POST("/github", s.githubWebhook)
	hooks.POST("/linear", s.linearWebhook)

	return r
}

// fail writes the error body used by every endpoint.
func fail(c *gin.Context, status int, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var exhausted *retry.ExhaustedError
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrReleaseNoteMissing),
		errors.Is(err, services.ErrNoReleaseEntries):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoChangesApplied):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrReleaseNoteSent):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidWeek):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPublishFailed), errors.As(err, &exhausted):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
