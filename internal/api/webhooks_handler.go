package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"releaseradar/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
)

const (
	githubSignatureHeader = "X-Hub-Signature-256"
	linearSignatureHeader = "Linear-Signature"
	maxWebhookBody        = 5 << 20
)

// githubWebhook ingests merged pull requests. Other events are acknowledged
// and ignored.
func (s *Server) githubWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	signature := c.GetHeader(githubSignatureHeader)
	if signature == "" {
		fail(c, http.StatusUnauthorized, "Invalid signature", nil)
		return
	}
	if s.webhooks.GitHubSecret == "" {
		log.Printf("[webhooks] GitHub webhook secret not set, skipping verification")
	} else if err := github.ValidateSignature(signature, body, []byte(s.webhooks.GitHubSecret)); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid signature", nil)
		return
	}

	eventType := github.WebHookType(c.Request)
	if eventType == "" {
		eventType = "pull_request"
	}
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid payload", err)
		return
	}
	event, ok := payload.(*github.PullRequestEvent)
	if !ok || event.GetAction() != "closed" || event.GetPullRequest().MergedAt == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Event ignored"})
		return
	}

	owner, repo, found := strings.Cut(event.GetRepo().GetFullName(), "/")
	if !found {
		fail(c, http.StatusBadRequest, "Invalid payload", errors.New("repository full name is malformed"))
		return
	}
	number := event.GetPullRequest().GetNumber()
	log.Printf("[webhooks] Processing merged PR: %s#%d", event.GetRepo().GetFullName(), number)

	row, err := s.ingest.IngestPullRequest(c.Request.Context(), owner, repo, number)
	if errors.Is(err, services.ErrNotMerged) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Event ignored"})
		return
	}
	if err != nil {
		log.Printf("[webhooks] GitHub webhook error: %v", err)
		fail(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "PR processed and summary created",
		"summary_id": row.ID,
	})
}

type linearWebhook struct {
	Action string `json:"action"`
	Type   string `json:"type"`
	Data   struct {
		ID          string     `json:"id"`
		Title       string     `json:"title"`
		Identifier  string     `json:"identifier"`
		URL         string     `json:"url"`
		CompletedAt *time.Time `json:"completedAt"`
		Description *string    `json:"description"`
	} `json:"data"`
}

// linearWebhook ingests completed issues.
func (s *Server) linearWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !verifyLinearSignature(body, c.GetHeader(linearSignatureHeader), s.webhooks.LinearSecret) {
		fail(c, http.StatusUnauthorized, "Invalid signature", nil)
		return
	}

	var payload linearWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		fail(c, http.StatusBadRequest, "Invalid payload", err)
		return
	}
	if payload.Type != "Issue" || payload.Data.CompletedAt == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Event ignored"})
		return
	}
	log.Printf("[webhooks] Processing completed Linear ticket: %s", payload.Data.Identifier)

	in := services.TicketInput{
		Identifier:  payload.Data.Identifier,
		Title:       payload.Data.Title,
		URL:         payload.Data.URL,
		CompletedAt: *payload.Data.CompletedAt,
	}
	if payload.Data.Description != nil {
		in.Description = *payload.Data.Description
	}
	row, err := s.ingest.IngestTicket(c.Request.Context(), in)
	if err != nil {
		log.Printf("[webhooks] Linear webhook error: %v", err)
		fail(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Ticket processed and summary created",
		"summary_id": row.ID,
	})
}

// verifyLinearSignature checks the hex HMAC-SHA256 of body. A missing header
// always fails; a missing secret skips the comparison.
func verifyLinearSignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	if secret == "" {
		log.Printf("[webhooks] Linear webhook secret not set, skipping verification")
		return true
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(want))
}
