package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"releaseradar/internal/events"
	"releaseradar/internal/models"
	"releaseradar/internal/repositories"
	"releaseradar/internal/utils"
)

// ReleaseEntryService records which documentation was updated for a change.
type ReleaseEntryService interface {
	Record(ctx context.Context, change *models.ChangeRecord, outcome *models.BranchOutcome, req *models.ReviewRequest) error
}

type releaseEntryService struct {
	entries repositories.ReleaseEntryRepository
	siteURL string
	loc     *time.Location
	now     func() time.Time
}

func NewReleaseEntryService(entries repositories.ReleaseEntryRepository, siteURL string, loc *time.Location) ReleaseEntryService {
	if loc == nil {
		loc = time.UTC
	}
	return &releaseEntryService{entries: entries, siteURL: siteURL, loc: loc, now: time.Now}
}

// Record inserts the entry for the current week. Failures are logged and
// returned; callers treat them as non-fatal.
func (s *releaseEntryService) Record(ctx context.Context, change *models.ChangeRecord, outcome *models.BranchOutcome, req *models.ReviewRequest) error {
	entry := &models.ReleaseEntry{
		ReleaseWeek: utils.WeekKey(s.now().In(s.loc)),
		BranchName:  outcome.Branch,
	}
	id := change.SourceID
	switch change.SourceType {
	case models.SourceReview:
		entry.ReviewChangeID = &id
	case models.SourceTicket:
		entry.TicketChangeID = &id
	}
	for _, p := range outcome.Updated {
		entry.DocPagesUpdated = append(entry.DocPagesUpdated, models.DocPageUpdate{
			Path:       p.Path,
			URL:        PageURL(s.siteURL, p.Path),
			ChangeType: p.ChangeKind,
		})
	}
	if req != nil {
		url := req.URL
		entry.DocPRURL = &url
		entry.DocPRNumber = req.Number
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		log.Printf("[docs-update] Error creating release entry for %s %s: %v", change.SourceType, change.SourceID, err)
		events.Emit(ctx, events.DocsUpdate, events.NewWarn("Release entry was not recorded").
			With("source", change.SourceID).
			With("error", err.Error()))
		return fmt.Errorf("record release entry: %w", err)
	}
	return nil
}

// PageURL maps a docs repository path such as app/docs/api/page.md to its
// published URL, e.g. <site>/docs/api.
func PageURL(siteURL, path string) string {
	slug := strings.Replace(path, "app/", "", 1)
	slug = strings.Replace(slug, "/page.md", "", 1)
	return strings.TrimRight(siteURL, "/") + "/" + strings.TrimLeft(slug, "/")
}
