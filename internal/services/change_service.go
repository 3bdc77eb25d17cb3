package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"releaseradar/internal/models"
	"releaseradar/internal/repositories"
)

var (
	// ErrNotFound means the change does not exist or is not approved.
	ErrNotFound          = errors.New("change not found or not approved")
	ErrInvalidTransition = errors.New("invalid approval transition")
)

type ChangeService interface {
	LoadApproved(ctx context.Context, src models.SourceType, id string) (*models.ChangeRecord, error)
	Get(ctx context.Context, src models.SourceType, id string) (*models.ChangeRecord, error)
	ListByStatus(ctx context.Context, src models.SourceType, status models.ApprovalStatus, limit int) ([]models.ChangeRecord, error)
	ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.ChangeRecord, error)
	Approve(ctx context.Context, src models.SourceType, id, approvedBy string, editedSummary *string) (*models.ChangeRecord, error)
	Reject(ctx context.Context, src models.SourceType, id, rejectedBy string) (*models.ChangeRecord, error)
	EditSummary(ctx context.Context, src models.SourceType, id, text string) (*models.ChangeRecord, error)
	Search(ctx context.Context, q SearchQuery) ([]models.ChangeRecord, error)
}

// SearchQuery filters changes by text. Empty Source or Status means all.
type SearchQuery struct {
	Text   string
	Source models.SourceType
	Status models.ApprovalStatus
	Limit  int
}

// DefaultSearchLimit caps each source's results when SearchQuery.Limit is unset.
const DefaultSearchLimit = 50

type changeService struct {
	reviews repositories.ReviewChangeRepository
	tickets repositories.TicketChangeRepository
	now     func() time.Time
}

func NewChangeService(reviews repositories.ReviewChangeRepository, tickets repositories.TicketChangeRepository) ChangeService {
	return &changeService{reviews: reviews, tickets: tickets, now: func() time.Time { return time.Now().UTC() }}
}

// LoadApproved reads and decodes a change that a human has approved.
func (s *changeService) LoadApproved(ctx context.Context, src models.SourceType, id string) (*models.ChangeRecord, error) {
	rec, err := s.Get(ctx, src, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusApproved {
		return nil, fmt.Errorf("%s change %s is %s: %w", src, id, rec.Status, ErrNotFound)
	}
	return rec, nil
}

func (s *changeService) Get(ctx context.Context, src models.SourceType, id string) (*models.ChangeRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s change id is required: %w", src, ErrNotFound)
	}
	var (
		rec *models.ChangeRecord
		err error
	)
	switch src {
	case models.SourceReview:
		var row *models.ReviewChange
		if row, err = s.reviews.FindByID(ctx, id); err == nil {
			rec, err = models.DecodeReviewChange(row)
		}
	case models.SourceTicket:
		var row *models.TicketChange
		if row, err = s.tickets.FindByID(ctx, id); err == nil {
			rec, err = models.DecodeTicketChange(row)
		}
	default:
		return nil, fmt.Errorf("unknown source type %q", src)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%s change %s: %w", src, id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *changeService) ListByStatus(ctx context.Context, src models.SourceType, status models.ApprovalStatus, limit int) ([]models.ChangeRecord, error) {
	var out []models.ChangeRecord
	switch src {
	case models.SourceReview:
		rows, err := s.reviews.ListByStatus(ctx, string(status), limit)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rec, err := models.DecodeReviewChange(&rows[i])
			out = appendDecoded(out, rec, err)
		}
	case models.SourceTicket:
		rows, err := s.tickets.ListByStatus(ctx, string(status), limit)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rec, err := models.DecodeTicketChange(&rows[i])
			out = appendDecoded(out, rec, err)
		}
	default:
		return nil, fmt.Errorf("unknown source type %q", src)
	}
	return out, nil
}

// ListApprovedBetween returns review changes then ticket changes approved in
// [start, end), each group newest approval first.
func (s *changeService) ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.ChangeRecord, error) {
	reviews, err := s.reviews.ListApprovedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch review changes: %w", err)
	}
	tickets, err := s.tickets.ListApprovedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch ticket changes: %w", err)
	}
	out := make([]models.ChangeRecord, 0, len(reviews)+len(tickets))
	for i := range reviews {
		rec, err := models.DecodeReviewChange(&reviews[i])
		out = appendDecoded(out, rec, err)
	}
	for i := range tickets {
		rec, err := models.DecodeTicketChange(&tickets[i])
		out = appendDecoded(out, rec, err)
	}
	return out, nil
}

// Search matches Text against titles and summaries. Review changes come
// before ticket changes, each newest first.
func (s *changeService) Search(ctx context.Context, q SearchQuery) ([]models.ChangeRecord, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, errors.New("search text is required")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	var out []models.ChangeRecord
	if q.Source == "" || q.Source == models.SourceReview {
		rows, err := s.reviews.Search(ctx, text, string(q.Status), limit)
		if err != nil {
			return nil, fmt.Errorf("search review changes: %w", err)
		}
		for i := range rows {
			rec, err := models.DecodeReviewChange(&rows[i])
			out = appendDecoded(out, rec, err)
		}
	}
	if q.Source == "" || q.Source == models.SourceTicket {
		rows, err := s.tickets.Search(ctx, text, string(q.Status), limit)
		if err != nil {
			return nil, fmt.Errorf("search ticket changes: %w", err)
		}
		for i := range rows {
			rec, err := models.DecodeTicketChange(&rows[i])
			out = appendDecoded(out, rec, err)
		}
	}
	if out == nil {
		out = []models.ChangeRecord{}
	}
	return out, nil
}

// appendDecoded logs and skips rows that fail to decode.
func appendDecoded(out []models.ChangeRecord, rec *models.ChangeRecord, err error) []models.ChangeRecord {
	if err != nil {
		log.Printf("[changes] skipping record: %v", err)
		return out
	}
	return append(out, *rec)
}

func (s *changeService) Approve(ctx context.Context, src models.SourceType, id, approvedBy string, editedSummary *string) (*models.ChangeRecord, error) {
	if strings.TrimSpace(approvedBy) == "" {
		approvedBy = "unknown"
	}
	fields := map[string]any{
		"status":      string(models.StatusApproved),
		"approved_by": approvedBy,
		"approved_at": s.now(),
	}
	if editedSummary != nil {
		fields["edited_summary"] = *editedSummary
	}
	return s.transition(ctx, src, id, fields)
}

func (s *changeService) Reject(ctx context.Context, src models.SourceType, id, rejectedBy string) (*models.ChangeRecord, error) {
	fields := map[string]any{"status": string(models.StatusRejected)}
	if strings.TrimSpace(rejectedBy) != "" {
		fields["approved_by"] = rejectedBy
	}
	return s.transition(ctx, src, id, fields)
}

// EditSummary replaces the human-edited summary of a pending change.
func (s *changeService) EditSummary(ctx context.Context, src models.SourceType, id, text string) (*models.ChangeRecord, error) {
	return s.transition(ctx, src, id, map[string]any{"edited_summary": text})
}

// transition applies fields to a pending change. Approved and rejected are terminal.
func (s *changeService) transition(ctx context.Context, src models.SourceType, id string, fields map[string]any) (*models.ChangeRecord, error) {
	current, err := s.Get(ctx, src, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusPending {
		return nil, fmt.Errorf("%s change %s is already %s: %w", src, id, current.Status, ErrInvalidTransition)
	}
	switch src {
	case models.SourceReview:
		err = s.reviews.UpdateIfStatus(ctx, id, string(models.StatusPending), fields)
	case models.SourceTicket:
		err = s.tickets.UpdateIfStatus(ctx, id, string(models.StatusPending), fields)
	}
	if errors.Is(err, repositories.ErrStaleStatus) {
		return nil, fmt.Errorf("%s change %s changed concurrently: %w", src, id, ErrInvalidTransition)
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, src, id)
}
