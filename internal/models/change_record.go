package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SourceType identifies where a change came from.
type SourceType string

const (
	SourceReview SourceType = "review"
	SourceTicket SourceType = "ticket"
)

// ParseSourceType accepts the canonical names plus the aliases used by the
// webhook and API surfaces ("pr", "linear", "review-change", "ticket-change").
func ParseSourceType(raw string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "review", "pr", "review-change":
		return SourceReview, nil
	case "ticket", "linear", "ticket-change":
		return SourceTicket, nil
	}
	return "", fmt.Errorf("unknown source type %q", raw)
}

// Classification is the category a change was filed under at ingestion.
type Classification string

const (
	ClassFeature     Classification = "feature"
	ClassFix         Classification = "fix"
	ClassImprovement Classification = "improvement"
	ClassDocs        Classification = "docs"
	ClassOther       Classification = "other"
)

// ParseClassification maps free text onto a known classification. Anything
// unrecognized becomes ClassOther and ok is false.
func ParseClassification(raw string) (c Classification, ok bool) {
	switch Classification(strings.ToLower(strings.TrimSpace(raw))) {
	case ClassFeature:
		return ClassFeature, true
	case ClassFix:
		return ClassFix, true
	case ClassImprovement:
		return ClassImprovement, true
	case ClassDocs:
		return ClassDocs, true
	case ClassOther:
		return ClassOther, true
	}
	return ClassOther, false
}

// ApprovalStatus is the review state of a change.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func ParseApprovalStatus(raw string) (ApprovalStatus, error) {
	switch s := ApprovalStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusApproved, StatusRejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown approval status %q", raw)
}

// ReviewFields are only set for code-review changes.
type ReviewFields struct {
	Repository string    `json:"repository"`
	Number     int       `json:"number"`
	Author     string    `json:"author"`
	MergedAt   time.Time `json:"mergedAt"`
}

// TicketFields are only set for ticket changes.
type TicketFields struct {
	Identifier  string    `json:"identifier"`
	CompletedAt time.Time `json:"completedAt"`
}

// ChangeRecord is the normalized view of a review or ticket change.
// Exactly one of Review and Ticket is non-nil.
type ChangeRecord struct {
	SourceType     SourceType     `json:"sourceType"`
	SourceID       string         `json:"sourceId"`
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	Summary        string         `json:"summary"`
	Description    string         `json:"description,omitempty"`
	Classification Classification `json:"classification"`
	Status         ApprovalStatus `json:"status"`
	SuggestedPages []string       `json:"suggestedPages"`
	ApprovedAt     *time.Time     `json:"approvedAt,omitempty"`

	Review *ReviewFields `json:"review,omitempty"`
	Ticket *TicketFields `json:"ticket,omitempty"`
}

// Reference is the short human label used in commit messages and PR titles.
func (c *ChangeRecord) Reference() string {
	if c.Review != nil && c.Review.Number > 0 {
		return fmt.Sprintf("PR #%d", c.Review.Number)
	}
	return c.Title
}

// ErrInvalidRecord is wrapped by every DecodeError.
var ErrInvalidRecord = errors.New("invalid change record")

// DecodeError reports a stored row that cannot be turned into a ChangeRecord.
type DecodeError struct {
	SourceType SourceType
	SourceID   string
	Reason     string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s change %q: %s", e.SourceType, e.SourceID, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrInvalidRecord }

// EffectiveSummary returns the human edit when present, otherwise the generated text.
func EffectiveSummary(generated string, edited *string) string {
	if edited != nil && strings.TrimSpace(*edited) != "" {
		return *edited
	}
	return generated
}

// DecodeReviewChange validates a stored review row and normalizes it.
func DecodeReviewChange(row *ReviewChange) (*ChangeRecord, error) {
	if row == nil {
		return nil, &DecodeError{SourceType: SourceReview, Reason: "row is nil"}
	}
	status, err := decodeCommon(SourceReview, row.ID, row.Title, row.Status)
	if err != nil {
		return nil, err
	}
	class, _ := ParseClassification(row.Category)
	return &ChangeRecord{
		SourceType:     SourceReview,
		SourceID:       row.ID,
		Title:          row.Title,
		URL:            row.URL,
		Summary:        EffectiveSummary(row.LLMSummary, row.EditedSummary),
		Description:    deref(row.OriginalDescription),
		Classification: class,
		Status:         status,
		SuggestedPages: cleanPages(row.SuggestedDocPages),
		ApprovedAt:     row.ApprovedAt,
		Review: &ReviewFields{
			Repository: row.Repository,
			Number:     row.Number,
			Author:     row.Author,
			MergedAt:   row.MergedAt,
		},
	}, nil
}

// DecodeTicketChange validates a stored ticket row and normalizes it.
func DecodeTicketChange(row *TicketChange) (*ChangeRecord, error) {
	if row == nil {
		return nil, &DecodeError{SourceType: SourceTicket, Reason: "row is nil"}
	}
	status, err := decodeCommon(SourceTicket, row.ID, row.Title, row.Status)
	if err != nil {
		return nil, err
	}
	class, _ := ParseClassification(row.Category)
	return &ChangeRecord{
		SourceType:     SourceTicket,
		SourceID:       row.ID,
		Title:          row.Title,
		URL:            row.URL,
		Summary:        EffectiveSummary(row.LLMSummary, row.EditedSummary),
		Description:    deref(row.Description),
		Classification: class,
		Status:         status,
		SuggestedPages: cleanPages(row.SuggestedDocPages),
		ApprovedAt:     row.ApprovedAt,
		Ticket: &TicketFields{
			Identifier:  row.TicketID,
			CompletedAt: row.CompletedAt,
		},
	}, nil
}

func decodeCommon(src SourceType, id, title, rawStatus string) (ApprovalStatus, error) {
	if strings.TrimSpace(id) == "" {
		return "", &DecodeError{SourceType: src, SourceID: id, Reason: "missing id"}
	}
	if strings.TrimSpace(title) == "" {
		return "", &DecodeError{SourceType: src, SourceID: id, Reason: "missing title"}
	}
	status, err := ParseApprovalStatus(rawStatus)
	if err != nil {
		return "", &DecodeError{SourceType: src, SourceID: id, Reason: err.Error()}
	}
	return status, nil
}

// cleanPages trims entries and drops blanks while keeping order.
func cleanPages(pages []string) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
