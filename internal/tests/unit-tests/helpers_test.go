package unit_tests

import (
	"context"
	"time"

	"releaseradar/internal/models"
	"releaseradar/internal/repositories"
	"releaseradar/internal/retry"
	"releaseradar/internal/tests/mocks"
)

// fastPolicy keeps retry tests quick: three attempts, 1ms apart.
func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   2,
	}
}

func strPtr(s string) *string { return &s }

func approvedReview(id string, number int, pages ...string) *models.ReviewChange {
	at := time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)
	return &models.ReviewChange{
		ID:                id,
		Repository:        "acme/api",
		Number:            number,
		Title:             "Add SSO login",
		URL:               "https://github.com/acme/api/pull/42",
		Author:            "octocat",
		MergedAt:          at,
		Category:          "feature",
		SuggestedDocPages: pages,
		LLMSummary:        "Adds single sign-on via SAML.",
		Status:            string(models.StatusApproved),
		ApprovedBy:        strPtr("reviewer"),
		ApprovedAt:        &at,
	}
}

func approvedTicket(id, identifier string, pages ...string) *models.TicketChange {
	at := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	return &models.TicketChange{
		ID:                id,
		TicketID:          identifier,
		Title:             "Rate limit headers",
		URL:               "https://linear.app/acme/issue/" + identifier,
		CompletedAt:       at,
		Category:          "improvement",
		SuggestedDocPages: pages,
		LLMSummary:        "Responses now include rate limit headers.",
		Status:            string(models.StatusApproved),
		ApprovedAt:        &at,
	}
}

// reviewRepo serves a fixed set of review rows by id and applies
// UpdateIfStatus in memory.
func reviewRepo(rows ...*models.ReviewChange) *mocks.ReviewChangeRepositoryMock {
	byID := make(map[string]*models.ReviewChange, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	return &mocks.ReviewChangeRepositoryMock{
		FindByIDFunc: func(ctx context.Context, id string) (*models.ReviewChange, error) {
			if r, ok := byID[id]; ok {
				cp := *r
				return &cp, nil
			}
			return nil, repositories.ErrNotFound
		},
		UpdateIfStatusFunc: func(ctx context.Context, id, expected string, fields map[string]any) error {
			r, ok := byID[id]
			if !ok || r.Status != expected {
				return repositories.ErrStaleStatus
			}
			applyReviewFields(r, fields)
			return nil
		},
	}
}

func ticketRepo(rows ...*models.TicketChange) *mocks.TicketChangeRepositoryMock {
	byID := make(map[string]*models.TicketChange, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	return &mocks.TicketChangeRepositoryMock{
		FindByIDFunc: func(ctx context.Context, id string) (*models.TicketChange, error) {
			if r, ok := byID[id]; ok {
				cp := *r
				return &cp, nil
			}
			return nil, repositories.ErrNotFound
		},
		UpdateIfStatusFunc: func(ctx context.Context, id, expected string, fields map[string]any) error {
			r, ok := byID[id]
			if !ok || r.Status != expected {
				return repositories.ErrStaleStatus
			}
			if v, ok := fields["status"].(string); ok {
				r.Status = v
			}
			if v, ok := fields["edited_summary"].(string); ok {
				r.EditedSummary = &v
			}
			return nil
		},
	}
}

func applyReviewFields(r *models.ReviewChange, fields map[string]any) {
	if v, ok := fields["status"].(string); ok {
		r.Status = v
	}
	if v, ok := fields["approved_by"].(string); ok {
		r.ApprovedBy = &v
	}
	if v, ok := fields["approved_at"].(time.Time); ok {
		r.ApprovedAt = &v
	}
	if v, ok := fields["edited_summary"].(string); ok {
		r.EditedSummary = &v
	}
}
