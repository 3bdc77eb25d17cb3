package unit_tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"releaseradar/internal/models"
	"releaseradar/internal/repositories"
	"releaseradar/internal/services"
	"releaseradar/internal/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingReview(id string) *models.ReviewChange {
	r := approvedReview(id, 42)
	r.Status = string(models.StatusPending)
	r.ApprovedBy = nil
	r.ApprovedAt = nil
	return r
}

func TestChangeService_ApproveDefaultsApprover(t *testing.T) {
	row := pendingReview("rev-1")
	svc := services.NewChangeService(reviewRepo(row), ticketRepo())

	rec, err := svc.Approve(context.Background(), models.SourceReview, "rev-1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, rec.Status)
	require.NotNil(t, row.ApprovedBy)
	assert.Equal(t, "unknown", *row.ApprovedBy)
	assert.NotNil(t, rec.ApprovedAt)
}

func TestChangeService_ApproveWithEditedSummary(t *testing.T) {
	row := pendingReview("rev-1")
	svc := services.NewChangeService(reviewRepo(row), ticketRepo())

	rec, err := svc.Approve(context.Background(), models.SourceReview, "rev-1", "alice", strPtr("Human wording."))
	require.NoError(t, err)
	assert.Equal(t, "Human wording.", rec.Summary)
	assert.Equal(t, "alice", *row.ApprovedBy)
}

func TestChangeService_TerminalStatesRejectTransitions(t *testing.T) {
	svc := services.NewChangeService(reviewRepo(approvedReview("rev-1", 1)), ticketRepo())
	ctx := context.Background()

	_, err := svc.Approve(ctx, models.SourceReview, "rev-1", "bob", nil)
	assert.True(t, errors.Is(err, services.ErrInvalidTransition))
	_, err = svc.Reject(ctx, models.SourceReview, "rev-1", "bob")
	assert.True(t, errors.Is(err, services.ErrInvalidTransition))
	_, err = svc.EditSummary(ctx, models.SourceReview, "rev-1", "new text")
	assert.True(t, errors.Is(err, services.ErrInvalidTransition))
}

func TestChangeService_ConcurrentTransitionIsInvalid(t *testing.T) {
	reviews := reviewRepo(pendingReview("rev-1"))
	reviews.UpdateIfStatusFunc = func(ctx context.Context, id, expected string, fields map[string]any) error {
		return repositories.ErrStaleStatus
	}
	svc := services.NewChangeService(reviews, ticketRepo())

	_, err := svc.Reject(context.Background(), models.SourceReview, "rev-1", "")
	assert.True(t, errors.Is(err, services.ErrInvalidTransition))
}

func TestChangeService_RejectTicket(t *testing.T) {
	row := approvedTicket("tk-1", "ENG-1")
	row.Status = string(models.StatusPending)
	svc := services.NewChangeService(reviewRepo(), ticketRepo(row))

	rec, err := svc.Reject(context.Background(), models.SourceTicket, "tk-1", "carol")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rec.Status)
}

func TestChangeService_LoadApproved(t *testing.T) {
	svc := services.NewChangeService(
		reviewRepo(approvedReview("rev-1", 42, " app/docs/a/page.md ", "")),
		ticketRepo(),
	)
	ctx := context.Background()

	rec, err := svc.LoadApproved(ctx, models.SourceReview, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, "PR #42", rec.Reference())
	assert.Equal(t, []string{"app/docs/a/page.md"}, rec.SuggestedPages)
	assert.Equal(t, models.ClassFeature, rec.Classification)

	_, err = svc.LoadApproved(ctx, models.SourceReview, "missing")
	assert.True(t, errors.Is(err, services.ErrNotFound))
	_, err = svc.LoadApproved(ctx, models.SourceReview, "  ")
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestChangeService_LoadApprovedRejectsUndecodableRow(t *testing.T) {
	row := approvedReview("rev-1", 42)
	row.Title = ""
	svc := services.NewChangeService(reviewRepo(row), ticketRepo())

	_, err := svc.LoadApproved(context.Background(), models.SourceReview, "rev-1")
	assert.True(t, errors.Is(err, models.ErrInvalidRecord))
}

func TestChangeService_ListApprovedBetweenReviewsFirst(t *testing.T) {
	broken := *approvedReview("rev-bad", 2)
	broken.Status = "archived"
	reviews := &mocks.ReviewChangeRepositoryMock{
		ListApprovedBetweenFunc: func(ctx context.Context, start, end time.Time) ([]models.ReviewChange, error) {
			return []models.ReviewChange{*approvedReview("rev-1", 1), broken}, nil
		},
	}
	tickets := &mocks.TicketChangeRepositoryMock{
		ListApprovedBetweenFunc: func(ctx context.Context, start, end time.Time) ([]models.TicketChange, error) {
			return []models.TicketChange{*approvedTicket("tk-1", "ENG-1")}, nil
		},
	}
	svc := services.NewChangeService(reviews, tickets)

	recs, err := svc.ListApprovedBetween(context.Background(), time.Time{}, time.Now())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, models.SourceReview, recs[0].SourceType)
	assert.Equal(t, models.SourceTicket, recs[1].SourceType)
}

func TestChangeService_ListApprovedBetweenPropagatesErrors(t *testing.T) {
	reviews := &mocks.ReviewChangeRepositoryMock{
		ListApprovedBetweenFunc: func(ctx context.Context, start, end time.Time) ([]models.ReviewChange, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	svc := services.NewChangeService(reviews, ticketRepo())

	_, err := svc.ListApprovedBetween(context.Background(), time.Time{}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch review changes")
}

func TestChangeService_ListByStatusPassesLimit(t *testing.T) {
	var gotStatus string
	var gotLimit int
	reviews := &mocks.ReviewChangeRepositoryMock{
		ListByStatusFunc: func(ctx context.Context, status string, limit int) ([]models.ReviewChange, error) {
			gotStatus, gotLimit = status, limit
			return []models.ReviewChange{*pendingReview("rev-1")}, nil
		},
	}
	svc := services.NewChangeService(reviews, ticketRepo())

	recs, err := svc.ListByStatus(context.Background(), models.SourceReview, models.StatusPending, 25)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "pending", gotStatus)
	assert.Equal(t, 25, gotLimit)
}

func TestChangeService_SearchAcrossSources(t *testing.T) {
	reviews := reviewRepo()
	tickets := ticketRepo()
	var reviewArgs, ticketArgs []any
	reviews.SearchFunc = func(ctx context.Context, query, status string, limit int) ([]models.ReviewChange, error) {
		reviewArgs = []any{query, status, limit}
		return []models.ReviewChange{*approvedReview("rev-1", 42), {ID: "broken"}}, nil
	}
	tickets.SearchFunc = func(ctx context.Context, query, status string, limit int) ([]models.TicketChange, error) {
		ticketArgs = []any{query, status, limit}
		return []models.TicketChange{*approvedTicket("tk-1", "ENG-7")}, nil
	}
	svc := services.NewChangeService(reviews, tickets)

	got, err := svc.Search(context.Background(), services.SearchQuery{Text: "  sso ", Status: models.StatusApproved})
	require.NoError(t, err)
	require.Len(t, got, 2, "undecodable rows are skipped")
	assert.Equal(t, models.SourceReview, got[0].SourceType)
	assert.Equal(t, models.SourceTicket, got[1].SourceType)
	assert.Equal(t, []any{"sso", "approved", services.DefaultSearchLimit}, reviewArgs)
	assert.Equal(t, []any{"sso", "approved", services.DefaultSearchLimit}, ticketArgs)
}

func TestChangeService_SearchSingleSource(t *testing.T) {
	reviews := reviewRepo()
	reviews.SearchFunc = func(ctx context.Context, query, status string, limit int) ([]models.ReviewChange, error) {
		t.Fatal("review changes must not be searched")
		return nil, nil
	}
	tickets := ticketRepo()
	tickets.SearchFunc = func(ctx context.Context, query, status string, limit int) ([]models.TicketChange, error) {
		assert.Equal(t, "", status)
		assert.Equal(t, 5, limit)
		return nil, nil
	}
	svc := services.NewChangeService(reviews, tickets)

	got, err := svc.Search(context.Background(), services.SearchQuery{Text: "rate", Source: models.SourceTicket, Limit: 5})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = svc.Search(context.Background(), services.SearchQuery{Text: "   "})
	assert.Error(t, err)
}

func TestChangeService_SearchRepositoryError(t *testing.T) {
	reviews := reviewRepo()
	reviews.SearchFunc = func(ctx context.Context, query, status string, limit int) ([]models.ReviewChange, error) {
		return nil, errors.New("database is locked")
	}
	svc := services.NewChangeService(reviews, ticketRepo())

	_, err := svc.Search(context.Background(), services.SearchQuery{Text: "x"})
	assert.ErrorContains(t, err, "search review changes")
}
