package mocks

import (
	"context"
	"time"

	"releaseradar/internal/models"
	"releaseradar/internal/services"
)

type ChangeServiceMock struct {
	LoadApprovedFunc        func(ctx context.Context, src models.SourceType, id string) (*models.ChangeRecord, error)
	GetFunc                 func(ctx context.Context, src models.SourceType, id string) (*models.ChangeRecord, error)
	ListByStatusFunc        func(ctx context.Context, src models.SourceType, status models.ApprovalStatus, limit int) ([]models.ChangeRecord, error)
	ListApprovedBetweenFunc func(ctx context.Context, start, end time.Time) ([]models.ChangeRecord, error)
	ApproveFunc             func(ctx context.Context, src models.SourceType, id, approvedBy string, editedSummary *string) (*models.ChangeRecord, error)
	RejectFunc              func(ctx context.Context, src models.SourceType, id, rejectedBy string) (*models.ChangeRecord, error)
	EditSummaryFunc         func(ctx context.Context, src models.SourceType, id, text string) (*models.ChangeRecord, error)
	SearchFunc              func(ctx context.Context, q services.SearchQuery) ([]models.ChangeRecord, error)
}

func (m *ChangeServiceMock) LoadApproved(ctx context.Context, src models.SourceType, id string) (*models.ChangeRecord, error) {
	if m.LoadApprovedFunc != nil {
		return m.LoadApprovedFunc(ctx, src, id)
	}
	return nil, services.ErrNotFound
}

func (m *ChangeServiceMock) Get(ctx context.Context, src models.SourceType, id string) (*models.ChangeRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, src, id)
	}
	return nil, services.ErrNotFound
}

func (m *ChangeServiceMock) ListByStatus(ctx context.Context, src models.SourceType, status models.ApprovalStatus, limit int) ([]models.ChangeRecord, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, src, status, limit)
	}
	return []models.ChangeRecord{}, nil
}

func (m *ChangeServiceMock) ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.ChangeRecord, error) {
	if m.ListApprovedBetweenFunc != nil {
		return m.ListApprovedBetweenFunc(ctx, start, end)
	}
	return []models.ChangeRecord{}, nil
}

func (m *ChangeServiceMock) Approve(ctx context.Context, src models.SourceType, id, approvedBy string, editedSummary *string) (*models.ChangeRecord, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, src, id, approvedBy, editedSummary)
	}
	return &models.ChangeRecord{SourceType: src, SourceID: id, Status: models.StatusApproved}, nil
}

func (m *ChangeServiceMock) Reject(ctx context.Context, src models.SourceType, id, rejectedBy string) (*models.ChangeRecord, error) {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, src, id, rejectedBy)
	}
	return &models.ChangeRecord{SourceType: src, SourceID: id, Status: models.StatusRejected}, nil
}

func (m *ChangeServiceMock) EditSummary(ctx context.Context, src models.SourceType, id, text string) (*models.ChangeRecord, error) {
	if m.EditSummaryFunc != nil {
		return m.EditSummaryFunc(ctx, src, id, text)
	}
	return &models.ChangeRecord{SourceType: src, SourceID: id, Status: models.StatusPending, Summary: text}, nil
}

func (m *ChangeServiceMock) Search(ctx context.Context, q services.SearchQuery) ([]models.ChangeRecord, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return []models.ChangeRecord{}, nil
}

type DocUpdateServiceMock struct {
	ApplyChangesFunc func(ctx context.Context, change *models.ChangeRecord, pages []string) (*models.BranchOutcome, error)
	ProcessFunc      func(ctx context.Context, src models.SourceType, id string) (*models.DocUpdateResult, error)
}

func (m *DocUpdateServiceMock) ApplyChanges(ctx context.Context, change *models.ChangeRecord, pages []string) (*models.BranchOutcome, error) {
	if m.ApplyChangesFunc != nil {
		return m.ApplyChangesFunc(ctx, change, pages)
	}
	return &models.BranchOutcome{}, nil
}

func (m *DocUpdateServiceMock) Process(ctx context.Context, src models.SourceType, id string) (*models.DocUpdateResult, error) {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, src, id)
	}
	return &models.DocUpdateResult{}, nil
}

type ReleaseNotesServiceMock struct {
	GenerateFunc  func(ctx context.Context, week string) (*models.ReleaseNote, error)
	GetFunc       func(ctx context.Context, id string) (*models.ReleaseNote, error)
	GetByWeekFunc func(ctx context.Context, week string) (*models.ReleaseNote, error)
	ListFunc      func(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error)
	MarkSentFunc  func(ctx context.Context, id string) (*models.ReleaseNote, error)
}

func (m *ReleaseNotesServiceMock) Generate(ctx context.Context, week string) (*models.ReleaseNote, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, week)
	}
	return &models.ReleaseNote{WeekStarting: week}, nil
}

func (m *ReleaseNotesServiceMock) Get(ctx context.Context, id string) (*models.ReleaseNote, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, services.ErrReleaseNoteMissing
}

func (m *ReleaseNotesServiceMock) GetByWeek(ctx context.Context, week string) (*models.ReleaseNote, error) {
	if m.GetByWeekFunc != nil {
		return m.GetByWeekFunc(ctx, week)
	}
	return nil, services.ErrReleaseNoteMissing
}

func (m *ReleaseNotesServiceMock) List(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []models.ReleaseNote{}, nil
}

func (m *ReleaseNotesServiceMock) MarkSent(ctx context.Context, id string) (*models.ReleaseNote, error) {
	if m.MarkSentFunc != nil {
		return m.MarkSentFunc(ctx, id)
	}
	return nil, services.ErrReleaseNoteMissing
}

type IngestServiceMock struct {
	IngestPullRequestFunc func(ctx context.Context, owner, repo string, number int) (*models.ReviewChange, error)
	IngestTicketFunc      func(ctx context.Context, in services.TicketInput) (*models.TicketChange, error)
}

func (m *IngestServiceMock) IngestPullRequest(ctx context.Context, owner, repo string, number int) (*models.ReviewChange, error) {
	if m.IngestPullRequestFunc != nil {
		return m.IngestPullRequestFunc(ctx, owner, repo, number)
	}
	return &models.ReviewChange{ID: "rev-1", Repository: owner + "/" + repo, Number: number}, nil
}

func (m *IngestServiceMock) IngestTicket(ctx context.Context, in services.TicketInput) (*models.TicketChange, error) {
	if m.IngestTicketFunc != nil {
		return m.IngestTicketFunc(ctx, in)
	}
	return &models.TicketChange{ID: "tk-1", TicketID: in.Identifier}, nil
}
