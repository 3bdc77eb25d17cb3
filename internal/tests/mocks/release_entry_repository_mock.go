package mocks

import (
	"context"

	"releaseradar/internal/models"
)

type ReleaseEntryRepositoryMock struct {
	CreateFunc        func(ctx context.Context, entry *models.ReleaseEntry) error
	ListByWeekFunc    func(ctx context.Context, week string) ([]models.ReleaseEntry, error)
	ListByChangesFunc func(ctx context.Context, reviewIDs, ticketIDs []string) ([]models.ReleaseEntry, error)
}

func (m *ReleaseEntryRepositoryMock) Create(ctx context.Context, entry *models.ReleaseEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return nil
}

func (m *ReleaseEntryRepositoryMock) ListByWeek(ctx context.Context, week string) ([]models.ReleaseEntry, error) {
	if m.ListByWeekFunc != nil {
		return m.ListByWeekFunc(ctx, week)
	}
	return []models.ReleaseEntry{}, nil
}

func (m *ReleaseEntryRepositoryMock) ListByChanges(ctx context.Context, reviewIDs, ticketIDs []string) ([]models.ReleaseEntry, error) {
	if m.ListByChangesFunc != nil {
		return m.ListByChangesFunc(ctx, reviewIDs, ticketIDs)
	}
	return []models.ReleaseEntry{}, nil
}
