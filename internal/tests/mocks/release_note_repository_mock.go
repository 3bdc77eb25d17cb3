package mocks

import (
	"context"
	"time"

	"releaseradar/internal/models"
	"releaseradar/internal/repositories"
)

type ReleaseNoteRepositoryMock struct {
	UpsertFunc     func(ctx context.Context, note *models.ReleaseNote) error
	FindByIDFunc   func(ctx context.Context, id string) (*models.ReleaseNote, error)
	FindByWeekFunc func(ctx context.Context, week string) (*models.ReleaseNote, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error)
	MarkSentFunc   func(ctx context.Context, id string, at time.Time) error
}

func (m *ReleaseNoteRepositoryMock) Upsert(ctx context.Context, note *models.ReleaseNote) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, note)
	}
	return nil
}

func (m *ReleaseNoteRepositoryMock) FindByID(ctx context.Context, id string) (*models.ReleaseNote, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, repositories.ErrNotFound
}

func (m *ReleaseNoteRepositoryMock) FindByWeek(ctx context.Context, week string) (*models.ReleaseNote, error) {
	if m.FindByWeekFunc != nil {
		return m.FindByWeekFunc(ctx, week)
	}
	return nil, repositories.ErrNotFound
}

func (m *ReleaseNoteRepositoryMock) List(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []models.ReleaseNote{}, nil
}

func (m *ReleaseNoteRepositoryMock) MarkSent(ctx context.Context, id string, at time.Time) error {
	if m.MarkSentFunc != nil {
		return m.MarkSentFunc(ctx, id, at)
	}
	return nil
}
