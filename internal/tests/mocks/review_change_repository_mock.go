package mocks

import (
	"context"
	"time"

	"releaseradar/internal/models"
)

type ReviewChangeRepositoryMock struct {
	UpsertFunc              func(ctx context.Context, change *models.ReviewChange) error
	FindByIDFunc            func(ctx context.Context, id string) (*models.ReviewChange, error)
	FindByNumberFunc        func(ctx context.Context, repository string, number int) (*models.ReviewChange, error)
	ListByStatusFunc        func(ctx context.Context, status string, limit int) ([]models.ReviewChange, error)
	ListApprovedBetweenFunc func(ctx context.Context, start, end time.Time) ([]models.ReviewChange, error)
	UpdateIfStatusFunc      func(ctx context.Context, id, expected string, fields map[string]any) error
	SearchFunc              func(ctx context.Context, query, status string, limit int) ([]models.ReviewChange, error)
}

func (m *ReviewChangeRepositoryMock) Upsert(ctx context.Context, change *models.ReviewChange) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, change)
	}
	return nil
}

func (m *ReviewChangeRepositoryMock) FindByID(ctx context.Context, id string) (*models.ReviewChange, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *ReviewChangeRepositoryMock) FindByNumber(ctx context.Context, repository string, number int) (*models.ReviewChange, error) {
	if m.FindByNumberFunc != nil {
		return m.FindByNumberFunc(ctx, repository, number)
	}
	return nil, nil
}

func (m *ReviewChangeRepositoryMock) ListByStatus(ctx context.Context, status string, limit int) ([]models.ReviewChange, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit)
	}
	return []models.ReviewChange{}, nil
}

func (m *ReviewChangeRepositoryMock) ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.ReviewChange, error) {
	if m.ListApprovedBetweenFunc != nil {
		return m.ListApprovedBetweenFunc(ctx, start, end)
	}
	return []models.ReviewChange{}, nil
}

func (m *ReviewChangeRepositoryMock) UpdateIfStatus(ctx context.Context, id, expected string, fields map[string]any) error {
	if m.UpdateIfStatusFunc != nil {
		return m.UpdateIfStatusFunc(ctx, id, expected, fields)
	}
	return nil
}

func (m *ReviewChangeRepositoryMock) Search(ctx context.Context, query, status string, limit int) ([]models.ReviewChange, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, status, limit)
	}
	return []models.ReviewChange{}, nil
}
