package mocks

import (
	"context"
	"time"

	"releaseradar/internal/models"
)

type TicketChangeRepositoryMock struct {
	UpsertFunc              func(ctx context.Context, change *models.TicketChange) error
	FindByIDFunc            func(ctx context.Context, id string) (*models.TicketChange, error)
	FindByTicketIDFunc      func(ctx context.Context, ticketID string) (*models.TicketChange, error)
	ListByStatusFunc        func(ctx context.Context, status string, limit int) ([]models.TicketChange, error)
	ListApprovedBetweenFunc func(ctx context.Context, start, end time.Time) ([]models.TicketChange, error)
	UpdateIfStatusFunc      func(ctx context.Context, id, expected string, fields map[string]any) error
	SearchFunc              func(ctx context.Context, query, status string, limit int) ([]models.TicketChange, error)
}

func (m *TicketChangeRepositoryMock) Upsert(ctx context.Context, change *models.TicketChange) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, change)
	}
	return nil
}

func (m *TicketChangeRepositoryMock) FindByID(ctx context.Context, id string) (*models.TicketChange, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *TicketChangeRepositoryMock) FindByTicketID(ctx context.Context, ticketID string) (*models.TicketChange, error) {
	if m.FindByTicketIDFunc != nil {
		return m.FindByTicketIDFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *TicketChangeRepositoryMock) ListByStatus(ctx context.Context, status string, limit int) ([]models.TicketChange, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit)
	}
	return []models.TicketChange{}, nil
}

func (m *TicketChangeRepositoryMock) ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.TicketChange, error) {
	if m.ListApprovedBetweenFunc != nil {
		return m.ListApprovedBetweenFunc(ctx, start, end)
	}
	return []models.TicketChange{}, nil
}

func (m *TicketChangeRepositoryMock) UpdateIfStatus(ctx context.Context, id, expected string, fields map[string]any) error {
	if m.UpdateIfStatusFunc != nil {
		return m.UpdateIfStatusFunc(ctx, id, expected, fields)
	}
	return nil
}

func (m *TicketChangeRepositoryMock) Search(ctx context.Context, query, status string, limit int) ([]models.TicketChange, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, status, limit)
	}
	return []models.TicketChange{}, nil
}
