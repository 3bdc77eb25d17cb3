package repositories

import (
	"context"
	"fmt"

	"releaseradar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReleaseEntryRepository interface {
	Create(ctx context.Context, entry *models.ReleaseEntry) error
	ListByWeek(ctx context.Context, week string) ([]models.ReleaseEntry, error)
	ListByChanges(ctx context.Context, reviewIDs, ticketIDs []string) ([]models.ReleaseEntry, error)
}

type releaseEntryRepository struct {
	db *gorm.DB
}

func NewReleaseEntryRepository(db *gorm.DB) ReleaseEntryRepository {
	return &releaseEntryRepository{db: db}
}

func (r *releaseEntryRepository) Create(ctx context.Context, entry *models.ReleaseEntry) error {
	if (entry.ReviewChangeID == nil) == (entry.TicketChangeID == nil) {
		return fmt.Errorf("exactly one of review change id and ticket change id is required")
	}
	if entry.ReleaseWeek == "" {
		return fmt.Errorf("release week is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *releaseEntryRepository) ListByWeek(ctx context.Context, week string) ([]models.ReleaseEntry, error) {
	var entries []models.ReleaseEntry
	err := r.db.WithContext(ctx).Where("release_week = ?", week).Order("created_at asc").Find(&entries).Error
	return entries, err
}

// ListByChanges returns every entry linked to one of the given change ids, oldest first.
func (r *releaseEntryRepository) ListByChanges(ctx context.Context, reviewIDs, ticketIDs []string) ([]models.ReleaseEntry, error) {
	if len(reviewIDs) == 0 && len(ticketIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Model(&models.ReleaseEntry{})
	switch {
	case len(reviewIDs) > 0 && len(ticketIDs) > 0:
		q = q.Where("review_change_id IN ? OR ticket_change_id IN ?", reviewIDs, ticketIDs)
	case len(reviewIDs) > 0:
		q = q.Where("review_change_id IN ?", reviewIDs)
	default:
		q = q.Where("ticket_change_id IN ?", ticketIDs)
	}
	var entries []models.ReleaseEntry
	err := q.Order("created_at asc").Find(&entries).Error
	return entries, err
}
