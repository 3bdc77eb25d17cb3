package repositories

import (
	"context"
	"fmt"
	"time"

	"releaseradar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketChangeRepository interface {
	Upsert(ctx context.Context, change *models.TicketChange) error
	FindByID(ctx context.Context, id string) (*models.TicketChange, error)
	FindByTicketID(ctx context.Context, ticketID string) (*models.TicketChange, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]models.TicketChange, error)
	ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.TicketChange, error)
	UpdateIfStatus(ctx context.Context, id, expected string, fields map[string]any) error
	Search(ctx context.Context, query, status string, limit int) ([]models.TicketChange, error)
}

type ticketChangeRepository struct {
	db *gorm.DB
}

func NewTicketChangeRepository(db *gorm.DB) TicketChangeRepository {
	return &ticketChangeRepository{db: db}
}

func (r *ticketChangeRepository) Upsert(ctx context.Context, change *models.TicketChange) error {
	if change.TicketID == "" {
		return fmt.Errorf("ticket id is required")
	}
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.Status == "" {
		change.Status = string(models.StatusPending)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticket_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "url", "completed_at", "description", "category",
			"suggested_doc_pages", "llm_summary", "updated_at",
		}),
	}).Create(change).Error
	if err != nil {
		return err
	}
	stored, err := r.FindByTicketID(ctx, change.TicketID)
	if err != nil {
		return err
	}
	*change = *stored
	return nil
}

func (r *ticketChangeRepository) FindByID(ctx context.Context, id string) (*models.TicketChange, error) {
	var change models.TicketChange
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&change).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &change, nil
}

func (r *ticketChangeRepository) FindByTicketID(ctx context.Context, ticketID string) (*models.TicketChange, error) {
	var change models.TicketChange
	if err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).Take(&change).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &change, nil
}

func (r *ticketChangeRepository) ListByStatus(ctx context.Context, status string, limit int) ([]models.TicketChange, error) {
	var changes []models.TicketChange
	q := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *ticketChangeRepository) ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.TicketChange, error) {
	var changes []models.TicketChange
	err := r.db.WithContext(ctx).
		Where("status = ? AND approved_at >= ? AND approved_at < ?", models.StatusApproved, start, end).
		Order("approved_at desc").
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *ticketChangeRepository) UpdateIfStatus(ctx context.Context, id, expected string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.TicketChange{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// Search returns changes whose title or summary contains query, newest first.
func (r *ticketChangeRepository) Search(ctx context.Context, query, status string, limit int) ([]models.TicketChange, error) {
	var changes []models.TicketChange
	q := r.db.WithContext(ctx).Scopes(searchScope(query, status)).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}
