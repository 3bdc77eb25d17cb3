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

type ReviewChangeRepository interface {
	Upsert(ctx context.Context, change *models.ReviewChange) error
	FindByID(ctx context.Context, id string) (*models.ReviewChange, error)
	FindByNumber(ctx context.Context, repository string, number int) (*models.ReviewChange, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]models.ReviewChange, error)
	ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.ReviewChange, error)
	UpdateIfStatus(ctx context.Context, id, expected string, fields map[string]any) error
	Search(ctx context.Context, query, status string, limit int) ([]models.ReviewChange, error)
}

type reviewChangeRepository struct {
	db *gorm.DB
}

func NewReviewChangeRepository(db *gorm.DB) ReviewChangeRepository {
	return &reviewChangeRepository{db: db}
}

// Upsert inserts a review change or refreshes the ingestion fields of the
// existing row for the same repository and number. Review state is kept.
func (r *reviewChangeRepository) Upsert(ctx context.Context, change *models.ReviewChange) error {
	if change.Repository == "" || change.Number <= 0 {
		return fmt.Errorf("repository and number are required")
	}
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.Status == "" {
		change.Status = string(models.StatusPending)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "repository"}, {Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "url", "author", "merged_at", "files_changed", "additions", "deletions",
			"files", "category", "suggested_doc_pages", "llm_summary", "original_description", "updated_at",
		}),
	}).Create(change).Error
	if err != nil {
		return err
	}
	stored, err := r.FindByNumber(ctx, change.Repository, change.Number)
	if err != nil {
		return err
	}
	*change = *stored
	return nil
}

func (r *reviewChangeRepository) FindByID(ctx context.Context, id string) (*models.ReviewChange, error) {
	var change models.ReviewChange
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&change).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &change, nil
}

func (r *reviewChangeRepository) FindByNumber(ctx context.Context, repository string, number int) (*models.ReviewChange, error) {
	var change models.ReviewChange
	err := r.db.WithContext(ctx).
		Where("repository = ? AND number = ?", repository, number).
		Take(&change).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &change, nil
}

func (r *reviewChangeRepository) ListByStatus(ctx context.Context, status string, limit int) ([]models.ReviewChange, error) {
	var changes []models.ReviewChange
	q := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

// ListApprovedBetween returns approved changes with approved_at in [start, end),
// newest approval first.
func (r *reviewChangeRepository) ListApprovedBetween(ctx context.Context, start, end time.Time) ([]models.ReviewChange, error) {
	var changes []models.ReviewChange
	err := r.db.WithContext(ctx).
		Where("status = ? AND approved_at >= ? AND approved_at < ?", models.StatusApproved, start, end).
		Order("approved_at desc").
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// UpdateIfStatus applies fields only while the row still has the expected status.
func (r *reviewChangeRepository) UpdateIfStatus(ctx context.Context, id, expected string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.ReviewChange{}).
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
func (r *reviewChangeRepository) Search(ctx context.Context, query, status string, limit int) ([]models.ReviewChange, error) {
	var changes []models.ReviewChange
	q := r.db.WithContext(ctx).Scopes(searchScope(query, status)).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}
