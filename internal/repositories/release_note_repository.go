package repositories

import (
	"context"
	"time"

	"releaseradar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReleaseNoteRepository interface {
	Upsert(ctx context.Context, note *models.ReleaseNote) error
	FindByID(ctx context.Context, id string) (*models.ReleaseNote, error)
	FindByWeek(ctx context.Context, week string) (*models.ReleaseNote, error)
	List(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
}

type releaseNoteRepository struct {
	db *gorm.DB
}

func NewReleaseNoteRepository(db *gorm.DB) ReleaseNoteRepository {
	return &releaseNoteRepository{db: db}
}

// Upsert writes the note for its week. A stored note that was already sent is
// left untouched and ErrAlreadySent is returned.
func (r *releaseNoteRepository) Upsert(ctx context.Context, note *models.ReleaseNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "week_starting"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "release_notes.sent_at IS NULL"},
		}},
		DoUpdates: clause.AssignmentColumns([]string{"counts", "categorized", "subject", "email_copy", "updated_at"}),
	}).Create(note)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadySent
	}
	stored, err := r.FindByWeek(ctx, note.WeekStarting)
	if err != nil {
		return err
	}
	*note = *stored
	return nil
}

func (r *releaseNoteRepository) FindByID(ctx context.Context, id string) (*models.ReleaseNote, error) {
	var note models.ReleaseNote
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&note).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &note, nil
}

func (r *releaseNoteRepository) FindByWeek(ctx context.Context, week string) (*models.ReleaseNote, error) {
	var note models.ReleaseNote
	if err := r.db.WithContext(ctx).Where("week_starting = ?", week).Take(&note).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &note, nil
}

func (r *releaseNoteRepository) List(ctx context.Context, limit, offset int) ([]models.ReleaseNote, error) {
	var notes []models.ReleaseNote
	q := r.db.WithContext(ctx).Order("week_starting desc")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&notes).Error
	return notes, err
}

func (r *releaseNoteRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.ReleaseNote{}).
		Where("id = ? AND sent_at IS NULL", id).
		Update("sent_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadySent
	}
	return nil
}
