package services

import (
	"releaseradar/internal/repositories"

	"gorm.io/gorm"
)

// DbRepositories aggregates the gorm-backed repositories.
type DbRepositories struct {
	Reviews      repositories.ReviewChangeRepository
	Tickets      repositories.TicketChangeRepository
	Entries      repositories.ReleaseEntryRepository
	ReleaseNotes repositories.ReleaseNoteRepository
}

// NewDbRepositories constructs every repository over db.
func NewDbRepositories(db *gorm.DB) *DbRepositories {
	return &DbRepositories{
		Reviews:      repositories.NewReviewChangeRepository(db),
		Tickets:      repositories.NewTicketChangeRepository(db),
		Entries:      repositories.NewReleaseEntryRepository(db),
		ReleaseNotes: repositories.NewReleaseNoteRepository(db),
	}
}
