package models

import "time"

// DocPageUpdate describes one documentation page touched by an update run.
type DocPageUpdate struct {
	Path       string `json:"path"`
	URL        string `json:"url"`
	ChangeType string `json:"change_type"`
}

// ReleaseEntry links a change to the documentation pull request opened for it.
type ReleaseEntry struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	ReviewChangeID  *string         `gorm:"size:36;index" json:"reviewChangeId,omitempty"`
	TicketChangeID  *string         `gorm:"size:36;index" json:"ticketChangeId,omitempty"`
	ReleaseWeek     string          `gorm:"size:10;not null;index" json:"releaseWeek"` // Monday, YYYY-MM-DD
	DocPagesUpdated []DocPageUpdate `gorm:"serializer:json;type:text" json:"docPagesUpdated"`
	DocPRURL        *string         `gorm:"size:512" json:"docPrUrl,omitempty"`
	DocPRNumber     int             `json:"docPrNumber"`
	BranchName      string          `gorm:"size:255" json:"branchName"`
	DocPRMerged     bool            `gorm:"not null;default:false" json:"docPrMerged"`
	CreatedAt       time.Time       `json:"createdAt"`
}
