package models

import "time"

// ReviewChange is a merged pull request awaiting or past human review.
type ReviewChange struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	Repository          string     `gorm:"size:255;not null;index:idx_review_repo_number,unique" json:"repository"`
	Number              int        `gorm:"not null;index:idx_review_repo_number,unique" json:"number"`
	Title               string     `gorm:"size:512;not null" json:"title"`
	URL                 string     `gorm:"size:512;not null" json:"url"`
	Author              string     `gorm:"size:255" json:"author"`
	MergedAt            time.Time  `json:"mergedAt"`
	FilesChanged        int        `json:"filesChanged"`
	Additions           int        `json:"additions"`
	Deletions           int        `json:"deletions"`
	Files               []string   `gorm:"serializer:json;type:text" json:"files"`
	Category            string     `gorm:"size:32;not null;default:other" json:"category"`
	SuggestedDocPages   []string   `gorm:"serializer:json;type:text" json:"suggestedDocPages"`
	LLMSummary          string     `gorm:"type:text;not null" json:"llmSummary"`
	EditedSummary       *string    `gorm:"type:text" json:"editedSummary,omitempty"`
	OriginalDescription *string    `gorm:"type:text" json:"originalDescription,omitempty"`
	Status              string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	ApprovedBy          *string    `gorm:"size:255" json:"approvedBy,omitempty"`
	ApprovedAt          *time.Time `gorm:"index" json:"approvedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}
