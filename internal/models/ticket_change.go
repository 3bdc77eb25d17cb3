package models

import "time"

// TicketChange is a completed tracker issue awaiting or past human review.
type TicketChange struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	TicketID          string     `gorm:"size:255;not null;uniqueIndex" json:"ticketId"`
	Title             string     `gorm:"size:512;not null" json:"title"`
	URL               string     `gorm:"size:512;not null" json:"url"`
	CompletedAt       time.Time  `json:"completedAt"`
	Description       *string    `gorm:"type:text" json:"description,omitempty"`
	Category          string     `gorm:"size:32;not null;default:other" json:"category"`
	SuggestedDocPages []string   `gorm:"serializer:json;type:text" json:"suggestedDocPages"`
	LLMSummary        string     `gorm:"type:text;not null" json:"llmSummary"`
	EditedSummary     *string    `gorm:"type:text" json:"editedSummary,omitempty"`
	Status            string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	ApprovedBy        *string    `gorm:"size:255" json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time `gorm:"index" json:"approvedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
