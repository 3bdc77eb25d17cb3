package models

import "time"

// ReleaseNoteCounts holds per-category totals for one week.
type ReleaseNoteCounts struct {
	Total        int `json:"total"`
	Features     int `json:"features"`
	Fixes        int `json:"fixes"`
	Improvements int `json:"improvements"`
	Docs         int `json:"docs"`
	Other        int `json:"other"`
}

// ReleaseNote is the weekly digest, one row per week start.
type ReleaseNote struct {
	ID           string              `gorm:"primaryKey;size:36" json:"id"`
	WeekStarting string              `gorm:"size:10;not null;uniqueIndex" json:"weekStarting"`
	Counts       ReleaseNoteCounts   `gorm:"serializer:json;type:text" json:"counts"`
	Categorized  CategorizedReleases `gorm:"serializer:json;type:text" json:"categorized"`
	Subject      string              `gorm:"size:512" json:"subject"`
	EmailCopy    string              `gorm:"type:text" json:"emailCopy"`
	SentAt       *time.Time          `json:"sentAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}
